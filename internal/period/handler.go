package period

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-club/meridian/internal/authz"
	"github.com/meridian-club/meridian/internal/lifecycle"
	"github.com/meridian-club/meridian/internal/platform/httpx"
)

// Handler wires period HTTP endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers period routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}", h.get)
	r.Post("/{id}/close", h.transition(h.service.Close))
	r.Post("/{id}/reopen", h.transition(h.service.Reopen))
	r.Post("/{id}/lock", h.transition(h.service.Lock))
	r.Post("/{id}/unlock", h.transition(h.service.Unlock))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec.View())
}

func (h *Handler) transition(fn func(ctx context.Context, id string, actor authz.Principal) (lifecycle.Record, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := authz.PrincipalFromContext(r.Context())
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "")
			return
		}
		rec, err := fn(r.Context(), chi.URLParam(r, "id"), actor)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, rec.View())
	}
}
