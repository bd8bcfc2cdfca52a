package prizedraw

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-club/meridian/internal/authz"
	"github.com/meridian-club/meridian/internal/platform/httpx"
)

// Handler wires prize draw HTTP endpoints.
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

// MountRoutes registers prize draw routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/{drawID}/entry", h.enter)
	r.Get("/{drawID}/entry", h.get)
}

func (h *Handler) enter(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "")
		return
	}
	drawID, err := strconv.ParseInt(chi.URLParam(r, "drawID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "draw id must be numeric")
		return
	}
	entry, err := h.service.EnsureEntry(r.Context(), actor, drawID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "")
		return
	}
	drawID, err := strconv.ParseInt(chi.URLParam(r, "drawID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "draw id must be numeric")
		return
	}
	entry, err := h.service.Get(r.Context(), actor, drawID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "no entry for draw")
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}
