package messaging

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-club/meridian/internal/authz"
	"github.com/meridian-club/meridian/internal/platform/httpx"
)

// Handler wires conversation HTTP endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers conversation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{memberID}/messages", h.list)
	r.Post("/{memberID}/messages", h.send)
}

type sendRequest struct {
	Body string `json:"body" validate:"required"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "")
		return
	}
	memberID, err := strconv.ParseInt(chi.URLParam(r, "memberID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "member id must be numeric")
		return
	}
	messages, err := h.service.ViewConversation(r.Context(), actor, memberID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if messages == nil {
		messages = []Message{}
	}
	httpx.JSON(w, http.StatusOK, messages)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "")
		return
	}
	memberID, err := strconv.ParseInt(chi.URLParam(r, "memberID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "member id must be numeric")
		return
	}
	var req sendRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	msg, err := h.service.SendMessage(r.Context(), actor, memberID, req.Body)
	if err != nil {
		if errors.Is(err, ErrEmptyBody) {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, msg)
}
