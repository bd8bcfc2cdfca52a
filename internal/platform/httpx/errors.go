package httpx

import (
	"errors"
	"net/http"

	"github.com/meridian-club/meridian/internal/authz"
)

// Canonical kernel error values. They live here rather than in
// internal/audit and internal/lifecycle so the error mapping below does not
// import those packages, which import this one for their HTTP handlers;
// audit.ErrStorageUnavailable and the lifecycle.Err* sentinels alias these.
var (
	ErrStorageUnavailable = errors.New("audit: storage unavailable")
	ErrNotFound           = errors.New("lifecycle: resource not found")
	ErrConflict           = errors.New("lifecycle: version conflict")
	ErrInvalidTransition  = errors.New("lifecycle: invalid transition")
	ErrValidation         = errors.New("lifecycle: validation failed")
)

// RespondError maps kernel errors to HTTP problem responses. Authorization
// and transition failures keep their violation type so clients can produce a
// precise message without learning which resource-state gate failed.
func RespondError(w http.ResponseWriter, err error) {
	var denial *authz.Denial
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		Problem(w, http.StatusUnauthorized, "Unauthenticated", "session missing or expired")
	case errors.As(err, &denial):
		Problem(w, http.StatusForbidden, string(denial.Violation), denial.Reason)
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", "resource not found")
	case errors.Is(err, ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", "resource changed concurrently; reload and retry")
	case errors.Is(err, ErrInvalidTransition):
		Problem(w, http.StatusUnprocessableEntity, "Invalid Transition", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrStorageUnavailable):
		Problem(w, http.StatusServiceUnavailable, "Storage Unavailable", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
