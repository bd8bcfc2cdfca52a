package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meridian-club/meridian/internal/authz"
)

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		title  string
	}{
		{"unauthenticated", authz.ErrUnauthenticated, http.StatusUnauthorized, "Unauthenticated"},
		{
			"denial carries violation",
			authz.NewDenial(authz.ActionPeriodClose, authz.Decision{Violation: authz.ViolationInsufficientRole, Reason: "chairman designation required"}),
			http.StatusForbidden,
			"INSUFFICIENT_ROLE",
		},
		{
			"not assigned",
			authz.NewDenial(authz.ActionConversationView, authz.Decision{Violation: authz.ViolationNotAssigned, Reason: "no assignment between agent and member"}),
			http.StatusForbidden,
			"NOT_ASSIGNED",
		},
		{"not found", ErrNotFound, http.StatusNotFound, "Not Found"},
		{"conflict", fmt.Errorf("write: %w", ErrConflict), http.StatusConflict, "Conflict"},
		{"invalid transition", fmt.Errorf("%w: cannot close", ErrInvalidTransition), http.StatusUnprocessableEntity, "Invalid Transition"},
		{"validation", fmt.Errorf("%w: reason required", ErrValidation), http.StatusBadRequest, "Validation Failed"},
		{"audit storage", fmt.Errorf("%w: timeout", ErrStorageUnavailable), http.StatusServiceUnavailable, "Storage Unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal Error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var problem ProblemDetail
			if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
				t.Fatalf("decode problem: %v", err)
			}
			if problem.Title != tc.title {
				t.Fatalf("expected title %q, got %q", tc.title, problem.Title)
			}
			if problem.Status != tc.status {
				t.Fatalf("problem status mismatch: %d", problem.Status)
			}
		})
	}
}

func TestInternalErrorHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("pq: secret dsn in message"))

	var problem ProblemDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	if problem.Detail != "" {
		t.Fatalf("internal errors must not leak detail, got %q", problem.Detail)
	}
}
