package period

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/meridian-club/meridian/internal/authz"
	"github.com/meridian-club/meridian/internal/lifecycle"
)

func testRouter(t *testing.T) chi.Router {
	t.Helper()
	store := lifecycle.NewMemoryStore()
	store.Seed(lifecycle.Record{ID: "2026-07", Kind: Kind, State: StateOpen, Version: 1})
	engine := lifecycle.NewEngine(store, nil, nil, nil)
	handler := NewHandler(nil, NewService(engine))

	r := chi.NewRouter()
	r.Route("/periods", handler.MountRoutes)
	return r
}

func asPrincipal(req *http.Request, p authz.Principal) *http.Request {
	return req.WithContext(authz.ContextWithPrincipal(context.Background(), p))
}

func TestHandlerCloseRoundTrip(t *testing.T) {
	router := testRouter(t)
	actor := authz.Principal{UserID: 1, BaseRole: authz.RoleManagerAdmin, EmployeeRoleCategory: authz.ChairmanCategory}

	req := asPrincipal(httptest.NewRequest(http.MethodPost, "/periods/2026-07/close", nil), actor)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "closed", body["state"])
	require.Equal(t, "open", body["previous_state"])
	require.EqualValues(t, 2, body["version"])
}

func TestHandlerDeniedTransition(t *testing.T) {
	router := testRouter(t)
	member := authz.Principal{UserID: 2, BaseRole: authz.RoleMember}

	req := asPrincipal(httptest.NewRequest(http.MethodPost, "/periods/2026-07/close", nil), member)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	var problem struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "INSUFFICIENT_ROLE", problem.Title)
}

func TestHandlerInvalidTransitionIs422(t *testing.T) {
	router := testRouter(t)
	actor := authz.Principal{UserID: 1, BaseRole: authz.RoleManagerAdmin, EmployeeRoleCategory: authz.ChairmanCategory}

	req := asPrincipal(httptest.NewRequest(http.MethodPost, "/periods/2026-07/lock", nil), actor)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlerUnknownPeriodIs404(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/periods/2099-01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerMissingPrincipalIs401(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/periods/2026-07/close", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
