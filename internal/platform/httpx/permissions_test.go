package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gestix-erp/gestix/internal/shared"
)

func TestPermissionMiddlewareDeniesWithProblem(t *testing.T) {
	roles := map[string]shared.RolePermissions{
		"viewer": {"sales": "view"},
	}
	m := PermissionMiddleware{Resolve: shared.HeaderRoleResolver(roles)}

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/sales", nil)
	req.Header.Set("X-Role", "viewer")
	rec := httptest.NewRecorder()
	m.RequireEdit("sales")(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "Forbidden", problem.Title)
	require.Equal(t, http.StatusForbidden, problem.Status)
	require.Contains(t, problem.Detail, "sales")
}

func TestPermissionMiddlewareAllowsView(t *testing.T) {
	roles := map[string]shared.RolePermissions{
		"viewer": {"sales": "view"},
	}
	m := PermissionMiddleware{Resolve: shared.HeaderRoleResolver(roles)}

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/sales", nil)
	req.Header.Set("X-Role", "viewer")
	rec := httptest.NewRecorder()
	m.RequireView("sales")(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPermissionMiddlewareNilResolverAllowsAll(t *testing.T) {
	m := PermissionMiddleware{}
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/sales", nil)
	rec := httptest.NewRecorder()
	m.RequireEdit("sales")(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}
