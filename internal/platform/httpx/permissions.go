package httpx

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gestix-erp/gestix/internal/shared"
)

// PermissionMiddleware guards module routes with view/edit checks. Denials
// are written in the same problem shape as every other domain error.
type PermissionMiddleware struct {
	Resolve shared.PermissionResolver
	Logger  *slog.Logger
}

// RequireView rejects requests whose permissions cannot view the module.
func (m PermissionMiddleware) RequireView(module string) func(http.Handler) http.Handler {
	return m.require(module, func(p shared.Permissions) bool { return p.CanView(module) })
}

// RequireEdit rejects requests whose permissions cannot edit the module.
func (m PermissionMiddleware) RequireEdit(module string) func(http.Handler) http.Handler {
	return m.require(module, func(p shared.Permissions) bool { return p.CanEdit(module) })
}

func (m PermissionMiddleware) require(module string, allowed func(shared.Permissions) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			perms := shared.Permissions(shared.AllowAll{})
			if m.Resolve != nil {
				perms = m.Resolve(r)
			}
			if !allowed(perms) {
				if m.Logger != nil {
					m.Logger.Warn("permission denied", slog.String("module", module), slog.String("path", r.URL.Path))
				}
				RespondError(w, fmt.Errorf("%w: no access to %s", shared.ErrForbidden, module))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
