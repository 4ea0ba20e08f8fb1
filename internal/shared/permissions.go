package shared

import (
	"net/http"
)

// Permissions is the opaque module-permission predicate. Authentication and
// role resolution live outside this codebase; callers supply an
// implementation per request.
type Permissions interface {
	CanView(module string) bool
	CanEdit(module string) bool
}

// RolePermissions implements Permissions from a static role map:
// module -> "view" or "edit".
type RolePermissions map[string]string

// CanView reports whether the role may read the module.
func (r RolePermissions) CanView(module string) bool {
	level, ok := r[module]
	return ok && (level == "view" || level == "edit")
}

// CanEdit reports whether the role may mutate the module.
func (r RolePermissions) CanEdit(module string) bool {
	return r[module] == "edit"
}

// AllowAll grants every permission; used when the deployment delegates
// authorization entirely to the fronting proxy.
type AllowAll struct{}

func (AllowAll) CanView(string) bool { return true }
func (AllowAll) CanEdit(string) bool { return true }

// PermissionResolver derives the caller's permissions from the request.
type PermissionResolver func(r *http.Request) Permissions

// HeaderRoleResolver maps the X-Role header through a static role table.
// Absent or unknown roles fall back to AllowAll, for deployments where the
// fronting proxy enforces authentication.
func HeaderRoleResolver(roles map[string]RolePermissions) PermissionResolver {
	return func(r *http.Request) Permissions {
		if role := r.Header.Get("X-Role"); role != "" {
			if p, ok := roles[role]; ok {
				return p
			}
		}
		return AllowAll{}
	}
}
