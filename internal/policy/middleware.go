package policy

import (
	"net/http"

	"edunova-platform/internal/auth"
	"edunova-platform/internal/httpapi"

	"github.com/gin-gonic/gin"
)

// Require enforces a Requirement against the authenticated identity in the
// request context. It must run after the session middleware; a request with
// no resolvable role is denied, never 500ed.
func Require(req Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := auth.Role(c.Request.Context())
		if err != nil || role == "" {
			httpapi.Abort(c, http.StatusForbidden, httpapi.KindInsufficientPrivilege, "insufficient privileges")
			return
		}

		if err := Authorize(role, PermissionsForRole(role), req); err != nil {
			httpapi.Abort(c, http.StatusForbidden, httpapi.KindInsufficientPrivilege, "insufficient privileges")
			return
		}
		c.Next()
	}
}

// RequireAnyRole allows access if the caller has any of the provided roles.
// Admin bypasses all checks via the engine.
func RequireAnyRole(roles ...string) gin.HandlerFunc {
	return Require(Requirement{Roles: roles})
}

// RequirePermissions demands the caller's role grant every listed permission.
func RequirePermissions(perms ...string) gin.HandlerFunc {
	return Require(Requirement{Permissions: perms})
}
