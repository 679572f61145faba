package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"edunova-platform/internal/httpapi"
	"edunova-platform/internal/session"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// RoleResolver materializes the subject's current role from the credential
// store (cache-backed). found=false means the subject no longer exists.
// Kept as a function injection to avoid persistence assumptions here.
type RoleResolver func(ctx context.Context, userID int64) (role string, found bool, err error)

// RequireSession is the ordered authentication gate every protected route
// passes through: verify token, check the session registry, materialize the
// subject. Each rejection carries its own stable kind so clients can branch
// on cause. Fine-grained authorization belongs to internal/policy.
func RequireSession(m *Manager, sessions *session.Store, resolve RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
		if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
			httpapi.Abort(c, http.StatusUnauthorized, httpapi.KindNoCredential, "missing bearer token")
			return
		}
		tok := strings.TrimPrefix(raw, bearerPrefix)

		// Structural check first: no store call is spent on a token that
		// cannot be valid.
		claims, err := m.Verify(tok, time.Now())
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				httpapi.Abort(c, http.StatusUnauthorized, httpapi.KindExpiredCredential, "token expired")
				return
			}
			httpapi.Abort(c, http.StatusUnauthorized, httpapi.KindMalformedCredential, "invalid token")
			return
		}

		// Registry check: a registry outage fails closed, never "trust the
		// token".
		active, err := sessions.IsActive(c.Request.Context(), claims.UserID, tok)
		if err != nil {
			httpapi.Abort(c, http.StatusServiceUnavailable, httpapi.KindStoreUnavailable, "authentication temporarily unavailable")
			return
		}
		if !active {
			httpapi.Abort(c, http.StatusUnauthorized, httpapi.KindRevokedSession, "session revoked")
			return
		}

		// Authorization uses the subject's current role, not the role frozen
		// into the token at issue time.
		role, found, err := resolve(c.Request.Context(), claims.UserID)
		if err != nil {
			httpapi.Abort(c, http.StatusServiceUnavailable, httpapi.KindStoreUnavailable, "authentication temporarily unavailable")
			return
		}
		if !found {
			httpapi.Abort(c, http.StatusUnauthorized, httpapi.KindSubjectNotFound, "unknown subject")
			return
		}

		ctx := WithIdentity(c.Request.Context(), claims.UserID, role)
		c.Request = c.Request.WithContext(ctx)

		// Also store on gin context for handler convenience.
		c.Set("user_id", claims.UserID)
		c.Set("role", role)

		c.Next()
	}
}
