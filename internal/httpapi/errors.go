package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error kinds are part of the API contract. Clients branch on them, so the
// strings must stay stable across releases.
const (
	KindNoCredential          = "no_credential"
	KindMalformedCredential   = "malformed_credential"
	KindExpiredCredential     = "expired_credential"
	KindRevokedSession        = "revoked_session"
	KindSubjectNotFound       = "subject_not_found"
	KindInsufficientPrivilege = "insufficient_privilege"
	KindStoreUnavailable      = "store_unavailable"
	KindConsistencyViolation  = "consistency_violation"
	KindRateLimited           = "rate_limited"
	KindValidation            = "validation"
	KindConflict              = "conflict"
	KindNotFound              = "not_found"
	KindInternal              = "internal"
)

// Abort writes a structured error response and stops the handler chain.
// Keep messages generic; the kind is the machine-readable part.
func Abort(c *gin.Context, status int, kind, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "kind": kind})
}

// AbortInternal hides the cause from the client; the gin error list carries it
// to the request logger.
func AbortInternal(c *gin.Context, err error) {
	_ = c.Error(err)
	Abort(c, http.StatusInternalServerError, KindInternal, "internal server error")
}
