package users

import (
	"errors"
	"net/http"
	"strconv"

	"edunova-platform/internal/auth"
	"edunova-platform/internal/cache"
	"edunova-platform/internal/httpapi"
	"edunova-platform/internal/session"

	"github.com/gin-gonic/gin"
)

// Handlers are thin: parse/validate input, call the service, map sentinel
// errors to stable response kinds.
type Handlers struct {
	Users *Service
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type assignPrivilegeRequest struct {
	PrivilegeID int64 `json:"privilege_id"`
}

// Register handles POST /api/auth/register (public).
func (h Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Abort(c, http.StatusBadRequest, httpapi.KindValidation, "invalid json")
		return
	}

	sub, err := h.Users.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidArgument):
			httpapi.Abort(c, http.StatusBadRequest, httpapi.KindValidation, "username, email, privilege_id and a password of 8-128 characters are required")
		case errors.Is(err, ErrEmailTaken):
			httpapi.Abort(c, http.StatusConflict, httpapi.KindConflict, "user with this email already exists")
		case errors.Is(err, ErrNotFound):
			httpapi.Abort(c, http.StatusBadRequest, httpapi.KindValidation, "unknown privilege")
		case errors.Is(err, cache.ErrInvalidation):
			httpapi.Abort(c, http.StatusInternalServerError, httpapi.KindConsistencyViolation, "write could not be confirmed")
		default:
			httpapi.AbortInternal(c, err)
		}
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// Login handles POST /api/auth/login (public).
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Abort(c, http.StatusBadRequest, httpapi.KindValidation, "invalid json")
		return
	}

	token, sub, err := h.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidArgument):
			httpapi.Abort(c, http.StatusBadRequest, httpapi.KindValidation, "email and password are required")
		case errors.Is(err, ErrNotFound):
			httpapi.Abort(c, http.StatusNotFound, httpapi.KindNotFound, "user not found")
		case errors.Is(err, ErrInvalidCredentials):
			httpapi.Abort(c, http.StatusUnauthorized, httpapi.KindValidation, "invalid password")
		case errors.Is(err, session.ErrUnavailable):
			httpapi.Abort(c, http.StatusServiceUnavailable, httpapi.KindStoreUnavailable, "login temporarily unavailable")
		default:
			httpapi.AbortInternal(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": sub})
}

// Logout handles POST /api/auth/logout (protected).
func (h Handlers) Logout(c *gin.Context) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil {
		httpapi.Abort(c, http.StatusUnauthorized, httpapi.KindNoCredential, "authentication required")
		return
	}

	if err := h.Users.Logout(c.Request.Context(), uid); err != nil {
		httpapi.Abort(c, http.StatusServiceUnavailable, httpapi.KindStoreUnavailable, "logout temporarily unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// Me handles GET /api/me (protected).
func (h Handlers) Me(c *gin.Context) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil {
		httpapi.Abort(c, http.StatusUnauthorized, httpapi.KindNoCredential, "authentication required")
		return
	}

	sub, err := h.Users.Subject(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpapi.Abort(c, http.StatusUnauthorized, httpapi.KindSubjectNotFound, "unknown subject")
			return
		}
		httpapi.AbortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// ListUsers handles GET /api/users (admin).
func (h Handlers) ListUsers(c *gin.Context) {
	subs, err := h.Users.List(c.Request.Context())
	if err != nil {
		httpapi.AbortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// AssignPrivilege handles PUT /api/users/:id/privilege (admin).
func (h Handlers) AssignPrivilege(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpapi.Abort(c, http.StatusBadRequest, httpapi.KindValidation, "user id must be an integer")
		return
	}

	var req assignPrivilegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Abort(c, http.StatusBadRequest, httpapi.KindValidation, "invalid json")
		return
	}

	if err := h.Users.AssignPrivilege(c.Request.Context(), id, req.PrivilegeID); err != nil {
		switch {
		case errors.Is(err, ErrInvalidArgument):
			httpapi.Abort(c, http.StatusBadRequest, httpapi.KindValidation, "privilege_id is required")
		case errors.Is(err, ErrNotFound):
			httpapi.Abort(c, http.StatusNotFound, httpapi.KindNotFound, "user or privilege not found")
		case errors.Is(err, cache.ErrInvalidation):
			httpapi.Abort(c, http.StatusInternalServerError, httpapi.KindConsistencyViolation, "write could not be confirmed")
		case errors.Is(err, session.ErrUnavailable):
			httpapi.Abort(c, http.StatusServiceUnavailable, httpapi.KindStoreUnavailable, "session revocation failed")
		default:
			httpapi.AbortInternal(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "privilege updated"})
}

// DeleteUser handles DELETE /api/users/:id (admin).
func (h Handlers) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpapi.Abort(c, http.StatusBadRequest, httpapi.KindValidation, "user id must be an integer")
		return
	}

	if err := h.Users.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpapi.Abort(c, http.StatusNotFound, httpapi.KindNotFound, "user not found")
		case errors.Is(err, cache.ErrInvalidation):
			httpapi.Abort(c, http.StatusInternalServerError, httpapi.KindConsistencyViolation, "write could not be confirmed")
		case errors.Is(err, session.ErrUnavailable):
			httpapi.Abort(c, http.StatusServiceUnavailable, httpapi.KindStoreUnavailable, "session revocation failed")
		default:
			httpapi.AbortInternal(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "user deleted"})
}

// ListPrivileges handles GET /api/privileges (admin).
func (h Handlers) ListPrivileges(c *gin.Context) {
	ps, err := h.Users.Privileges(c.Request.Context())
	if err != nil {
		httpapi.AbortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}
