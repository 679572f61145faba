package courses

import (
	"errors"
	"net/http"
	"strconv"

	"edunova-platform/internal/auth"
	"edunova-platform/internal/cache"
	"edunova-platform/internal/httpapi"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Courses *Service
}

type courseRequest struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
}

// List handles GET /api/courses (any authenticated subject).
func (h Handlers) List(c *gin.Context) {
	cs, err := h.Courses.List(c.Request.Context())
	if err != nil {
		httpapi.AbortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, cs)
}

// Get handles GET /api/courses/:id.
func (h Handlers) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpapi.Abort(c, http.StatusBadRequest, httpapi.KindValidation, "course id must be an integer")
		return
	}

	course, err := h.Courses.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpapi.Abort(c, http.StatusNotFound, httpapi.KindNotFound, "course not found")
			return
		}
		httpapi.AbortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// Create handles POST /api/courses (teacher or admin, create_courses).
func (h Handlers) Create(c *gin.Context) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil {
		httpapi.Abort(c, http.StatusUnauthorized, httpapi.KindNoCredential, "authentication required")
		return
	}

	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Abort(c, http.StatusBadRequest, httpapi.KindValidation, "invalid json")
		return
	}

	course, err := h.Courses.Create(c.Request.Context(), Course{
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		TeacherID:   uid,
	})
	if err != nil {
		respondWriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

// Update handles PUT /api/courses/:id (teacher or admin, update_courses).
func (h Handlers) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpapi.Abort(c, http.StatusBadRequest, httpapi.KindValidation, "course id must be an integer")
		return
	}

	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Abort(c, http.StatusBadRequest, httpapi.KindValidation, "invalid json")
		return
	}

	course, err := h.Courses.Update(c.Request.Context(), Course{
		ID:          id,
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Description: req.Description,
		PriceCents:  req.PriceCents,
	})
	if err != nil {
		respondWriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// Delete handles DELETE /api/courses/:id (admin).
func (h Handlers) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpapi.Abort(c, http.StatusBadRequest, httpapi.KindValidation, "course id must be an integer")
		return
	}

	if err := h.Courses.Delete(c.Request.Context(), id); err != nil {
		respondWriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "course deleted"})
}

func respondWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		httpapi.Abort(c, http.StatusBadRequest, httpapi.KindValidation, "title, subtitle and description are required; price must not be negative")
	case errors.Is(err, ErrNotFound):
		httpapi.Abort(c, http.StatusNotFound, httpapi.KindNotFound, "course not found")
	case errors.Is(err, cache.ErrInvalidation):
		httpapi.Abort(c, http.StatusInternalServerError, httpapi.KindConsistencyViolation, "write could not be confirmed")
	default:
		httpapi.AbortInternal(c, err)
	}
}
