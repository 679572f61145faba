package policy

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"edunova-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

func identityAs(userID int64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := auth.WithIdentity(c.Request.Context(), userID, role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func TestRequireAnyRole_AdminBypasses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", identityAs(1, RoleAdmin), RequireAnyRole(RoleTeacher), func(c *gin.Context) {
		c.Status(200)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireAnyRole_StudentDeniedWith403Kind(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", identityAs(2, RoleStudent), RequireAnyRole(RoleAdmin, RoleTeacher), func(c *gin.Context) {
		c.Status(200)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.ServeHTTP(w, req)
	if w.Code != 403 {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, `"kind":"insufficient_privilege"`) {
		t.Fatalf("expected insufficient_privilege kind, got %s", body)
	}
}

func TestRequire_MissingIdentityDeniedNot500(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", RequireAnyRole(RoleTeacher), func(c *gin.Context) {
		c.Status(200)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.ServeHTTP(w, req)
	if w.Code != 403 {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestRequirePermissions_TeacherCreateCourses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/courses", identityAs(3, RoleTeacher), RequirePermissions(PermCreateCourses), func(c *gin.Context) {
		c.Status(201)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/courses", nil)
	r.ServeHTTP(w, req)
	if w.Code != 201 {
		t.Fatalf("expected 201, got %d", w.Code)
	}
}
