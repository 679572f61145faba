package main

import (
	"database/sql"
	"net/http"
	"time"

	"edunova-platform/internal/auth"
	"edunova-platform/internal/courses"
	"edunova-platform/internal/policy"
	"edunova-platform/internal/ratelimit"
	"edunova-platform/internal/session"
	"edunova-platform/internal/users"
	"edunova-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type routeDeps struct {
	db           *sql.DB
	rdb          *redis.Client
	tokens       *auth.Manager
	sessions     *session.Store
	users        *users.Service
	courses      *courses.Service
	loginLimiter *ratelimit.Limiter
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, d routeDeps) {
	uh := users.Handlers{Users: d.users}
	ch := courses.Handlers{Courses: d.courses}

	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), d.db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": err.Error()})
			return
		}
		if err := d.rdb.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public auth routes bypass the session pipeline entirely.
	pub := r.Group("/api/auth")
	pub.Use(d.loginLimiter.Middleware())
	{
		pub.POST("/register", uh.Register)
		pub.POST("/login", uh.Login)
	}

	// Every protected operation passes the ordered gate:
	// verify token -> session registry -> subject materialization -> policy.
	api := r.Group("/api")
	api.Use(auth.RequireSession(d.tokens, d.sessions, d.users.ResolveRole))
	{
		api.POST("/auth/logout", uh.Logout)
		api.GET("/me", uh.Me)

		// USER administration
		adminUsers := api.Group("/users")
		adminUsers.Use(policy.Require(policy.Requirement{
			Roles:       []string{policy.RoleAdmin},
			Permissions: []string{policy.PermManageUsers},
		}))
		{
			adminUsers.GET("", uh.ListUsers)
			adminUsers.PUT("/:id/privilege", uh.AssignPrivilege)
			adminUsers.DELETE("/:id", uh.DeleteUser)
		}

		api.GET("/privileges", policy.RequirePermissions(policy.PermManagePrivileges), uh.ListPrivileges)

		// COURSES
		cs := api.Group("/courses")
		{
			cs.GET("", ch.List)
			cs.GET("/:id", ch.Get)
			cs.POST("",
				policy.Require(policy.Requirement{
					Roles:       []string{policy.RoleAdmin, policy.RoleTeacher},
					Permissions: []string{policy.PermCreateCourses},
				}),
				ch.Create,
			)
			cs.PUT("/:id",
				policy.Require(policy.Requirement{
					Roles:       []string{policy.RoleAdmin, policy.RoleTeacher},
					Permissions: []string{policy.PermUpdateCourses},
				}),
				ch.Update,
			)
			cs.DELETE("/:id", policy.RequireAnyRole(policy.RoleAdmin), ch.Delete)
		}
	}
}
