package api

import (
	"net/http"

	"github.com/brueckenwerk/cms/internal/access"
	"github.com/brueckenwerk/cms/internal/locale"
	"github.com/brueckenwerk/cms/internal/logging"
	"github.com/brueckenwerk/cms/internal/metrics"
	"github.com/brueckenwerk/cms/internal/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig holds router-level settings.
type RouterConfig struct {
	// CORSOrigin restricts browser access to one origin; empty allows all.
	CORSOrigin string
}

// NewRouter wires every route of the server.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(logging.JSONLogger())
	router.Use(gin.Recovery())
	router.Use(metrics.Middleware())

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type", "Accept-Language"},
	}
	if cfg.CORSOrigin != "" {
		corsCfg.AllowOrigins = []string{cfg.CORSOrigin}
	} else {
		corsCfg.AllowAllOrigins = true
	}
	router.Use(cors.New(corsCfg))

	// Health and readiness endpoints
	router.GET("/live", h.Live)
	router.GET("/health", h.Health)
	router.GET("/metrics", metrics.Handler())

	router.GET("/api/media/*key", h.ServeMedia)

	public := router.Group("/api/public")
	public.Use(locale.Middleware(), access.OptionalAuthMiddleware(h.tokens))
	{
		public.GET("/projects", h.PublicProjects)
		public.GET("/team", h.PublicTeam)
		public.GET("/courses", h.PublicCourses)
		public.GET("/posts", h.PublicPosts)
		public.GET("/posts/:slug", h.PublicPost)
	}

	router.POST("/api/contact", locale.Middleware(), h.Contact)
	router.POST("/api/auth/login", h.Login)

	admin := router.Group("/api/admin")
	admin.Use(access.AuthMiddleware(h.tokens))
	{
		writeContent := access.RequirePermission(access.ContentWrite)
		newCollection[models.Project](h, h.docs.Projects).register(admin, "/projects", writeContent)
		newCollection[models.TeamMember](h, h.docs.TeamMembers).register(admin, "/team", writeContent)
		newCollection[models.Course](h, h.docs.Courses).register(admin, "/courses", writeContent)
		newCollection[models.BlogPost](h, h.docs.BlogPosts).register(admin, "/posts", writeContent)

		admin.GET("/media", h.ListMedia)
		admin.GET("/media/usage", h.MediaUsage)
		admin.POST("/media", access.RequirePermission(access.MediaWrite), h.UploadMedia)
		admin.PUT("/media/noindex", access.RequirePermission(access.MediaWrite), h.SetMediaNoIndex)
		admin.DELETE("/media", access.RequirePermission(access.MediaDelete), h.DeleteMedia)

		users := admin.Group("/users", access.RequirePermission(access.UsersManage))
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.DELETE("/:id", h.DeleteUser)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return router
}
