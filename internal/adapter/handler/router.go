package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/surendrasinghc80/chaicode-course-rag/internal/infrastructure/http/middleware"
	"github.com/surendrasinghc80/chaicode-course-rag/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg                 *config.Config
	authMiddleware      *middleware.AuthMiddleware
	authHandler         *Auth
	courseHandler       *Course
	conversationHandler *Conversation
	adminHandler        *Admin
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *Auth,
	courseHandler *Course,
	conversationHandler *Conversation,
	adminHandler *Admin,
) *Router {
	return &Router{
		cfg:                 cfg,
		authMiddleware:      authMiddleware,
		authHandler:         authHandler,
		courseHandler:       courseHandler,
		conversationHandler: conversationHandler,
		adminHandler:        adminHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/v1")

	rt.setupAuthRoutes(v1)
	rt.setupCourseRoutes(v1)
	rt.setupConversationRoutes(v1)
	rt.setupAdminRoutes(v1)
}

func (rt *Router) setupAdminRoutes(g *echo.Group) {
	adminGroup := g.Group("/admin", rt.authMiddleware.Authenticate, rt.authMiddleware.RequireAdmin)
	adminGroup.GET("/stats", rt.adminHandler.Stats)
	adminGroup.GET("/users", rt.adminHandler.ListUsers)
	adminGroup.GET("/users/:id", rt.adminHandler.GetUser)
	adminGroup.PATCH("/users/:id/access", rt.adminHandler.SetUserAccess)
	adminGroup.POST("/users/:id/reset-messages", rt.adminHandler.ResetMessages)
}

func (rt *Router) setupAuthRoutes(g *echo.Group) {
	authGroup := g.Group("/auth")
	authGroup.POST("/signup", rt.authHandler.Signup)
	authGroup.POST("/login", rt.authHandler.Login)
	authGroup.POST("/refresh", rt.authHandler.Refresh)
	authGroup.GET("/me", rt.authHandler.Me, rt.authMiddleware.Authenticate)
}

func (rt *Router) setupCourseRoutes(g *echo.Group) {
	courseGroup := g.Group("/courses", rt.authMiddleware.Authenticate)

	courseGroup.GET("", rt.courseHandler.List)
	courseGroup.GET("/mine", rt.courseHandler.MyCourses)
	courseGroup.GET("/:id", rt.courseHandler.Get)

	// Admin-only course management
	courseGroup.POST("", rt.courseHandler.Create, rt.authMiddleware.RequireAdmin)
	courseGroup.PATCH("/:id", rt.courseHandler.Update, rt.authMiddleware.RequireAdmin)
	courseGroup.DELETE("/:id", rt.courseHandler.Delete, rt.authMiddleware.RequireAdmin)
	courseGroup.POST("/:id/captions", rt.courseHandler.UploadCaptions, rt.authMiddleware.RequireAdmin)
	courseGroup.POST("/:id/reindex", rt.courseHandler.Reindex, rt.authMiddleware.RequireAdmin)
	courseGroup.POST("/access", rt.courseHandler.GrantAccess, rt.authMiddleware.RequireAdmin)
	courseGroup.DELETE("/access", rt.courseHandler.RevokeAccess, rt.authMiddleware.RequireAdmin)
	courseGroup.GET("/index/stats", rt.courseHandler.IndexStats, rt.authMiddleware.RequireAdmin)
}

func (rt *Router) setupConversationRoutes(g *echo.Group) {
	g.POST("/ask", rt.conversationHandler.Ask,
		rt.authMiddleware.Authenticate,
		rt.authMiddleware.MessageLimit(rt.cfg.RAG.MessageLimit),
	)

	conversationGroup := g.Group("/conversations", rt.authMiddleware.Authenticate)
	conversationGroup.POST("", rt.conversationHandler.Create)
	conversationGroup.GET("", rt.conversationHandler.List)
	conversationGroup.GET("/:id", rt.conversationHandler.Get)
	conversationGroup.PATCH("/:id", rt.conversationHandler.Rename)
	conversationGroup.DELETE("/:id", rt.conversationHandler.Delete)

	archiveGroup := g.Group("/archives", rt.authMiddleware.Authenticate)
	archiveGroup.POST("", rt.conversationHandler.Archive)
	archiveGroup.GET("", rt.conversationHandler.ListArchives)
	archiveGroup.GET("/:id", rt.conversationHandler.GetArchive)
	archiveGroup.POST("/:id/restore", rt.conversationHandler.RestoreArchive)
	archiveGroup.DELETE("/:id", rt.conversationHandler.DeleteArchive)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().UTC().Format(time.RFC3339),
		"environment": rt.cfg.Server.Environment,
	})
}
