package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/memerator/internal/api/handler"
	"github.com/timmy/memerator/internal/api/middleware"
	"github.com/timmy/memerator/internal/config"
	"github.com/timmy/memerator/internal/logger"
	"github.com/timmy/memerator/internal/service"
)

// Services bundles the operations exposed over HTTP.
type Services struct {
	Auth      *service.AuthService
	Memes     *service.MemeService
	Templates *service.TemplateService
	DB        handler.Pinger // optional, used by /health
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(svcs Services, cfg *config.Config, log *logger.Logger) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))
	r.Use(middleware.OptionalAuth(svcs.Auth))

	healthHandler := handler.NewHealthHandler(svcs.DB)
	pageHandler := handler.NewPageHandler()
	authHandler := handler.NewAuthHandler(svcs.Auth, handler.CookieConfig{Secure: cfg.Auth.CookieSecure})
	memeHandler := handler.NewMemeHandler(svcs.Memes)
	adminHandler := handler.NewAdminHandler(svcs.Templates, svcs.Auth)

	r.GET("/health", healthHandler.Health)
	r.GET("/", pageHandler.Index)

	v1 := r.Group("/api/v1")
	{
		// Auth
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)
		v1.POST("/auth/logout", authHandler.Logout)
		v1.GET("/me", authHandler.Me)

		// Memes
		v1.GET("/memes", memeHandler.ListMemes)
		v1.POST("/memes", memeHandler.CreateMeme)
		v1.GET("/memes/:id", memeHandler.GetMeme)
		v1.PUT("/memes/:id", memeHandler.EditMeme)
		v1.GET("/memes/:id/image", memeHandler.GetMemeImage)

		// Admin
		admin := v1.Group("/admin")
		admin.POST("/templates/seed", adminHandler.SeedTemplates)
		admin.GET("/templates/status", adminHandler.GetSeedStatus)
		admin.PUT("/users/:id/credits", adminHandler.SetCredits)
	}

	return r
}
