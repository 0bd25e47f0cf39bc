package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/college-notes-api/internal/middleware"
	"github.com/noah-isme/college-notes-api/internal/service"
	"github.com/noah-isme/college-notes-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/college-notes-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/college-notes-api/pkg/middleware/requestid"
)

// RouterConfig carries everything the HTTP surface is assembled from.
// Files is nil when uploads live in a remote backend.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool

	Tokens  middleware.TokenValidator
	Metrics *service.MetricsService
	Logger  *zap.Logger

	Auth           *AuthHandler
	Users          *UserHandler
	Notes          *ContentHandler
	QuestionPapers *ContentHandler
	Courses        *CourseHandler
	Events         *EventHandler
	Files          *FileHandler
	Health         *HealthHandler
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))

	if cfg.Health != nil {
		r.GET("/health", cfg.Health.Health)
		r.GET("/ready", cfg.Health.Ready)
		r.GET("/metrics", cfg.Health.Prometheus)
	}
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireAuth := middleware.JWT(cfg.Tokens)
	optionalAuth := middleware.OptionalJWT(cfg.Tokens)

	api := r.Group(cfg.APIPrefix)

	if cfg.Auth != nil {
		auth := api.Group("/auth")
		auth.POST("/register", cfg.Auth.Register)
		auth.POST("/login", cfg.Auth.Login)
	}

	if cfg.Users != nil {
		users := api.Group("/users", requireAuth)
		users.GET("/me", cfg.Users.Me)
		users.PATCH("/me", cfg.Users.UpdateProfile)
		users.PATCH("/me/preferences", cfg.Users.UpdatePreferences)
		admin := users.Group("", middleware.RequireAdmin())
		admin.GET("", cfg.Users.List)
		admin.PATCH("/:id/role", cfg.Users.SetRole)
		admin.PATCH("/:id/active", cfg.Users.SetActive)
	}

	if cfg.Notes != nil {
		cfg.Notes.Register(api.Group("/notes"), requireAuth, optionalAuth)
	}
	if cfg.QuestionPapers != nil {
		cfg.QuestionPapers.Register(api.Group("/question-papers"), requireAuth, optionalAuth)
	}

	if cfg.Courses != nil {
		courses := api.Group("/courses")
		courses.GET("", cfg.Courses.List)
		courses.GET("/:id", cfg.Courses.Get)
		write := courses.Group("", requireAuth, middleware.RequireAdmin())
		write.POST("", cfg.Courses.Create)
		write.PUT("/:id", cfg.Courses.Update)
		write.DELETE("/:id", cfg.Courses.Delete)
	}

	if cfg.Events != nil {
		events := api.Group("/events")
		events.GET("", cfg.Events.List)
		events.GET("/:id", cfg.Events.Get)
		write := events.Group("", requireAuth, middleware.RequireModerator())
		write.POST("", cfg.Events.Create)
		write.PUT("/:id", cfg.Events.Update)
		write.DELETE("/:id", cfg.Events.Delete)
	}

	if cfg.Files != nil {
		api.GET("/files/*token", cfg.Files.Serve)
	}

	return r
}
