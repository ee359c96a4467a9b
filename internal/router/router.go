package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/anonto42/yatube/backend/internal/handlers"
	"github.com/anonto42/yatube/backend/internal/metrics"
	"github.com/anonto42/yatube/backend/internal/middleware"
	"github.com/anonto42/yatube/backend/internal/repositories"
	"github.com/anonto42/yatube/backend/internal/storage"
	"github.com/anonto42/yatube/backend/pkg/cache"
	"github.com/anonto42/yatube/backend/pkg/config"
	"github.com/anonto42/yatube/backend/validators"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// LoginURL is where anonymous viewers are sent for protected pages.
	LoginURL = "/auth/login/"
	// CSRFField is the hidden form field carrying the CSRF token.
	CSRFField = "csrf_token"
)

// Dependencies are the shared services the routes are built from.
type Dependencies struct {
	Config  *config.Config
	DB      *gorm.DB
	Cache   cache.Store
	Media   storage.MediaStorage
	Metrics *metrics.Metrics
	Logger  *logrus.Logger
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, deps Dependencies) {
	e.Pre(eMiddleware.AddTrailingSlashWithConfig(eMiddleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper:      skipTrailingSlash,
	}))
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.RequestIDWithConfig(eMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(config.RequestLogger(deps.Logger))
	e.Use(deps.Metrics.Middleware())
	e.Use(eMiddleware.BodyLimit(deps.Config.BodyLimit))
	e.Use(eMiddleware.CSRFWithConfig(eMiddleware.CSRFConfig{
		TokenLookup:    "form:" + CSRFField,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   deps.Config.IsProduction(),
		CookieSameSite: http.SameSiteLaxMode,
	}))
	e.Use(middleware.LoadUser(deps.Config.JWTSecret, deps.Logger))
	deps.Logger.Info("Global middleware configured.")
}

func skipTrailingSlash(c echo.Context) bool {
	path := c.Request().URL.Path
	return path == "/health" || path == "/metrics" || strings.HasPrefix(path, "/media/")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) error {
	cfg := deps.Config

	renderer, err := handlers.NewTemplateRenderer(deps.Media)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	e.Renderer = renderer
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.NewErrorHandler(deps.Logger)

	// Health check and metrics - always accessible
	e.GET("/health", handlers.HealthCheck(deps.DB))
	e.GET("/metrics", deps.Metrics.Handler())
	e.Static("/media", cfg.MediaRoot)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.DB)
	groupRepo := repositories.NewPostgresGroupRepository(deps.DB)
	postRepo := repositories.NewPostgresPostRepository(deps.DB)
	commentRepo := repositories.NewPostgresCommentRepository(deps.DB)
	followRepo := repositories.NewPostgresFollowRepository(deps.DB)

	flashes := handlers.NewFlashStore(cfg.SessionKey, cfg.IsProduction(), deps.Logger)
	view := handlers.NewView(flashes, deps.Logger)
	requireLogin := middleware.RequireLogin(LoginURL)

	authHandler := handlers.NewAuthHandler(view, userRepo, cfg.JWTSecret, cfg.IsProduction())
	authHandler.RegisterAuthRoutes(e.Group("/auth"))
	deps.Logger.Info("Auth routes configured.")

	site := e.Group("")

	postHandler := handlers.NewPostHandler(view, postRepo, groupRepo, commentRepo, deps.Media, deps.Metrics, cfg.PostsPerPage)
	postHandler.RegisterPostRoutes(site, requireLogin, indexCache(deps))
	deps.Logger.Info("Post routes configured.")

	commentHandler := handlers.NewCommentHandler(view, commentRepo, postRepo, deps.Metrics)
	commentHandler.RegisterCommentRoutes(site, requireLogin)

	userHandler := handlers.NewUserHandler(view, userRepo, postRepo, followRepo, cfg.PostsPerPage)
	userHandler.RegisterUserRoutes(site)

	followHandler := handlers.NewFollowHandler(view, followRepo, userRepo, postRepo, deps.Metrics, cfg.PostsPerPage)
	followHandler.RegisterFollowRoutes(site, requireLogin)
	deps.Logger.Info("Profile and follow routes configured.")

	deps.Logger.Info("All routes configured.")
	return nil
}

// indexCache keeps the rendered index page for the configured window. The
// key includes the viewer because the header differs per user.
func indexCache(deps Dependencies) echo.MiddlewareFunc {
	return cache.PageWithConfig(cache.PageConfig{
		Store: deps.Cache,
		TTL:   deps.Config.CacheTTL,
		KeyFunc: func(c echo.Context) string {
			return fmt.Sprintf("index:%d:%s", middleware.CurrentUserID(c), c.Request().URL.RequestURI())
		},
		OnHit:  func(echo.Context) { deps.Metrics.PageCache.WithLabelValues("hit").Inc() },
		OnMiss: func(echo.Context) { deps.Metrics.PageCache.WithLabelValues("miss").Inc() },
		OnError: func(c echo.Context, err error) {
			deps.Logger.WithError(err).Warn("Page cache unavailable")
		},
	})
}
