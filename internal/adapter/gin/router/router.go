package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"user-directory/internal/adapter/gin/handler"
	"user-directory/internal/adapter/gin/middleware"
	"user-directory/internal/adapter/gin/view"
	grpcmiddleware "user-directory/internal/adapter/grpc/middleware"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Directory *handler.DirectoryHandler
	Users     *handler.UserHandler
	Health    *handler.HealthHandler
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	h Handlers,
	rateLimiter *grpcmiddleware.RateLimiter,
	trustedProxies []string,
	isProduction bool,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()
	// gin believes X-Forwarded-For from any peer until told otherwise
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		log.Error("invalid trusted proxies, trusting none", zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}
	router.SetHTMLTemplate(view.MustTemplates())

	// Recovery sits inside Logger so recovered panics show up as 500s in the access log
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Security(isProduction))

	// Probes stay outside the rate limit
	router.GET("/healthz", h.Health.Liveness)
	router.GET("/readyz", h.Health.Readiness)

	limited := router.Group("", middleware.RateLimiter(rateLimiter, log))
	{
		limited.GET("/", h.Directory.ShowDirectory)
		limited.GET("/users", h.Directory.ShowDirectory)
		limited.GET("/index.php", h.Directory.ShowDirectory)

		v1 := limited.Group("/v1")
		{
			v1.GET("/users", h.Users.ListUsers)
			v1.GET("/users/:id", h.Users.GetUser)
		}
	}

	return router
}

// WithCORS wraps h with a read-only CORS policy for the given origins.
// No origins means no CORS headers at all.
func WithCORS(h http.Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		return h
	}

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})
	return c.Handler(h)
}
