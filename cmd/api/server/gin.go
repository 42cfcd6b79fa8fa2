package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ginrouter "user-directory/internal/adapter/gin/router"
	grpcmiddleware "user-directory/internal/adapter/grpc/middleware"
	"user-directory/internal/config"
)

// SetupGinServer creates and configures the HTTP server for the directory
// page, the read API and the probes.
func SetupGinServer(
	cfg *config.Config,
	handlers ginrouter.Handlers,
	rateLimiter *grpcmiddleware.RateLimiter,
	l *zap.Logger,
) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := ginrouter.SetupRouter(handlers, rateLimiter, cfg.App.TrustedProxies, cfg.IsProduction(), l)
	addr := ":" + cfg.App.HTTPPort

	l.Info("HTTP server configured",
		zap.String("address", addr),
		zap.Strings("cors_allowed_origins", cfg.App.CORSAllowedOrigins),
		zap.Strings("trusted_proxies", cfg.App.TrustedProxies),
	)

	return &http.Server{
		Addr:              addr,
		Handler:           ginrouter.WithCORS(router, cfg.App.CORSAllowedOrigins),
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
