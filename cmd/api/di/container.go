package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	"gorm.io/gorm"

	"user-directory/cmd/api/infrastructure"
	"user-directory/internal/adapter/cache"
	"user-directory/internal/adapter/db/mysql"
	ginhandler "user-directory/internal/adapter/gin/handler"
	ginrouter "user-directory/internal/adapter/gin/router"
	grpcadapter "user-directory/internal/adapter/grpc"
	"user-directory/internal/adapter/grpc/middleware"
	"user-directory/internal/adapter/repository/cached"
	"user-directory/internal/config"
	"user-directory/internal/usecase/user"
	redisclient "user-directory/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	DB            *gorm.DB
	RedisClient   *redisclient.Client
	UserUC        user.Usecase
	RateLimiter   *middleware.RateLimiter
	Handlers      ginrouter.Handlers
	HealthServer  *health.Server
	HealthMonitor *grpcadapter.HealthMonitor
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	dbRepo := mysql.NewUserRepoMySQL(db, l)

	// Dependencies probed by /readyz and the gRPC health monitor
	checks := map[string]ginhandler.HealthChecker{"database": dbRepo}
	monitored := map[string]grpcadapter.HealthChecker{"database": dbRepo}

	var userCache cache.UserCache
	var rateLimiter *middleware.RateLimiter
	if rdb != nil {
		checks["redis"] = rdb
		monitored["redis"] = rdb

		if cfg.Redis.CacheTTL > 0 {
			userCache = cache.NewRedisUserCache(rdb.Client, time.Duration(cfg.Redis.CacheTTL)*time.Second, l)
		}

		rateLimiter = middleware.NewRateLimiter(
			rdb.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
				Enabled:           cfg.RateLimit.Enabled,
				TrustedProxies:    cfg.App.TrustedProxies,
			},
			l,
		)
	}

	repo := cached.NewUserRepository(dbRepo, userCache, l)
	userUC := user.New(repo, l, cfg.DB.QueryTimeout())

	healthServer := health.NewServer()
	monitor := grpcadapter.NewHealthMonitor(
		healthServer,
		monitored,
		time.Duration(cfg.App.HealthCheckIntervalSeconds)*time.Second,
		l,
	)

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		UserUC:      userUC,
		RateLimiter: rateLimiter,
		Handlers: ginrouter.Handlers{
			Directory: ginhandler.NewDirectoryHandler(userUC, l),
			Users:     ginhandler.NewUserHandler(userUC, l),
			Health:    ginhandler.NewHealthHandler(checks, l),
		},
		HealthServer:  healthServer,
		HealthMonitor: monitor,
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
