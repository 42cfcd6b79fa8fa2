package server

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"user-directory/internal/adapter/grpc/middleware"
	"user-directory/pkg/logger"
)

// SetupGRPC creates the gRPC server exposing the standard health service.
func SetupGRPC(healthServer *health.Server, rateLimiter *middleware.RateLimiter) *grpc.Server {
	// Create gRPC server with request ID and rate limit interceptors
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			rateLimiter.UnaryInterceptor(),
		),
	)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return grpcServer
}
