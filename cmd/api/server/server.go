package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	grpcadapter "user-directory/internal/adapter/grpc"
	"user-directory/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config  *config.Config
	Logger  *zap.Logger
	GRPC    *grpc.Server
	HTTP    *http.Server
	Monitor *grpcadapter.HealthMonitor
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, httpServer *http.Server, grpcServer *grpc.Server, monitor *grpcadapter.HealthMonitor) *Server {
	return &Server{
		Config:  cfg,
		Logger:  l,
		GRPC:    grpcServer,
		HTTP:    httpServer,
		Monitor: monitor,
	}
}

// Start listens on the configured ports and serves until ctx is done and
// Shutdown has been called, or until a server fails.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}

	grpcLis, err := lc.Listen(ctx, "tcp", s.grpcAddress())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.grpcAddress(), err)
	}

	httpLis, err := lc.Listen(ctx, "tcp", s.httpAddress())
	if err != nil {
		_ = grpcLis.Close()
		return fmt.Errorf("failed to listen on %s: %w", s.httpAddress(), err)
	}

	return s.Serve(ctx, grpcLis, httpLis)
}

// Serve runs the gRPC server, the HTTP server and the health monitor on
// the given listeners. The first server failure stops the other server and
// is returned once everything has exited.
func (s *Server) Serve(ctx context.Context, grpcLis, httpLis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	// Neither server watches gctx, so a failing one stops its peer directly
	g.Go(func() error {
		s.Logger.Info("gRPC server running", zap.String("address", grpcLis.Addr().String()))
		if err := s.GRPC.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			s.Logger.Error("gRPC server failed, stopping HTTP server", zap.Error(err))
			_ = s.HTTP.Close()
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.Logger.Info("HTTP server running", zap.String("address", httpLis.Addr().String()))
		if err := s.HTTP.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("HTTP server failed, stopping gRPC server", zap.Error(err))
			s.GRPC.Stop()
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	if s.Monitor != nil {
		g.Go(func() error {
			s.Monitor.Run(gctx)
			return nil
		})
	}

	return g.Wait()
}

// Shutdown drains both servers. gRPC is stopped hard if ctx expires first.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.HTTP != nil {
		s.Logger.Info("shutting down HTTP server...")
		if err := s.HTTP.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
		}
	}

	if s.GRPC != nil {
		s.Logger.Info("shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			s.GRPC.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-ctx.Done():
			s.GRPC.Stop()
			errs = append(errs, fmt.Errorf("gRPC shutdown: %w", ctx.Err()))
		}
	}

	return errors.Join(errs...)
}

// grpcAddress returns the gRPC server address
func (s *Server) grpcAddress() string {
	return ":" + s.Config.App.GRPCPort
}

// httpAddress returns the HTTP server address
func (s *Server) httpAddress() string {
	return ":" + s.Config.App.HTTPPort
}
