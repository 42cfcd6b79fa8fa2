package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-checked service name of the user directory.
const ServiceName = "userdirectory.v1.UserDirectory"

// HealthChecker is a dependency that can report its availability.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthMonitor keeps the standard gRPC health service in sync with the
// availability of the directory's dependencies.
type HealthMonitor struct {
	server   *health.Server
	checks   map[string]HealthChecker
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger
}

// NewHealthMonitor creates a monitor publishing to server. Nil checkers are skipped.
func NewHealthMonitor(server *health.Server, checks map[string]HealthChecker, interval time.Duration, log *zap.Logger) *HealthMonitor {
	return &HealthMonitor{
		server:   server,
		checks:   checks,
		interval: interval,
		timeout:  5 * time.Second,
		log:      log,
	}
}

// Check pings every dependency once and publishes the aggregate status.
// It reports whether all dependencies answered.
func (m *HealthMonitor) Check(ctx context.Context) bool {
	status := healthpb.HealthCheckResponse_SERVING

	for name, checker := range m.checks {
		if checker == nil {
			continue
		}

		pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
		err := checker.Ping(pingCtx)
		cancel()

		if err != nil {
			m.log.Warn("dependency health check failed", zap.String("dependency", name), zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}

	m.server.SetServingStatus("", status)
	m.server.SetServingStatus(ServiceName, status)

	return status == healthpb.HealthCheckResponse_SERVING
}

// Run checks immediately and then every interval until ctx is done, at
// which point every service is reported NOT_SERVING.
func (m *HealthMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			m.server.Shutdown()
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
