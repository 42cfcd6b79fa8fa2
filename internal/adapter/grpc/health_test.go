package grpc

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakeChecker struct {
	failing atomic.Bool
	calls   atomic.Int32
}

func (f *fakeChecker) Ping(context.Context) error {
	f.calls.Add(1)
	if f.failing.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func servingStatus(t *testing.T, srv *health.Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := srv.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealthMonitor_Check(t *testing.T) {
	srv := health.NewServer()
	db := &fakeChecker{}
	monitor := NewHealthMonitor(srv, map[string]HealthChecker{"database": db, "redis": nil}, time.Minute, zaptest.NewLogger(t))

	assert.True(t, monitor.Check(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, srv, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, srv, ServiceName))

	db.failing.Store(true)

	assert.False(t, monitor.Check(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, srv, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, srv, ServiceName))

	db.failing.Store(false)

	assert.True(t, monitor.Check(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, srv, ServiceName))
}

func TestHealthMonitor_Run(t *testing.T) {
	srv := health.NewServer()
	db := &fakeChecker{}
	monitor := NewHealthMonitor(srv, map[string]HealthChecker{"database": db}, 10*time.Millisecond, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		monitor.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return db.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, srv, ServiceName))
}
