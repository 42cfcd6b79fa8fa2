package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	grpcmiddleware "user-directory/internal/adapter/grpc/middleware"
	"user-directory/pkg/logger"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	t.Run("generates an ID when none is sent", func(t *testing.T) {
		var seen string
		r := newEngine(RequestID())
		r.GET("/", func(c *gin.Context) {
			seen = logger.GetRequestID(c.Request.Context())
			c.Status(http.StatusOK)
		})

		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("keeps the incoming ID", func(t *testing.T) {
		var seen string
		r := newEngine(RequestID())
		r.GET("/", func(c *gin.Context) {
			seen = logger.GetRequestID(c.Request.Context())
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		w := serve(r, req)

		assert.Equal(t, "req-123", seen)
		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	})
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newEngine(RequestID(), Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	serve(r, req)
	serve(r, httptest.NewRequest(http.MethodGet, "/fail", nil))

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/ok", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, "req-1", fields["request_id"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := newEngine(Recovery(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	assert.Equal(t, "boom", logs.All()[0].ContextMap()["panic"])
}

func TestSecurity(t *testing.T) {
	tests := []struct {
		name         string
		isProduction bool
		header       string
		wantValue    string
	}{
		{"nosniff", false, "X-Content-Type-Options", "nosniff"},
		{"frame options", false, "X-Frame-Options", "DENY"},
		{"referrer policy", false, "Referrer-Policy", "strict-origin-when-cross-origin"},
		{"csp", false, "Content-Security-Policy", ContentSecurityPolicy},
		{"no store", false, "Cache-Control", "no-store"},
		{"no hsts in development", false, "Strict-Transport-Security", ""},
		{"hsts in production", true, "Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(Security(tt.isProduction))
			r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantValue, w.Header().Get(tt.header))
		})
	}
}

func newLimiter(t *testing.T, cfg grpcmiddleware.RateLimiterConfig) (*grpcmiddleware.RateLimiter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return grpcmiddleware.NewRateLimiter(client, cfg, zaptest.NewLogger(t)), mr
}

func TestRateLimiter(t *testing.T) {
	t.Run("rejects once the burst is spent", func(t *testing.T) {
		limiter, _ := newLimiter(t, grpcmiddleware.RateLimiterConfig{RequestsPerSecond: 0.001, BurstCapacity: 2, Enabled: true})
		r := newEngine(RateLimiter(limiter, zaptest.NewLogger(t)))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		for i := 0; i < 2; i++ {
			assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
		}

		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
	})

	t.Run("buckets are per path", func(t *testing.T) {
		limiter, _ := newLimiter(t, grpcmiddleware.RateLimiterConfig{RequestsPerSecond: 0.001, BurstCapacity: 1, Enabled: true})
		r := newEngine(RateLimiter(limiter, zaptest.NewLogger(t)))
		r.GET("/a", func(c *gin.Context) { c.Status(http.StatusOK) })
		r.GET("/b", func(c *gin.Context) { c.Status(http.StatusOK) })

		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/a", nil)).Code)
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/b", nil)).Code)
		assert.Equal(t, http.StatusTooManyRequests, serve(r, httptest.NewRequest(http.MethodGet, "/a", nil)).Code)
	})

	t.Run("fails open when redis is down", func(t *testing.T) {
		limiter, mr := newLimiter(t, grpcmiddleware.RateLimiterConfig{RequestsPerSecond: 0.001, BurstCapacity: 1, Enabled: true})
		mr.Close()
		r := newEngine(RateLimiter(limiter, zaptest.NewLogger(t)))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
		}
	})

	t.Run("nil limiter is a no-op", func(t *testing.T) {
		r := newEngine(RateLimiter(nil, zaptest.NewLogger(t)))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	})
}
