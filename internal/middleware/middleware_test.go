package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cyphera/remote-accounts/internal/constants"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/cyphera/remote-accounts/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	logger.InitLogger("test")
	gin.SetMode(gin.TestMode)
}

func TestCorrelationIDMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		requestID   string
		expectNewID bool
	}{
		{name: "generates an id when absent", expectNewID: true},
		{name: "keeps the caller id", requestID: "relay-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(middleware.CorrelationIDMiddleware())
			var fromCtx string
			router.GET("/test", func(c *gin.Context) {
				fromCtx = middleware.CorrelationIDFromContext(c.Request.Context())
				c.String(http.StatusOK, middleware.GetCorrelationID(c))
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.requestID != "" {
				req.Header.Set(constants.CorrelationIDHeader, tt.requestID)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			got := w.Header().Get(constants.CorrelationIDHeader)
			assert.NotEmpty(t, got)
			assert.Equal(t, got, w.Body.String())
			assert.Equal(t, got, fromCtx)
			if !tt.expectNewID {
				assert.Equal(t, tt.requestID, got)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	newRouter := func(rl *middleware.RateLimiter) *gin.Engine {
		router := gin.New()
		router.Use(rl.Middleware())
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
		router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}
	do := func(router *gin.Engine, path, ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Forwarded-For", ip)
		router.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("blocks requests over the burst", func(t *testing.T) {
		rl := middleware.NewRateLimiter(1, 2)
		defer rl.Stop()
		router := newRouter(rl)

		assert.Equal(t, http.StatusOK, do(router, "/test", "10.0.0.1"))
		assert.Equal(t, http.StatusOK, do(router, "/test", "10.0.0.1"))
		assert.Equal(t, http.StatusTooManyRequests, do(router, "/test", "10.0.0.1"))
	})

	t.Run("clients have separate buckets", func(t *testing.T) {
		rl := middleware.NewRateLimiter(1, 1)
		defer rl.Stop()
		router := newRouter(rl)

		assert.Equal(t, http.StatusOK, do(router, "/test", "10.0.0.2"))
		assert.Equal(t, http.StatusOK, do(router, "/test", "10.0.0.3"))
		assert.Equal(t, http.StatusTooManyRequests, do(router, "/test", "10.0.0.2"))
	})

	t.Run("health is exempt", func(t *testing.T) {
		rl := middleware.NewRateLimiter(1, 1)
		defer rl.Stop()
		router := newRouter(rl)

		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, do(router, "/health", "10.0.0.4"))
		}
	})
}

func TestCORSSplitsOrigins(t *testing.T) {
	router := gin.New()
	router.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: "https://a.example, https://b.example"}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "https://b.example")
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://b.example", w.Header().Get("Access-Control-Allow-Origin"))
}
