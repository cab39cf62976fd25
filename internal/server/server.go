// Package server wires the HTTP API of a router node.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cyphera/remote-accounts/internal/auth"
	"github.com/cyphera/remote-accounts/internal/handlers"
	"github.com/cyphera/remote-accounts/internal/interfaces"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/cyphera/remote-accounts/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Services are the backends behind the routes.
type Services struct {
	Messages interfaces.MessageService
	Accounts interfaces.AccountService
	Routers  interfaces.RouterAdminService
	Results  interfaces.ResultService
	Health   *handlers.HealthHandler
}

// Options tune the middleware stack.
type Options struct {
	AdminAPIKeyHash string
	CORS            middleware.CORSConfig
	// RateLimiter is optional.
	RateLimiter *middleware.RateLimiter
}

// NewRouter builds the gin engine with every route of the node.
func NewRouter(svc Services, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationIDMiddleware())
	router.Use(middleware.RequestLoggingMiddleware())
	router.Use(middleware.CORS(opts.CORS))
	if opts.RateLimiter != nil {
		router.Use(opts.RateLimiter.Middleware())
	}

	router.GET("/health", svc.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	messageHandler := handlers.NewMessageHandler(svc.Messages)
	resultHandler := handlers.NewResultHandler(svc.Results)
	accountHandler := handlers.NewAccountHandler(svc.Accounts)
	routerHandler := handlers.NewRouterHandler(svc.Routers)

	v1 := router.Group("/api/v1")
	{
		// Relay endpoint of the bridge
		v1.POST("/messages", messageHandler.Relay)

		results := v1.Group("/results")
		{
			results.GET("", resultHandler.ListResults)
			results.GET("/:id", resultHandler.GetResult)
		}

		accounts := v1.Group("/accounts")
		{
			accounts.GET("/address", accountHandler.GetAddress)
			accounts.GET("/:address", accountHandler.GetAccount)
		}

		routers := v1.Group("/routers")
		{
			routers.GET("", routerHandler.ListRouters)
			routers.GET("/:address/successor", routerHandler.GetSuccessor)
		}

		admin := v1.Group("/admin")
		admin.Use(auth.EnsureAdminAPIKey(opts.AdminAPIKeyHash))
		{
			admin.PUT("/successor", routerHandler.SetSuccessor)
		}
	}
	return router
}

// Server runs an http.Server until its context ends.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
}

func New(addr string, handler http.Handler, shutdownTimeout time.Duration) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
