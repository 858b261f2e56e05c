// Package server exposes the GraphQL executor over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/slgMitch/fidelity-interview/graph"
	"github.com/slgMitch/fidelity-interview/internal/auth"
	"github.com/slgMitch/fidelity-interview/internal/logging"
	"github.com/slgMitch/fidelity-interview/internal/monitoring"
)

const (
	ServiceName = "crm-api"
	Version     = "0.1.0"

	shutdownTimeout = 30 * time.Second
)

// Config represents server configuration
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig(port string) Config {
	return Config{
		Port:         port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// Dependencies are the pieces the router is assembled from. Validator and
// Metrics may be nil.
type Dependencies struct {
	Executor  *graph.Executor
	Health    *monitoring.HealthChecker
	Metrics   *monitoring.MetricsCollector
	Validator *auth.Validator
	Logger    logging.Logger
}

// NewRouter wires the GraphQL endpoint, the playground, health and metrics.
func NewRouter(mode string, deps Dependencies) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(deps.Logger))
	router.Use(RecoveryMiddleware(deps.Logger))
	router.Use(CORSMiddleware())
	if deps.Metrics != nil {
		router.Use(deps.Metrics.MetricsMiddleware())
		router.GET("/metrics", deps.Metrics.Handler())
	}

	if deps.Health != nil {
		router.GET("/health", deps.Health.Handler())
	}

	router.GET("/graphql", gin.WrapH(playground.Handler("CRM GraphQL", "/graphql")))
	router.POST("/graphql", auth.Middleware(deps.Validator), graphqlHandler(deps.Executor))

	return router
}

// graphqlHandler answers 400 for an unreadable body. Execution errors are
// part of a 200 response.
func graphqlHandler(exec *graph.Executor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params graph.Params
		if err := c.ShouldBindJSON(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": []gin.H{{"message": fmt.Sprintf("invalid request body: %v", err)}},
			})
			return
		}
		if params.Query == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": []gin.H{{"message": "query is required"}},
			})
			return
		}

		resp := exec.Exec(c.Request.Context(), c.GetString("request_id"), params)
		c.JSON(http.StatusOK, resp)
	}
}

// Start serves router until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, cfg Config, router http.Handler, logger logging.Logger) error {
	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.Port, err)
	}
	return Serve(ctx, cfg, lis, router, logger)
}

// Serve is Start on an existing listener.
func Serve(ctx context.Context, cfg Config, lis net.Listener, router http.Handler, logger logging.Logger) error {
	srv := &http.Server{
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithFields(logging.Fields{
			"addr":    lis.Addr().String(),
			"service": ServiceName,
		}).Info("Starting HTTP server")

		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.WithField("service", ServiceName).Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		logger.WithField("service", ServiceName).Info("Server stopped")
		return nil
	})
	return g.Wait()
}
