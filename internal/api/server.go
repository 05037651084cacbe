// Package api exposes the report lifecycle over HTTP.
package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/hangar/internal/pirep"
)

// StartOpts holds configuration for the API server.
type StartOpts struct {
	Service *pirep.Service
	Port    int
	Logger  *slog.Logger
	Out     io.Writer
}

// Server carries the dependencies shared by the handlers.
type Server struct {
	svc *pirep.Service
	log *slog.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc *pirep.Service, log *slog.Logger) *gin.Engine {
	if log == nil {
		log = slog.Default()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	s := &Server{svc: svc, log: log}
	s.registerRoutes(router)
	return router
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Service == nil {
		return fmt.Errorf("api: service is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           NewRouter(opts.Service, opts.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "API listening on http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

// requestLogger logs one line per request at debug level, and server errors
// at error level.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"elapsed", time.Since(start),
		}
		if status >= http.StatusInternalServerError {
			log.Error("request failed", attrs...)
			return
		}
		log.Debug("request", attrs...)
	}
}
