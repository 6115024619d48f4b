package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

// Server wraps the HTTP server and the in-process cron.
type Server struct {
	http *http.Server
	cron *cron.Cron
}

// New creates a server around a configured router.
func New(router *gin.Engine, addr string, c *cron.Cron) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		cron: c,
	}
}

// Start blocks serving HTTP until the listener fails or is shut down.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the cron first so no new notification pass starts, then
// drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cron != nil {
		stopCtx := s.cron.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
	}
	return s.http.Shutdown(ctx)
}
