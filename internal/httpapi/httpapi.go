// SPDX-License-Identifier: AGPL-3.0-or-later

// Package httpapi serves the receiver's operational HTTP surface: a
// health check, the Prometheus scrape endpoint, runtime profiling, and
// the live event-tail websocket. It carries none of the decode path;
// every route here is diagnostic.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/tetrarx/tetrarx/internal/config"
	"github.com/tetrarx/tetrarx/internal/httpapi/eventsocket"
	"github.com/tetrarx/tetrarx/internal/metrics"
)

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
)

// Server is the receiver's diagnostic HTTP server.
type Server struct {
	srv *http.Server
}

// New builds a Server bound to cfg. events, if non-nil, is mounted at
// /ws/events for live event tailing; a nil events disables the route.
func New(cfg config.HTTP, debug bool, events *eventsocket.Hub) *Server {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	r.Use(cors.New(corsConfig))

	if debug {
		pprof.Register(r)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	if events != nil {
		r.GET("/ws/events", gin.WrapH(events))
	}

	return &Server{
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port),
			Handler:      r,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("httpapi listen: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), readTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("httpapi shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}
