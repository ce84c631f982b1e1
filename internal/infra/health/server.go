// Package health serves the liveness endpoint and the Prometheus scrape
// target on a dedicated HTTP port, separate from the bot's long polling.
package health

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Server struct {
	srv    *http.Server
	logger *logrus.Entry
}

// NewServer builds the HTTP server. GET and HEAD on /healthz answer 200 with
// no body semantics; /metrics exposes the default Prometheus registry.
func NewServer(port int, logger *logrus.Entry) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	ok := func(c *gin.Context) { c.String(http.StatusOK, "OK") }
	r.GET("/healthz", ok)
	r.HEAD("/healthz", ok)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		},
		logger: logger,
	}
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() {
	s.logger.WithField("addr", s.srv.Addr).Info("Health server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.WithError(err).Error("Health server stopped unexpectedly")
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
