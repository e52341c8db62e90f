package infra

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer exposes the default prometheus registry over HTTP.
type MetricsServer struct {
	server *http.Server
}

// Start the metrics endpoint.
func (s *MetricsServer) Start(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		MaxRequestsInFlight: 5,
		Timeout:             30 * time.Second,
	}))

	s.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		slog.Info("Metrics server started", slog.String("addr", addr))
		err := s.server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics server failed", slog.String("addr", addr), slog.Any("error", err))
		}
	}()
	return nil
}

// Stop the server gracefully.
func (s *MetricsServer) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
