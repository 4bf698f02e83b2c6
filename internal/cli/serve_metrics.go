package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"phoneclaw/internal/metrics"
)

// metricsServer exposes /metrics and /healthz while the bot runs.
type metricsServer struct {
	server *http.Server
	errCh  chan error
	logger *slog.Logger
}

func startMetricsServer(addr string, m *metrics.Metrics, logger *slog.Logger) *metricsServer {
	mux := http.NewServeMux()
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	mux.Handle("/metrics", m.Handler())

	s := &metricsServer{
		server: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		errCh:  make(chan error, 1),
		logger: logger,
	}
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errCh <- err
		}
	}()
	logger.Info("metrics listening", "addr", addr)
	return s
}

// Errors reports a listener failure.
func (s *metricsServer) Errors() <-chan error {
	return s.errCh
}

func (s *metricsServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("metrics shutdown", "err", err)
	}
}
