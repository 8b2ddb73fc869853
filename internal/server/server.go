package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DefaultShutdownTimeout bounds how long in-flight requests may take to
// finish once shutdown begins.
const DefaultShutdownTimeout = 5 * time.Second

// NewRouter routes every method and path to h.
func NewRouter(h http.Handler) chi.Router {
	router := chi.NewRouter()
	router.Handle("/*", h)
	router.NotFound(h.ServeHTTP)
	router.MethodNotAllowed(h.ServeHTTP)
	return router
}

// Server serves the stub endpoint on a pre-bound listener.
type Server struct {
	http            *http.Server
	logger          *zap.Logger
	shutdownTimeout time.Duration
}

// New creates a Server for handler. A zero shutdownTimeout selects
// DefaultShutdownTimeout.
func New(handler http.Handler, shutdownTimeout time.Duration, logger *zap.Logger) *Server {
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		http: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          zap.NewStdLog(logger),
		},
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully: the listener is closed and in-flight requests are allowed to
// complete within the shutdown timeout. Serve returns nil after a clean
// shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	s.logger.Info("Listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server", zap.Duration("timeout", s.shutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		_ = s.http.Close()
		<-errCh
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	<-errCh
	return nil
}
