package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/server"
	"github.com/Domenick1991/flightbooking/pkg/logger"
)

type Servers struct {
	sessionServer *server.Server
	httpServer    *http.Server
}

func NewServers(cfg *config.Config, sessions *server.Server, handler http.Handler) *Servers {
	return &Servers{
		sessionServer: sessions,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run starts the TCP session server and the HTTP API and blocks until ctx is
// cancelled or a server fails.
func (s *Servers) Run(ctx context.Context, sessionAddr string) error {
	lis, err := net.Listen("tcp", sessionAddr)
	if err != nil {
		return fmt.Errorf("listen sessions %s: %w", sessionAddr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve is Run with an already open session listener.
func (s *Servers) Serve(ctx context.Context, lis net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)

	go func() {
		logger.Info(ctx, "session server listening", "address", lis.Addr().String())
		errCh <- s.sessionServer.Serve(ctx, lis)
	}()

	go func() {
		logger.Info(ctx, "http server listening", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
			return
		}
		errCh <- nil
	}()

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return runErr
}
