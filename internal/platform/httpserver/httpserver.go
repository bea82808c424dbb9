package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"edgelink.local/internal/platform/config"
)

// New builds the public server from cfg.
func New(cfg config.Config, handler http.Handler) *http.Server {
	return build(cfg.Addr, cfg, handler)
}

// NewAdmin builds the metrics/readiness server; it should bind to loopback or a private network.
func NewAdmin(cfg config.Config, handler http.Handler) *http.Server {
	return build(cfg.AdminAddr, cfg, handler)
}

func build(addr string, cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Run serves until stopCtx is done, then shuts down within shutdownTimeout.
// A clean shutdown returns nil.
func Run(stopCtx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-stopCtx.Done():
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}
	return nil
}
