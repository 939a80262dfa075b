package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/udisondev/toycar/internal/modal"
)

// serveUI exposes the modal hub at /ws/modal until ctx is canceled.
func serveUI(ctx context.Context, addr string, hub *modal.Hub) error {
	mux := http.NewServeMux()
	mux.Handle("GET /ws/modal", hub.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("modal UI listening", "addr", addr, "path", "/ws/modal")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("modal UI server: %w", err)
	case <-ctx.Done():
	}

	// Hijacked websocket connections are not closed by Shutdown.
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down modal UI: %w", err)
	}
	return nil
}
