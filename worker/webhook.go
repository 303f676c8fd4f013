package worker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// WebhookServer runs the Slack interactivity HTTP listener as a
// supervised worker with graceful shutdown.
type WebhookServer struct {
	Addr    string
	Handler http.Handler
}

func (w *WebhookServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              w.Addr,
		Handler:           w.Handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("webhook server: listening", "addr", w.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
