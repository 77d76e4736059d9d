package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/specialistvlad/covergrid/internal/ctxlog"
)

const shutdownTimeout = 5 * time.Second

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// startServer binds the listen address and serves in the background. Bind
// errors are returned synchronously; serve errors arrive on the channel.
func (a *App) startServer() (net.Addr, <-chan error, error) {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Configuring HTTP server.")

	ln, err := net.Listen("tcp", a.config.Server.Listen)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen on %s: %w", a.config.Server.Listen, err)
	}

	a.httpServer = &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return a.ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🖼️ Cover art grid server starting", "address", ln.Addr().String())
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed unexpectedly", "error", err)
			errCh <- err
		}
		close(errCh)
	}()

	return ln.Addr(), errCh, nil
}

func (a *App) closeServer() error {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Closing HTTP server...")

	if a.httpServer == nil {
		logger.Debug("HTTP server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(a.ctx, shutdownTimeout)
	defer cancel()

	logger.Info("🖼️ Shutting down HTTP server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
		return err
	}

	logger.Debug("HTTP server shut down gracefully.")
	return nil
}
