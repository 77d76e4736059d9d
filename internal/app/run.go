package app

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Run serves until ctx is cancelled or the server fails, then shuts down
// gracefully. ready, if non-nil, receives the bound address once listening.
func (a *App) Run(ctx context.Context, ready func(net.Addr)) error {
	a.logger.Debug("App.Run method started.")

	addr, errCh, err := a.startServer()
	if err != nil {
		a.closeLookup()
		return err
	}
	if ready != nil {
		ready(addr)
	}

	var serveErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Shutdown requested.")
	case err, ok := <-errCh:
		if ok {
			serveErr = fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownErr := a.closeServer()
	a.closeLookup()

	a.logger.Debug("App.Run method finished.")
	return errors.Join(serveErr, shutdownErr)
}

func (a *App) closeLookup() {
	if a.lookupCloser == nil {
		return
	}
	if err := a.lookupCloser.Close(); err != nil {
		a.logger.Warn("Failed to close lookup datastore.", "error", err)
	}
}
