// Package shutdown provides a context that is cancelled on SIGINT or SIGTERM.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-sod/b2t/internal/logging"
)

// New returns a context that is cancelled when the process receives an
// interrupt or termination signal, along with a function releasing the
// signal handler.
func New() (context.Context, func()) {
	logger := logging.NewLoggerFromEnv()
	ctx, cancel := context.WithCancel(logging.WithLogger(context.Background(), logger))

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-signalCh:
			logger.Infof("received signal %s, shutting down", sig)
		case <-ctx.Done():
		}
		cancel()
	}()

	return ctx, func() {
		signal.Stop(signalCh)
		cancel()
	}
}
