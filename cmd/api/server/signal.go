package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ShutdownSignals are the signals that start a graceful shutdown.
var ShutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// WithSignal returns a context that is canceled on the first shutdown
// signal. A second signal falls back to the default handler and kills the
// process, so a stuck drain can still be interrupted.
func WithSignal(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(ctx, ShutdownSignals...)

	go func() {
		<-ctx.Done()
		stop()
	}()

	return ctx, stop
}
