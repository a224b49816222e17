package shared

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
)

// ShutdownContext returns a child of parent that is cancelled by the first of
// sigs, or by SIGINT and SIGTERM when none are given. The signal becomes the
// context's cause. Call stop when the command returns to release the
// registration.
func ShutdownContext(parent context.Context, logger *log.Logger, sigs ...os.Signal) (ctx context.Context, stop context.CancelFunc) {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ctx, cancel := context.WithCancelCause(parent)

	received := make(chan os.Signal, 1)
	signal.Notify(received, sigs...)

	go func() {
		defer signal.Stop(received)
		select {
		case sig := <-received:
			logger.Info("Received signal, shutting down gracefully", "signal", sig.String())
			cancel(fmt.Errorf("received %s", sig))
		case <-ctx.Done():
		}
	}()

	return ctx, func() { cancel(context.Canceled) }
}
