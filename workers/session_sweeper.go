package workers

import (
	"context"
	"time"

	"mindmeld/logger"
)

// SessionSweeper is what the sweeper needs from the game registry.
type SessionSweeper interface {
	Sweep(now time.Time) int
}

// StartSessionSweeper ends expired rounds and drops idle games every
// interval until ctx is done. The returned channel closes when the loop exits.
func StartSessionSweeper(ctx context.Context, sessions SessionSweeper, interval time.Duration, log *logger.Logger) <-chan struct{} {
	if interval <= 0 {
		interval = time.Second
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if removed := sessions.Sweep(now); removed > 0 {
					log.Debug("sessions swept", "removed", removed)
				}
			}
		}
	}()
	return done
}
