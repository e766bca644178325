package simulator

import (
	"context"
	"time"
)

// Sleeper suspends the emitting task between events.
type Sleeper interface {
	// Sleep waits for d or until ctx is done, whichever comes first.
	// It returns ctx.Err() when interrupted.
	Sleep(ctx context.Context, d time.Duration) error
}

type timerSleeper struct{}

// TimerSleeper returns the default Sleeper. Its timer is always stopped
// before returning, so a cancelled request leaves nothing scheduled.
func TimerSleeper() Sleeper { return timerSleeper{} }

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
