package browser

import (
	"context"
	"errors"
	"time"
)

// ErrUnstable is returned by WaitStable when the metric kept changing until the timeout.
var ErrUnstable = errors.New("page did not stabilize before timeout")

// minInterval is the shortest poll interval WaitStable uses.
const minInterval = 10 * time.Millisecond

// Metric reads a monitored page property, such as the size of the rendered body.
type Metric func(ctx context.Context) (int, error)

// WaitStable polls metric every interval until it reports the same value for
// polls consecutive reads. It gives up with ErrUnstable after timeout and
// returns the parent context's error if that is cancelled first. Intervals
// below minInterval are raised to it.
func WaitStable(ctx context.Context, metric Metric, polls int, interval, timeout time.Duration) error {
	if polls < 1 {
		polls = 1
	}
	if interval < minInterval {
		interval = minInterval
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last, streak := 0, 0
	for {
		v, err := metric(waitCtx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if waitCtx.Err() != nil {
				return ErrUnstable
			}
			return err
		}

		if streak > 0 && v == last {
			streak++
		} else {
			last, streak = v, 1
		}
		if streak >= polls {
			return nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return ErrUnstable
		case <-ticker.C:
		}
	}
}
