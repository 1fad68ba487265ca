package probe

import (
	"context"
	"fmt"
	"time"
)

// RetryProber repeats failed probes. Ambiguous successes are not retried.
type RetryProber struct {
	Inner    Prober
	Attempts int
	Backoff  time.Duration
}

func (r *RetryProber) Probe(ctx context.Context, target string) Result {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var last Result
	for i := 0; i < attempts; i++ {
		last = r.Inner.Probe(ctx, target)
		if last.Success || last.Kind == KindCanceled {
			return last
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return last
			case <-time.After(r.Backoff):
			}
		}
	}
	if attempts > 1 && last.Err != nil {
		last.Err = fmt.Errorf("after %d attempts: %w", attempts, last.Err)
	}
	return last
}
