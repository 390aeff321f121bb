package agent

import (
	"context"
	"time"
)

const (
	backoffBase        = 250 * time.Millisecond
	backoffMaxExponent = 6
	backoffCap         = 60 * time.Second
	jitterStepMs       = 137
	jitterModulusMs    = 251
)

// Backoff returns the delay before retrying after a failed backend request on
// the given iteration: an exponential base clamped at 2^6 and 60s, plus a
// deterministic jitter of (iteration*137 mod 251) milliseconds.
func Backoff(iteration int) time.Duration {
	if iteration < 0 {
		iteration = 0
	}
	base := backoffBase << min(iteration, backoffMaxExponent)
	if base > backoffCap {
		base = backoffCap
	}
	jitter := time.Duration((iteration*jitterStepMs)%jitterModulusMs) * time.Millisecond
	return base + jitter
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
