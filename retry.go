package gecho

import (
	"time"
)

type (
	// Retry decides how long the accept loop sleeps after its n-th
	// consecutive accept error.
	Retry interface {
		Backoff(uint64) time.Duration
	}

	// ExponentialRetry doubles InitialDelay on every consecutive failure
	// up to MaxDelay. No jitter. A zero InitialDelay disables the backoff.
	ExponentialRetry struct {
		InitialDelay time.Duration
		MaxDelay     time.Duration
	}
)

var (
	// DefaultRetry backs off the same way net/http.Server does.
	DefaultRetry Retry = ExponentialRetry{
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     1 * time.Second,
	}
)

// Backoff returns the delay before the next Accept. A non-positive
// MaxDelay caps at one second.
func (er ExponentialRetry) Backoff(retry uint64) time.Duration {
	d := er.InitialDelay
	if d <= 0 {
		return 0
	}
	limit := er.MaxDelay
	if limit <= 0 {
		limit = time.Second
	}
	for i := uint64(0); i < retry && d < limit; i++ {
		d *= 2
	}
	if d > limit {
		d = limit
	}
	return d
}
