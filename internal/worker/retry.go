package worker

import (
	"math"
	"time"
)

// RetryPolicy spaces out re-deliveries of failed sheet-sync tasks.
// Attempts back off exponentially from InitialDelay up to MaxDelay;
// once MaxRetries is exhausted the task goes to the dead-letter list.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy suits the Sheets mirror: the second attempt comes
// quickly (transient quota errors clear fast), the cap keeps a long
// outage from pushing delays past the worker's poll horizon.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    5,
		InitialDelay:  2 * time.Second,
		MaxDelay:      time.Minute,
		BackoffFactor: 2,
	}
}

// withDefaults fills unset fields from DefaultRetryPolicy.
func (r RetryPolicy) withDefaults() RetryPolicy {
	def := DefaultRetryPolicy()
	if r.MaxRetries <= 0 {
		r.MaxRetries = def.MaxRetries
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = def.InitialDelay
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = def.MaxDelay
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = def.BackoffFactor
	}
	return r
}

// NextDelay returns the wait before the given attempt (1-based),
// clamped to MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	r = r.withDefaults()
	if attempt < 1 {
		attempt = 1
	}

	delay := time.Duration(float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1)))
	if delay <= 0 || delay > r.MaxDelay {
		delay = r.MaxDelay
	}
	return delay
}
