package llm

import "time"

// Backoff is the retry policy the extraction client runs its attempt loop
// with: Retries additional attempts after the first, waiting
// BaseDelay * 2^attempt before each retry. Sleep is injectable so tests run
// without real delays.
type Backoff struct {
	Retries   int
	BaseDelay time.Duration
	Sleep     func(time.Duration)
}

// DefaultBackoff mirrors the production policy: 2 retries, 5s base delay.
func DefaultBackoff() Backoff {
	return Backoff{Retries: 2, BaseDelay: 5 * time.Second}
}

// Attempts is the total attempt budget (first try plus retries).
func (b Backoff) Attempts() int {
	if b.Retries < 0 {
		return 1
	}
	return b.Retries + 1
}

// Wait blocks before retry number attempt (1-based). Attempt 0 never waits.
func (b Backoff) Wait(attempt int) {
	if attempt <= 0 {
		return
	}
	d := b.BaseDelay * (1 << attempt)
	sleep := b.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(d)
}
