package transfer

import (
	"fmt"

	"github.com/Wa4h1h/lockstep-tftp/pkg/types"
)

type Phase uint8

const (
	FirstAttempt Phase = iota
	Retrying
	Exhausted
)

// RetryState tells whether the datagram in flight is on its first attempt,
// being retried, or out of budget.
type RetryState struct {
	Phase   Phase
	Retries int
}

func (s RetryState) String() string {
	switch s.Phase {
	case FirstAttempt:
		return "first attempt"
	case Retrying:
		return fmt.Sprintf("retrying [%d]", s.Retries)
	default:
		return fmt.Sprintf("exhausted after %d retries", s.Retries)
	}
}

// Retry counts rejected or missing replies for the datagram in flight.
type Retry struct {
	max     int
	retries int
}

func NewRetry(maxRetries int) *Retry {
	if maxRetries < 1 {
		maxRetries = types.DefaultMaxRetries
	}

	return &Retry{max: maxRetries}
}

func (r *Retry) Max() int { return r.max }

func (r *Retry) State() RetryState {
	switch {
	case r.retries == 0:
		return RetryState{Phase: FirstAttempt}
	case r.retries >= r.max:
		return RetryState{Phase: Exhausted, Retries: r.retries}
	default:
		return RetryState{Phase: Retrying, Retries: r.retries}
	}
}

// Accept records a matching reply and resets the counter.
func (r *Retry) Accept() {
	r.retries = 0
}

// Reject records a timeout or mismatched reply. The counter never exceeds max.
func (r *Retry) Reject() RetryState {
	if r.retries < r.max {
		r.retries++
	}

	return r.State()
}
