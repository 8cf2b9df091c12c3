package invoke

import (
	"time"

	"github.com/vinayprograms/callguard/classify"
)

// Call identifies one admitted attempt of an invocation.
type Call struct {
	// Invocation is the id shared by every attempt of one Invoke.
	Invocation string

	// Attempt is 0 for the first try and increments per retry.
	Attempt int
}

// Outcome describes the terminal state of an invocation.
type Outcome struct {
	Invocation string

	// Attempts is the total number of attempts made, including the first.
	Attempts int

	// Kind is the failure classification. It is empty on success and on
	// cancellations that happened before a failure was classified.
	Kind classify.Kind

	// Err is the terminal error, nil on success.
	Err error

	// Results is the number of results forwarded to the caller.
	Results int
}

// Observer receives pure side-effect notifications from the invoker.
// Implementations must not block longer than callers are willing to wait
// and cannot influence invoker state.
type Observer interface {
	// BeforeCall fires after admission, before the operation runs.
	BeforeCall(c Call)

	// OnBackoff fires when a retryable failure was classified and a
	// backoff wait is about to start.
	OnBackoff(c Call, d *classify.Descriptor, delay time.Duration)

	// AfterOutcome fires once per invocation, on the terminal state.
	AfterOutcome(o Outcome)
}

// Funcs adapts plain functions to the Observer interface. Nil fields are
// skipped.
type Funcs struct {
	BeforeCallFunc   func(c Call)
	OnBackoffFunc    func(c Call, d *classify.Descriptor, delay time.Duration)
	AfterOutcomeFunc func(o Outcome)
}

// BeforeCall implements Observer.
func (f Funcs) BeforeCall(c Call) {
	if f.BeforeCallFunc != nil {
		f.BeforeCallFunc(c)
	}
}

// OnBackoff implements Observer.
func (f Funcs) OnBackoff(c Call, d *classify.Descriptor, delay time.Duration) {
	if f.OnBackoffFunc != nil {
		f.OnBackoffFunc(c, d, delay)
	}
}

// AfterOutcome implements Observer.
func (f Funcs) AfterOutcome(o Outcome) {
	if f.AfterOutcomeFunc != nil {
		f.AfterOutcomeFunc(o)
	}
}
