package invoke

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vinayprograms/callguard/backoff"
	"github.com/vinayprograms/callguard/classify"
	"github.com/vinayprograms/callguard/logging"
	"github.com/vinayprograms/callguard/ratelimit"
	"github.com/vinayprograms/callguard/telemetry"
)

// Operation begins producing zero or more results, reporting each through
// yield, then either completes (nil) or fails. A yield error means the
// consumer is gone; the operation should stop and return it unchanged.
type Operation[T any] func(ctx context.Context, yield func(T) error) error

// ExhaustedError is the terminal error after retries ran out. It wraps the
// last classified failure.
type ExhaustedError struct {
	// Attempts is the total number of attempts made, including the first.
	Attempts int

	// Last is the descriptor of the final failure.
	Last *classify.Descriptor
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Last)
}

// Unwrap returns the last failure descriptor.
func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Invoker composes admission control, failure classification and backoff
// around streaming operations. One Invoker is shared by all callers that
// draw on the same provider quota; each invocation runs its own state
// machine against the shared limiter.
type Invoker struct {
	cfg       Config
	limiter   *ratelimit.SlidingWindow
	chain     classify.Chain
	policy    backoff.Policy
	observers []Observer
	log       *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error // for testing
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithLogger sets the logger. Defaults to logging.Default().
func WithLogger(log *slog.Logger) Option {
	return func(inv *Invoker) {
		inv.log = log
	}
}

// WithObserver registers an observer for invocation lifecycle events.
func WithObserver(o Observer) Option {
	return func(inv *Invoker) {
		inv.observers = append(inv.observers, o)
	}
}

// WithChain replaces the default classifier chain.
func WithChain(c classify.Chain) Option {
	return func(inv *Invoker) {
		inv.chain = c
	}
}

// WithClassifier prepends an adapter to the classifier chain, so custom
// upstream shapes win over the bundled ones.
func WithClassifier(c classify.Classifier) Option {
	return func(inv *Invoker) {
		inv.chain = append(classify.Chain{c}, inv.chain...)
	}
}

// New creates an Invoker. The config is validated after defaults are
// applied; MaxCalls and Window must be set.
func New(cfg Config, opts ...Option) (*Invoker, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	limiter, err := ratelimit.New(cfg.MaxCalls, cfg.Window)
	if err != nil {
		return nil, err
	}

	inv := &Invoker{
		cfg:     cfg,
		limiter: limiter,
		chain:   classify.DefaultChain(),
		policy:  backoff.NewPolicy(cfg.backoffConfig()),
		sleep:   sleepCtx,
	}
	for _, opt := range opts {
		opt(inv)
	}
	if inv.log == nil {
		inv.log = logging.Default()
	}
	inv.log = inv.log.With("component", "invoker")
	return inv, nil
}

// Limiter exposes the shared admission controller, e.g. for introspection
// or for gating calls made outside the invoker against the same quota.
func (inv *Invoker) Limiter() *ratelimit.SlidingWindow {
	return inv.limiter
}

// Invoke runs op under admission control with classified retries and
// returns its result stream. The state machine suspends at two points only,
// admission wait and backoff wait, and both honor ctx cancellation.
//
// Retries happen only while nothing has been forwarded yet. Once a partial
// result reached the caller, a later failure surfaces immediately: a replay
// could silently duplicate or reorder results the caller already observed.
func Invoke[T any](ctx context.Context, inv *Invoker, op Operation[T]) *Stream[T] {
	s := newStream[T]()
	go func() {
		s.finish(run(ctx, inv, op, s))
	}()
	return s
}

// run drives one invocation to its terminal state, reporting results
// through s. The returned error becomes the stream's terminal error.
func run[T any](ctx context.Context, inv *Invoker, op Operation[T], s *Stream[T]) error {
	invocation := uuid.NewString()
	log := inv.log.With("invocation", invocation)
	tracer := telemetry.GetTracer()

	ctx, span := tracer.StartInvocationSpan(ctx, invocation)
	delivered := 0
	var terminal error
	var kind classify.Kind
	attempt := 0

	defer func() {
		tracer.EndInvocationSpan(span, telemetry.InvocationSpanOptions{
			Invocation: invocation,
			Attempts:   attempt + 1,
			Kind:       kind.String(),
			Results:    delivered,
		}, terminal)
	}()

	for ; ; attempt++ {
		// Admitting: a retry consumes a fresh quota slot.
		if err := inv.limiter.Acquire(ctx); err != nil {
			terminal = err
			inv.notifyOutcome(Outcome{Invocation: invocation, Attempts: attempt, Err: terminal, Results: delivered})
			return terminal
		}
		call := Call{Invocation: invocation, Attempt: attempt}
		tracer.AddAdmissionEvent(span, attempt)
		inv.notifyBefore(call)

		// Running: forward each result the moment it is produced.
		err := op(ctx, func(v T) error {
			if err := s.emit(ctx, v); err != nil {
				return err
			}
			delivered++
			return nil
		})
		if err == nil {
			if attempt > 0 {
				log.Info("call succeeded after retries", "attempts", attempt+1)
			}
			inv.notifyOutcome(Outcome{Invocation: invocation, Attempts: attempt + 1, Results: delivered})
			return nil
		}
		if ctx.Err() != nil {
			terminal = ctx.Err()
			inv.notifyOutcome(Outcome{Invocation: invocation, Attempts: attempt + 1, Err: terminal, Results: delivered})
			return terminal
		}

		// Classifying.
		d := inv.chain.Classify(err)
		kind = d.Kind

		if delivered > 0 {
			log.Error("failure after partial delivery, not retrying",
				"kind", d.Kind, "results", delivered, "error", d.RawMessage)
			terminal = d
			inv.notifyOutcome(Outcome{Invocation: invocation, Attempts: attempt + 1, Kind: d.Kind, Err: d, Results: delivered})
			return terminal
		}
		if d.Kind == classify.KindFatal {
			log.Error("fatal failure", "status", d.StatusCode, "error", d.RawMessage)
			terminal = d
			inv.notifyOutcome(Outcome{Invocation: invocation, Attempts: attempt + 1, Kind: d.Kind, Err: d})
			return terminal
		}
		if attempt >= inv.cfg.MaxRetries {
			log.Error("retries exhausted",
				"attempts", attempt+1, "kind", d.Kind, "error", d.RawMessage)
			terminal = &ExhaustedError{Attempts: attempt + 1, Last: d}
			inv.notifyOutcome(Outcome{Invocation: invocation, Attempts: attempt + 1, Kind: d.Kind, Err: terminal})
			return terminal
		}

		// BackingOff.
		delay := inv.policy.DelayFor(d, attempt)
		if d.Kind == classify.KindRateLimitDelay {
			// Spread the server's delay across every caller on this quota.
			inv.limiter.SetNextAllowed(d.SuggestedDelay + inv.cfg.Grace)
		}
		log.Warn("retrying after failure",
			"kind", d.Kind, "attempt", attempt+1, "max_retries", inv.cfg.MaxRetries, "delay", delay)
		tracer.AddBackoffEvent(span, attempt, d.Kind.String(), delay)
		inv.notifyBackoff(call, d, delay)

		if err := inv.sleep(ctx, delay); err != nil {
			terminal = err
			inv.notifyOutcome(Outcome{Invocation: invocation, Attempts: attempt + 1, Kind: d.Kind, Err: terminal, Results: delivered})
			return terminal
		}
	}
}

func (inv *Invoker) notifyBefore(c Call) {
	for _, o := range inv.observers {
		o.BeforeCall(c)
	}
}

func (inv *Invoker) notifyBackoff(c Call, d *classify.Descriptor, delay time.Duration) {
	for _, o := range inv.observers {
		o.OnBackoff(c, d, delay)
	}
}

func (inv *Invoker) notifyOutcome(o Outcome) {
	for _, obs := range inv.observers {
		obs.AfterOutcome(o)
	}
}

// sleepCtx waits for d or until ctx ends.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
