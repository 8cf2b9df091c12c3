// Package invoke wraps streaming remote calls with admission control,
// failure classification, and backoff-bounded retries.
//
// An Invoker is built once per shared quota and used by any number of
// concurrent callers:
//
//	inv, err := invoke.New(invoke.Config{
//	    MaxCalls: 10,
//	    Window:   time.Minute,
//	})
//	if err != nil {
//	    return err
//	}
//
//	s := invoke.Invoke(ctx, inv, func(ctx context.Context, yield func(string) error) error {
//	    // call the remote API, yield results as they arrive
//	    return yield("chunk")
//	})
//	for r := range s.Results() {
//	    use(r)
//	}
//	if err := s.Err(); err != nil {
//	    // terminal failure
//	}
//
// Each invocation moves through Admitting, Running, Classifying and
// BackingOff states until it succeeds, fails fatally, or exhausts
// MaxRetries. Retries re-acquire quota: a retry consumes a slot like any
// other call.
//
// # Partial delivery
//
// Retrying is only safe while the caller has observed nothing. As soon as
// one result has been forwarded, any later failure becomes terminal
// regardless of its kind, because a replay could duplicate or reorder
// results the caller already consumed. The caller sees the delivered
// results followed by the terminal error.
//
// # Cancellation
//
// Invocations suspend at exactly two points, the admission wait and the
// backoff wait, and both give up when the caller's context ends. Quota
// already consumed is not refunded on cancellation. Deadlines are the
// caller's responsibility, layered on the context.
package invoke
