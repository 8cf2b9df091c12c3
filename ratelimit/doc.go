// Package ratelimit provides sliding-window admission control for calls
// against a provider-imposed quota.
//
// A SlidingWindow bounds call volume over a trailing time interval: at most
// maxCalls admissions may fall inside [now-window, now]. Admission stamps
// older than the window are purged lazily on each check.
//
//	limiter, err := ratelimit.New(60, time.Minute) // 60 calls per minute
//	if err != nil {
//	    return err
//	}
//
//	// Block until quota is available
//	if err := limiter.Acquire(ctx); err != nil {
//	    return err // context cancelled
//	}
//
//	// Non-blocking attempt
//	if limiter.TryAcquire() {
//	    // Make request
//	}
//
// When the provider returns an explicit retry delay (e.g. with a 429
// response), SetNextAllowed gates every caller until that delay has passed:
//
//	limiter.SetNextAllowed(24 * time.Second)
//
// # Semantics
//
//   - The check-purge-record sequence is a single critical section; waits
//     happen outside the lock.
//   - If maxCalls callers arrive against an empty window, all are admitted
//     immediately; the next caller waits only until the oldest admission
//     ages out.
//   - An admission is consumed regardless of whether the gated call
//     succeeds, and abandoning a wait never corrupts the bookkeeping.
package ratelimit
