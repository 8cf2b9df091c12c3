package ratelimit

import (
	"context"
	"errors"
)

// Common errors.
var (
	ErrInvalidCapacity = errors.New("invalid capacity")
	ErrInvalidWindow   = errors.New("invalid window")
)

// Limiter gates calls against a provider quota.
type Limiter interface {
	// Acquire blocks until admitting the call would not exceed the quota,
	// records the admission, and returns. Returns context.Canceled or
	// context.DeadlineExceeded if the context ends while waiting.
	Acquire(ctx context.Context) error

	// TryAcquire attempts to admit a call without blocking.
	// Returns true if the call was admitted.
	TryAcquire() bool
}
