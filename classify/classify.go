package classify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind identifies the failure class of a remote call for retry decisions.
type Kind string

const (
	// KindRateLimitDelay is quota exhaustion where the provider supplied a
	// parseable retry delay.
	KindRateLimitDelay Kind = "rate_limit_delay"

	// KindRateLimit is quota exhaustion with no usable delay hint.
	KindRateLimit Kind = "rate_limit"

	// KindServer covers transient 5xx-class provider failures.
	KindServer Kind = "server"

	// KindFatal covers failures that cannot succeed on retry:
	// malformed requests, authentication, billing.
	KindFatal Kind = "fatal"

	// KindUnknown is anything unrecognized, treated conservatively as
	// retryable with the raw message preserved for diagnostics.
	KindUnknown Kind = "unknown"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Retryable returns true if failures of this kind may succeed on retry.
func (k Kind) Retryable() bool {
	return k != KindFatal
}

// Descriptor is the structured classification of a single failure.
// It is created fresh per failure and never mutated.
type Descriptor struct {
	// Kind drives the retry policy.
	Kind Kind

	// StatusCode is the HTTP status that produced the failure, if known.
	StatusCode int

	// SuggestedDelay is the provider-supplied retry delay.
	// Only meaningful for KindRateLimitDelay.
	SuggestedDelay time.Duration

	// RawMessage preserves the original payload for diagnostics.
	RawMessage string

	cause error
}

// Error implements the error interface.
func (d *Descriptor) Error() string {
	if d.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d): %s", d.Kind, d.StatusCode, d.RawMessage)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.RawMessage)
}

// Unwrap returns the failure the descriptor was built from.
func (d *Descriptor) Unwrap() error {
	return d.cause
}

// Retryable reports whether the failure may succeed on retry.
func (d *Descriptor) Retryable() bool {
	return d.Kind.Retryable()
}

// Classifier recognizes one upstream failure shape. Classify returns
// ok=false when the error is not a shape this classifier understands,
// letting the chain fall through to the next adapter.
type Classifier interface {
	Classify(err error) (*Descriptor, bool)
}

// Chain tries classifiers in order. Classification never fails: errors no
// adapter recognizes degrade to KindUnknown rather than aborting.
type Chain []Classifier

// DefaultChain recognizes the bundled provider SDK error shapes, falling
// back to free-text matching.
func DefaultChain() Chain {
	return Chain{
		AnthropicClassifier{},
		OpenAIClassifier{},
		GoogleClassifier{},
		MessageClassifier{},
	}
}

// Classify maps an arbitrary failure to a Descriptor. It never returns nil
// for a non-nil error.
func (c Chain) Classify(err error) *Descriptor {
	if err == nil {
		return nil
	}

	// Already classified upstream.
	var d *Descriptor
	if errors.As(err, &d) {
		return d
	}

	// Context ends are the caller's doing, never worth a retry.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Descriptor{Kind: KindFatal, RawMessage: err.Error(), cause: err}
	}

	for _, cl := range c {
		if d, ok := cl.Classify(err); ok {
			return d
		}
	}
	return &Descriptor{Kind: KindUnknown, RawMessage: err.Error(), cause: err}
}

// Status classifies a raw status code plus message payload. This is the
// entry point for callers that talk to providers without a typed SDK error.
func Status(code int, payload string) *Descriptor {
	return fromStatus(code, payload, "", nil)
}

// fromStatus maps an HTTP status and payload to a descriptor. retryAfter is
// an optional Retry-After header value consulted before the payload.
func fromStatus(code int, payload, retryAfter string, cause error) *Descriptor {
	d := &Descriptor{StatusCode: code, RawMessage: payload, cause: cause}

	switch {
	case code == http.StatusTooManyRequests:
		if delay, ok := parseRetryAfter(retryAfter); ok {
			d.Kind = KindRateLimitDelay
			d.SuggestedDelay = delay
		} else if delay, ok := ParseRetryDelay(payload); ok {
			d.Kind = KindRateLimitDelay
			d.SuggestedDelay = delay
		} else {
			d.Kind = KindRateLimit
		}
	case code >= 500 && code <= 599:
		d.Kind = KindServer
	case code == http.StatusRequestTimeout:
		// 408 is the one 4xx a retry can cure.
		d.Kind = KindUnknown
	case code >= 400 && code <= 499:
		d.Kind = KindFatal
	default:
		d.Kind = KindUnknown
	}
	return d
}
