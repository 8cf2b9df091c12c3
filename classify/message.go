package classify

import "strings"

// MessageClassifier matches failure text when no typed SDK error is present.
// It is the last adapter in DefaultChain before the unknown fallback.
type MessageClassifier struct{}

// billingMarkers indicate payment or account problems that no retry fixes.
var billingMarkers = []string{
	"billing",
	"payment",
	"credits",
	"quota exceeded",
	"insufficient",
	"402",
	"subscription",
	"expired",
}

// rateLimitMarkers indicate quota exhaustion.
var rateLimitMarkers = []string{
	"rate limit",
	"too many requests",
	"429",
	"resource_exhausted",
	"overloaded",
	"capacity",
}

// serverMarkers indicate transient 5xx-class failures.
var serverMarkers = []string{
	"500",
	"502",
	"503",
	"504",
	"internal server error",
	"bad gateway",
	"service unavailable",
	"gateway timeout",
	"temporarily unavailable",
}

// authMarkers indicate credential problems.
var authMarkers = []string{
	"401",
	"403",
	"unauthorized",
	"forbidden",
	"invalid api key",
	"authentication",
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// Classify classifies by message content. Billing and auth markers win over
// rate-limit markers so that "quota exceeded" billing failures are not
// retried forever.
func (MessageClassifier) Classify(err error) (*Descriptor, bool) {
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case containsAny(lower, billingMarkers), containsAny(lower, authMarkers):
		return &Descriptor{Kind: KindFatal, RawMessage: msg, cause: err}, true
	case containsAny(lower, rateLimitMarkers):
		d := &Descriptor{Kind: KindRateLimit, RawMessage: msg, cause: err}
		if delay, ok := ParseRetryDelay(msg); ok {
			d.Kind = KindRateLimitDelay
			d.SuggestedDelay = delay
		}
		return d, true
	case containsAny(lower, serverMarkers):
		return &Descriptor{Kind: KindServer, RawMessage: msg, cause: err}, true
	}
	return nil, false
}
