// Package backoff computes retry delays from classified failures.
package backoff

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/vinayprograms/callguard/classify"
)

// Defaults applied by NewPolicy for zero-valued fields.
const (
	DefaultBase       = 2 * time.Second
	DefaultMax        = 60 * time.Second
	DefaultServerBase = 1 * time.Second
	DefaultServerMax  = 60 * time.Second
	DefaultGrace      = 1 * time.Second
	DefaultJitter     = 0.1
)

// Config holds the delay parameters for a Policy.
type Config struct {
	// Base and Max bound the exponential backoff for rate-limit and
	// unknown-transient failures.
	Base time.Duration
	Max  time.Duration

	// ServerBase and ServerMax bound the exponential backoff for
	// 5xx-class failures.
	ServerBase time.Duration
	ServerMax  time.Duration

	// Grace is added on top of a provider-suggested delay.
	Grace time.Duration

	// JitterFraction j perturbs each computed delay by a uniform factor
	// in [1-j, 1+j] to desynchronize concurrent retriers.
	JitterFraction float64
}

// Policy converts a failure descriptor and attempt number into a wait.
// The zero Policy is not usable; construct with NewPolicy.
type Policy struct {
	cfg       Config
	randFloat func() float64 // uniform in [0,1), for testing
}

// NewPolicy builds a Policy, filling zero config fields with defaults.
func NewPolicy(cfg Config) Policy {
	if cfg.Base <= 0 {
		cfg.Base = DefaultBase
	}
	if cfg.Max <= 0 {
		cfg.Max = DefaultMax
	}
	if cfg.ServerBase <= 0 {
		cfg.ServerBase = DefaultServerBase
	}
	if cfg.ServerMax <= 0 {
		cfg.ServerMax = DefaultServerMax
	}
	if cfg.Grace <= 0 {
		cfg.Grace = DefaultGrace
	}
	if cfg.JitterFraction <= 0 {
		cfg.JitterFraction = DefaultJitter
	}
	return Policy{cfg: cfg, randFloat: rand.Float64}
}

// DelayFor returns the wait before retry number attempt (0-indexed: the
// delay after the first failed attempt uses attempt 0).
//
// Fatal failures are not retried; the invoker checks retryability before
// backing off, and DelayFor returns 0 for them.
func (p Policy) DelayFor(d *classify.Descriptor, attempt int) time.Duration {
	switch d.Kind {
	case classify.KindFatal:
		return 0
	case classify.KindRateLimitDelay:
		// Honor the provider's delay plus grace, but never come back
		// faster than the exponential floor for this attempt.
		suggested := d.SuggestedDelay + p.cfg.Grace
		floor := p.jitter(Exponential(p.cfg.Base, attempt, p.cfg.Max))
		if suggested > floor {
			return suggested
		}
		return floor
	case classify.KindServer:
		return p.jitter(Exponential(p.cfg.ServerBase, attempt, p.cfg.ServerMax))
	default:
		return p.jitter(Exponential(p.cfg.Base, attempt, p.cfg.Max))
	}
}

// Exponential returns min(cap, base*2^n), the undithered backoff curve.
func Exponential(base time.Duration, n int, cap time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	if n < 0 {
		n = 0
	}
	d := float64(base) * math.Pow(2, float64(n))
	if d > float64(cap) {
		d = float64(cap)
	}
	return time.Duration(d)
}

// jitter perturbs d by a uniform factor in [1-j, 1+j], floored at zero.
func (p Policy) jitter(d time.Duration) time.Duration {
	j := p.cfg.JitterFraction
	factor := 1 - j + 2*j*p.randFloat()
	v := float64(d) * factor
	if v < 0 {
		v = 0
	}
	return time.Duration(v)
}
