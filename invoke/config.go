package invoke

import (
	"fmt"
	"time"

	"github.com/vinayprograms/callguard/backoff"
)

// Retry defaults applied by ApplyDefaults.
const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 2 * time.Second
	defaultMaxDelay   = 60 * time.Second
	defaultJitter     = 0.1
	defaultGrace      = 1 * time.Second
	defaultServerBase = 1 * time.Second
	defaultServerMax  = 60 * time.Second
)

// Config holds the full resilience surface: admission quota, retry bounds,
// and backoff shape. It is fixed at construction time.
type Config struct {
	// MaxCalls is the admission quota per Window. Required.
	MaxCalls int

	// Window is the trailing interval the quota applies to. Required.
	Window time.Duration

	// MaxRetries bounds retries after the first attempt: MaxRetries=3
	// allows up to 4 attempts in total.
	MaxRetries int

	// BaseDelay and MaxDelay bound the exponential backoff for rate-limit
	// and unknown-transient failures.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// JitterFraction perturbs each backoff by a uniform factor in
	// [1-j, 1+j]. Must be in [0, 1).
	JitterFraction float64

	// Grace is added on top of a provider-suggested retry delay.
	Grace time.Duration

	// ServerBaseDelay and ServerMaxDelay bound the exponential backoff
	// for 5xx-class failures.
	ServerBaseDelay time.Duration
	ServerMaxDelay  time.Duration
}

// ApplyDefaults fills zero-valued retry fields. MaxCalls and Window have no
// defaults: the quota is provider-specific and must be set explicitly.
func (c *Config) ApplyDefaults() {
	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.BaseDelay == 0 {
		c.BaseDelay = defaultBaseDelay
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = defaultMaxDelay
	}
	if c.JitterFraction == 0 {
		c.JitterFraction = defaultJitter
	}
	if c.Grace == 0 {
		c.Grace = defaultGrace
	}
	if c.ServerBaseDelay == 0 {
		c.ServerBaseDelay = defaultServerBase
	}
	if c.ServerMaxDelay == 0 {
		c.ServerMaxDelay = defaultServerMax
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MaxCalls <= 0 {
		return fmt.Errorf("max_calls must be positive, got %d", c.MaxCalls)
	}
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %v", c.Window)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	if c.BaseDelay <= 0 {
		return fmt.Errorf("base_delay must be positive, got %v", c.BaseDelay)
	}
	if c.MaxDelay < c.BaseDelay {
		return fmt.Errorf("max_delay %v must not be below base_delay %v", c.MaxDelay, c.BaseDelay)
	}
	if c.JitterFraction < 0 || c.JitterFraction >= 1 {
		return fmt.Errorf("jitter_fraction must be in [0, 1), got %v", c.JitterFraction)
	}
	if c.Grace <= 0 {
		return fmt.Errorf("grace must be positive, got %v", c.Grace)
	}
	if c.ServerBaseDelay <= 0 {
		return fmt.Errorf("server_base_delay must be positive, got %v", c.ServerBaseDelay)
	}
	if c.ServerMaxDelay < c.ServerBaseDelay {
		return fmt.Errorf("server_max_delay %v must not be below server_base_delay %v", c.ServerMaxDelay, c.ServerBaseDelay)
	}
	return nil
}

// backoffConfig maps the invoker config onto the backoff policy's view.
func (c Config) backoffConfig() backoff.Config {
	return backoff.Config{
		Base:           c.BaseDelay,
		Max:            c.MaxDelay,
		ServerBase:     c.ServerBaseDelay,
		ServerMax:      c.ServerMaxDelay,
		Grace:          c.Grace,
		JitterFraction: c.JitterFraction,
	}
}
