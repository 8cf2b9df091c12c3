package backoff

import (
	"testing"
	"time"

	"github.com/vinayprograms/callguard/classify"
)

// fixedPolicy returns a policy whose jitter factor is pinned to 1.0.
func fixedPolicy(cfg Config) Policy {
	p := NewPolicy(cfg)
	p.randFloat = func() float64 { return 0.5 }
	return p
}

func TestExponential_NonDecreasingAndCapped(t *testing.T) {
	base := 2 * time.Second
	cap := 60 * time.Second

	prev := time.Duration(0)
	for n := 0; n < 12; n++ {
		d := Exponential(base, n, cap)
		if d < prev {
			t.Errorf("Exponential decreased at n=%d: %v < %v", n, d, prev)
		}
		if d > cap {
			t.Errorf("Exponential exceeded cap at n=%d: %v", n, d)
		}
		prev = d
	}

	if got := Exponential(base, 0, cap); got != 2*time.Second {
		t.Errorf("Exponential(2s, 0) = %v, want 2s", got)
	}
	if got := Exponential(base, 3, cap); got != 16*time.Second {
		t.Errorf("Exponential(2s, 3) = %v, want 16s", got)
	}
	if got := Exponential(base, 10, cap); got != cap {
		t.Errorf("Exponential(2s, 10) = %v, want cap %v", got, cap)
	}
}

func TestJitter_StaysWithinBounds(t *testing.T) {
	p := NewPolicy(Config{JitterFraction: 0.25})
	d := &classify.Descriptor{Kind: classify.KindUnknown}

	base := Exponential(p.cfg.Base, 2, p.cfg.Max)
	lo := time.Duration(float64(base) * 0.75)
	hi := time.Duration(float64(base) * 1.25)

	for i := 0; i < 1000; i++ {
		got := p.DelayFor(d, 2)
		if got < lo || got > hi {
			t.Fatalf("jittered delay %v outside [%v, %v]", got, lo, hi)
		}
	}
}

func TestDelayFor_ServerSuggestedDelay(t *testing.T) {
	p := fixedPolicy(Config{Base: 2 * time.Second, Grace: time.Second})
	d := &classify.Descriptor{
		Kind:           classify.KindRateLimitDelay,
		SuggestedDelay: 5 * time.Second,
	}

	// Early attempts: suggested + grace dominates the exponential floor.
	if got := p.DelayFor(d, 0); got != 6*time.Second {
		t.Errorf("attempt 0: got %v, want 6s", got)
	}
	if got := p.DelayFor(d, 0); got < d.SuggestedDelay+time.Second {
		t.Errorf("wait %v below suggested delay plus grace", got)
	}

	// Late attempts: the exponential floor overtakes the suggestion.
	if got := p.DelayFor(d, 4); got != 32*time.Second {
		t.Errorf("attempt 4: got %v, want exponential floor 32s", got)
	}
}

func TestDelayFor_ServerErrorsUseServerCurve(t *testing.T) {
	p := fixedPolicy(Config{
		Base:       10 * time.Second,
		ServerBase: 1 * time.Second,
		ServerMax:  8 * time.Second,
	})
	d := &classify.Descriptor{Kind: classify.KindServer}

	if got := p.DelayFor(d, 0); got != time.Second {
		t.Errorf("attempt 0: got %v, want 1s", got)
	}
	if got := p.DelayFor(d, 2); got != 4*time.Second {
		t.Errorf("attempt 2: got %v, want 4s", got)
	}
	if got := p.DelayFor(d, 6); got != 8*time.Second {
		t.Errorf("attempt 6: got %v, want server cap 8s", got)
	}
}

func TestDelayFor_Fatal(t *testing.T) {
	p := NewPolicy(Config{})
	if got := p.DelayFor(&classify.Descriptor{Kind: classify.KindFatal}, 0); got != 0 {
		t.Errorf("fatal delay = %v, want 0", got)
	}
}

func TestNewPolicy_Defaults(t *testing.T) {
	p := NewPolicy(Config{})
	if p.cfg.Base != DefaultBase || p.cfg.Max != DefaultMax {
		t.Errorf("generic curve defaults not applied: %+v", p.cfg)
	}
	if p.cfg.ServerBase != DefaultServerBase || p.cfg.ServerMax != DefaultServerMax {
		t.Errorf("server curve defaults not applied: %+v", p.cfg)
	}
	if p.cfg.Grace != DefaultGrace {
		t.Errorf("grace default not applied: %v", p.cfg.Grace)
	}
	if p.cfg.JitterFraction != DefaultJitter {
		t.Errorf("jitter default not applied: %v", p.cfg.JitterFraction)
	}
}
