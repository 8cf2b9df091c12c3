package ratelimit

import (
	"context"
	"sync"
	"time"
)

// waitSlack is added to computed window waits so a re-check after sleeping
// lands just past the moment the oldest admission ages out.
const waitSlack = 10 * time.Millisecond

// SlidingWindow admits at most maxCalls calls per trailing window.
// It is safe for concurrent use. An admission is consumed whether or not
// the call it gates succeeds: the quota models call volume, not success.
type SlidingWindow struct {
	mu          sync.Mutex
	max         int
	window      time.Duration
	stamps      []time.Time      // admission instants, oldest first
	nextAllowed time.Time        // server-directed earliest next call
	nowFunc     func() time.Time // for testing
}

// New creates a sliding-window limiter admitting maxCalls calls per window.
func New(maxCalls int, window time.Duration) (*SlidingWindow, error) {
	if maxCalls <= 0 {
		return nil, ErrInvalidCapacity
	}
	if window <= 0 {
		return nil, ErrInvalidWindow
	}
	return &SlidingWindow{
		max:     maxCalls,
		window:  window,
		nowFunc: time.Now,
	}, nil
}

// Limit returns the maximum number of admissions per window.
func (s *SlidingWindow) Limit() int { return s.max }

// Window returns the trailing window duration.
func (s *SlidingWindow) Window() time.Duration { return s.window }

// purge drops admission stamps that have aged out of the window.
// Caller must hold s.mu.
func (s *SlidingWindow) purge(now time.Time) {
	cut := now.Add(-s.window)
	i := 0
	for i < len(s.stamps) && !s.stamps[i].After(cut) {
		i++
	}
	if i > 0 {
		s.stamps = append(s.stamps[:0], s.stamps[i:]...)
	}
}

// InWindow returns the number of admissions still inside the window.
func (s *SlidingWindow) InWindow() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge(s.nowFunc())
	return len(s.stamps)
}

// SetNextAllowed pushes out the earliest time any call may be admitted,
// typically after the provider returned an explicit retry delay. It only
// ever moves the gate forward.
func (s *SlidingWindow) SetNextAllowed(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	at := s.nowFunc().Add(d)
	if at.After(s.nextAllowed) {
		s.nextAllowed = at
	}
}

// TryAcquire attempts to admit a call without blocking.
func (s *SlidingWindow) TryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	if now.Before(s.nextAllowed) {
		return false
	}
	s.purge(now)
	if len(s.stamps) < s.max {
		s.stamps = append(s.stamps, now)
		return true
	}
	return false
}

// Acquire blocks until the call can be admitted without exceeding the quota.
//
// Each pass holds the lock only for the check-purge-record sequence. When the
// window is full the wait runs outside the lock and the state is re-checked
// afterwards, because concurrent admissions may have changed it. A context
// abort during the wait leaves the recorded stamps untouched: quota already
// consumed is not refunded.
func (s *SlidingWindow) Acquire(ctx context.Context) error {
	for {
		s.mu.Lock()
		now := s.nowFunc()

		var wait time.Duration
		if now.Before(s.nextAllowed) {
			// Honor an explicit server delay before window accounting.
			wait = s.nextAllowed.Sub(now)
		} else {
			s.purge(now)
			if len(s.stamps) < s.max {
				s.stamps = append(s.stamps, now)
				s.mu.Unlock()
				return nil
			}
			// Wait until the oldest admission ages out, not a full window
			// from this caller's own arrival.
			wait = s.stamps[0].Add(s.window).Sub(now) + waitSlack
		}
		s.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Ensure SlidingWindow implements Limiter.
var _ Limiter = (*SlidingWindow)(nil)
