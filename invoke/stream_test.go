package invoke

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vinayprograms/callguard/logging"
)

func TestStream_ForwardsWithoutBuffering(t *testing.T) {
	inv, err := New(testConfig(), WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	produced := make(chan int, 3)
	s := Invoke(context.Background(), inv, func(ctx context.Context, yield func(int) error) error {
		for i := 0; i < 3; i++ {
			if err := yield(i); err != nil {
				return err
			}
			produced <- i
		}
		return nil
	})

	// The producer may run at most one emit ahead of the consumer: with an
	// unbuffered channel each yield returns only once the consumer took
	// the value.
	first := <-s.Results()
	if first != 0 {
		t.Fatalf("first result = %d, want 0", first)
	}
	select {
	case n := <-produced:
		if n != 0 {
			t.Fatalf("produced %d before consumer caught up", n)
		}
	case <-time.After(time.Second):
		t.Fatal("producer did not advance after consume")
	}

	for range s.Results() {
	}
	if err := s.Err(); err != nil {
		t.Fatalf("unexpected terminal error: %v", err)
	}
}

func TestStream_AbandonWithCancel(t *testing.T) {
	inv, err := New(testConfig(), WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := Invoke(ctx, inv, func(ctx context.Context, yield func(int) error) error {
		i := 0
		for {
			if err := yield(i); err != nil {
				return err
			}
			i++
		}
	})

	// Take one result, then walk away.
	<-s.Results()
	cancel()

	done := make(chan error, 1)
	go func() { done <- s.Err() }()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("terminal error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("producer did not unblock after cancel")
	}
}

func TestCollect_ReturnsPartialResultsWithError(t *testing.T) {
	inv, err := New(testConfig(), WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s := Invoke(context.Background(), inv, func(ctx context.Context, yield func(string) error) error {
		if err := yield("a"); err != nil {
			return err
		}
		if err := yield("b"); err != nil {
			return err
		}
		return errors.New("503 service unavailable")
	})

	got, err := Collect(s)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("results = %v, want [a b]", got)
	}
	if err == nil {
		t.Error("expected the mid-stream failure as terminal error")
	}
}
