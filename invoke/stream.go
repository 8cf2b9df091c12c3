package invoke

import "context"

// Stream is a lazy sequence of results ending in success or a terminal
// error. Results are forwarded as the operation produces them, with no
// buffering: a slow consumer backpressures the producer.
//
// Consume by ranging over Results, then check Err:
//
//	for r := range s.Results() {
//	    use(r)
//	}
//	if err := s.Err(); err != nil {
//	    // terminal failure, after any results already delivered
//	}
//
// A consumer that abandons the stream must cancel the invocation context,
// otherwise the producer stays blocked on the next forward.
type Stream[T any] struct {
	ch   chan T
	done chan struct{}
	err  error
}

func newStream[T any]() *Stream[T] {
	return &Stream[T]{
		ch:   make(chan T),
		done: make(chan struct{}),
	}
}

// emit forwards one result to the consumer, or gives up when ctx ends.
func (s *Stream[T]) emit(ctx context.Context, v T) error {
	select {
	case s.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// finish records the terminal error and releases the consumer.
// Called exactly once, after the last emit.
func (s *Stream[T]) finish(err error) {
	s.err = err
	close(s.ch)
	close(s.done)
}

// Results returns the result channel. It is closed on the terminal state.
func (s *Stream[T]) Results() <-chan T {
	return s.ch
}

// Err blocks until the stream reaches its terminal state and returns the
// terminal error, or nil on success.
func (s *Stream[T]) Err() error {
	<-s.done
	return s.err
}

// Collect drains the stream into a slice. It returns the results delivered
// before any failure together with the terminal error.
func Collect[T any](s *Stream[T]) ([]T, error) {
	var out []T
	for v := range s.Results() {
		out = append(out, v)
	}
	return out, s.Err()
}
