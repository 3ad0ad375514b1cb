package worker

import (
	"context"
	"sync"
)

// Future is the settled-exactly-once result of one worker request. Callers
// block in Await (or select on Done) without holding up the goroutine that
// issued the request.
type Future struct {
	once  sync.Once
	done  chan struct{}
	value any
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// settle records the outcome. Only the first call wins; later settles are
// no-ops, which is what makes late responses after a timeout harmless.
func (f *Future) settle(value any, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Done is closed once the future is settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or ctx is cancelled.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Settled reports whether the future has an outcome without blocking.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
