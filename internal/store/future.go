package store

import "context"

// Future is the pending result of an operation started with Async.
type Future[T any] struct {
	done chan struct{}
	val  T
}

// Async runs fn on its own goroutine. The caller decides whether to Await the result
// inline or keep working and check Done later.
func Async[T any](fn func() T) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val = fn()
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the result is ready or ctx ends. The operation itself keeps
// running when ctx ends first.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
