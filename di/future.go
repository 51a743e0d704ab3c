package di

import "context"

// Future is the handle injected for async dependencies. It completes once the
// dependency, including everything it needs, has been constructed on a
// background goroutine.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) complete(v T, err error) {
	f.val, f.err = v, err
	close(f.done)
}

// Done is closed when the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the result is available or ctx is done.
//
// Awaiting a future from inside the constructor of a component that the
// future itself depends on never completes; pass a context with a deadline
// when that cannot be ruled out.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result blocks until the result is available.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.val, f.err
}
