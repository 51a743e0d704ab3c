package di

import "reflect"

// Lazy resolves a single component when called. It is the deferred handle
// injected for ModeLazy dependencies; calling it during the consumer's own
// construction is allowed as long as it does not ask for the consumer itself.
type Lazy[T any] func() (T, error)

// LazyAll resolves every component providing a contract when called.
type LazyAll[T any] func() ([]T, error)

// MustGet calls l and panics on error.
func (l Lazy[T]) MustGet() T {
	v, err := l()
	if err != nil {
		panic(err)
	}
	return v
}

// MustGet calls l and panics on error.
func (l LazyAll[T]) MustGet() []T {
	v, err := l()
	if err != nil {
		panic(err)
	}
	return v
}

// shaper turns raw resolution results into the value a consumer asked for.
// typed[T] is the only implementation; typed[any] is used for untyped
// dependencies.
type shaper interface {
	direct(v any) (any, error)
	all(vs []any) (any, error)
	lazy(resolve func() (any, error)) any
	lazyAll(resolve func() ([]any, error)) any
	async(spawn spawner, resolve func() (any, error)) any
	asyncAll(spawn spawner, resolve func() ([]any, error)) any
}

// spawner runs fn on a background goroutine owned by a container.
type spawner func(fn func())

type typed[T any] struct {
	contract Contract
}

func (s typed[T]) cast(v any) (T, error) {
	t, ok := v.(T)
	if !ok && v != nil {
		return t, WrongTypeError{Contract: s.contract.id, GotType: reflect.TypeOf(v).String()}
	}
	return t, nil
}

func (s typed[T]) castAll(vs []any) ([]T, error) {
	out := make([]T, 0, len(vs))
	for _, v := range vs {
		t, err := s.cast(v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s typed[T]) direct(v any) (any, error) { return s.cast(v) }

func (s typed[T]) all(vs []any) (any, error) { return s.castAll(vs) }

func (s typed[T]) lazy(resolve func() (any, error)) any {
	return Lazy[T](func() (T, error) {
		v, err := resolve()
		if err != nil {
			var zero T
			return zero, err
		}
		return s.cast(v)
	})
}

func (s typed[T]) lazyAll(resolve func() ([]any, error)) any {
	return LazyAll[T](func() ([]T, error) {
		vs, err := resolve()
		if err != nil {
			return nil, err
		}
		return s.castAll(vs)
	})
}

func (s typed[T]) async(spawn spawner, resolve func() (any, error)) any {
	f := newFuture[T]()
	spawn(func() {
		v, err := resolve()
		if err != nil {
			var zero T
			f.complete(zero, err)
			return
		}
		f.complete(s.cast(v))
	})
	return f
}

func (s typed[T]) asyncAll(spawn spawner, resolve func() ([]any, error)) any {
	f := newFuture[[]T]()
	spawn(func() {
		vs, err := resolve()
		if err != nil {
			f.complete(nil, err)
			return
		}
		f.complete(s.castAll(vs))
	})
	return f
}
