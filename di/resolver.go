package di

import (
	"fmt"
)

// lookup finds the candidates for ct, walking from c up to the root. The
// first container with any candidate answers and owns the instances.
func (c *Container) lookup(ct Contract) (*Container, []*Descriptor) {
	for cur := c; cur != nil; cur = cur.parent {
		if ds := cur.cat.find(ct.id); len(ds) > 0 {
			return cur, ds
		}
	}
	return c, nil
}

func (c *Container) candidateNames(ct Contract) []string {
	_, ds := c.lookup(ct)
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.name
	}
	return names
}

func (c *Container) resolveOne(ct Contract, f *frame) (any, error) {
	if c.isDisposed() {
		return nil, ErrDisposed
	}
	owner, ds := c.lookup(ct)
	switch len(ds) {
	case 0:
		return nil, ComponentNotFoundError{Contract: ct.id}
	case 1:
		return owner.instance(ds[0], f)
	default:
		return nil, AmbiguousComponentError{Contract: ct.id, Candidates: c.candidateNames(ct)}
	}
}

func (c *Container) resolveAll(ct Contract, f *frame) ([]any, error) {
	if c.isDisposed() {
		return nil, ErrDisposed
	}
	owner, ds := c.lookup(ct)
	out := make([]any, 0, len(ds))
	for _, d := range ds {
		v, err := owner.instance(d, f)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// build selects a constructor for desc, resolves its arguments depth-first
// and calls it.
func (c *Container) build(desc *Descriptor, fr *frame) (any, error) {
	idx, err := selectConstructor(desc.name, desc.signatures(), c.candidateNames)
	if err != nil {
		return nil, err
	}
	ctor := desc.ctors[idx]

	args := make(Args, len(ctor.Params))
	for i, p := range ctor.Params {
		v, err := c.inject(p, fr)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	v, err := safeCall(func() (any, error) { return ctor.build(args) })
	if err != nil {
		return nil, ConstructionError{Component: desc.name, Err: err}
	}
	return v, nil
}

// bind resolves and sets the late-bound properties of v.
func (c *Container) bind(desc *Descriptor, v any, fr *frame) error {
	for _, p := range desc.props {
		val, err := c.inject(p.Dependency, fr)
		if err != nil {
			return err
		}
		set := p.set
		if _, err := safeCall(func() (any, error) { return nil, set(v, val) }); err != nil {
			return ConstructionError{Component: desc.name, Err: err}
		}
	}
	return nil
}

// inject produces the value for one dependency in the shape it declares.
// Lazy handles keep the chain they were created on while the consumer is
// being built, so that calling one for the component under construction
// reports a cycle instead of blocking. Once the consumer is finished they
// start a fresh chain.
// Async resolutions start a fresh chain on their own goroutine.
func (c *Container) inject(d Dependency, fr *frame) (any, error) {
	s := d.shaper()
	ct := d.Contract

	switch d.Mode {
	case ModeDirect:
		v, err := c.resolveOne(ct, fr)
		if err != nil {
			return nil, err
		}
		return s.direct(v)
	case ModeAll:
		vs, err := c.resolveAll(ct, fr)
		if err != nil {
			return nil, err
		}
		return s.all(vs)
	case ModeLazy:
		return s.lazy(func() (any, error) { return c.resolveOne(ct, fr.live()) }), nil
	case ModeLazyAll:
		return s.lazyAll(func() ([]any, error) { return c.resolveAll(ct, fr.live()) }), nil
	case ModeAsync:
		return s.async(c.spawn, func() (any, error) { return c.resolveOne(ct, nil) }), nil
	case ModeAsyncAll:
		return s.asyncAll(c.spawn, func() ([]any, error) { return c.resolveAll(ct, nil) }), nil
	}
	return nil, d.check(0)
}

// spawn runs fn in the background. Until disposal starts, fn is tracked so
// Dispose can wait for it.
func (c *Container) spawn(fn func()) {
	c.mu.Lock()
	tracked := !c.disposed
	if tracked {
		c.async.Add(1)
	}
	c.mu.Unlock()

	go func() {
		if tracked {
			defer c.async.Done()
		}
		fn()
	}()
}

func safeCall(fn func() (any, error)) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v = nil
			err = fmt.Errorf("%w: %v", ErrConstructorPanic, rec)
		}
	}()
	return fn()
}
