package di

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Container is a scope owning the component instances it constructs.
//
// A root container is created from a registry with New. NewChild creates a
// nested scope with its own registry: it resolves its own components first
// and falls back to the parent for contracts it does not provide. Instances
// of parent components stay owned by the parent.
//
// A Container is safe for concurrent use. Each component is constructed at
// most once per owning container, however many goroutines ask for it. A
// failed constructor is retried on the next request; a failed property
// binding is not, since the instance already exists.
type Container struct {
	id      string
	name    string
	parent  *Container
	cat     *catalog
	log     *zap.Logger
	metrics *Metrics

	mu       sync.Mutex
	cells    map[*Descriptor]*cell
	records  []*record
	seq      int
	disposed bool
	async    sync.WaitGroup
}

// New creates a root container over a snapshot of reg.
func New(reg *Registry, opts ...Option) (*Container, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return newContainer(reg, nil, o), nil
}

// NewChild creates a nested container over a snapshot of reg, which may be
// nil for a scope without local components. The child inherits the logger
// and metrics of c unless opts override them.
func (c *Container) NewChild(reg *Registry, opts ...Option) (*Container, error) {
	if c.isDisposed() {
		return nil, ErrDisposed
	}
	if reg == nil {
		reg = NewRegistry()
	}
	o := options{log: c.log, metrics: c.metrics}
	for _, opt := range opts {
		opt(&o)
	}
	return newContainer(reg, c, o), nil
}

func newContainer(reg *Registry, parent *Container, o options) *Container {
	id := uuid.NewString()
	name := o.name
	if name == "" {
		name = id
	}
	c := &Container{
		id:      id,
		name:    name,
		parent:  parent,
		cat:     reg.snapshot(),
		log:     o.log.With(zap.String("container", name)),
		metrics: o.metrics,
		cells:   map[*Descriptor]*cell{},
	}
	c.log.Debug("container created", zap.Int("components", len(c.cat.descs)))
	return c
}

// ID returns the unique id of the container.
func (c *Container) ID() string { return c.id }

// Name returns the name given with WithName, or the id.
func (c *Container) Name() string { return c.name }

// Parent returns the enclosing container, nil for a root.
func (c *Container) Parent() *Container { return c.parent }

// Descriptors returns the components registered locally in c.
func (c *Container) Descriptors() []*Descriptor {
	return append([]*Descriptor(nil), c.cat.descs...)
}

// Graph returns the static graph of c and its ancestors, one scope per
// container and outermost first. Each component's dependencies are looked up
// from the container that owns it, the way the resolver builds it.
func (c *Container) Graph() *Graph {
	var chain []*Container
	for cur := c; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}

	var g *Graph
	for i := len(chain) - 1; i >= 0; i-- {
		if g == nil {
			g = NewGraph()
			g.scope = chain[i].name
		} else {
			g = g.NewScope(chain[i].name)
		}
		for _, d := range chain[i].cat.descs {
			// names are unique in a registry
			_ = g.addDescriptor(d)
		}
	}
	return g
}

// Disposed reports whether Dispose has been called.
func (c *Container) Disposed() bool { return c.isDisposed() }

func (c *Container) isDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// ResolveContract returns the single component providing ct.
func (c *Container) ResolveContract(ct Contract) (any, error) {
	defer c.metrics.resolved(ct.id, time.Now())
	return c.resolveOne(ct, nil)
}

// ResolveAllContract returns every component providing ct in registration
// order. No match is an empty result, not an error.
func (c *Container) ResolveAllContract(ct Contract) ([]any, error) {
	defer c.metrics.resolved(ct.id, time.Now())
	return c.resolveAll(ct, nil)
}

// Preload resolves the given contracts concurrently and returns the first
// error. It is a way to construct independent parts of the graph in parallel
// at startup.
func (c *Container) Preload(ctx context.Context, contracts ...Contract) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, ct := range contracts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := c.ResolveContract(ct)
			return err
		})
	}
	return g.Wait()
}

// Resolve returns the single component providing T.
func Resolve[T any](c *Container) (T, error) {
	ct := ContractFor[T]()
	v, err := c.ResolveContract(ct)
	if err != nil {
		var zero T
		return zero, err
	}
	return typed[T]{contract: ct}.cast(v)
}

// ResolveAll returns every component providing T in registration order.
func ResolveAll[T any](c *Container) ([]T, error) {
	ct := ContractFor[T]()
	vs, err := c.ResolveAllContract(ct)
	if err != nil {
		return nil, err
	}
	return typed[T]{contract: ct}.castAll(vs)
}

// MustResolve returns the single component providing T or panics.
func MustResolve[T any](c *Container) T {
	v, err := Resolve[T](c)
	if err != nil {
		panic(err)
	}
	return v
}

// ResolveLazy returns a handle that resolves T when called.
func ResolveLazy[T any](c *Container) Lazy[T] {
	return func() (T, error) { return Resolve[T](c) }
}

// ResolveAsync starts resolving T in the background.
func ResolveAsync[T any](c *Container) *Future[T] {
	ct := ContractFor[T]()
	return typed[T]{contract: ct}.async(c.spawn, func() (any, error) {
		return c.ResolveContract(ct)
	}).(*Future[T])
}
