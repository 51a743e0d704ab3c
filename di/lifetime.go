package di

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	cellBuilding int32 = iota
	cellBinding
	cellReady
	cellFailed
)

// maxWaitChain bounds the wait-for walk used to spot cycles spanning goroutines.
const maxWaitChain = 1024

// cell holds the single instance of one descriptor within one container.
// The goroutine that created the cell builds the instance; everybody else
// waits on done.
type cell struct {
	desc  *Descriptor
	done  chan struct{}
	state atomic.Int32
	value any
	err   error

	// waitingOn is the cell the builder of this cell is currently blocked on
	// or building inline.
	waitingOn atomic.Pointer[cell]
}

func newCell(desc *Descriptor) *cell {
	return &cell{desc: desc, done: make(chan struct{})}
}

// frame is one link of a resolution chain: the cells being built by the
// current goroutine, innermost first.
type frame struct {
	cell   *cell
	parent *frame
}

// live returns f while its cell is still being built and nil once the cell
// is done, so finished components never take part in another chain.
func (f *frame) live() *frame {
	if f == nil {
		return nil
	}
	select {
	case <-f.cell.done:
		return nil
	default:
		return f
	}
}

func (f *frame) holds(cl *cell) bool {
	for ; f != nil; f = f.parent {
		if f.cell == cl {
			return true
		}
	}
	return false
}

// path lists component names from the outermost request down to last.
func (f *frame) path(last string) []string {
	var rev []string
	for ; f != nil; f = f.parent {
		rev = append(rev, f.cell.desc.name)
	}
	out := make([]string, 0, len(rev)+1)
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return append(out, last)
}

// waitCycle reports whether waiting on target would wait on the caller's own
// chain through other goroutines.
func waitCycle(f *frame, target *cell) bool {
	for cl, n := target, 0; cl != nil && n < maxWaitChain; cl, n = cl.waitingOn.Load(), n+1 {
		if f.holds(cl) {
			return true
		}
	}
	return false
}

// record is a constructed instance owned by a container.
type record struct {
	desc     *Descriptor
	value    any
	order    int
	created  time.Time
	disposed bool
}

// InstanceInfo describes a constructed component instance.
type InstanceInfo struct {
	Component string    `json:"component"`
	Container string    `json:"container"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	Teardown  bool      `json:"teardown"`
	Disposed  bool      `json:"disposed"`
}

// instance returns the instance of desc owned by c, building it on first use.
func (c *Container) instance(desc *Descriptor, f *frame) (any, error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil, ErrDisposed
	}
	if desc.prebuilt {
		c.mu.Unlock()
		return desc.instance, nil
	}
	cl, ok := c.cells[desc]
	if !ok {
		cl = newCell(desc)
		c.cells[desc] = cl
		c.mu.Unlock()
		return c.construct(cl, f)
	}
	c.mu.Unlock()
	return c.await(cl, f)
}

func (c *Container) await(cl *cell, f *frame) (any, error) {
	select {
	case <-cl.done:
		return cl.value, cl.err
	default:
	}

	if f.holds(cl) {
		if cl.state.Load() == cellBinding {
			return cl.value, nil
		}
		return nil, CyclicDependencyError{Path: f.path(cl.desc.name)}
	}
	if f != nil {
		// publish before walking so two goroutines closing a cycle at the
		// same time cannot both miss each other
		f.cell.waitingOn.Store(cl)
		defer f.cell.waitingOn.Store(nil)
		if waitCycle(f, cl) {
			return nil, CyclicDependencyError{Path: f.path(cl.desc.name)}
		}
	}

	<-cl.done
	return cl.value, cl.err
}

func (c *Container) construct(cl *cell, f *frame) (any, error) {
	if f != nil {
		f.cell.waitingOn.Store(cl)
		defer f.cell.waitingOn.Store(nil)
	}
	fr := &frame{cell: cl, parent: f}
	desc := cl.desc

	v, err := c.build(desc, fr)
	if err != nil {
		return nil, c.fail(cl, err)
	}

	cl.value = v
	cl.state.Store(cellBinding)
	c.track(desc, v)

	if err := c.bind(desc, v, fr); err != nil {
		// the instance exists and is tracked, so the failure sticks
		return nil, c.settle(cl, err)
	}

	cl.state.Store(cellReady)
	close(cl.done)
	c.log.Debug("component constructed", zap.String("component", desc.name))
	return v, nil
}

// fail forgets cl so a later request can try again, and releases waiters
// with err.
func (c *Container) fail(cl *cell, err error) error {
	c.mu.Lock()
	if c.cells[cl.desc] == cl {
		delete(c.cells, cl.desc)
	}
	c.mu.Unlock()
	return c.settle(cl, err)
}

// settle completes cl with err. The cell stays in place, so every later
// request for the component gets err too.
func (c *Container) settle(cl *cell, err error) error {
	cl.value, cl.err = nil, err
	cl.state.Store(cellFailed)
	close(cl.done)
	return err
}

// track records a freshly constructed instance in construction order.
func (c *Container) track(desc *Descriptor, v any) {
	rec := &record{desc: desc, value: v, created: time.Now()}

	c.mu.Lock()
	c.seq++
	rec.order = c.seq
	late := c.disposed
	if !late {
		c.records = append(c.records, rec)
	}
	c.mu.Unlock()

	c.metrics.constructed(desc.name)
	if late {
		// disposal already started; nobody else will release it
		if err := c.teardown(rec); err != nil {
			c.log.Warn("late teardown failed", zap.String("component", desc.name), zap.Error(err))
		}
	}
}

// Dispose releases every instance c constructed, in reverse construction
// order, exactly once. A failing teardown hook does not stop the others;
// all failures are returned together as TeardownErrors.
//
// Dispose waits for background resolutions started by c. Further resolution
// requests fail with ErrDisposed. The parent container is not affected.
func (c *Container) Dispose() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil
	}
	c.disposed = true
	c.mu.Unlock()

	c.async.Wait()

	c.mu.Lock()
	recs := append([]*record(nil), c.records...)
	c.mu.Unlock()

	var errs error
	for i := len(recs) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, c.teardown(recs[i]))
	}

	c.log.Debug("container disposed",
		zap.String("container", c.id),
		zap.Int("instances", len(recs)),
		zap.Int("failures", len(multierr.Errors(errs))),
	)
	return errs
}

// teardown runs the hook of one record at most once.
func (c *Container) teardown(rec *record) error {
	c.mu.Lock()
	if rec.disposed {
		c.mu.Unlock()
		return nil
	}
	rec.disposed = true
	c.mu.Unlock()

	if rec.desc.teardown == nil {
		c.metrics.tornDown(rec.desc.name, nil)
		return nil
	}

	err := safeTeardown(rec.desc.teardown, rec.value)
	c.metrics.tornDown(rec.desc.name, err)
	if err != nil {
		c.log.Warn("teardown failed",
			zap.String("container", c.id),
			zap.String("component", rec.desc.name),
			zap.Error(err),
		)
		return TeardownError{Component: rec.desc.name, Err: err}
	}
	return nil
}

func safeTeardown(hook func(any) error, v any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrTeardownPanic, rec)
		}
	}()
	return hook(v)
}

// Instances describes the instances c has constructed, in construction order.
func (c *Container) Instances() []InstanceInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]InstanceInfo, len(c.records))
	for i, r := range c.records {
		out[i] = InstanceInfo{
			Component: r.desc.name,
			Container: c.id,
			Order:     r.order,
			CreatedAt: r.created,
			Teardown:  r.desc.teardown != nil,
			Disposed:  r.disposed,
		}
	}
	return out
}
