package di_test

import (
	"sync"
	"sync/atomic"

	"github.com/sghaida/compo/di"
)

type Config struct {
	Name string
}

type ITestFacade1 interface {
	Config() Config
}

type ITestFacade2 interface {
	TestFacade1() ITestFacade1
}

type ConfigTest1 struct {
	cfg Config
}

func (c *ConfigTest1) Config() Config { return c.cfg }

type ConfigTest2 struct {
	facade1 ITestFacade1
	cfg     Config
}

func (c *ConfigTest2) TestFacade1() ITestFacade1 { return c.facade1 }

func configTest1(built *atomic.Int32) *di.Definition[*ConfigTest1] {
	return di.Component[*ConfigTest1]().
		Named("ConfigTest1").
		Provides(di.ContractFor[ITestFacade1]()).
		Constructor(func(a di.Args) (*ConfigTest1, error) {
			if built != nil {
				built.Add(1)
			}
			return &ConfigTest1{cfg: di.Arg[Config](a, 0)}, nil
		}, di.Need[Config]())
}

func configTest2() *di.Definition[*ConfigTest2] {
	return di.Component[*ConfigTest2]().
		Named("ConfigTest2").
		Provides(di.ContractFor[ITestFacade2]()).
		Constructor(func(a di.Args) (*ConfigTest2, error) {
			return &ConfigTest2{
				facade1: di.Arg[ITestFacade1](a, 0),
				cfg:     di.Arg[Config](a, 1),
			}, nil
		}, di.Need[ITestFacade1](), di.Need[Config]())
}

type Sink interface {
	Name() string
}

type namedSink struct {
	name string
}

func (s *namedSink) Name() string { return s.name }

// A registry holds one component per concrete type, so fixtures that register
// several sinks or resources side by side give each its own type through a
// kind parameter.
type (
	kindA struct{}
	kindB struct{}
	kindC struct{}
)

type sinkOf[K any] struct {
	name string
}

func (s *sinkOf[K]) Name() string { return s.name }

func sinkOfKind[K any](name string) *di.Definition[*sinkOf[K]] {
	return di.Component[*sinkOf[K]]().
		Named(name).
		Provides(di.ContractFor[Sink]()).
		Constructor(func(di.Args) (*sinkOf[K], error) { return &sinkOf[K]{name: name}, nil })
}

// sink defines a Sink component. Names that share a registry in the tests map
// to different kinds.
func sink(name string) di.Definer {
	switch name {
	case "a", "p1", "c1", "local", "plain":
		return sinkOfKind[kindA](name)
	case "b", "p2", "hooked":
		return sinkOfKind[kindB](name)
	case "c":
		return sinkOfKind[kindC](name)
	}
	panic("sink: no kind for " + name)
}

// teardownLog records teardown calls in order; safe for concurrent use.
type teardownLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *teardownLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *teardownLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type resource[K any] struct {
	name string
}

// trackedKind defines a *resource[K] component resolved through the named
// contract name. Its teardown hook logs the name and returns fail.
func trackedKind[K any](name string, log *teardownLog, fail error) *di.Definition[*resource[K]] {
	return di.Component[*resource[K]]().
		Named(name).
		Provides(di.Named(name)).
		Constructor(func(di.Args) (*resource[K], error) { return &resource[K]{name: name}, nil }).
		OnTeardown(func(r *resource[K]) error {
			log.add(r.name)
			return fail
		})
}

// tracked picks the kind from the name the same way sink does.
func tracked(name string, log *teardownLog, fail error) di.Definer {
	switch name {
	case "a", "journal", "shared", "store", "flaky":
		return trackedKind[kindA](name, log, fail)
	case "b", "local":
		return trackedKind[kindB](name, log, fail)
	case "c":
		return trackedKind[kindC](name, log, fail)
	}
	panic("tracked: no kind for " + name)
}

func names(sinks []Sink) []string {
	out := make([]string, len(sinks))
	for i, s := range sinks {
		out[i] = s.Name()
	}
	return out
}
