// Package di provides a declarative component container for Go.
//
// Components are declared, not discovered: a Definition names the contracts a
// component can be resolved as, one or more constructors together with the
// dependencies each constructor needs, optional late-bound properties and a
// teardown hook. Nothing is reflected out of constructor signatures.
//
// Dependencies are requested in one of six shapes:
//
//   - Need[T]: the single component providing T
//   - NeedAll[T]: every component providing T, in registration order
//   - NeedLazy[T] / NeedLazyAll[T]: a handle that resolves on call
//   - NeedAsync[T] / NeedAsyncAll[T]: a Future completed in the background
//
// Deferred shapes are how two components may refer to each other; a cycle
// through direct or array dependencies is reported as CyclicDependencyError.
//
// A Container owns the instances it builds. Each component is constructed at
// most once per container, even when many goroutines ask for it at the same
// time. Dispose releases instances in reverse construction order and reports
// every failed teardown. Child containers shadow their parent's components
// and fall back to the parent for everything else.
//
// Quick start
//
//	reg := di.NewRegistry().MustAdd(
//		di.Instance(Config{Name: "prod"}),
//		di.Component[*ConfigTest1]().
//			Provides(di.ContractFor[ITestFacade1]()).
//			Constructor(func(a di.Args) (*ConfigTest1, error) {
//				return &ConfigTest1{cfg: di.Arg[Config](a, 0)}, nil
//			}, di.Need[Config]()),
//	)
//	c, err := di.New(reg, di.WithLogger(log))
//	if err != nil { ... }
//	defer c.Dispose()
//	f, err := di.Resolve[ITestFacade1](c)
//
// Registry.Graph and Container.Graph expose the static dependency graph for
// validation and ordering without constructing anything.
//
// Import
//
//	"github.com/sghaida/compo/di"
package di
