package di

import (
	"fmt"
	"reflect"
)

// Teardowner is implemented by components that release resources when their
// container is disposed. Components of such types get the hook without
// calling OnTeardown.
type Teardowner interface {
	Teardown() error
}

// Definer is anything Registry.AddComponent accepts.
type Definer interface {
	Descriptor() (*Descriptor, error)
}

// Definition declares one component: how it is built, what it provides and
// how it is released. Build one with Component or Instance and hand it to
// Registry.AddComponent.
//
//	di.Component[*ConfigTest2]().
//		Provides(di.ContractFor[ITestFacade2]()).
//		Constructor(func(a di.Args) (*ConfigTest2, error) {
//			return NewConfigTest2(di.Arg[ITestFacade1](a, 0), di.Arg[Config](a, 1)), nil
//		}, di.Need[ITestFacade1](), di.Need[Config]())
type Definition[T any] struct {
	name      string
	self      Contract
	contracts []Contract
	ctors     []Constructor
	props     []Property
	teardown  func(T) error
	instance  T
	prebuilt  bool
}

// Component starts the definition of a component constructed by the container.
func Component[T any]() *Definition[T] {
	self := ContractFor[T]()
	return &Definition[T]{name: self.id, self: self}
}

// Instance starts the definition of a pre-built singleton. The container
// hands out v as is and never tears it down.
func Instance[T any](v T) *Definition[T] {
	d := Component[T]()
	d.instance = v
	d.prebuilt = true
	return d
}

// Named overrides the component name, which defaults to the identifier of T.
// Names must be unique within a registry, and so must T.
func (d *Definition[T]) Named(name string) *Definition[T] {
	d.name = name
	return d
}

// Provides adds contracts the component can be resolved as.
func (d *Definition[T]) Provides(contracts ...Contract) *Definition[T] {
	d.contracts = append(d.contracts, contracts...)
	return d
}

// Constructor adds a constructor. deps describe fn's arguments in order; fn
// reads them with Arg. When several constructors are declared, the resolver
// picks the satisfiable one with the most parameters.
func (d *Definition[T]) Constructor(fn func(Args) (T, error), deps ...Dependency) *Definition[T] {
	var build func(Args) (any, error)
	if fn != nil {
		build = func(a Args) (any, error) { return fn(a) }
	}
	d.ctors = append(d.ctors, Constructor{Params: append([]Dependency(nil), deps...), build: build})
	return d
}

// Property binds a dependency after construction. set receives the value in
// the shape dep asks for (T, []T, Lazy[T], ...).
//
// Properties are bound before the component is handed to anyone else, but
// while binding, the component is already visible to its own resolution
// chain, so two components can refer to each other this way.
func (d *Definition[T]) Property(name string, dep Dependency, set func(T, any) error) *Definition[T] {
	d.props = append(d.props, Property{Name: name, Dependency: dep, set: func(v any, p any) error {
		t, _ := v.(T)
		if set == nil {
			return nil
		}
		return set(t, p)
	}})
	return d
}

// OnTeardown sets the hook run when the owning container is disposed.
func (d *Definition[T]) OnTeardown(fn func(T) error) *Definition[T] {
	d.teardown = fn
	return d
}

// Descriptor validates the definition and freezes it.
func (d *Definition[T]) Descriptor() (*Descriptor, error) {
	implType := d.self.typ
	if d.prebuilt {
		rv := reflect.ValueOf(any(d.instance))
		if !rv.IsValid() || isNilValue(rv) {
			return nil, ErrNilInstance
		}
		implType = rv.Type()
	}

	desc := &Descriptor{
		name:     d.name,
		impl:     d.self,
		ctors:    append([]Constructor(nil), d.ctors...),
		props:    append([]Property(nil), d.props...),
		prebuilt: d.prebuilt,
	}
	if d.prebuilt {
		desc.instance = d.instance
	} else if len(d.ctors) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoConstructor, d.name)
	}
	for i, c := range d.ctors {
		if c.build == nil {
			return nil, fmt.Errorf("%w: %q constructor %d is nil", ErrNoConstructor, d.name, i)
		}
	}

	seen := map[string]bool{}
	for _, c := range append([]Contract{d.self}, d.contracts...) {
		if c.IsZero() || seen[c.id] {
			continue
		}
		if !c.satisfiedBy(implType) {
			return nil, ContractMismatchError{Component: d.name, Contract: c.id}
		}
		seen[c.id] = true
		desc.contracts = append(desc.contracts, c)
	}

	names := map[string]bool{}
	for _, p := range d.props {
		if names[p.Name] {
			return nil, DuplicatePropertyError{Component: d.name, Property: p.Name}
		}
		names[p.Name] = true
	}

	switch {
	case d.teardown != nil:
		hook := d.teardown
		desc.teardown = func(v any) error {
			t, _ := v.(T)
			return hook(t)
		}
	case implements[Teardowner](d.self.typ):
		desc.teardown = func(v any) error {
			if td, ok := v.(Teardowner); ok {
				return td.Teardown()
			}
			return nil
		}
	}
	return desc, nil
}

func implements[I any](t reflect.Type) bool {
	return t != nil && t.Implements(reflect.TypeFor[I]())
}

func isNilValue(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
