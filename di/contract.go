package di

import (
	"reflect"
	"strconv"
)

// Contract identifies something a component can be resolved as.
//
// Contracts compare by identifier only. A contract derived from a Go type
// (ContractFor) also remembers the type, so registration can check that a
// component really implements it. Contracts built with Named carry no type
// and are used by manifests and other declaration-only tooling.
type Contract struct {
	id  string
	typ reflect.Type
}

// ContractFor returns the contract for type T.
//
// The identifier is the package-qualified type name ("example.com/app.Store",
// "*example.com/app.journal"). Unnamed types fall back to reflect's spelling.
func ContractFor[T any]() Contract {
	t := reflect.TypeFor[T]()
	return Contract{id: typeID(t), typ: t}
}

// Named returns an untyped contract with the given identifier.
func Named(id string) Contract { return Contract{id: id} }

// ID returns the contract identifier.
func (c Contract) ID() string { return c.id }

// String implements fmt.Stringer.
func (c Contract) String() string { return c.id }

// IsZero reports whether c is the empty contract.
func (c Contract) IsZero() bool { return c.id == "" }

// Type returns the Go type behind c, or nil for named contracts.
func (c Contract) Type() reflect.Type { return c.typ }

// satisfiedBy reports whether values of t can be handed out as c.
func (c Contract) satisfiedBy(t reflect.Type) bool {
	if c.typ == nil || t == nil {
		return true
	}
	return t.AssignableTo(c.typ)
}

func typeID(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	switch {
	case t.Name() != "" && t.PkgPath() != "":
		return t.PkgPath() + "." + t.Name()
	case t.Kind() == reflect.Pointer && t.Elem().Name() != "" && t.Elem().PkgPath() != "":
		return "*" + typeID(t.Elem())
	default:
		return t.String()
	}
}

// Mode describes how a dependency is handed to its consumer.
type Mode int

const (
	// ModeDirect injects the single matching component.
	ModeDirect Mode = iota
	// ModeAll injects every matching component, possibly none.
	ModeAll
	// ModeLazy injects a Lazy handle resolving the single match on call.
	ModeLazy
	// ModeLazyAll injects a LazyAll handle resolving every match on call.
	ModeLazyAll
	// ModeAsync injects a Future completed by background resolution.
	ModeAsync
	// ModeAsyncAll injects a Future of every match, resolved in the background.
	ModeAsyncAll
)

var modeNames = [...]string{
	ModeDirect:   "direct",
	ModeAll:      "all",
	ModeLazy:     "lazy",
	ModeLazyAll:  "lazy-all",
	ModeAsync:    "async",
	ModeAsyncAll: "async-all",
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m.valid() {
		return modeNames[m]
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// ParseMode parses the names produced by Mode.String. The empty string is
// ModeDirect.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeDirect, nil
	}
	for m, name := range modeNames {
		if name == s {
			return Mode(m), nil
		}
	}
	return 0, UnknownModeError{Mode: s}
}

func (m Mode) valid() bool { return m >= ModeDirect && m <= ModeAsyncAll }

// single reports whether the mode needs exactly one candidate.
func (m Mode) single() bool { return m == ModeDirect || m == ModeLazy || m == ModeAsync }

// eager reports whether the dependency is built before its consumer.
func (m Mode) eager() bool { return m == ModeDirect || m == ModeAll }

// Dependency is one constructor parameter or bound property: what to look up
// and in which shape to deliver it.
//
// Build dependencies with Need, NeedAll, NeedLazy, NeedLazyAll, NeedAsync and
// NeedAsyncAll so the injected value is typed. A Dependency literal without a
// shaper delivers untyped values (any, []any, Lazy[any], ...).
type Dependency struct {
	Contract Contract
	Mode     Mode

	shape shaper
}

// Need declares a direct dependency on T.
func Need[T any]() Dependency { return dependency[T](ModeDirect) }

// NeedAll declares a dependency on every component providing T, injected as []T.
func NeedAll[T any]() Dependency { return dependency[T](ModeAll) }

// NeedLazy declares a deferred dependency on T, injected as Lazy[T].
func NeedLazy[T any]() Dependency { return dependency[T](ModeLazy) }

// NeedLazyAll declares a deferred dependency on all T, injected as LazyAll[T].
func NeedLazyAll[T any]() Dependency { return dependency[T](ModeLazyAll) }

// NeedAsync declares a background dependency on T, injected as *Future[T].
func NeedAsync[T any]() Dependency { return dependency[T](ModeAsync) }

// NeedAsyncAll declares a background dependency on all T, injected as *Future[[]T].
func NeedAsyncAll[T any]() Dependency { return dependency[T](ModeAsyncAll) }

func dependency[T any](m Mode) Dependency {
	c := ContractFor[T]()
	return Dependency{Contract: c, Mode: m, shape: typed[T]{contract: c}}
}

// String renders the dependency as "mode contract".
func (d Dependency) String() string { return d.Mode.String() + " " + d.Contract.String() }

// check reports why a dependency cannot be resolved at all, independent of
// what is registered.
func (d Dependency) check(index int) error {
	switch {
	case d.Contract.IsZero():
		return UnsupportedDependencyError{Index: index, Reason: "empty contract"}
	case !d.Mode.valid():
		return UnsupportedDependencyError{Index: index, Reason: "unknown " + d.Mode.String()}
	}
	return nil
}

func (d Dependency) shaper() shaper {
	if d.shape == nil {
		return typed[any]{contract: d.Contract}
	}
	return d.shape
}

// Args holds the resolved constructor arguments in declaration order.
type Args []any

// Arg returns argument i as T. It returns the zero value when i is out of
// range or the argument has another shape.
func Arg[T any](a Args, i int) T {
	var zero T
	if i < 0 || i >= len(a) {
		return zero
	}
	v, ok := a[i].(T)
	if !ok {
		return zero
	}
	return v
}
