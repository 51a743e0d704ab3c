package di

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrDisposed is returned when resolving from a disposed container.
	ErrDisposed = errors.New("di: container disposed")

	// ErrConstructorPanic is wrapped when a constructor or property setter panics.
	ErrConstructorPanic = errors.New("di: panic during construction")

	// ErrTeardownPanic is wrapped when a teardown hook panics.
	ErrTeardownPanic = errors.New("di: panic during teardown")

	// ErrNilInstance is returned when a nil value is registered as an instance.
	ErrNilInstance = errors.New("di: nil instance")

	// ErrNoConstructor is returned when a component is registered without any
	// constructor.
	ErrNoConstructor = errors.New("di: component declares no constructor")

	// ErrNilRegistry is returned when a container is created without a registry.
	ErrNilRegistry = errors.New("di: nil registry")
)

// ComponentNotFoundError is returned when nothing provides a contract.
type ComponentNotFoundError struct{ Contract string }

// Error implements the error interface.
func (e ComponentNotFoundError) Error() string {
	// Example: di: no component provides "example.com/app.Store"
	return "di: no component provides " + strconv.Quote(e.Contract)
}

// AmbiguousComponentError is returned when a single value is requested for a
// contract that several components provide.
type AmbiguousComponentError struct {
	Contract   string
	Candidates []string
}

// Error implements the error interface.
func (e AmbiguousComponentError) Error() string {
	// Example: di: "example.com/app.Sink" is ambiguous (a, b)
	return "di: " + strconv.Quote(e.Contract) + " is ambiguous (" + strings.Join(e.Candidates, ", ") + ")"
}

// NoSuitableConstructorError is returned when none of a component's
// constructors can be used. Causes holds one error per rejected constructor.
type NoSuitableConstructorError struct {
	Component string
	Reason    string
	Causes    []error
}

// Error implements the error interface.
func (e NoSuitableConstructorError) Error() string {
	var b strings.Builder
	b.WriteString("di: no suitable constructor for ")
	b.WriteString(strconv.Quote(e.Component))
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	for i, c := range e.Causes {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(c.Error())
	}
	return b.String()
}

// Unwrap exposes the per-constructor causes to errors.Is and errors.As.
func (e NoSuitableConstructorError) Unwrap() []error { return e.Causes }

// CyclicDependencyError is returned when constructing a component requires
// constructing itself. Path lists the components from the outermost request
// to the repeated one.
type CyclicDependencyError struct{ Path []string }

// Error implements the error interface.
func (e CyclicDependencyError) Error() string {
	return "di: dependency cycle " + strings.Join(e.Path, " -> ")
}

// AlreadyRegisteredError is returned when a component name, or the concrete
// type behind it, is registered twice. Type and Existing are set for the
// latter: the repeated type and the component already holding it.
type AlreadyRegisteredError struct {
	Component string
	Type      string
	Existing  string
}

// Error implements the error interface.
func (e AlreadyRegisteredError) Error() string {
	if e.Type != "" {
		// Example: di: component "b": type "*app.sink" already registered as "a"
		return "di: component " + strconv.Quote(e.Component) + ": type " + strconv.Quote(e.Type) +
			" already registered as " + strconv.Quote(e.Existing)
	}
	return "di: component " + strconv.Quote(e.Component) + " already registered"
}

// ContractMismatchError is returned when a component declares a contract its
// type does not implement.
type ContractMismatchError struct {
	Component string
	Contract  string
}

// Error implements the error interface.
func (e ContractMismatchError) Error() string {
	return "di: component " + strconv.Quote(e.Component) + " does not implement " + strconv.Quote(e.Contract)
}

// DuplicatePropertyError is returned when a component binds two properties
// under the same name.
type DuplicatePropertyError struct {
	Component string
	Property  string
}

// Error implements the error interface.
func (e DuplicatePropertyError) Error() string {
	return "di: component " + strconv.Quote(e.Component) + " binds property " + strconv.Quote(e.Property) + " twice"
}

// UnsupportedDependencyError marks a parameter whose shape the resolver
// cannot serve.
type UnsupportedDependencyError struct {
	Index  int
	Reason string
}

// Error implements the error interface.
func (e UnsupportedDependencyError) Error() string {
	return "di: unsupported parameter " + strconv.Itoa(e.Index) + " (" + e.Reason + ")"
}

// UnknownModeError is returned by ParseMode.
type UnknownModeError struct{ Mode string }

// Error implements the error interface.
func (e UnknownModeError) Error() string {
	return "di: unknown dependency mode " + strconv.Quote(e.Mode)
}

// WrongTypeError is returned when a resolved component cannot be handed out as
// the requested Go type.
type WrongTypeError struct {
	Contract string
	GotType  string
}

// Error implements the error interface.
func (e WrongTypeError) Error() string {
	// Example: di: "svc" resolved to wrong type (*app.journal)
	return "di: " + strconv.Quote(e.Contract) + " resolved to wrong type (" + e.GotType + ")"
}

// ConstructionError wraps an error returned by a constructor or property setter.
type ConstructionError struct {
	Component string
	Err       error
}

// Error implements the error interface.
func (e ConstructionError) Error() string {
	return "di: constructing " + strconv.Quote(e.Component) + ": " + e.Err.Error()
}

// Unwrap returns the constructor's error.
func (e ConstructionError) Unwrap() error { return e.Err }

// TeardownError wraps a failure of one component's teardown hook.
type TeardownError struct {
	Component string
	Err       error
}

// Error implements the error interface.
func (e TeardownError) Error() string {
	return "di: teardown of " + strconv.Quote(e.Component) + ": " + e.Err.Error()
}

// Unwrap returns the hook's error.
func (e TeardownError) Unwrap() error { return e.Err }
