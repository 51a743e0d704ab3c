package di

// Constructor is one way of building a component.
type Constructor struct {
	Params []Dependency

	build func(Args) (any, error)
}

// Property is a dependency bound after construction.
type Property struct {
	Name       string
	Dependency Dependency

	set func(instance, value any) error
}

// Descriptor is the registered, immutable form of a Definition.
type Descriptor struct {
	name      string
	impl      Contract
	contracts []Contract
	ctors     []Constructor
	props     []Property
	teardown  func(any) error
	instance  any
	prebuilt  bool
	seq       int
}

// Name returns the component name.
func (d *Descriptor) Name() string { return d.name }

// Implementation returns the contract of the implementation type.
func (d *Descriptor) Implementation() Contract { return d.impl }

// Contracts returns every contract the component provides, the implementation
// type first.
func (d *Descriptor) Contracts() []Contract { return append([]Contract(nil), d.contracts...) }

// Constructors returns the declared constructors.
func (d *Descriptor) Constructors() []Constructor { return append([]Constructor(nil), d.ctors...) }

// Properties returns the late-bound properties.
func (d *Descriptor) Properties() []Property { return append([]Property(nil), d.props...) }

// HasTeardown reports whether instances are released on disposal.
func (d *Descriptor) HasTeardown() bool { return d.teardown != nil }

// Prebuilt reports whether the component was registered as an instance.
func (d *Descriptor) Prebuilt() bool { return d.prebuilt }

// Sequence returns the registration index within the registry.
func (d *Descriptor) Sequence() int { return d.seq }

// signatures returns the parameter lists of the constructors.
func (d *Descriptor) signatures() [][]Dependency {
	out := make([][]Dependency, len(d.ctors))
	for i, c := range d.ctors {
		out[i] = c.Params
	}
	return out
}
