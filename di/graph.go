package di

import (
	"go.uber.org/multierr"
)

// Node is one component in a static dependency graph.
type Node struct {
	Name         string
	Provides     []string
	Constructors [][]Dependency
	Properties   []Dependency
	Instance     bool
	// Scope names the scope the component is registered in. It is empty for
	// graphs without nested scopes.
	Scope string

	graph *Graph
}

// Graph is the dependency graph of a set of components, built without
// constructing anything. Registry.Graph and Container.Graph derive it from
// registrations; the manifest package builds it from a file.
//
// A graph may be nested in a parent graph with NewScope. Like a child
// container, a nested graph answers a contract from the innermost scope that
// has any candidate for it, and each component's own dependencies are looked
// up from the scope it is registered in.
type Graph struct {
	scope      string
	parent     *Graph
	nodes      []*Node
	byName     map[string]*Node
	byContract map[string][]*Node
}

func NewGraph() *Graph {
	return &Graph{
		byName:     map[string]*Node{},
		byContract: map[string][]*Node{},
	}
}

// NewScope returns a graph nested in g. Names only need to be unique within
// a scope; when an inner scope reuses a name, the outer component is reported
// as "name@scope".
func (g *Graph) NewScope(name string) *Graph {
	inner := NewGraph()
	inner.scope = name
	inner.parent = g
	return inner
}

// AddNode adds a component to the innermost scope of g. Names must be unique
// within the scope.
func (g *Graph) AddNode(n Node) error {
	if _, exists := g.byName[n.Name]; exists {
		return AlreadyRegisteredError{Component: n.Name}
	}
	node := &n
	node.Scope = g.scope
	node.graph = g
	g.nodes = append(g.nodes, node)
	g.byName[n.Name] = node
	seen := map[string]bool{}
	for _, id := range n.Provides {
		if seen[id] {
			continue
		}
		seen[id] = true
		g.byContract[id] = append(g.byContract[id], node)
	}
	return nil
}

func (g *Graph) addDescriptor(d *Descriptor) error {
	ids := make([]string, len(d.contracts))
	for i, c := range d.contracts {
		ids[i] = c.id
	}
	props := make([]Dependency, len(d.props))
	for i, p := range d.props {
		props[i] = p.Dependency
	}
	return g.AddNode(Node{
		Name:         d.name,
		Provides:     ids,
		Constructors: d.signatures(),
		Properties:   props,
		Instance:     d.prebuilt,
	})
}

// find returns the candidates for contract id seen from scope g.
func (g *Graph) find(id string) []*Node {
	for cur := g; cur != nil; cur = cur.parent {
		if ns := cur.byContract[id]; len(ns) > 0 {
			return ns
		}
	}
	return nil
}

// all returns every node of every scope, outermost scope first.
func (g *Graph) all() []*Node {
	if g.parent == nil {
		return g.nodes
	}
	return append(append([]*Node(nil), g.parent.all()...), g.nodes...)
}

// label is the name of n as reported by g.
func (g *Graph) label(n *Node) string {
	for cur := g; cur != nil && cur != n.graph; cur = cur.parent {
		if _, taken := cur.byName[n.Name]; taken {
			return n.Name + "@" + n.Scope
		}
	}
	return n.Name
}

// candidatesFor looks contracts up from the scope n is registered in.
func (g *Graph) candidatesFor(n *Node) candidateFunc {
	return func(c Contract) []string {
		ns := n.graph.find(c.id)
		out := make([]string, len(ns))
		for i, m := range ns {
			out[i] = g.label(m)
		}
		return out
	}
}

func (g *Graph) node(label string) (*Node, bool) {
	for _, n := range g.all() {
		if g.label(n) == label {
			return n, true
		}
	}
	return nil, false
}

// Nodes returns the components of every scope, outermost scope first and in
// insertion order within a scope.
func (g *Graph) Nodes() []Node {
	all := g.all()
	out := make([]Node, len(all))
	for i, n := range all {
		out[i] = *n
		out[i].Name = g.label(n)
	}
	return out
}

// Candidates returns the names of the components providing contract, as seen
// from the innermost scope.
func (g *Graph) Candidates(contract string) []string {
	ns := g.find(contract)
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = g.label(n)
	}
	return out
}

// Constructor returns the index of the constructor the resolver would pick
// for the named component.
func (g *Graph) Constructor(name string) (int, error) {
	n, ok := g.node(name)
	if !ok {
		return -1, ComponentNotFoundError{Contract: name}
	}
	if n.Instance {
		return -1, nil
	}
	return selectConstructor(name, n.Constructors, g.candidatesFor(n))
}

// edges returns the components that must be constructed before n.
func (g *Graph) edges(n *Node) ([]*Node, error) {
	if n.Instance {
		return nil, nil
	}
	idx, err := selectConstructor(g.label(n), n.Constructors, g.candidatesFor(n))
	if err != nil {
		return nil, err
	}
	var out []*Node
	for _, p := range n.Constructors[idx] {
		if p.Mode.eager() {
			out = append(out, n.graph.find(p.Contract.id)...)
		}
	}
	return out, nil
}

// Validate reports every component that cannot be constructed, every
// late-bound property that cannot be resolved, and every cycle through
// direct or array dependencies. Problems are combined with multierr.
func (g *Graph) Validate() error {
	var errs error
	for _, n := range g.all() {
		if _, err := g.edges(n); err != nil {
			errs = multierr.Append(errs, err)
		}
		for _, p := range n.Properties {
			if err := satisfiable([]Dependency{p}, g.candidatesFor(n)); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	}
	for _, cyc := range g.cycles() {
		errs = multierr.Append(errs, cyc)
	}
	return errs
}

// cycles lists each cycle once, found by depth-first search from every node
// in insertion order.
func (g *Graph) cycles() []error {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := map[*Node]int{}
	var stack []string
	var found []error

	var visit func(n *Node)
	visit = func(n *Node) {
		state[n] = visiting
		stack = append(stack, g.label(n))
		deps, _ := g.edges(n)
		for _, d := range deps {
			switch state[d] {
			case visiting:
				found = append(found, CyclicDependencyError{Path: cyclePath(stack, g.label(d))})
			case unvisited:
				visit(d)
			}
		}
		stack = stack[:len(stack)-1]
		state[n] = visited
	}

	for _, n := range g.all() {
		if state[n] == unvisited {
			visit(n)
		}
	}
	return found
}

// ConstructionOrder returns the components so that each comes after
// everything it needs built first. Independent components keep insertion
// order. It fails on the first component that cannot be constructed or the
// first cycle.
func (g *Graph) ConstructionOrder() ([]string, error) {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := map[*Node]int{}
	all := g.all()
	order := make([]string, 0, len(all))
	var stack []string

	var visit func(n *Node) error
	visit = func(n *Node) error {
		switch state[n] {
		case visited:
			return nil
		case visiting:
			return CyclicDependencyError{Path: cyclePath(stack, g.label(n))}
		}
		state[n] = visiting
		stack = append(stack, g.label(n))

		deps, err := g.edges(n)
		if err != nil {
			return err
		}
		for _, d := range deps {
			if err := visit(d); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		state[n] = visited
		order = append(order, g.label(n))
		return nil
	}

	for _, n := range all {
		if err := visit(n); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func cyclePath(stack []string, name string) []string {
	for i, s := range stack {
		if s == name {
			return append(append([]string(nil), stack[i:]...), name)
		}
	}
	return append(append([]string(nil), stack...), name)
}
