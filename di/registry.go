package di

import (
	"errors"
	"fmt"
	"sync"
)

// ErrRegistryPanic is returned if a definition panics while being registered.
var ErrRegistryPanic = errors.New("registry: panic during AddComponent")

// Registry records the components known to an application.
//
// It is meant to be filled once at startup. Containers take a snapshot when
// they are created, so components added afterwards are only seen by
// containers created afterwards.
//
// Expected usage:
//
//	reg := di.NewRegistry()
//	if err := reg.AddComponent(di.Instance(cfg)); err != nil { ... }
//	c, err := di.New(reg)
type Registry struct {
	mu         sync.RWMutex
	descs      []*Descriptor
	byName     map[string]*Descriptor
	byImpl     map[string]*Descriptor
	byContract map[string][]*Descriptor
}

func NewRegistry() *Registry {
	return &Registry{
		byName:     map[string]*Descriptor{},
		byImpl:     map[string]*Descriptor{},
		byContract: map[string][]*Descriptor{},
	}
}

// AddComponent validates def and records it. A registry holds at most one
// component per name and one per concrete type; either repeat is an
// AlreadyRegisteredError. It converts panics raised by the definition into
// errors.
func (r *Registry) AddComponent(def Definer) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrRegistryPanic, rec)
		}
	}()

	desc, err := def.Descriptor()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[desc.name]; exists {
		return AlreadyRegisteredError{Component: desc.name}
	}
	if prev, exists := r.byImpl[desc.impl.id]; exists {
		return AlreadyRegisteredError{Component: desc.name, Type: desc.impl.id, Existing: prev.name}
	}
	desc.seq = len(r.descs)
	r.descs = append(r.descs, desc)
	r.byName[desc.name] = desc
	r.byImpl[desc.impl.id] = desc
	for _, c := range desc.contracts {
		r.byContract[c.id] = append(r.byContract[c.id], desc)
	}
	return nil
}

// MustAdd registers every definition and returns the registry for chaining.
// It panics on the first error; useful in examples and tests where a broken
// registration should fail fast.
func (r *Registry) MustAdd(defs ...Definer) *Registry {
	for _, def := range defs {
		if err := r.AddComponent(def); err != nil {
			panic(err)
		}
	}
	return r
}

// FindDescriptors returns the components providing c in registration order.
// Absence is an empty result, never an error.
func (r *Registry) FindDescriptors(c Contract) []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Descriptor(nil), r.byContract[c.id]...)
}

// Lookup returns the component registered under name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// Descriptors returns every component in registration order.
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Descriptor(nil), r.descs...)
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descs)
}

// Graph returns the static dependency graph of the registered components.
func (r *Registry) Graph() *Graph {
	g := NewGraph()
	for _, d := range r.Descriptors() {
		// names are unique in a registry
		_ = g.addDescriptor(d)
	}
	return g
}

// snapshot copies the lookup tables for a container.
func (r *Registry) snapshot() *catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cat := &catalog{
		descs:      append([]*Descriptor(nil), r.descs...),
		byContract: make(map[string][]*Descriptor, len(r.byContract)),
	}
	for id, ds := range r.byContract {
		cat.byContract[id] = append([]*Descriptor(nil), ds...)
	}
	return cat
}

// catalog is an immutable registry snapshot; safe for concurrent lookups.
type catalog struct {
	descs      []*Descriptor
	byContract map[string][]*Descriptor
}

func (c *catalog) find(id string) []*Descriptor { return c.byContract[id] }
