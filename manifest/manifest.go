// Package manifest reads declarative component manifests.
//
// A manifest lists components by name together with the contracts they
// provide, their constructor signatures and late-bound properties, without
// any code. It is what cmd/compgraph validates: the resulting di.Graph has the
// same selection and cycle rules as a live container.
//
//	components:
//	  - name: reporter
//	    provides: [Reporter]
//	    constructors:
//	      - params:
//	          - {contract: Journal}
//	          - {contract: Sink, mode: all}
//	    properties:
//	      - {name: scheduler, contract: Scheduler, mode: lazy}
//
// YAML is the native format; JSON documents parse as well.
package manifest

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/sghaida/compo/di"
)

// Manifest is a parsed component manifest.
type Manifest struct {
	Components []Component `yaml:"components" json:"components"`
}

// Component declares one component.
type Component struct {
	Name         string        `yaml:"name" json:"name"`
	Provides     []string      `yaml:"provides,omitempty" json:"provides,omitempty"`
	Instance     bool          `yaml:"instance,omitempty" json:"instance,omitempty"`
	Constructors []Constructor `yaml:"constructors,omitempty" json:"constructors,omitempty"`
	Properties   []Property    `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// Constructor is one constructor signature.
type Constructor struct {
	Params []Param `yaml:"params" json:"params"`
}

// Param is one constructor parameter. Mode defaults to direct.
type Param struct {
	Contract string `yaml:"contract" json:"contract"`
	Mode     string `yaml:"mode,omitempty" json:"mode,omitempty"`
}

// Property is a late-bound dependency.
type Property struct {
	Name     string `yaml:"name" json:"name"`
	Contract string `yaml:"contract" json:"contract"`
	Mode     string `yaml:"mode,omitempty" json:"mode,omitempty"`
}

// FieldError reports an unusable manifest entry.
type FieldError struct {
	Component string
	Field     string
	Reason    string
}

// Error implements the error interface.
func (e FieldError) Error() string {
	// Example: manifest: component "reporter": constructors[0].params[1].mode: unknown mode "soon"
	var b strings.Builder
	b.WriteString("manifest: ")
	if e.Component != "" {
		b.WriteString("component " + strconv.Quote(e.Component) + ": ")
	}
	b.WriteString(e.Field + ": " + e.Reason)
	return b.String()
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse decodes and validates a manifest. Unknown fields are errors; an
// empty document is an empty manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate reports every structural problem: missing or duplicate names,
// missing contracts, unknown modes, and components that are neither
// instances nor constructible.
func (m *Manifest) Validate() error {
	var errs error
	seen := map[string]bool{}
	fail := func(component, field, reason string) {
		errs = multierr.Append(errs, FieldError{Component: component, Field: field, Reason: reason})
	}

	for i, c := range m.Components {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			fail("", "components["+strconv.Itoa(i)+"].name", "required")
			continue
		}
		if seen[name] {
			fail(name, "name", "duplicate")
		}
		seen[name] = true

		if !c.Instance && len(c.Constructors) == 0 {
			fail(name, "constructors", "required unless instance is true")
		}
		for ci, ctor := range c.Constructors {
			for pi, p := range ctor.Params {
				field := "constructors[" + strconv.Itoa(ci) + "].params[" + strconv.Itoa(pi) + "]"
				checkDep(fail, name, field, p.Contract, p.Mode)
			}
		}
		props := map[string]bool{}
		for pi, p := range c.Properties {
			field := "properties[" + strconv.Itoa(pi) + "]"
			if strings.TrimSpace(p.Name) == "" {
				fail(name, field+".name", "required")
			} else if props[p.Name] {
				fail(name, field+".name", "duplicate "+strconv.Quote(p.Name))
			}
			props[p.Name] = true
			checkDep(fail, name, field, p.Contract, p.Mode)
		}
	}
	return errs
}

func checkDep(fail func(component, field, reason string), component, field, contract, mode string) {
	if strings.TrimSpace(contract) == "" {
		fail(component, field+".contract", "required")
	}
	if _, err := di.ParseMode(mode); err != nil {
		fail(component, field+".mode", "unknown mode "+strconv.Quote(mode))
	}
}

// Graph converts the manifest into a dependency graph. Every component
// provides its own name in addition to the listed contracts.
func (m *Manifest) Graph() (*di.Graph, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	g := di.NewGraph()
	for _, c := range m.Components {
		n := di.Node{
			Name:     c.Name,
			Provides: append([]string{c.Name}, c.Provides...),
			Instance: c.Instance,
		}
		for _, ctor := range c.Constructors {
			params := make([]di.Dependency, len(ctor.Params))
			for i, p := range ctor.Params {
				params[i] = dependency(p.Contract, p.Mode)
			}
			n.Constructors = append(n.Constructors, params)
		}
		for _, p := range c.Properties {
			n.Properties = append(n.Properties, dependency(p.Contract, p.Mode))
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// dependency assumes the mode has been validated.
func dependency(contract, mode string) di.Dependency {
	md, _ := di.ParseMode(mode)
	return di.Dependency{Contract: di.Named(contract), Mode: md}
}
