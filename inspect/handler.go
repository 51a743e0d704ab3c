// Package inspect serves a read-only HTTP view of a live container.
package inspect

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/sghaida/compo/di"
)

// Component is the JSON view of one component of the container or one of its
// ancestors. Scope is the name of the container that owns it.
type Component struct {
	Name         string     `json:"name"`
	Scope        string     `json:"scope"`
	Provides     []string   `json:"provides"`
	Instance     bool       `json:"instance"`
	Constructors [][]string `json:"constructors,omitempty"`
	Properties   []string   `json:"properties,omitempty"`
	// Selected is the constructor the resolver would use, -1 when none
	// qualifies or the component is an instance.
	Selected int `json:"selected"`
}

// GraphReport is the JSON view of the static graph.
type GraphReport struct {
	Order    []string `json:"order"`
	Problems []string `json:"problems"`
}

type handler struct {
	c *di.Container
}

// NewHandler returns the inspection routes for c:
//
//	GET /components         components of c and its ancestors
//	GET /components/{name}  one component
//	GET /instances          instances c has constructed
//	GET /graph              construction order and problems
//	GET /metrics            Prometheus exposition, when g is not nil
//	GET /healthz            200 until c is disposed, 503 after
func NewHandler(c *di.Container, g prometheus.Gatherer) http.Handler {
	h := &handler{c: c}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/components", h.components)
	r.Get("/components/{name}", h.component)
	r.Get("/instances", h.instances)
	r.Get("/graph", h.graph)
	r.Get("/healthz", h.healthz)
	if g != nil {
		r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	}
	return r
}

func (h *handler) components(w http.ResponseWriter, _ *http.Request) {
	g := h.c.Graph()
	nodes := g.Nodes()
	out := make([]Component, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, view(g, n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) component(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	g := h.c.Graph()
	for _, n := range g.Nodes() {
		if n.Name == name {
			writeJSON(w, http.StatusOK, view(g, n))
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown component " + name})
}

func (h *handler) instances(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.c.Instances())
}

func (h *handler) graph(w http.ResponseWriter, _ *http.Request) {
	g := h.c.Graph()
	rep := GraphReport{Order: []string{}, Problems: []string{}}
	for _, err := range multierr.Errors(g.Validate()) {
		rep.Problems = append(rep.Problems, err.Error())
	}
	if order, err := g.ConstructionOrder(); err == nil {
		rep.Order = order
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	if h.c.Disposed() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "disposed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func view(g *di.Graph, n di.Node) Component {
	cv := Component{Name: n.Name, Scope: n.Scope, Provides: n.Provides, Instance: n.Instance, Selected: -1}
	for _, params := range n.Constructors {
		sig := make([]string, len(params))
		for i, p := range params {
			sig[i] = p.String()
		}
		cv.Constructors = append(cv.Constructors, sig)
	}
	for _, p := range n.Properties {
		cv.Properties = append(cv.Properties, p.String())
	}
	if idx, err := g.Constructor(n.Name); err == nil {
		cv.Selected = idx
	}
	return cv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
