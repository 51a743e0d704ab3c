package inspect_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sghaida/compo/di"
	"github.com/sghaida/compo/inspect"
)

type store struct{}

type api struct{ s *store }

type orphan struct{}

func newServer(t *testing.T, withMetrics bool) (*httptest.Server, *di.Container) {
	t.Helper()

	reg := di.NewRegistry().MustAdd(
		di.Component[*store]().Named("store").
			Constructor(func(di.Args) (*store, error) { return &store{}, nil }),
		di.Component[*api]().Named("api").
			Constructor(func(a di.Args) (*api, error) { return &api{s: di.Arg[*store](a, 0)}, nil }, di.Need[*store]()),
		di.Component[*orphan]().Named("broken").Provides(di.Named("broken")).
			Constructor(func(di.Args) (*orphan, error) { return &orphan{}, nil }, di.Dependency{Contract: di.Named("missing")}),
	)

	var opts []di.Option
	var gatherer prometheus.Gatherer
	if withMetrics {
		pr := prometheus.NewRegistry()
		m, err := di.NewMetrics(pr)
		require.NoError(t, err)
		opts = append(opts, di.WithMetrics(m))
		gatherer = pr
	}

	c, err := di.New(reg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Dispose() })

	srv := httptest.NewServer(inspect.NewHandler(c, gatherer))
	t.Cleanup(srv.Close)
	return srv, c
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

// TestComponents verifies every visible component is listed with its selected constructor.
func TestComponents(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, false)

	var got []inspect.Component
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/components", &got))
	require.Len(t, got, 3)

	assert.Equal(t, "store", got[0].Name)
	assert.Equal(t, 0, got[0].Selected)
	assert.Equal(t, "api", got[1].Name)
	assert.Equal(t, [][]string{{"direct " + di.ContractFor[*store]().ID()}}, got[1].Constructors)
	assert.Equal(t, -1, got[2].Selected)
}

// TestComponent_ByName verifies single lookups and 404s.
func TestComponent_ByName(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, false)

	var one inspect.Component
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/components/api", &one))
	assert.Equal(t, "api", one.Name)

	var miss map[string]string
	require.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/components/nope", &miss))
	assert.Contains(t, miss["error"], "nope")
}

// TestInstances verifies constructed instances appear in construction order.
func TestInstances(t *testing.T) {
	t.Parallel()

	srv, c := newServer(t, false)
	v, err := di.ResolveAll[*store](c)
	require.NoError(t, err)
	require.Len(t, v, 1)

	var got []di.InstanceInfo
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/instances", &got))
	require.Len(t, got, 1)
	assert.Equal(t, "store", got[0].Component)
	assert.Equal(t, c.ID(), got[0].Container)
}

// TestGraph verifies problems are reported and the order is empty while the graph is broken.
func TestGraph(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, false)

	var rep inspect.GraphReport
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/graph", &rep))
	require.Len(t, rep.Problems, 1)
	assert.Contains(t, rep.Problems[0], "missing")
	assert.Empty(t, rep.Order)
}

// TestGraph_ChildScope verifies a child's graph resolves parent components against the parent.
func TestGraph_ChildScope(t *testing.T) {
	t.Parallel()

	parent, err := di.New(di.NewRegistry().MustAdd(
		di.Component[*store]().Named("store").
			Constructor(func(di.Args) (*store, error) { return &store{}, nil }),
		di.Component[*api]().Named("api").
			Constructor(func(a di.Args) (*api, error) { return &api{s: di.Arg[*store](a, 0)}, nil }, di.Need[*store]()),
	), di.WithName("app"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = parent.Dispose() })

	child, err := parent.NewChild(di.NewRegistry().MustAdd(
		di.Component[*store]().Named("store").
			Constructor(func(di.Args) (*store, error) { return &store{}, nil }),
	), di.WithName("request"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = child.Dispose() })

	srv := httptest.NewServer(inspect.NewHandler(child, nil))
	t.Cleanup(srv.Close)

	var rep inspect.GraphReport
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/graph", &rep))
	assert.Empty(t, rep.Problems)
	assert.Equal(t, []string{"store@app", "api", "store"}, rep.Order)

	var one inspect.Component
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/components/store@app", &one))
	assert.Equal(t, "app", one.Scope)
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/components/api", &one))
	assert.Equal(t, "app", one.Scope)
	assert.Equal(t, 0, one.Selected)
}

// TestHealthz verifies health follows the container's disposal state.
func TestHealthz(t *testing.T) {
	t.Parallel()

	srv, c := newServer(t, false)

	var body map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/healthz", &body))
	assert.Equal(t, "ok", body["status"])

	require.NoError(t, c.Dispose())
	require.Equal(t, http.StatusServiceUnavailable, getJSON(t, srv.URL+"/healthz", &body))
	assert.Equal(t, "disposed", body["status"])
}

// TestMetrics verifies the exposition endpoint exists only with a gatherer.
func TestMetrics(t *testing.T) {
	t.Parallel()

	srv, c := newServer(t, true)
	_, err := di.ResolveAll[*store](c)
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `compo_container_constructions_total{component="store"} 1`)

	plain, _ := newServer(t, false)
	resp2, err := http.Get(plain.URL + "/metrics")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}
