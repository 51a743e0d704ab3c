// Package compo is a declarative component container with lifetime
// management.
//
// The repository is organized as:
//
//   - di: registry, container, dependency shapes, disposal and the static graph
//   - config: environment driven settings (COMPO_*), optionally read from .env files
//   - logging: zap logger construction from config
//   - manifest: YAML component manifests converted to a di.Graph
//   - inspect: HTTP handler exposing a live container (components, instances, graph, metrics)
//   - cmd/compgraph: validates a manifest and prints its construction order
//   - examples/app: a small application wired through the container
//
// Start with examples/app for end-to-end wiring style.
package compo
