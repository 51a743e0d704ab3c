// Command compgraph checks a component manifest without running anything.
//
// It reads a manifest (see package manifest), builds the same static graph a
// container would resolve, and reports:
//
//   - components that cannot be constructed (missing or ambiguous
//     single-valued dependencies, unsupported parameters)
//   - late-bound properties that cannot be resolved
//   - cycles through direct or array dependencies
//   - the order in which the components would be constructed
//
// Lazy and async dependencies never form cycles, so they are the way to let
// two components refer to each other.
//
// Usage
//
//	compgraph -manifest examples/app/components.yaml
//	compgraph -manifest components.yaml -format json
//	compgraph -manifest components.yaml -env .env.ci -no-color
//
// Flags
//
//	-manifest  path to a yaml or json manifest (required)
//	-format    text (default) or json
//	-env       .env file with COMPO_* settings; COMPO_LOG_LEVEL=debug logs progress to stderr
//	-no-color  plain text output
//
// The exit status is 1 when the manifest cannot be read or the graph has
// problems, 0 otherwise.
package main
