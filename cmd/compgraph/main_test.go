// compo/cmd/compgraph/main_test.go
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validManifest = `
components:
  - name: settings
    instance: true
  - name: journal
    provides: [Journal]
    constructors:
      - params: [{contract: settings}]
  - name: reporter
    constructors:
      - params: []
      - params: [{contract: Journal}]
`

const brokenManifest = `
components:
  - name: a
    constructors:
      - params: [{contract: b}]
  - name: b
    constructors:
      - params: [{contract: a, mode: all}]
  - name: c
    constructors:
      - params: [{contract: nowhere}]
`

// writeFile writes content into a fresh temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCmd(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	err := run(args, &out, &errOut)
	return out.String(), errOut.String(), err
}

// -------------------------
// flags
// -------------------------

func TestRun_FlagErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing_manifest", nil, "missing -manifest"},
		{"bad_format", []string{"-manifest", "x.yaml", "-format", "xml"}, "-format must be text or json"},
		{"unknown_flag", []string{"-nope"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := runCmd(tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_MissingFiles(t *testing.T) {
	t.Parallel()

	_, _, err := runCmd("-manifest", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeFile(t, "m.yaml", validManifest)
	_, _, err = runCmd("-manifest", path, "-env", filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}

func TestRun_InvalidManifest(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "m.yaml", "components:\n  - name: a\n")
	_, _, err := runCmd("-manifest", path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProblems)
	assert.Contains(t, err.Error(), "constructors")
}

// -------------------------
// text output
// -------------------------

func TestRun_TextValid(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "m.yaml", validManifest)
	out, _, err := runCmd("-manifest", path, "-no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "3 components")
	assert.Contains(t, out, "construction order:")
	assert.NotContains(t, out, "problems")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "   1. settings (instance)", lines[2])
	assert.Equal(t, "   2. journal (constructor 0 of 1)", lines[3])
	assert.Equal(t, "   3. reporter (constructor 1 of 2)", lines[4])
}

func TestRun_TextProblems(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "m.yaml", brokenManifest)
	out, errOut, err := runCmd("-manifest", path, "-no-color")
	require.ErrorIs(t, err, ErrProblems)

	assert.Contains(t, out, "2 problems")
	assert.Contains(t, out, "dependency cycle a -> b -> a")
	assert.Contains(t, out, `"nowhere"`)
	assert.NotContains(t, out, "construction order:")
	assert.Contains(t, errOut, "graph has problems")
}

// -------------------------
// json output
// -------------------------

func TestRun_JSON(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "m.yaml", validManifest)
	out, _, err := runCmd("-manifest", path, "-format", "json")
	require.NoError(t, err)

	var rep Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.True(t, rep.Valid)
	assert.Equal(t, []string{"settings", "journal", "reporter"}, rep.Order)
	assert.Empty(t, rep.Problems)
	require.Len(t, rep.Components, 3)
	assert.Equal(t, 1, rep.Components[2].Selected)
	assert.Equal(t, []string{"journal", "Journal"}, rep.Components[1].Provides)
}

func TestRun_JSONProblems(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "m.yaml", brokenManifest)
	out, _, err := runCmd("-manifest", path, "-format", "json")
	require.ErrorIs(t, err, ErrProblems)

	var rep Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.False(t, rep.Valid)
	assert.Len(t, rep.Problems, 2)
	assert.Empty(t, rep.Order)
	assert.Equal(t, -1, rep.Components[2].Selected)
}

// -------------------------
// env
// -------------------------

func TestRun_EnvFileDebugLogging(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "m.yaml", validManifest)
	env := writeFile(t, "ci.env", "COMPO_LOG_LEVEL=debug\nCOMPO_LOG_FORMAT=json\n")

	_, errOut, err := runCmd("-manifest", path, "-env", env)
	require.NoError(t, err)
	assert.Contains(t, errOut, `"msg":"manifest loaded"`)
}

func TestRun_ExampleManifest(t *testing.T) {
	t.Parallel()

	out, _, err := runCmd("-manifest", filepath.Join("..", "..", "examples", "app", "components.yaml"), "-no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "8 components")
}
