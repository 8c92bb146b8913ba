package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sanonone/molgraph/pkg/engine"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runApp(t, args...)
	return out, err
}

func runApp(t *testing.T, args ...string) (string, *app, error) {
	t.Helper()
	var out bytes.Buffer
	a := newApp()
	a.root.SetOut(&out)
	a.root.SetErr(io.Discard)
	a.root.SetArgs(args)
	err := a.execute()
	return out.String(), a, err
}

func TestInfoFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "molgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: error
entities:
  - name: pep
    chains:
      - name: A
        sequence: GASK
      - name: B
        sequence: GG
`), 0o644))

	out, err := run(t, "--config", path, "info")
	require.NoError(t, err)

	var got []engine.Summary
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "pep", got[0].Name)
	assert.Equal(t, 2, got[0].Chains)
	assert.Equal(t, 24, got[0].Atoms)
	assert.Equal(t, 2, got[0].Fragments)
}

func TestSelectWithSequenceFlag(t *testing.T) {
	out, err := run(t, "--log-level", "error", "-s", "GASK", "select", "seq", "aname=CA and rnum=2:3")
	require.NoError(t, err)

	var got []engine.AtomRecord
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "A.ALA2.CA", got[0].QualifiedName())
	assert.Equal(t, "A.SER3.CA", got[1].QualifiedName())

	out, err = run(t, "--log-level", "error", "-s", "GASK", "select", "--residues", "seq", "rnum=4 and aname=O")
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 4)
}

func TestWithinAndTrace(t *testing.T) {
	out, err := run(t, "--log-level", "error", "-s", "GG", "within", "seq", "0", "0", "0", "0.5")
	require.NoError(t, err)
	var atoms []engine.AtomRecord
	require.NoError(t, yaml.Unmarshal([]byte(out), &atoms))
	require.Len(t, atoms, 1, "only the chain root sits at the origin")
	assert.Equal(t, "A.GLY1.N", atoms[0].QualifiedName())

	out, err = run(t, "--log-level", "error", "-s", "GGG", "trace", "seq")
	require.NoError(t, err)
	var tr struct {
		Roots    []engine.AtomRecord    `yaml:"roots"`
		Torsions []engine.TorsionRecord `yaml:"torsions"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &tr))
	assert.Len(t, tr.Roots, 1)
	assert.Len(t, tr.Torsions, 6)
}

func TestCommandErrors(t *testing.T) {
	_, err := run(t, "--log-level", "error", "-s", "GG", "select", "seq", "rnum=")
	assert.Error(t, err)

	_, err = run(t, "--log-level", "error", "select", "missing", "rnum=1")
	assert.ErrorIs(t, err, engine.ErrNotFound)

	_, err = run(t, "--log-level", "error", "-s", "GG", "within", "seq", "0", "x", "0", "1")
	assert.Error(t, err)

	_, err = run(t, "--log-level", "loud", "info")
	assert.Error(t, err)

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "info")
	assert.Error(t, err)
}

func TestEngineClosedAfterFailedCommand(t *testing.T) {
	_, a, err := runApp(t, "--log-level", "error", "-s", "GG", "select", "seq", "aname=")
	require.Error(t, err)
	require.NotNil(t, a.eng, "the engine opens before the subcommand runs")

	_, err = a.eng.Info("seq")
	assert.ErrorIs(t, err, engine.ErrClosed)

	_, a, err = runApp(t, "--log-level", "error", "-s", "GG", "info")
	require.NoError(t, err)
	assert.Empty(t, a.eng.Entities())
}

func TestMetricsFlag(t *testing.T) {
	out, err := run(t, "--log-level", "error", "-s", "GA", "--metrics", "select", "seq", "aname=N")
	require.NoError(t, err)
	assert.Contains(t, out, "molgraph_selections_total{status=ok}")
}
