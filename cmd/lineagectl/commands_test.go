package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vocal-lineage/backend/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = `
people:
  - name: Manuel Garcia
  - name: Mathilde Marchesi
  - name: Emma Calve
operas:
  - name: Carmen
relationships:
  - kind: TAUGHT
    from: Manuel Garcia
    to: Mathilde Marchesi
  - kind: TAUGHT
    from: Mathilde Marchesi
    to: Emma Calve
  - kind: PREMIERED_ROLE_IN
    from: Emma Calve
    to: Carmen
    role: Carmen
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--seed", path}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestPathCommand(t *testing.T) {
	out, err := run(t, "path", "garcia", "calve")
	require.NoError(t, err)
	assert.Equal(t,
		"1. Manuel Garcia -[taught]-> Mathilde Marchesi\n"+
			"2. Mathilde Marchesi -[taught]-> Emma Calve\n",
		out)
}

func TestPathCommandHops(t *testing.T) {
	_, err := run(t, "path", "garcia", "calve", "--hops", "1")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestNeighborhoodCommandJSON(t *testing.T) {
	out, err := run(t, "--json", "neighborhood", "Marchesi")
	require.NoError(t, err)

	var n common.Neighborhood
	require.NoError(t, json.Unmarshal([]byte(out), &n))
	assert.Equal(t, "Mathilde Marchesi", n.Center.Name)
	require.Len(t, n.Teachers, 1)
	assert.Equal(t, "Manuel Garcia", n.Teachers[0].Name)
}

func TestCountsCommand(t *testing.T) {
	out, err := run(t, "counts", "Carmen", "--kind", "opera")
	require.NoError(t, err)

	var body struct {
		Node   string         `json:"node"`
		Counts map[string]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "Carmen", body.Node)
	assert.Equal(t, 1, body.Counts["premieredRoleIn"])
}

func TestSearchCommand(t *testing.T) {
	out, err := run(t, "search", "Mathilde Marchesi")
	require.NoError(t, err)
	assert.Equal(t, "exact\tMathilde Marchesi\n", out)

	_, err = run(t, "search", "x", "--kind", "painting")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}
