package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioCSV = `A,A,A
A,A,B
B,B,A
B,B,B
A,B,A
B,A,B
`

const labelledCSV = `A,A,A,x
A,A,B,x
B,B,A,y
B,B,B,y
A,B,A,x
B,A,B,y
`

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func writeInput(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRunAssignments(t *testing.T) {
	path := writeInput(t, scenarioCSV)
	out := runCommand(t, "--init", "cao", "-k", "2", path)
	assert.True(t, strings.HasPrefix(out, "0\t0\n1\t0\n2\t1\n3\t1\n"), out)
	assert.Contains(t, out, "cost: 4 (iterations: 1, converged: true)")
}

func TestRunContingency(t *testing.T) {
	path := writeInput(t, labelledCSV)
	out := runCommand(t, "--init", "cao", "--label-column", "3", path)
	assert.Contains(t, out, "CLUSTER 1")
	assert.Contains(t, out, "cost: 4")
}

func TestRunConfigFileWithFlagOverride(t *testing.T) {
	path := writeInput(t, labelledCSV)
	conf := filepath.Join(t.TempDir(), "kmodes.toml")
	require.NoError(t, os.WriteFile(conf, []byte("k = 3\ninit = \"cao\"\n"), 0o600))

	// The flag wins over the file's k = 3.
	out := runCommand(t, "--config", conf, "-k", "2", "--label-column", "3", path)
	assert.NotContains(t, out, "CLUSTER 3")
}

func TestRunMultiRun(t *testing.T) {
	path := writeInput(t, labelledCSV)
	out := runCommand(t, "--multi-run", "--seed", "5", "--pre-runs", "3", "--max-attempts", "10", "--label-column", "3", path)
	assert.Contains(t, out, "cost:")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	path := writeInput(t, scenarioCSV)
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-k", "9", path})
	assert.Error(t, cmd.Execute())
}
