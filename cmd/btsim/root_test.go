package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/behave/internal/core/bt"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func exampleTree(name string) string {
	return filepath.Join("..", "..", "examples", "trees", name)
}

func TestValidateExamples(t *testing.T) {
	out, err := execute(t, "validate", exampleTree("guard.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, `tree "guard" is valid (9 nodes)`)

	out, err = execute(t, "validate", exampleTree("lookout.json"))
	require.NoError(t, err)
	assert.Contains(t, out, `tree "lookout" is valid (5 nodes)`)
}

func TestValidateReportsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: [a]\nnodes:\n  a: {type: sequence, children: [b]}\n"), 0o600))

	_, err := execute(t, "validate", path)
	assert.ErrorIs(t, err, bt.ErrUnknownNode)

	_, err = execute(t, "validate")
	assert.Error(t, err)
}

func TestRunSimulation(t *testing.T) {
	out, err := execute(t, "run", exampleTree("lookout.json"),
		"--ticks", "3", "--interval", "0", "--agents", "2", "--log-level", "silent")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "lookout-0 ticks=3 watch=Succeeded", lines[0])
	assert.Equal(t, "lookout-1 ticks=3 watch=Succeeded", lines[1])
}

func TestRunRejectsBadFlags(t *testing.T) {
	_, err := execute(t, "run", exampleTree("lookout.json"), "--agents", "0", "--log-level", "silent")
	assert.ErrorContains(t, err, "--agents")

	_, err = execute(t, "run", exampleTree("lookout.json"), "--log-level", "loud")
	assert.ErrorContains(t, err, "unknown log level")
}
