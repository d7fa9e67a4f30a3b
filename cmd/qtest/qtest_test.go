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

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newCLI()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunFromStdin(t *testing.T) {
	out, err := execute(t, "new\nit b\nit a\nsort\nfree\n", "run")
	require.NoError(t, err)
	assert.Contains(t, out, "l = [a b]")
}

func TestRunFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.cmd")
	require.NoError(t, os.WriteFile(path, []byte("new\nih x 3\nsize\nfree\n"), 0644))
	out, err := execute(t, "", "run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Queue size = 3")
}

func TestRunReportsFailures(t *testing.T) {
	_, err := execute(t, "new\nit a\nrh b\nfree\n", "run")
	assert.ErrorIs(t, err, errFailures)
}

func TestRunMissingScript(t *testing.T) {
	_, err := execute(t, "", "run", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestFuzz(t *testing.T) {
	out, err := execute(t, "", "fuzz", "--ops", "500", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "COMMAND")
}

func TestEnv(t *testing.T) {
	out, err := execute(t, "", "env")
	require.NoError(t, err)
	assert.Contains(t, out, "QTEST_TIME_LIMIT")
	assert.Contains(t, out, "QTEST_FAIL_PROB")
}
