package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	main "github.com/fwojciec/boothcrawl/cmd/boothcrawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain_Run_HelpShowsKongOutput(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--help"}, stdout, stderr)
	require.NoError(t, err)

	helpOutput := stdout.String()
	for _, cmd := range allCommands {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
	assert.Contains(t, helpOutput, "Usage:")
	assert.Contains(t, helpOutput, "Flags:")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")

	err := m.Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}

func TestMain_Run_SourceLifecycle(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	run := func(args ...string) (string, string, error) {
		t.Helper()
		m := main.NewMain()
		m.DBPath = dbPath
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		err := m.Run(context.Background(), args, stdout, stderr)
		return stdout.String(), stderr.String(), err
	}

	out, _, err := run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "No sources found")

	out, _, err = run("add", "city-guide", "https://venues.example/booths", "--extractor", "schemaorg", "--trust", "80", "--country", "US")
	require.NoError(t, err)
	assert.Contains(t, out, `Added source "city-guide"`)

	out, _, err = run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "city-guide")
	assert.Contains(t, out, "schemaorg")
	assert.Contains(t, out, "idle")
	assert.Contains(t, out, "never")

	out, _, err = run("disable", "city-guide")
	require.NoError(t, err)
	assert.Contains(t, out, `Disabled source "city-guide"`)

	out, _, err = run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "false")

	out, _, err = run("reset", "city-guide")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to reset")

	out, _, err = run("runs")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")

	out, _, err = run("booths")
	require.NoError(t, err)
	assert.Contains(t, out, "No booths found")

	_, stderr, err := run("enable", "no-such-source")
	require.Error(t, err)
	assert.Contains(t, stderr, "not found")
}

func TestMain_Run_Import(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
sources:
  - name: city-guide
    urls: [https://venues.example/booths]
    extractor: schemaorg
    trust: 80
  - name: blog
    urls: [https://blog.example/photobooths]
    enabled: false
`), 0644))

	m := main.NewMain()
	m.DBPath = filepath.Join(dir, "test.db")
	stdout := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"import", file}, stdout, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Imported 2 sources (0 skipped, 0 failed)")

	m = main.NewMain()
	m.DBPath = filepath.Join(dir, "test.db")
	stdout = &bytes.Buffer{}

	err = m.Run(context.Background(), []string{"import", file}, stdout, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Imported 0 sources (2 skipped, 0 failed)")
}

func TestMain_Run_DBFlagOverridesPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := main.NewMain()
	m.DBPath = filepath.Join(dir, "ignored.db")

	err := m.Run(context.Background(), []string{"--db", filepath.Join(dir, "flag.db"), "list"}, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "flag.db"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "flag.db"), m.DBPath)
}
