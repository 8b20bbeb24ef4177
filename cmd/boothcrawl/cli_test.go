package main_test

import (
	"bytes"
	"testing"

	"github.com/alecthomas/kong"
	main "github.com/fwojciec/boothcrawl/cmd/boothcrawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allCommands = []string{"add", "import", "list", "enable", "disable", "reset", "run", "runs", "booths"}

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	helpOutput := stdout.String()
	for _, cmd := range allCommands {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
}

func TestCLI_RunDefaults(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	parser, err := kong.New(cli, kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"run", "venues"})
	require.NoError(t, err)

	assert.Equal(t, []string{"venues"}, cli.Run.Sources)
	assert.Equal(t, "10m0s", cli.Run.Deadline.String())
	assert.Equal(t, 4, cli.Run.Concurrency)
	assert.Equal(t, "6h0m0s", cli.Run.Freshness.String())
	assert.InDelta(t, 50.0, cli.Run.Radius, 1e-9)
	assert.False(t, cli.Run.Browser)
}

func TestCLI_AddRejectsUnknownExtractor(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	parser, err := kong.New(cli, kong.Exit(func(int) {}), kong.Writers(&bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"add", "venues", "https://venues.example", "--extractor", "magic"})
	require.Error(t, err)
}
