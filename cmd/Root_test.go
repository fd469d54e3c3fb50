package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/griddqn/experiment"
	"github.com/samuelfneumann/griddqn/expreplay"
)

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"num_episodes": 7, "batch_size": 32, "model": "coord"}`),
		0o644))

	configFile = path
	defer func() { configFile = "" }()

	var c experiment.Config
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configFlags(fs, &c)
	require.NoError(t, fs.Parse([]string{"--batch_size", "16", "--lr", "0.01",
		"--sampler", "fifo", "--lengths_file", "lengths.bin"}))

	require.NoError(t, resolveConfig(fs, &c))
	require.Equal(t, 7, c.NumEpisodes)
	require.Equal(t, 16, c.BatchSize)
	require.Equal(t, 0.01, c.LR)
	require.Equal(t, experiment.Coord, c.Model)
	require.Equal(t, 1000, c.MemoCapacity)
	require.Equal(t, expreplay.Fifo, c.Sampler)
	require.Equal(t, "lengths.bin", c.LengthsFile)
}

func TestDefaultsWithoutConfigFile(t *testing.T) {
	var c experiment.Config
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configFlags(fs, &c)
	require.NoError(t, fs.Parse(nil))
	require.NoError(t, resolveConfig(fs, &c))
	require.Equal(t, experiment.Default(), c)
}

func TestRootCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range RootCommand().Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"train", "hunt", "reinforce", "render",
		"plot"} {
		require.True(t, names[name], name)
	}
}
