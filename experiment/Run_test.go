package experiment

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/griddqn/experiment/tracker"
)

func smallConfig(t *testing.T, model Model) Config {
	dir := t.TempDir()
	c := Default()
	c.NumEpisodes = 2
	c.GridShape = 4
	c.BatchSize = 4
	c.MemoCapacity = 50
	c.MaxEpisodeSteps = 40
	c.LogEvery = 1
	c.Model = model
	c.Seed = 11
	c.LossLog = filepath.Join(dir, "loss.txt")
	c.RewardLog = filepath.Join(dir, "output.txt")
	c.ReturnsFile = filepath.Join(dir, "returns.bin")
	c.LengthsFile = filepath.Join(dir, "lengths.bin")
	c.Checkpoint = filepath.Join(dir, "model.bin")
	c.CheckpointEvery = 1
	return c
}

func read(t *testing.T, path string) string {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestTrainWritesLogs(t *testing.T) {
	c := smallConfig(t, Linear)

	// Stale content is truncated
	require.NoError(t, os.WriteFile(c.LossLog, []byte("stale\n"), 0o644))

	result, err := Train(c, Options{Out: io.Discard}, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, result.Returns, 2)

	loss := read(t, c.LossLog)
	require.NotContains(t, loss, "stale")
	require.Equal(t, 2, strings.Count(loss, "Finished at: "))
	require.Equal(t, 2, strings.Count(loss, "Reward: "))
	require.Contains(t, loss, "Step: 4 Loss: ")

	rewards := read(t, c.RewardLog)
	require.True(t, strings.HasPrefix(rewards, "Episode_reward: "))

	saved, err := tracker.LoadData(c.ReturnsFile)
	require.NoError(t, err)
	require.Equal(t, result.Returns, saved)

	// Episode lengths match the finished lines of the loss log
	lengths, err := tracker.LoadData(c.LengthsFile)
	require.NoError(t, err)
	require.Equal(t, result.Lengths, lengths)
	require.Len(t, lengths, 2)
	for _, n := range lengths {
		require.Contains(t, loss, fmt.Sprintf("Finished at: %d\n", int(n)))
		require.LessOrEqual(t, n, float64(c.MaxEpisodeSteps))
	}

	for _, name := range []string{"model.bin", "model-1.bin", "model-2.bin"} {
		_, err := os.Stat(filepath.Join(filepath.Dir(c.Checkpoint), name))
		require.NoError(t, err, name)
	}

	// The greedy run over the checkpointed weights is reproduced
	greedy, err := Render(c, Options{Out: io.Discard}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, result.GreedyReturn, greedy)
	require.Equal(t, 2, strings.Count(read(t, c.RewardLog),
		"Episode_reward: "))
}

func TestTrainModels(t *testing.T) {
	for _, model := range []Model{Coord, MultiAgent, ActorCritic} {
		t.Run(string(model), func(t *testing.T) {
			c := smallConfig(t, model)
			c.GridShape = 5
			c.Checkpoint = ""

			result, err := Train(c, Options{Out: io.Discard}, zerolog.Nop())
			require.NoError(t, err)
			require.Len(t, result.Returns, 2)
			require.Contains(t, read(t, c.RewardLog), "Episode_reward: ")
		})
	}
}

func TestTrainWithoutLengths(t *testing.T) {
	c := smallConfig(t, Linear)
	c.Checkpoint = ""
	c.LengthsFile = ""

	result, err := Train(c, Options{Out: io.Discard}, zerolog.Nop())
	require.NoError(t, err)
	require.Nil(t, result.Lengths)
	_, err = os.Stat(filepath.Join(filepath.Dir(c.LossLog), "lengths.bin"))
	require.True(t, os.IsNotExist(err))
}

func TestRenderNeedsCheckpoint(t *testing.T) {
	c := smallConfig(t, Linear)
	c.Checkpoint = ""
	_, err := Render(c, Options{Out: io.Discard}, zerolog.Nop())
	require.Error(t, err)
}
