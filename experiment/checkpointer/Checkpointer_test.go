package checkpointer

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type text string

func (t text) Save(w io.Writer) error {
	_, err := io.WriteString(w, string(t))
	return err
}

func TestEpisodeFilename(t *testing.T) {
	name := EpisodeFilename(filepath.Join("runs", "model.bin"))
	require.Equal(t, filepath.Join("runs", "model-3.bin"), name(3))
	require.Equal(t, "weights-12", EpisodeFilename("weights")(12))
}

func TestNStep(t *testing.T) {
	dir := t.TempDir()
	check, err := NewNStep(2, text("weights"),
		EpisodeFilename(filepath.Join(dir, "model.bin")))
	require.NoError(t, err)

	for episode := 1; episode <= 5; episode++ {
		require.NoError(t, check.Checkpoint(episode))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Equal(t, []string{"model-2.bin", "model-4.bin"}, names)

	data, err := os.ReadFile(filepath.Join(dir, "model-4.bin"))
	require.NoError(t, err)
	require.Equal(t, "weights", string(data))

	_, err = NewNStep(0, text(""), EpisodeFilename("model.bin"))
	require.Error(t, err)
}
