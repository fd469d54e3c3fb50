package checkpointer

import (
	"os"

	"github.com/pkg/errors"
)

// nStep implements checkpointing every N episodes
type nStep struct {
	interval int
	object   Serializable // Object to save

	// filename names the file of the checkpoint taken at an episode,
	// see EpisodeFilename
	filename func(episode int) string
}

// NewNStep returns a checkpointer that checkpoints every n episodes
func NewNStep(n int, object Serializable,
	filename func(episode int) string) (Checkpointer, error) {
	if n <= 0 {
		return nil, errors.Errorf("newNStep: interval must be > 0, have(%v)",
			n)
	}
	return &nStep{
		interval: n,
		object:   object,
		filename: filename,
	}, nil
}

// Checkpoint saves the Checkpointer's tracked object if episode is a
// multiple of the interval
func (n *nStep) Checkpoint(episode int) error {
	if episode%n.interval != 0 {
		return nil
	}
	return Save(n.filename(episode), n.object)
}

// Save saves object to the file at path
func Save(path string, object Serializable) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "checkpoint")
	}
	if err := object.Save(f); err != nil {
		f.Close()
		return errors.Wrap(err, "checkpoint")
	}
	return f.Close()
}
