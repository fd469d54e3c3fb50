package checkpointer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// EpisodeFilename returns a function naming the checkpoint of an
// episode after path, so that model.bin is checkpointed at episode 3
// to model-3.bin
func EpisodeFilename(path string) func(episode int) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return func(episode int) string {
		return fmt.Sprintf("%s-%d%s", base, episode, ext)
	}
}
