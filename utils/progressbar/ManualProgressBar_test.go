package progressbar

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManualProgressBar(t *testing.T) {
	var buf bytes.Buffer
	p := NewManualProgressBar(&buf, 10, 4)

	p.Increment()
	require.Contains(t, p.String(), "25.00%")
	require.Equal(t, 3, strings.Count(p.String(), "█"))

	for i := 0; i < 10; i++ {
		p.Increment()
	}
	require.Contains(t, p.String(), "100.00%")

	p.Display()
	p.Close()
	require.Contains(t, buf.String(), "100.00%")
}
