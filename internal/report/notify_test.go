package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToneNotifier(t *testing.T) {
	dir := t.TempDir()
	var bell bytes.Buffer
	n := NewToneNotifier(dir, &bell, zerolog.Nop())

	n.Notify(context.Background(), "run-1", "TCS")
	n.Wait()

	assert.Equal(t, "\a", bell.String())

	f, err := os.Open(filepath.Join(dir, "run-1", CueFile("TCS")))
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint32(toneSampleRate), dec.SampleRate)
	assert.Equal(t, uint16(1), dec.NumChans)
	assert.Equal(t, uint16(toneBitDepth), dec.BitDepth)
}
