package report

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog"
)

// Tone parameters of the chart cue
const (
	toneSampleRate = 44100
	toneBitDepth   = 16
	toneFrequency  = 440.0
	toneSeconds    = 1.0
	toneAmplitude  = 0.5
)

// ToneNotifier writes a short sine-tone WAV and rings the terminal bell.
// Notify returns immediately; call Wait before exiting.
type ToneNotifier struct {
	dir  string
	bell io.Writer
	log  zerolog.Logger
	wg   sync.WaitGroup
}

// NewToneNotifier writes cues under dir/<run_id>/. bell may be nil.
func NewToneNotifier(dir string, bell io.Writer, log zerolog.Logger) *ToneNotifier {
	return &ToneNotifier{
		dir:  dir,
		bell: bell,
		log:  log.With().Str("component", "report.notifier").Logger(),
	}
}

// CueFile returns the file name of a symbol's cue
func CueFile(symbol string) string {
	return symbol + "_cue.wav"
}

// Notify implements contracts.Notifier
func (n *ToneNotifier) Notify(ctx context.Context, runID, symbol string) {
	if n.bell != nil {
		fmt.Fprint(n.bell, "\a")
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if ctx.Err() != nil {
			return
		}
		path := filepath.Join(n.dir, runID, CueFile(symbol))
		if err := writeTone(path); err != nil {
			n.log.Warn().Err(err).Str("symbol", symbol).Msg("cue failed")
			return
		}
		n.log.Debug().Str("symbol", symbol).Str("path", path).Msg("cue written")
	}()
}

// Wait blocks until every pending cue is written
func (n *ToneNotifier) Wait() {
	n.wg.Wait()
}

// writeTone encodes a mono 16-bit sine wave
func writeTone(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	samples := int(toneSampleRate * toneSeconds)
	peak := toneAmplitude * float64(int(1)<<(toneBitDepth-1)-1)
	data := make([]int, samples)
	for i := range data {
		data[i] = int(peak * math.Sin(2*math.Pi*toneFrequency*float64(i)/toneSampleRate))
	}

	enc := wav.NewEncoder(f, toneSampleRate, toneBitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: toneSampleRate},
		Data:           data,
		SourceBitDepth: toneBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return enc.Close()
}
