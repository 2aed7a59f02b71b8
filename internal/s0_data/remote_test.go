package s0_data

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDownloader struct {
	calls int
	body  string
	err   error
}

func (f *fakeDownloader) Download(ctx context.Context, url, dst string) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	return int64(len(f.body)), os.WriteFile(dst, []byte(f.body), 0o644)
}

func TestIsRemote(t *testing.T) {
	tests := []struct {
		location string
		want     bool
	}{
		{"stockdata.zip", false},
		{"/data/stockdata.zip", false},
		{"http://example.com/stockdata.zip", true},
		{"https://example.com:8443/a/b.csv", true},
		{"ftp://example.com/x.zip", false},
		{"https://", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRemote(tt.location), tt.location)
	}
}

func TestResolveArchive(t *testing.T) {
	ctx := context.Background()
	cache := t.TempDir()

	t.Run("local path untouched", func(t *testing.T) {
		d := &fakeDownloader{}
		got, err := ResolveArchive(ctx, d, "stockdata.zip", cache, false, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, "stockdata.zip", got)
		assert.Zero(t, d.calls)
	})

	t.Run("download then cache", func(t *testing.T) {
		d := &fakeDownloader{body: sampleCSV}
		url := "https://example.com:8443/data/nifty.csv"

		got, err := ResolveArchive(ctx, d, url, cache, false, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cache, "example.com_8443", "nifty.csv"), got)
		assert.Equal(t, 1, d.calls)

		again, err := ResolveArchive(ctx, d, url, cache, false, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, got, again)
		assert.Equal(t, 1, d.calls, "cached file reused")

		_, err = ResolveArchive(ctx, d, url, cache, true, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, 2, d.calls, "refresh forces download")

		records, err := NewArchiveSource(got, "", zerolog.Nop()).Load(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("download error", func(t *testing.T) {
		d := &fakeDownloader{err: errors.New("boom")}
		_, err := ResolveArchive(ctx, d, "https://example.com/x.zip", t.TempDir(), false, zerolog.Nop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}
