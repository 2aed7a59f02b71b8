package s0_data

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Downloader fetches a URL into a local file
type Downloader interface {
	Download(ctx context.Context, url, dst string) (int64, error)
}

// IsRemote reports whether the archive location is an http(s) URL
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ResolveArchive returns a local path for location.
// Remote archives are downloaded once into cacheDir and reused unless refresh is set.
func ResolveArchive(ctx context.Context, d Downloader, location, cacheDir string, refresh bool, log zerolog.Logger) (string, error) {
	if !IsRemote(location) {
		return location, nil
	}

	u, _ := url.Parse(location)
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "archive.zip"
	}
	dst := filepath.Join(cacheDir, strings.ReplaceAll(u.Host, ":", "_"), name)

	log = log.With().Str("component", "s0_data.remote").Logger()

	if !refresh {
		if info, err := os.Stat(dst); err == nil && info.Size() > 0 {
			log.Debug().Str("path", dst).Msg("using cached archive")
			return dst, nil
		}
	}

	n, err := d.Download(ctx, location, dst)
	if err != nil {
		return "", fmt.Errorf("download archive: %w", err)
	}

	log.Info().Str("url", location).Str("path", dst).Int64("bytes", n).Msg("archive downloaded")
	return dst, nil
}
