package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/vwapcast/internal/contracts"
	"github.com/wonny/vwapcast/pkg/redis"
)

// File names inside a run directory
const (
	ReportFile  = "report.json"
	ResultsFile = "results.csv"
	latestFile  = "latest.json"
)

// FileStore keeps reports under root/<run_id>/ and mirrors the newest one to root/latest.json
// ⭐ SSOT: 리포트 파일 저장은 여기서만
type FileStore struct {
	root string
}

// NewFileStore creates a file-backed report store
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// Root returns the store directory
func (s *FileStore) Root() string {
	return s.root
}

// RunDir returns the directory of a run
func (s *FileStore) RunDir(runID string) (string, error) {
	if err := validateID(runID); err != nil {
		return "", err
	}
	return filepath.Join(s.root, runID), nil
}

// Save implements contracts.ReportStore
func (s *FileStore) Save(ctx context.Context, rep *contracts.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir, err := s.RunDir(rep.RunID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, ReportFile), data); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, ResultsFile))
	if err != nil {
		return fmt.Errorf("create results csv: %w", err)
	}
	if err := WriteCSV(f, rep.Results); err != nil {
		f.Close()
		return fmt.Errorf("write results csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	return writeAtomic(filepath.Join(s.root, latestFile), data)
}

// Latest implements contracts.ReportStore
func (s *FileStore) Latest(ctx context.Context) (*contracts.RunReport, error) {
	return s.read(filepath.Join(s.root, latestFile))
}

// Get implements contracts.ReportStore
func (s *FileStore) Get(ctx context.Context, runID string) (*contracts.RunReport, error) {
	dir, err := s.RunDir(runID)
	if err != nil {
		return nil, contracts.ErrReportNotFound
	}
	return s.read(filepath.Join(dir, ReportFile))
}

// ArtifactPath resolves a file inside a run directory, if it exists
func (s *FileStore) ArtifactPath(runID, name string) (string, error) {
	dir, err := s.RunDir(runID)
	if err != nil {
		return "", contracts.ErrReportNotFound
	}
	if err := validateID(name); err != nil {
		return "", contracts.ErrReportNotFound
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", contracts.ErrReportNotFound
	}
	return path, nil
}

// Runs lists stored run IDs, newest first.
// Run IDs are timestamps so lexical order is chronological.
func (s *FileStore) Runs() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	var runs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, e.Name(), ReportFile)); err != nil {
			continue
		}
		runs = append(runs, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(runs)))
	return runs, nil
}

// Prune removes all but the newest keep runs and returns the removed IDs
func (s *FileStore) Prune(ctx context.Context, keep int) ([]string, error) {
	if keep < 1 {
		return nil, fmt.Errorf("keep must be >= 1, got %d", keep)
	}
	runs, err := s.Runs()
	if err != nil {
		return nil, err
	}
	if len(runs) <= keep {
		return nil, nil
	}

	var removed []string
	for _, id := range runs[keep:] {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := os.RemoveAll(filepath.Join(s.root, id)); err != nil {
			return removed, fmt.Errorf("remove run %s: %w", id, err)
		}
		removed = append(removed, id)
	}
	return removed, nil
}

func (s *FileStore) read(path string) (*contracts.RunReport, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, contracts.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var rep contracts.RunReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}
	return &rep, nil
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}

// validateID rejects empty names and anything that could escape the store root
func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("invalid name %q", id)
	}
	return nil
}

// RedisStore caches reports in Redis in front of another store.
// Cache failures are logged and never fail the call.
type RedisStore struct {
	next  contracts.ReportStore
	cache *redis.Cache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewRedisStore wraps next with a read-through cache
func NewRedisStore(next contracts.ReportStore, cache *redis.Cache, ttl time.Duration, log zerolog.Logger) *RedisStore {
	return &RedisStore{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   log.With().Str("component", "report.redis_store").Logger(),
	}
}

// Save implements contracts.ReportStore
func (s *RedisStore) Save(ctx context.Context, rep *contracts.RunReport) error {
	if err := s.next.Save(ctx, rep); err != nil {
		return err
	}
	s.put(ctx, redis.ReportKey(rep.RunID), rep)
	s.put(ctx, redis.LatestReportKey(), rep)
	return nil
}

// Latest implements contracts.ReportStore
func (s *RedisStore) Latest(ctx context.Context) (*contracts.RunReport, error) {
	return s.lookup(ctx, redis.LatestReportKey(), func() (*contracts.RunReport, error) {
		return s.next.Latest(ctx)
	})
}

// Get implements contracts.ReportStore
func (s *RedisStore) Get(ctx context.Context, runID string) (*contracts.RunReport, error) {
	return s.lookup(ctx, redis.ReportKey(runID), func() (*contracts.RunReport, error) {
		return s.next.Get(ctx, runID)
	})
}

func (s *RedisStore) lookup(ctx context.Context, key string, load func() (*contracts.RunReport, error)) (*contracts.RunReport, error) {
	var rep contracts.RunReport
	found, err := s.cache.Get(ctx, key, &rep)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
	}
	if found {
		return &rep, nil
	}

	loaded, err := load()
	if err != nil {
		return nil, err
	}
	s.put(ctx, key, loaded)
	return loaded, nil
}

func (s *RedisStore) put(ctx context.Context, key string, rep *contracts.RunReport) {
	if err := s.cache.Set(ctx, key, rep, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}
