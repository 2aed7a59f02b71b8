package s0_data

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/vwapcast/internal/contracts"
)

// DateLayout is the date format of the Date column
const DateLayout = "2006-01-02"

// ArchiveSource loads records from a zip archive holding one CSV, or a plain CSV file
// ⭐ SSOT: 아카이브 입력은 여기서만
type ArchiveSource struct {
	path    string
	csvName string
	log     zerolog.Logger
}

// NewArchiveSource creates an archive data source.
// csvName selects the file inside the archive; empty picks the first .csv entry.
func NewArchiveSource(path, csvName string, log zerolog.Logger) *ArchiveSource {
	return &ArchiveSource{
		path:    path,
		csvName: csvName,
		log:     log.With().Str("component", "s0_data.archive").Logger(),
	}
}

// Name implements contracts.DataSource
func (s *ArchiveSource) Name() string {
	return "archive:" + filepath.Base(s.path)
}

// Load implements contracts.DataSource
func (s *ArchiveSource) Load(ctx context.Context) ([]contracts.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(s.path), ".csv") {
		f, err := os.Open(s.path)
		if err != nil {
			return nil, fmt.Errorf("open csv: %w", err)
		}
		defer f.Close()
		return s.read(f, filepath.Base(s.path))
	}

	zr, err := zip.OpenReader(s.path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", s.path, err)
	}
	defer zr.Close()

	entry, err := s.pickEntry(zr.File)
	if err != nil {
		return nil, err
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", entry.Name, err)
	}
	defer rc.Close()

	return s.read(rc, entry.Name)
}

func (s *ArchiveSource) pickEntry(files []*zip.File) (*zip.File, error) {
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		if s.csvName != "" {
			if f.Name == s.csvName || filepath.Base(f.Name) == s.csvName {
				return f, nil
			}
			continue
		}
		if strings.EqualFold(filepath.Ext(f.Name), ".csv") {
			return f, nil
		}
	}
	if s.csvName != "" {
		return nil, fmt.Errorf("archive %s has no entry %q", s.path, s.csvName)
	}
	return nil, fmt.Errorf("archive %s has no .csv entry", s.path)
}

func (s *ArchiveSource) read(r io.Reader, name string) ([]contracts.Record, error) {
	start := time.Now()
	records, err := ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	s.log.Info().
		Str("file", name).
		Int("rows", len(records)).
		Dur("duration", time.Since(start)).
		Msg("records loaded")

	return records, nil
}

// ReadCSV parses a stock CSV with the full header.
// A missing required column yields *contracts.MissingColumnError before any row is read.
func ReadCSV(r io.Reader) ([]contracts.Record, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &contracts.MissingColumnError{Columns: columnNames(contracts.Schema)}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var records []contracts.Record
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// headerIndex maps every schema column to its position in header
func headerIndex(header []string) (map[contracts.Column]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		pos[h] = i
	}

	index := make(map[contracts.Column]int, len(contracts.Schema))
	var missing []string
	for _, c := range contracts.Schema {
		i, ok := pos[string(c)]
		if !ok {
			missing = append(missing, string(c))
			continue
		}
		index[c] = i
	}
	if len(missing) > 0 {
		return nil, &contracts.MissingColumnError{Columns: missing}
	}
	return index, nil
}

func parseRow(row []string, index map[contracts.Column]int) (contracts.Record, error) {
	var rec contracts.Record

	date, err := time.Parse(DateLayout, strings.TrimSpace(row[index[contracts.ColDate]]))
	if err != nil {
		return rec, fmt.Errorf("parse date: %w", err)
	}
	rec.Date = date
	rec.Symbol = strings.TrimSpace(row[index[contracts.ColSymbol]])
	rec.Series = strings.TrimSpace(row[index[contracts.ColSeries]])

	for _, c := range contracts.NumericColumns {
		v, err := parseFloat(row[index[c]])
		if err != nil {
			return rec, fmt.Errorf("parse %s: %w", c, err)
		}
		rec.Set(c, v)
	}
	return rec, nil
}

// parseFloat treats empty cells as missing (NaN)
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func columnNames(cols []contracts.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = string(c)
	}
	return names
}
