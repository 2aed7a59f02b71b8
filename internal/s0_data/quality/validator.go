package quality

import (
	"math"
	"sort"
	"time"

	"github.com/wonny/vwapcast/internal/contracts"
)

// Config holds data-check thresholds
type Config struct {
	MinRows     int     `yaml:"min_rows"`     // rows a company needs to be partitioned
	MinCoverage float64 `yaml:"min_coverage"` // non-missing ratio below which a column is flagged
}

// DefaultConfig returns the thresholds used by data-check
func DefaultConfig() Config {
	return Config{
		MinRows:     10,
		MinCoverage: 0.95,
	}
}

// SymbolStat describes one company's series
type SymbolStat struct {
	Symbol       string
	Rows         int
	First        time.Time
	Last         time.Time
	Ordered      bool // dates non-decreasing in input order
	Insufficient bool
}

// Snapshot is the result of a data check
type Snapshot struct {
	TotalRows    int
	Symbols      []SymbolStat // first-appearance order
	Coverage     map[contracts.Column]float64
	LowCoverage  []contracts.Column
	Insufficient int
}

// Passed reports whether every company can be trained
func (s *Snapshot) Passed() bool {
	return s.Insufficient == 0 && len(s.Symbols) > 0
}

// QualityGate validates loaded records before a run
// ⭐ SSOT: 입력 품질 검증
type QualityGate struct {
	config Config
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(config Config) *QualityGate {
	return &QualityGate{config: config}
}

// Check computes per-symbol row counts and per-column coverage
func (g *QualityGate) Check(records []contracts.Record) *Snapshot {
	snap := &Snapshot{
		TotalRows: len(records),
		Coverage:  make(map[contracts.Column]float64, len(contracts.NumericColumns)),
	}

	// 1. 종목별 통계
	pos := make(map[string]int)
	for _, rec := range records {
		i, ok := pos[rec.Symbol]
		if !ok {
			i = len(snap.Symbols)
			pos[rec.Symbol] = i
			snap.Symbols = append(snap.Symbols, SymbolStat{
				Symbol:  rec.Symbol,
				First:   rec.Date,
				Last:    rec.Date,
				Ordered: true,
			})
		}
		st := &snap.Symbols[i]
		if st.Rows > 0 && rec.Date.Before(st.Last) {
			st.Ordered = false
		}
		if rec.Date.Before(st.First) {
			st.First = rec.Date
		}
		if rec.Date.After(st.Last) {
			st.Last = rec.Date
		}
		st.Rows++
	}

	for i := range snap.Symbols {
		if snap.Symbols[i].Rows < g.config.MinRows {
			snap.Symbols[i].Insufficient = true
			snap.Insufficient++
		}
	}

	// 2. 컬럼 커버리지
	if len(records) == 0 {
		return snap
	}
	for _, c := range contracts.NumericColumns {
		present := 0
		for _, rec := range records {
			if v, _ := rec.Value(c); !math.IsNaN(v) {
				present++
			}
		}
		cov := float64(present) / float64(len(records))
		snap.Coverage[c] = cov
		if cov < g.config.MinCoverage {
			snap.LowCoverage = append(snap.LowCoverage, c)
		}
	}
	sort.Slice(snap.LowCoverage, func(i, j int) bool {
		return snap.LowCoverage[i] < snap.LowCoverage[j]
	})

	return snap
}
