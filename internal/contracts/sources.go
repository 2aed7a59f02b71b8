package contracts

import (
	"context"
	"errors"
)

// ErrReportNotFound is returned by ReportStore lookups
var ErrReportNotFound = errors.New("report not found")

// DataSource supplies the full record table
// ⭐ SSOT: 입력 데이터 인터페이스
type DataSource interface {
	Name() string
	Load(ctx context.Context) ([]Record, error)
}

// ChartRenderer renders a true-vs-predicted comparison and returns its location
type ChartRenderer interface {
	Render(ctx context.Context, series ChartSeries) (string, error)
}

// Notifier emits a cue before a chart is rendered. It must not block.
type Notifier interface {
	Notify(ctx context.Context, runID, symbol string)
}

// ReportStore keeps run reports
type ReportStore interface {
	Save(ctx context.Context, report *RunReport) error
	Latest(ctx context.Context) (*RunReport, error)
	Get(ctx context.Context, runID string) (*RunReport, error)
}
