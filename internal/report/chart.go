package report

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/wonny/vwapcast/internal/contracts"
)

// Chart styling
var (
	actualColor    = color.RGBA{B: 255, A: 255}
	predictedColor = color.RGBA{R: 255, A: 255}
)

// PlotRenderer draws true vs predicted test VWAP with gonum/plot
// ⭐ SSOT: 차트 렌더링은 여기서만
type PlotRenderer struct {
	dir    string
	format string // png, svg, pdf
	width  vg.Length
	height vg.Length
	log    zerolog.Logger
}

// NewPlotRenderer writes charts under dir/<run_id>/
func NewPlotRenderer(dir, format string, log zerolog.Logger) *PlotRenderer {
	if format == "" {
		format = "png"
	}
	return &PlotRenderer{
		dir:    dir,
		format: format,
		width:  14 * vg.Inch,
		height: 6 * vg.Inch,
		log:    log.With().Str("component", "report.chart").Logger(),
	}
}

// ChartFile returns the file name of a symbol's chart
func ChartFile(symbol, format string) string {
	return symbol + "." + format
}

// Render implements contracts.ChartRenderer
func (r *PlotRenderer) Render(ctx context.Context, series contracts.ChartSeries) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(series.Actual) != len(series.Predicted) {
		return "", fmt.Errorf("chart %s: actual %d != predicted %d", series.Symbol, len(series.Actual), len(series.Predicted))
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Comparison of True and Predicted VWAP for %s", series.Symbol)
	p.X.Label.Text = "Test row"
	p.Y.Label.Text = "VWAP"
	p.Add(plotter.NewGrid())

	actual, err := plotter.NewLine(toXYs(series.Actual))
	if err != nil {
		return "", fmt.Errorf("actual line: %w", err)
	}
	actual.LineStyle.Color = actualColor
	actual.LineStyle.Width = vg.Points(1.5)

	predicted, err := plotter.NewLine(toXYs(series.Predicted))
	if err != nil {
		return "", fmt.Errorf("predicted line: %w", err)
	}
	predicted.LineStyle.Color = predictedColor
	predicted.LineStyle.Width = vg.Points(1.5)

	p.Add(actual, predicted)
	p.Legend.Add("True", actual)
	p.Legend.Add("Predicted", predicted)
	p.Legend.Top = true

	dir := filepath.Join(r.dir, series.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create chart dir: %w", err)
	}
	path := filepath.Join(dir, ChartFile(series.Symbol, r.format))
	if err := p.Save(r.width, r.height, path); err != nil {
		return "", fmt.Errorf("save chart %s: %w", path, err)
	}

	r.log.Info().Str("symbol", series.Symbol).Str("path", path).Msg("chart rendered")
	return path, nil
}

func toXYs(values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	return pts
}
