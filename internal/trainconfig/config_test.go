package trainconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vwapcast/internal/contracts"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, 64, cfg.Model.Hidden1)
	assert.Equal(t, 32, cfg.Model.Hidden2)
	assert.Equal(t, 0.2, cfg.Model.Dropout)
	assert.Equal(t, 0.001, cfg.Training.LearningRate)
	assert.Equal(t, 64, cfg.Training.BatchSize)
	assert.Equal(t, 50, cfg.Training.Epochs)
	assert.Equal(t, 1e-8, cfg.Training.Epsilon)
	assert.Equal(t, int64(42), cfg.Training.Seed)
	assert.Equal(t, 10, cfg.Split.MinRows)
	assert.Equal(t, "VWAP", cfg.Columns.Label)
	assert.Len(t, cfg.Columns.Exclude, 10)
	assert.True(t, cfg.Report.Visualize)
	assert.Equal(t, 5, cfg.Report.SampleSize)
	assert.Equal(t, "png", cfg.Report.ChartFormat)

	settings, err := cfg.RunnerSettings()
	require.NoError(t, err)
	assert.Equal(t, []contracts.Column{
		contracts.ColOpen, contracts.ColHigh, contracts.ColLow, contracts.ColLast, contracts.ColClose,
	}, settings.Columns.Features)
	assert.Equal(t, 0.1, settings.Split.Validation)

	opts := cfg.ReportOptions()
	assert.Equal(t, int64(42), opts.SampleSeed)
}

func TestLoad_File(t *testing.T) {
	path := "../../config/train/default.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, data, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	h1, err := Hash(cfg)
	require.NoError(t, err)
	h2, err := Hash(Default())
	require.NoError(t, err)
	assert.Len(t, h1, 64)
	assert.Equal(t, h2, h1, "shipped YAML matches built-in defaults")
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, data, err := Load("")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Equal(t, 50, cfg.Training.Epochs)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantField string
		check     func(t *testing.T, cfg *Config)
	}{
		{
			name: "partial override keeps defaults",
			yaml: "training:\n  epochs: 5\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 5, cfg.Training.Epochs)
				assert.Equal(t, 64, cfg.Training.BatchSize)
			},
		},
		{
			name: "explicit zero dropout is kept",
			yaml: "model:\n  dropout: 0\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 0.0, cfg.Model.Dropout)
			},
		},
		{
			name: "visualize off",
			yaml: "report:\n  visualize: false\n",
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Report.Visualize)
			},
		},
		{
			name: "empty document",
			yaml: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{name: "min rows too small", yaml: "split:\n  min_rows: 2\n", wantField: "split.min_rows"},
		{name: "bad learning rate", yaml: "training:\n  learning_rate: 0\n", wantField: "training.learning_rate"},
		{name: "dropout one", yaml: "model:\n  dropout: 1\n", wantField: "model.dropout"},
		{name: "bad format", yaml: "report:\n  chart_format: gif\n", wantField: "report.chart_format"},
		{name: "unknown label", yaml: "columns:\n  label: Price\n", wantField: "columns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if tt.wantField != "" {
				var verr ValidationError
				require.True(t, errors.As(err, &verr), "got %v", err)
				assert.Equal(t, tt.wantField, verr.Field)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("training:\n  epoch: 5\n"))
	assert.Error(t, err)
}

func TestHash_ChangesWithConfig(t *testing.T) {
	a := Default()
	b := Default()
	b.Training.Epochs = 51

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("split:\n  test_ratio: 1.5\n"), 0o644))
	_, data, err := Load(path)
	assert.Error(t, err)
	assert.NotEmpty(t, data)

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
