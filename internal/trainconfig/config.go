// Package trainconfig loads and validates the model/training YAML.
package trainconfig

import (
	"github.com/wonny/vwapcast/internal/forecast"
	"github.com/wonny/vwapcast/internal/mlp"
	"github.com/wonny/vwapcast/internal/prep"
	"github.com/wonny/vwapcast/internal/report"
)

// Config is the root of the training YAML
// ⭐ SSOT: 학습 하이퍼파라미터는 여기서만 정의
type Config struct {
	Model    ModelConfig    `yaml:"model" json:"model"`
	Training TrainingConfig `yaml:"training" json:"training"`
	Split    SplitConfig    `yaml:"split" json:"split"`
	Columns  ColumnsConfig  `yaml:"columns" json:"columns"`
	Report   ReportConfig   `yaml:"report" json:"report"`
}

// ModelConfig 네트워크 구조
type ModelConfig struct {
	Hidden1 int     `yaml:"hidden1" json:"hidden1" default:"64" validate:"gte=1"`
	Hidden2 int     `yaml:"hidden2" json:"hidden2" default:"32" validate:"gte=1"`
	Dropout float64 `yaml:"dropout" json:"dropout" default:"0.2" validate:"gte=0,lt=1"`
}

// TrainingConfig 옵티마이저 / 학습 루프
type TrainingConfig struct {
	LearningRate float64 `yaml:"learning_rate" json:"learning_rate" default:"0.001" validate:"gt=0"`
	BatchSize    int     `yaml:"batch_size" json:"batch_size" default:"64" validate:"gte=1"`
	Epochs       int     `yaml:"epochs" json:"epochs" default:"50" validate:"gte=1"`
	Beta1        float64 `yaml:"beta1" json:"beta1" default:"0.9" validate:"gte=0,lt=1"`
	Beta2        float64 `yaml:"beta2" json:"beta2" default:"0.999" validate:"gte=0,lt=1"`
	Epsilon      float64 `yaml:"epsilon" json:"epsilon" default:"1e-8" validate:"gt=0"`
	Seed         int64   `yaml:"seed" json:"seed" default:"42"`
}

// SplitConfig 위치 기반 분할
type SplitConfig struct {
	TestRatio       float64 `yaml:"test_ratio" json:"test_ratio" default:"0.2" validate:"gt=0,lt=1"`
	ValidationRatio float64 `yaml:"validation_ratio" json:"validation_ratio" default:"0.1" validate:"gt=0,lt=1"`
	MinRows         int     `yaml:"min_rows" json:"min_rows" default:"10" validate:"gte=3"`
}

// ColumnsConfig 레이블 / 제외 컬럼
type ColumnsConfig struct {
	Label   string   `yaml:"label" json:"label" default:"VWAP" validate:"required"`
	Exclude []string `yaml:"exclude" json:"exclude" default:"[\"Date\",\"Symbol\",\"Series\",\"Prev Close\",\"VWAP\",\"Volume\",\"Turnover\",\"Trades\",\"Deliverable Volume\",\"%Deliverble\"]"`
}

// ReportConfig 차트 샘플링
type ReportConfig struct {
	Visualize   bool   `yaml:"visualize" json:"visualize" default:"true"`
	SampleSize  int    `yaml:"sample_size" json:"sample_size" default:"5" validate:"gte=0"`
	SampleSeed  int64  `yaml:"sample_seed" json:"sample_seed" default:"42"`
	ChartFormat string `yaml:"chart_format" json:"chart_format" default:"png" validate:"oneof=png svg pdf"`
}

// RunnerSettings converts the config into per-company pipeline settings
func (c *Config) RunnerSettings() (forecast.Settings, error) {
	cols, err := prep.NewColumnSet(c.Columns.Label, c.Columns.Exclude)
	if err != nil {
		return forecast.Settings{}, err
	}

	return forecast.Settings{
		Columns: cols,
		Split: prep.SplitRatios{
			Test:       c.Split.TestRatio,
			Validation: c.Split.ValidationRatio,
			MinRows:    c.Split.MinRows,
		},
		Model: mlp.Config{
			Hidden1: c.Model.Hidden1,
			Hidden2: c.Model.Hidden2,
			Dropout: c.Model.Dropout,
		},
		Train: mlp.TrainConfig{
			LearningRate: c.Training.LearningRate,
			BatchSize:    c.Training.BatchSize,
			Epochs:       c.Training.Epochs,
			Beta1:        c.Training.Beta1,
			Beta2:        c.Training.Beta2,
			Epsilon:      c.Training.Epsilon,
		},
		Seed: c.Training.Seed,
	}, nil
}

// ReportOptions converts the report section
func (c *Config) ReportOptions() report.Options {
	return report.Options{
		Visualize:  c.Report.Visualize,
		SampleSize: c.Report.SampleSize,
		SampleSeed: c.Report.SampleSeed,
	}
}
