package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/vwapcast/pkg/config"
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "종목별 학습 및 평가 실행",
	Long: `모든 종목에 대해 MLP 회귀 모델을 학습하고 RMSE를 리포트합니다.

단계:
- load: 아카이브(zip/csv, 로컬 또는 URL) 또는 PostgreSQL에서 레코드 로드
- train: 종목별 분할 → 스케일링 → 학습 → 평가 (--workers 병렬)
- report: 결과 테이블, describe 요약, 샘플 차트, 리포트 저장

Example:
  go run ./cmd/quant train --archive stockdata.zip
  go run ./cmd/quant train --archive https://example.com/stockdata.zip --workers 4
  go run ./cmd/quant train --source postgres --persist
  go run ./cmd/quant train --symbols TCS,INFY --no-plots`,
	RunE: runTrain,
}

var (
	trainArchive   string
	trainCSVName   string
	trainSource    string
	trainWorkers   int
	trainReportDir string
	trainNoPlots   bool
	trainSymbols   []string
	trainPersist   bool
	trainRefresh   bool
)

func init() {
	rootCmd.AddCommand(trainCmd)

	// Flags
	trainCmd.Flags().StringVar(&trainArchive, "archive", "", "zip archive or csv, local path or http(s) URL (implies --source archive)")
	trainCmd.Flags().StringVar(&trainCSVName, "csv-name", "", "csv entry inside the archive (default: first .csv)")
	trainCmd.Flags().StringVar(&trainSource, "source", "", "data source: archive|postgres (default: DATA_SOURCE)")
	trainCmd.Flags().IntVar(&trainWorkers, "workers", 0, "concurrent company pipelines (default: WORKERS)")
	trainCmd.Flags().StringVar(&trainReportDir, "report-dir", "", "report output directory (default: REPORT_DIR)")
	trainCmd.Flags().BoolVar(&trainNoPlots, "no-plots", false, "skip comparison charts and cues")
	trainCmd.Flags().StringSliceVar(&trainSymbols, "symbols", nil, "restrict to these symbols (comma separated)")
	trainCmd.Flags().BoolVar(&trainPersist, "persist", false, "save the run to PostgreSQL")
	trainCmd.Flags().BoolVar(&trainRefresh, "refresh", false, "re-download a remote archive")
}

// applyTrainFlags copies explicit flags over the environment config
func applyTrainFlags(cfg *config.Config) {
	if trainArchive != "" {
		cfg.Data.Source = config.SourceArchive
		cfg.Data.Archive = trainArchive
	}
	if trainCSVName != "" {
		cfg.Data.CSVName = trainCSVName
	}
	if trainSource != "" {
		cfg.Data.Source = trainSource
	}
	if trainWorkers > 0 {
		cfg.Run.Workers = trainWorkers
	}
	if trainReportDir != "" {
		cfg.Run.ReportDir = trainReportDir
	}
	if trainPersist {
		cfg.Run.Persist = true
	}
}

func normalizeSymbols(symbols []string) []string {
	var out []string
	for _, s := range symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func runTrain(cmd *cobra.Command, args []string) error {
	a, err := loadApp(appOptions{override: applyTrainFlags})
	if err != nil {
		return err
	}
	defer a.Close()

	if trainNoPlots {
		a.train.Report.Visualize = false
	}

	// Cancel in-flight companies on Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator, err := a.orchestrator(ctx, cmd.OutOrStdout(), trainRefresh)
	if err != nil {
		return err
	}

	runConfig, err := a.runConfig(normalizeSymbols(trainSymbols))
	if err != nil {
		return err
	}

	a.log.WithFields(map[string]interface{}{
		"source":      a.cfg.Data.Source,
		"workers":     runConfig.Workers,
		"config_hash": shortHash(runConfig.ConfigHash),
		"visualize":   a.train.Report.Visualize,
	}).Info("Starting training run")

	result, err := orchestrator.Run(ctx, runConfig)
	if err != nil {
		return fmt.Errorf("run %s failed after stages %v: %w", result.RunID, result.CompletedStages, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	PrintSuccess(out, fmt.Sprintf("Run %s completed in %s (%d records)", result.RunID, result.Duration.Round(time.Millisecond), result.Records))
	if dir, err := a.files.RunDir(result.RunID); err == nil {
		PrintKeyValue(out, "Report", dir, 8)
	}

	return nil
}
