package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "데이터 정리 도구",
	Long: `리포트 디렉터리 정리 작업을 수행합니다.

Example:
  quant cleanup reports --keep 10`,
}

var cleanupReportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "오래된 run 리포트 삭제",
	Long: `REPORT_DIR 아래 run 디렉터리 중 최신 --keep 개만 남기고 삭제합니다.
차트와 cue 파일도 함께 삭제됩니다. latest.json 은 유지됩니다.

Example:
  quant cleanup reports --keep 10`,
	RunE: runCleanupReports,
}

var cleanupKeep int

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.AddCommand(cleanupReportsCmd)

	cleanupReportsCmd.Flags().IntVar(&cleanupKeep, "keep", 0, "runs to keep (default: REPORT_KEEP_RUNS)")
}

func runCleanupReports(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Report Cleanup ===")

	a, err := loadApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	keep := a.cfg.Run.KeepRuns
	if cleanupKeep > 0 {
		keep = cleanupKeep
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	before, err := a.files.Runs()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "📊 Found %d runs in %s\n", len(before), a.files.Root())

	removed, err := a.files.Prune(ctx, keep)
	if err != nil {
		return fmt.Errorf("prune reports: %w", err)
	}
	if len(removed) == 0 {
		PrintSuccess(out, "No runs to clean up")
		return nil
	}

	PrintList(out, removed)
	PrintSuccess(out, fmt.Sprintf("Deleted %d runs, kept %d", len(removed), len(before)-len(removed)))
	return nil
}
