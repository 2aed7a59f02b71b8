package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/vwapcast/internal/contracts"
	"github.com/wonny/vwapcast/internal/report"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status [run_id]",
	Short: "저장된 리포트 조회",
	Long: `저장된 run 리포트의 결과 테이블과 요약을 출력합니다.
run_id 를 생략하면 최신 리포트를 보여줍니다.

Example:
  go run ./cmd/quant status
  go run ./cmd/quant status 20240102-180000
  go run ./cmd/quant status --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

var statusList bool

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusList, "list", false, "list stored run IDs")
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	a, err := loadApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if statusList {
		runs, err := a.files.Runs()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			PrintInfo(out, "No stored runs")
			return nil
		}
		PrintList(out, runs)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var rep *contracts.RunReport
	if len(args) == 1 {
		rep, err = a.reports.Get(ctx, args[0])
	} else {
		rep, err = a.reports.Latest(ctx)
	}
	if errors.Is(err, contracts.ErrReportNotFound) {
		PrintInfo(out, "No report found. Run `quant train` first.")
		return nil
	}
	if err != nil {
		return err
	}

	PrintHeader(out, "Run "+rep.RunID)
	PrintKeyValue(out, "Source", rep.Source, 10)
	PrintKeyValue(out, "Config", shortHash(rep.ConfigHash), 10)
	PrintKeyValue(out, "Started", rep.StartedAt.Format(time.RFC3339), 10)
	PrintKeyValue(out, "Duration", rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond).String(), 10)
	PrintSeparator(out)

	if err := report.WriteTable(out, rep.Results); err != nil {
		return err
	}
	fmt.Fprintln(out)
	if err := report.WriteSummary(out, rep.Summary); err != nil {
		return err
	}
	if len(rep.Failures) > 0 {
		fmt.Fprintln(out)
		if err := report.WriteFailures(out, rep.Failures); err != nil {
			return err
		}
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
