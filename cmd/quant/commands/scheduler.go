package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/vwapcast/internal/realtime"
	"github.com/wonny/vwapcast/internal/scheduler"
	"github.com/wonny/vwapcast/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

이 명령어는:
- 스케줄러 데몬 시작
- 등록된 작업 조회
- 작업 즉시 실행

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행 (완료까지 대기)

Example:
  go run ./cmd/quant scheduler start
  go run ./cmd/quant scheduler list
  go run ./cmd/quant scheduler run vwap_retrain`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- vwap_retrain: SCHEDULE_CRON (기본: 평일 18:00) 전 종목 재학습/평가
- report_prune: 매일 03:30 오래된 리포트 정리 (REPORT_KEEP_RUNS 유지)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// newScheduler registers the retrain and prune jobs. progress may be nil.
func newScheduler(a *app, out io.Writer, progress realtime.Publisher, opts ...scheduler.Option) (*scheduler.Scheduler, error) {
	orchestrator, err := a.orchestrator(context.Background(), out, false)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		orchestrator.WithProgress(progress)
	}
	runConfig, err := a.runConfig(nil)
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(a.log, opts...)

	if err := sched.AddJob(jobs.NewRetrainJob(orchestrator, runConfig, a.cfg.Run.ScheduleCron, a.log)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewReportPruneJob(a.files, a.cfg.Run.KeepRuns, a.log)); err != nil {
		return nil, err
	}

	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== vwapcast Scheduler ===")

	a, err := loadApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a, out, nil)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// Start scheduler
	sched.Start()

	fmt.Fprintln(out)
	PrintSuccess(out, "Scheduler started successfully")
	fmt.Fprintln(out, "\nRegistered jobs:")
	printJobs(out, sched)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Fprintln(out, "\nShutting down scheduler...")
	sched.Stop()
	fmt.Fprintln(out, "Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := loadApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a, cmd.OutOrStdout(), nil)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Registered jobs:")
	printJobs(cmd.OutOrStdout(), sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	out := cmd.OutOrStdout()

	a, err := loadApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	// One attempt: a manual run reports its failure right away
	sched, err := newScheduler(a, out, nil, scheduler.WithRetry(0, 0))
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer sched.Stop()

	fmt.Fprintf(out, "Running job: %s\n", jobName)

	result, err := sched.RunJobSync(jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("job %s failed: %s", jobName, result.Error)
	}

	PrintSuccess(out, fmt.Sprintf("Job %s completed in %s", jobName, result.Duration))
	return nil
}

func printJobs(out io.Writer, sched *scheduler.Scheduler) {
	stats := sched.GetJobStats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		PrintKeyValue(out, name, stats[name].Schedule, 14)
	}
}
