package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/vwapcast/internal/api"
	"github.com/wonny/vwapcast/internal/api/handlers"
	"github.com/wonny/vwapcast/internal/realtime"
	"github.com/wonny/vwapcast/internal/report"
	"github.com/wonny/vwapcast/internal/scheduler"
	"github.com/wonny/vwapcast/pkg/config"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 저장된 리포트/차트 조회 엔드포인트 제공
- --with-scheduler 시 재학습 스케줄러를 같은 프로세스에서 실행

Endpoints:
  GET  /health                          - Health check
  GET  /metrics                         - Prometheus metrics
  GET  /api/reports                     - 저장된 run 목록
  GET  /api/reports/latest              - 최신 리포트
  GET  /api/reports/latest/summary      - 최신 요약 통계
  GET  /api/reports/latest/results.csv  - 최신 결과 테이블 (CSV)
  GET  /api/reports/{run_id}            - 특정 run 리포트
  GET  /api/charts/{run_id}/{symbol}    - 비교 차트
  GET  /api/runs                        - DB에 저장된 run 이력
  GET  /api/jobs                        - 스케줄러 작업 통계
  POST /api/jobs/{name}/run             - 작업 즉시 실행
  GET  /ws/runs                         - 실시간 run 진행 이벤트 (WebSocket)

Example:
  go run ./cmd/quant api
  go run ./cmd/quant api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "run the retrain scheduler in-process")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== vwapcast API Server ===")

	a, err := loadApp(appOptions{
		override: func(cfg *config.Config) {
			// Override port if flag is set
			if apiPort != "" {
				cfg.Port = apiPort
			}
		},
		wantDB: true,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	a.log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	deps := api.RouterDeps{RateLimit: a.cfg.APIRateLimit}

	// Report handler (run history only with a database)
	var runs handlers.RunLister
	if a.db != nil {
		runs = report.NewRepository(a.db.Pool)
	}
	deps.Reports = handlers.NewReportHandler(a.reports, a.files, runs, a.log)

	if a.recorder != nil {
		deps.Metrics = a.recorder.Handler()
	}

	// Optional in-process scheduler
	var sched *scheduler.Scheduler
	if apiWithScheduler {
		hub := realtime.NewHub(a.log.Zerolog())
		defer hub.Close()

		sched, err = newScheduler(a, out, hub)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		deps.Jobs = handlers.NewJobHandler(sched, a.log)
		deps.Stream = realtime.NewStreamHandler(hub, a.log.Zerolog())
		sched.Start()
		defer sched.Stop()
	}

	// Create router and server
	router := api.NewRouter(deps, a.log)
	server := api.New(a.cfg, a.log, router)

	// Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	a.log.Info("API server started successfully")
	fmt.Fprintf(out, "\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	a.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
