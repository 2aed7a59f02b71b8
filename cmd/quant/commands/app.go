package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/wonny/vwapcast/internal/brain"
	"github.com/wonny/vwapcast/internal/contracts"
	"github.com/wonny/vwapcast/internal/forecast"
	"github.com/wonny/vwapcast/internal/report"
	"github.com/wonny/vwapcast/internal/s0_data"
	"github.com/wonny/vwapcast/internal/trainconfig"
	"github.com/wonny/vwapcast/pkg/config"
	"github.com/wonny/vwapcast/pkg/database"
	"github.com/wonny/vwapcast/pkg/httputil"
	"github.com/wonny/vwapcast/pkg/logger"
	"github.com/wonny/vwapcast/pkg/metrics"
	"github.com/wonny/vwapcast/pkg/redis"
)

// app holds the dependencies shared by every command
// ⭐ SSOT: 커맨드 공통 의존성 조립은 여기서만
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	train    *trainconfig.Config
	db       *database.DB // nil without DATABASE_URL
	redis    *redis.Client
	files    *report.FileStore
	reports  contracts.ReportStore
	recorder *metrics.Recorder // nil when METRICS_ENABLED=false
}

// appOptions tunes what loadApp connects to
type appOptions struct {
	// override edits the environment config before anything is connected
	override func(cfg *config.Config)
	// wantDB connects to PostgreSQL whenever DATABASE_URL is set
	wantDB bool
}

func loadApp(opts appOptions) (*app, error) {
	if env != "" {
		os.Setenv("ENV", env)
	}
	if verbose {
		os.Setenv("LOG_LEVEL", "debug")
	}

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.override != nil {
		opts.override(cfg)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Training config
	path := trainConfigFile
	if path == "" {
		path = cfg.Run.TrainConfig
	}
	train, _, err := trainconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load training config: %w", err)
	}

	a := &app{
		cfg:   cfg,
		log:   log,
		train: train,
		files: report.NewFileStore(cfg.Run.ReportDir),
	}
	a.reports = a.files

	// 4. Redis report cache
	rc, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = rc
	if rc.Enabled() {
		a.reports = report.NewRedisStore(a.files, redis.NewCache(rc, "vwapcast"), cfg.Redis.TTL, log.Component("report.cache"))
		log.Info("Redis report cache enabled")
	}

	// 5. Database
	needDB := cfg.Data.Source == config.SourcePostgres || cfg.Run.Persist
	if cfg.Database.URL != "" && (needDB || opts.wantDB) {
		db, err := database.New(cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		log.Info("Connected to database")
	}
	if needDB && a.db == nil {
		a.Close()
		return nil, fmt.Errorf("DATABASE_URL is required for source=%s persist=%v", cfg.Data.Source, cfg.Run.Persist)
	}

	// 6. Metrics
	if cfg.MetricsEnabled {
		a.recorder = metrics.New()
	}

	return a, nil
}

// Close releases connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}

// configHash identifies the effective training config of a run
func (a *app) configHash() (string, error) {
	return trainconfig.Hash(a.train)
}

// dataSource builds the configured record source. Remote archives are downloaded first.
func (a *app) dataSource(ctx context.Context, refresh bool) (contracts.DataSource, error) {
	switch a.cfg.Data.Source {
	case config.SourcePostgres:
		return s0_data.NewPriceRepository(a.db.Pool, a.log.Zerolog()), nil
	case config.SourceArchive:
		path, err := s0_data.ResolveArchive(ctx, httputil.New(a.log), a.cfg.Data.Archive, a.cfg.Data.CacheDir, refresh, a.log.Zerolog())
		if err != nil {
			return nil, err
		}
		return s0_data.NewArchiveSource(path, a.cfg.Data.CSVName, a.log.Zerolog()), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", a.cfg.Data.Source)
	}
}

// orchestrator wires source, runner and reporter. Tables are printed to out.
func (a *app) orchestrator(ctx context.Context, out io.Writer, refresh bool) (*brain.Orchestrator, error) {
	source, err := a.dataSource(ctx, refresh)
	if err != nil {
		return nil, err
	}

	settings, err := a.train.RunnerSettings()
	if err != nil {
		return nil, fmt.Errorf("runner settings: %w", err)
	}
	runner := forecast.NewRunner(settings, a.log.Zerolog())

	reporter := report.NewReporter(a.train.ReportOptions(), out, a.log.Zerolog()).
		WithStore(a.reports)
	if a.train.Report.Visualize {
		reporter.WithCharts(
			report.NewPlotRenderer(a.cfg.Run.ReportDir, a.train.Report.ChartFormat, a.log.Zerolog()),
			report.NewToneNotifier(a.cfg.Run.ReportDir, out, a.log.Zerolog()),
		)
	}
	if a.cfg.Run.Persist {
		reporter.WithSaver(report.NewRepository(a.db.Pool))
	}

	return brain.NewOrchestrator(source, runner, reporter, a.recorder, a.log), nil
}

// runConfig builds the per-run settings shared by train and the scheduler
func (a *app) runConfig(symbols []string) (brain.RunConfig, error) {
	hash, err := a.configHash()
	if err != nil {
		return brain.RunConfig{}, fmt.Errorf("hash training config: %w", err)
	}
	return brain.RunConfig{
		ConfigHash: hash,
		Workers:    a.cfg.Run.Workers,
		Symbols:    symbols,
	}, nil
}
