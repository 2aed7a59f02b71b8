package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/vwapcast/internal/contracts"
)

// RunSaver persists finished runs
type RunSaver interface {
	SaveRun(ctx context.Context, rep *contracts.RunReport) error
}

// RunRow is one line of run history
type RunRow struct {
	RunID      string    `json:"run_id"`
	Source     string    `json:"source"`
	ConfigHash string    `json:"config_hash"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Companies  int       `json:"companies"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	MeanTest   *float64  `json:"mean_test_rmse"`
}

// Repository stores run results in analytics.vwap_runs / analytics.vwap_results
// ⭐ SSOT: 결과 영속화는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new report repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveRun writes the run and its per-company rows in one transaction
func (r *Repository) SaveRun(ctx context.Context, rep *contracts.RunReport) error {
	summary, err := json.Marshal(rep.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO analytics.vwap_runs (
			run_id, source, config_hash, started_at, finished_at,
			companies, succeeded, failed, mean_test_rmse, summary
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id) DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			companies = EXCLUDED.companies,
			succeeded = EXCLUDED.succeeded,
			failed = EXCLUDED.failed,
			mean_test_rmse = EXCLUDED.mean_test_rmse,
			summary = EXCLUDED.summary
	`,
		rep.RunID, rep.Source, rep.ConfigHash, rep.StartedAt, rep.FinishedAt,
		rep.Summary.Companies, rep.Summary.Succeeded, rep.Summary.Failed,
		metricOrNull(rep.Summary.Test.Mean), summary,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, res := range rep.Results {
		batch.Queue(`
			INSERT INTO analytics.vwap_results (
				run_id, symbol, train_rmse, test_rmse,
				rows, train_rows, val_rows, test_rows, numeric_failure
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (run_id, symbol) DO UPDATE SET
				train_rmse = EXCLUDED.train_rmse,
				test_rmse = EXCLUDED.test_rmse,
				numeric_failure = EXCLUDED.numeric_failure
		`,
			rep.RunID, res.Symbol, metricOrNull(res.TrainRMSE), metricOrNull(res.TestRMSE),
			res.Rows, res.TrainRows, res.ValRows, res.TestRows, res.Numeric,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range rep.Results {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert result: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	return tx.Commit(ctx)
}

// ListRuns returns the most recent runs, newest first
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]RunRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT run_id, source, config_hash, started_at, finished_at,
			companies, succeeded, failed, mean_test_rmse
		FROM analytics.vwap_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRow
	for rows.Next() {
		var row RunRow
		if err := rows.Scan(
			&row.RunID, &row.Source, &row.ConfigHash, &row.StartedAt, &row.FinishedAt,
			&row.Companies, &row.Succeeded, &row.Failed, &row.MeanTest,
		); err != nil {
			return nil, err
		}
		runs = append(runs, row)
	}
	return runs, rows.Err()
}

// metricOrNull maps NaN sentinels to SQL NULL
func metricOrNull(m contracts.Metric) *float64 {
	if !m.IsFinite() {
		return nil
	}
	v := float64(m)
	return &v
}
