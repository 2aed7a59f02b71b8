package s0_data

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/wonny/vwapcast/internal/contracts"
)

// saveBatchSize bounds rows per transaction
const saveBatchSize = 500

// PriceRepository reads and writes market.nifty_daily.
// It implements contracts.DataSource.
// ⭐ SSOT: 일별 시세 저장소는 여기서만
type PriceRepository struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool, log zerolog.Logger) *PriceRepository {
	return &PriceRepository{
		pool: pool,
		log:  log.With().Str("component", "s0_data.price_repository").Logger(),
	}
}

// Name implements contracts.DataSource
func (r *PriceRepository) Name() string {
	return "postgres:market.nifty_daily"
}

// Load implements contracts.DataSource.
// Rows come back date-ascending so each company series keeps chronological order.
func (r *PriceRepository) Load(ctx context.Context) ([]contracts.Record, error) {
	query := `
		SELECT trade_date, symbol, series,
			prev_close, open_price, high_price, low_price, last_price, close_price, vwap,
			volume, turnover, trades, deliverable_volume, pct_deliverable
		FROM market.nifty_daily
		ORDER BY trade_date ASC, symbol ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query nifty_daily: %w", err)
	}
	defer rows.Close()

	var records []contracts.Record
	for rows.Next() {
		var rec contracts.Record
		vals := make([]*float64, len(contracts.NumericColumns))
		dest := []any{&rec.Date, &rec.Symbol, &rec.Series}
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan nifty_daily: %w", err)
		}
		for i, c := range contracts.NumericColumns {
			if vals[i] == nil {
				rec.Set(c, math.NaN())
				continue
			}
			rec.Set(c, *vals[i])
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.log.Info().Int("rows", len(records)).Msg("records loaded")
	return records, nil
}

// CountBySymbol returns the row count per symbol
func (r *PriceRepository) CountBySymbol(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT symbol, COUNT(*) FROM market.nifty_daily GROUP BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("count nifty_daily: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var symbol string
		var n int
		if err := rows.Scan(&symbol, &n); err != nil {
			return nil, err
		}
		counts[symbol] = n
	}
	return counts, rows.Err()
}

// SaveBatch upserts records, one transaction per chunk
// ⭐ SSOT: 일별 시세 저장은 이 함수에서만
func (r *PriceRepository) SaveBatch(ctx context.Context, records []contracts.Record) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO market.nifty_daily (
			trade_date, symbol, series,
			prev_close, open_price, high_price, low_price, last_price, close_price, vwap,
			volume, turnover, trades, deliverable_volume, pct_deliverable
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			series = EXCLUDED.series,
			prev_close = EXCLUDED.prev_close,
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			last_price = EXCLUDED.last_price,
			close_price = EXCLUDED.close_price,
			vwap = EXCLUDED.vwap,
			volume = EXCLUDED.volume,
			turnover = EXCLUDED.turnover,
			trades = EXCLUDED.trades,
			deliverable_volume = EXCLUDED.deliverable_volume,
			pct_deliverable = EXCLUDED.pct_deliverable
	`

	saved := 0
	for i := 0; i < len(records); i += saveBatchSize {
		end := i + saveBatchSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[i:end]

		batch := &pgx.Batch{}
		for _, rec := range chunk {
			args := []any{rec.Date, rec.Symbol, rec.Series}
			for _, c := range contracts.NumericColumns {
				v, _ := rec.Value(c)
				args = append(args, nullable(v))
			}
			batch.Queue(query, args...)
		}

		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin transaction (batch %d): %w", i/saveBatchSize, err)
		}

		br := tx.SendBatch(ctx, batch)
		for range chunk {
			if _, err := br.Exec(); err != nil {
				br.Close()
				tx.Rollback(ctx)
				return fmt.Errorf("insert nifty_daily (batch %d): %w", i/saveBatchSize, err)
			}
		}
		if err := br.Close(); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("close batch %d: %w", i/saveBatchSize, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit transaction (batch %d): %w", i/saveBatchSize, err)
		}
		saved += len(chunk)
		r.log.Debug().Int("batch", i/saveBatchSize).Int("saved", saved).Msg("batch committed")
	}

	r.log.Info().Int("rows", saved).Msg("records saved")
	return nil
}

// nullable maps NaN to SQL NULL
func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
