package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gollh/domain/core"
	"gollh/domain/run"
	"gollh/ports"
)

// SweepRepositoryImpl implements SweepResultRepository for PostgreSQL.
type SweepRepositoryImpl struct {
	db *sqlx.DB
}

// NewSweepRepository creates a new PostgreSQL sweep repository.
func NewSweepRepository(db *sqlx.DB) *SweepRepositoryImpl {
	return &SweepRepositoryImpl{db: db}
}

var _ ports.SweepResultRepository = (*SweepRepositoryImpl)(nil)

// EnsureSchema creates the sweep table when it does not exist yet.
func (r *SweepRepositoryImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS trial_sweeps (
			sweep_id     TEXT PRIMARY KEY,
			seed         BIGINT NOT NULL,
			num_trials   INTEGER NOT NULL,
			num_datasets INTEGER NOT NULL,
			num_sources  INTEGER NOT NULL,
			injected_ns  DOUBLE PRECISION NOT NULL,
			mean_events  DOUBLE PRECISION NOT NULL,
			ts_mean      DOUBLE PRECISION NOT NULL,
			ts_median    DOUBLE PRECISION NOT NULL,
			ts_std_dev   DOUBLE PRECISION NOT NULL,
			ts_min       DOUBLE PRECISION NOT NULL,
			ts_max       DOUBLE PRECISION NOT NULL,
			ts_p90       DOUBLE PRECISION NOT NULL,
			ts_p95       DOUBLE PRECISION NOT NULL,
			ts_p99       DOUBLE PRECISION NOT NULL,
			runtime_ms   BIGINT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

// SaveSweep upserts one sweep summary.
func (r *SweepRepositoryImpl) SaveSweep(ctx context.Context, summary *run.SweepSummary) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trial_sweeps (
			sweep_id, seed, num_trials, num_datasets, num_sources,
			injected_ns, mean_events,
			ts_mean, ts_median, ts_std_dev, ts_min, ts_max, ts_p90, ts_p95, ts_p99,
			runtime_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (sweep_id) DO UPDATE SET
			num_trials = EXCLUDED.num_trials,
			injected_ns = EXCLUDED.injected_ns,
			mean_events = EXCLUDED.mean_events,
			ts_mean = EXCLUDED.ts_mean,
			ts_median = EXCLUDED.ts_median,
			ts_std_dev = EXCLUDED.ts_std_dev,
			ts_min = EXCLUDED.ts_min,
			ts_max = EXCLUDED.ts_max,
			ts_p90 = EXCLUDED.ts_p90,
			ts_p95 = EXCLUDED.ts_p95,
			ts_p99 = EXCLUDED.ts_p99,
			runtime_ms = EXCLUDED.runtime_ms`,
		summary.SweepID.String(), summary.Seed, summary.NumTrials, summary.NumDatasets,
		summary.NumSources, summary.InjectedNS, summary.MeanEvents,
		summary.TS.Mean, summary.TS.Median, summary.TS.StdDev, summary.TS.Min,
		summary.TS.Max, summary.TS.P90, summary.TS.P95, summary.TS.P99,
		summary.RuntimeMs, summary.CreatedAt.Time())
	if err != nil {
		return fmt.Errorf("saving sweep %s: %w", summary.SweepID, err)
	}
	return nil
}

type sweepRow struct {
	SweepID     string    `db:"sweep_id"`
	Seed        int64     `db:"seed"`
	NumTrials   int       `db:"num_trials"`
	NumDatasets int       `db:"num_datasets"`
	NumSources  int       `db:"num_sources"`
	InjectedNS  float64   `db:"injected_ns"`
	MeanEvents  float64   `db:"mean_events"`
	TSMean      float64   `db:"ts_mean"`
	TSMedian    float64   `db:"ts_median"`
	TSStdDev    float64   `db:"ts_std_dev"`
	TSMin       float64   `db:"ts_min"`
	TSMax       float64   `db:"ts_max"`
	TSP90       float64   `db:"ts_p90"`
	TSP95       float64   `db:"ts_p95"`
	TSP99       float64   `db:"ts_p99"`
	RuntimeMs   int64     `db:"runtime_ms"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row sweepRow) toSummary() *run.SweepSummary {
	return &run.SweepSummary{
		SweepID:     core.SweepID(row.SweepID),
		Seed:        row.Seed,
		NumTrials:   row.NumTrials,
		NumDatasets: row.NumDatasets,
		NumSources:  row.NumSources,
		InjectedNS:  row.InjectedNS,
		MeanEvents:  row.MeanEvents,
		TS: run.TSStats{
			Mean:   row.TSMean,
			Median: row.TSMedian,
			StdDev: row.TSStdDev,
			Min:    row.TSMin,
			Max:    row.TSMax,
			P90:    row.TSP90,
			P95:    row.TSP95,
			P99:    row.TSP99,
		},
		RuntimeMs: row.RuntimeMs,
		CreatedAt: core.NewTimestamp(row.CreatedAt),
	}
}

// GetSweep retrieves one sweep summary by ID.
func (r *SweepRepositoryImpl) GetSweep(ctx context.Context, id core.SweepID) (*run.SweepSummary, error) {
	var row sweepRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM trial_sweeps WHERE sweep_id = $1`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrSweepNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading sweep %s: %w", id, err)
	}
	return row.toSummary(), nil
}

// ListSweeps returns the most recent sweep summaries.
func (r *SweepRepositoryImpl) ListSweeps(ctx context.Context, limit int) ([]*run.SweepSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []sweepRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM trial_sweeps ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sweeps: %w", err)
	}
	summaries := make([]*run.SweepSummary, len(rows))
	for i, row := range rows {
		summaries[i] = row.toSummary()
	}
	return summaries, nil
}
