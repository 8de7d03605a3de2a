package run

import (
	"gollh/domain/core"
)

// TSStats summarizes the empirical test-statistic distribution of one sweep.
type TSStats struct {
	Mean   float64 `json:"mean" db:"ts_mean"`
	Median float64 `json:"median" db:"ts_median"`
	StdDev float64 `json:"std_dev" db:"ts_std_dev"`
	Min    float64 `json:"min" db:"ts_min"`
	Max    float64 `json:"max" db:"ts_max"`
	P90    float64 `json:"p90" db:"ts_p90"`
	P95    float64 `json:"p95" db:"ts_p95"`
	P99    float64 `json:"p99" db:"ts_p99"`
}

// SweepSummary is the persisted record of one trial sweep: how it was
// configured, how many trials ran, and the shape of the resulting
// test-statistic distribution. Persistence is an external concern; the
// analysis core only produces this value.
type SweepSummary struct {
	SweepID     core.SweepID   `json:"sweep_id" db:"sweep_id"`
	Seed        int64          `json:"seed" db:"seed"`
	NumTrials   int            `json:"num_trials" db:"num_trials"`
	NumDatasets int            `json:"num_datasets" db:"num_datasets"`
	NumSources  int            `json:"num_sources" db:"num_sources"`
	InjectedNS  float64        `json:"injected_ns" db:"injected_ns"`
	MeanEvents  float64        `json:"mean_events" db:"mean_events"`
	TS          TSStats        `json:"ts"`
	RuntimeMs   int64          `json:"runtime_ms" db:"runtime_ms"`
	CreatedAt   core.Timestamp `json:"created_at" db:"created_at"`
}
