package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gollh/domain/core"
	"gollh/domain/run"
)

func sweepFixture() *run.SweepSummary {
	return &run.SweepSummary{
		SweepID:     "sweep-test",
		Seed:        42,
		NumTrials:   500,
		NumDatasets: 2,
		NumSources:  3,
		InjectedNS:  5,
		MeanEvents:  104.2,
		TS: run.TSStats{
			Mean: 1.1, Median: 0.7, StdDev: 1.9,
			Min: 0, Max: 14.2, P90: 3.1, P95: 4.4, P99: 8.0,
		},
		RuntimeMs: 1234,
		CreatedAt: core.NewTimestamp(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)),
	}
}

func TestMarkdownReport(t *testing.T) {
	report := MarkdownReport(sweepFixture())

	assert.Contains(t, report, "# Trial Sweep sweep-test")
	assert.Contains(t, report, "| Trials | 500 |")
	assert.Contains(t, report, "| Injected ns | 5 |")
	assert.Contains(t, report, "| Median | 0.7000 |")
	assert.Contains(t, report, "Mean events per trial: 104.20")
	assert.Contains(t, report, "chi-squared(1)")
}

func TestWriteSweepWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.xlsx")
	tsValues := []float64{0.1, 0.5, 2.3}

	require.NoError(t, WriteSweepWorkbook(path, sweepFixture(), tsValues))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	id, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "sweep-test", id)

	header, err := f.GetCellValue("Distribution", "B1")
	require.NoError(t, err)
	assert.Equal(t, "ts", header)

	rows, err := f.GetRows("Distribution")
	require.NoError(t, err)
	assert.Len(t, rows, len(tsValues)+1)
}
