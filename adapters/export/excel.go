package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"gollh/domain/run"
)

// WriteSweepWorkbook writes one sweep's summary and its raw test-statistic
// distribution to an Excel workbook.
func WriteSweepWorkbook(path string, summary *run.SweepSummary, tsValues []float64) error {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("renaming summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Sweep ID", summary.SweepID.String()},
		{"Seed", summary.Seed},
		{"Trials", summary.NumTrials},
		{"Datasets", summary.NumDatasets},
		{"Sources", summary.NumSources},
		{"Injected ns", summary.InjectedNS},
		{"Mean events / trial", summary.MeanEvents},
		{"TS mean", summary.TS.Mean},
		{"TS median", summary.TS.Median},
		{"TS std dev", summary.TS.StdDev},
		{"TS min", summary.TS.Min},
		{"TS max", summary.TS.Max},
		{"TS p90", summary.TS.P90},
		{"TS p95", summary.TS.P95},
		{"TS p99", summary.TS.P99},
		{"Runtime (ms)", summary.RuntimeMs},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("writing summary row %d: %w", i+1, err)
		}
	}

	const distSheet = "Distribution"
	if _, err := f.NewSheet(distSheet); err != nil {
		return fmt.Errorf("creating distribution sheet: %w", err)
	}
	header := []interface{}{"trial", "ts"}
	if err := f.SetSheetRow(distSheet, "A1", &header); err != nil {
		return err
	}
	for i, ts := range tsValues {
		row := []interface{}{i + 1, ts}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(distSheet, cell, &row); err != nil {
			return fmt.Errorf("writing distribution row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}
