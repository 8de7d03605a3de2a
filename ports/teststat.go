package ports

import (
	"gollh/domain/trial"
)

// TestStatistic reduces one pseudo-experiment to a single scalar. Which
// formula to use (likelihood ratio, excess count, ...) is a policy decision
// plugged in at this boundary; the core only supplies the trial.
type TestStatistic interface {
	Evaluate(t *trial.Trial) (float64, error)
}
