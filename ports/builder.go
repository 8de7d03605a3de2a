package ports

import (
	"gollh/domain/source"
	"gollh/domain/trial"
)

// YieldBuilder constructs a detector signal yield for one flux model.
// Builders are expected to amortize shared precomputations (e.g. Monte Carlo
// histograms) across flux models, so building for many spectral hypotheses
// does not rebuild the shared tables per model.
type YieldBuilder interface {
	Build(flux source.FluxModel) (trial.DetSigYield, error)
}
