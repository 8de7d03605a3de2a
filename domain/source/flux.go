package source

import "math"

// FluxModel gives the differential flux of a source at a given energy. The
// analysis core treats flux values as opaque numeric inputs; concrete models
// live here only so detector-yield builders and generators have something
// real to evaluate.
type FluxModel interface {
	// Flux returns dN/dE at the given energy in the model's units.
	Flux(energy float64) float64
}

// PowerLaw is the standard unbroken power-law flux
// Phi0 * (E/E0)^-Gamma.
type PowerLaw struct {
	Phi0  float64
	Gamma float64
	E0    float64
}

// NewPowerLaw creates a power-law flux model pivoting at e0.
func NewPowerLaw(phi0, gamma, e0 float64) PowerLaw {
	return PowerLaw{Phi0: phi0, Gamma: gamma, E0: e0}
}

// Flux returns the differential flux at the given energy.
func (p PowerLaw) Flux(energy float64) float64 {
	if energy <= 0 {
		return 0
	}
	return p.Phi0 * math.Pow(energy/p.E0, -p.Gamma)
}

// WithGamma returns a copy with a different spectral index. Builders that
// amortize shared precomputations across flux models use this to span a
// spectral grid from one template.
func (p PowerLaw) WithGamma(gamma float64) PowerLaw {
	p.Gamma = gamma
	return p
}
