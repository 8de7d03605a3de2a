package pdf

import (
	"math"

	"gollh/domain/core"
	"gollh/domain/events"
	"gollh/domain/params"
)

// PowerLawEnergyPDF is the normalized power-law energy density
//
//	p(E; gamma) = C(gamma) * E^-gamma  on [EMin, EMax], 0 outside
//
// with gamma taken from the local parameter record. It reports the analytic
// partial derivative with respect to the spectral-index parameter, which is
// what gradient-based optimizers consume.
type PowerLawEnergyPDF struct {
	EnergyField events.Field
	GammaParam  string
	EMin        float64
	EMax        float64
}

// NewPowerLawEnergyPDF creates the energy PDF over [emin, emax] reading the
// spectral index from the "gamma" local parameter.
func NewPowerLawEnergyPDF(emin, emax float64) *PowerLawEnergyPDF {
	return &PowerLawEnergyPDF{
		EnergyField: "energy",
		GammaParam:  "gamma",
		EMin:        emin,
		EMax:        emax,
	}
}

func (p *PowerLawEnergyPDF) Evaluate(src int, local params.LocalParams, sample *events.Sample, indices []int) (Result, error) {
	gamma, err := local.Get(p.GammaParam)
	if err != nil {
		return Result{}, err
	}
	energy, ok := sample.Column(p.EnergyField)
	if !ok {
		return Result{}, core.NewMissingFieldError(string(p.EnergyField))
	}

	norm, dLogNorm := p.normalization(gamma)
	out := newResult(len(indices))
	grad := out.gradFor(p.GammaParam)
	for i, idx := range indices {
		e := energy[idx]
		if e < p.EMin || e > p.EMax {
			// Out of support: density 0 exactly, zero gradient.
			continue
		}
		density := ClampDensity(norm * math.Pow(e, -gamma))
		out.Densities[i] = density
		// d ln p / d gamma = d ln C / d gamma - ln E
		grad[i] = density * (dLogNorm - math.Log(e))
	}
	return out, nil
}

// normalization returns C(gamma) and d ln C / d gamma. Near the gamma = 1
// singularity the log-derivative falls back to a central finite difference.
func (p *PowerLawEnergyPDF) normalization(gamma float64) (norm, dLogNorm float64) {
	beta := 1 - gamma
	if math.Abs(beta) < 1e-9 {
		norm = 1 / math.Log(p.EMax/p.EMin)
		const h = 1e-6
		lo, _ := p.normalizationAway(gamma - h)
		hi, _ := p.normalizationAway(gamma + h)
		dLogNorm = (math.Log(hi) - math.Log(lo)) / (2 * h)
		return norm, dLogNorm
	}
	return p.normalizationAway(gamma)
}

func (p *PowerLawEnergyPDF) normalizationAway(gamma float64) (norm, dLogNorm float64) {
	beta := 1 - gamma
	d := math.Pow(p.EMax, beta) - math.Pow(p.EMin, beta)
	norm = beta / d
	dD := -(math.Log(p.EMax)*math.Pow(p.EMax, beta) - math.Log(p.EMin)*math.Pow(p.EMin, beta))
	dLogNorm = -1/beta - dD/d
	return norm, dLogNorm
}
