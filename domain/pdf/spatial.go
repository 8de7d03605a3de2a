package pdf

import (
	"math"

	"gollh/domain/core"
	"gollh/domain/events"
	"gollh/domain/params"
	"gollh/domain/source"
)

// GaussianSpatialPDF models the point-spread of a point source as a circular
// two-dimensional Gaussian around the source position, using the per-event
// angular-error estimate as the Gaussian width. Coordinates are radians.
type GaussianSpatialPDF struct {
	Sources  source.Catalog
	RAField  events.Field
	DecField events.Field
	// SigmaField holds the per-event angular error estimate in radians.
	SigmaField events.Field
}

// NewGaussianSpatialPDF creates the spatial signal PDF for a catalog with the
// conventional field names.
func NewGaussianSpatialPDF(sources source.Catalog) *GaussianSpatialPDF {
	return &GaussianSpatialPDF{
		Sources:    sources,
		RAField:    "ra",
		DecField:   "dec",
		SigmaField: "ang_err",
	}
}

func (p *GaussianSpatialPDF) Evaluate(src int, local params.LocalParams, sample *events.Sample, indices []int) (Result, error) {
	if src < 0 || src >= len(p.Sources) {
		return Result{}, core.NewUnresolvedParameterError(src, "source index")
	}
	ra, ok := sample.Column(p.RAField)
	if !ok {
		return Result{}, core.NewMissingFieldError(string(p.RAField))
	}
	dec, ok := sample.Column(p.DecField)
	if !ok {
		return Result{}, core.NewMissingFieldError(string(p.DecField))
	}
	sigma, ok := sample.Column(p.SigmaField)
	if !ok {
		return Result{}, core.NewMissingFieldError(string(p.SigmaField))
	}

	hyp := p.Sources[src]
	out := newResult(len(indices))
	for i, idx := range indices {
		psi := angularDistance(ra[idx], dec[idx], hyp.RA, hyp.Dec)
		s := sigma[idx]
		var density float64
		if s > 0 {
			density = math.Exp(-psi*psi/(2*s*s)) / (2 * math.Pi * s * s)
		}
		out.Densities[i] = ClampDensity(density)
	}
	return out, nil
}

// angularDistance is the great-circle distance between two sky positions.
func angularDistance(ra1, dec1, ra2, dec2 float64) float64 {
	cosPsi := math.Sin(dec1)*math.Sin(dec2) +
		math.Cos(dec1)*math.Cos(dec2)*math.Cos(ra1-ra2)
	if cosPsi > 1 {
		cosPsi = 1
	}
	if cosPsi < -1 {
		cosPsi = -1
	}
	return math.Acos(cosPsi)
}

// UniformSpherePDF is the isotropic spatial background density, constant
// 1/(4 pi) per steradian for every event.
type UniformSpherePDF struct{}

func (UniformSpherePDF) Evaluate(src int, local params.LocalParams, sample *events.Sample, indices []int) (Result, error) {
	out := newResult(len(indices))
	for i := range out.Densities {
		out.Densities[i] = 1.0 / (4 * math.Pi)
	}
	return out, nil
}
