package selector

import (
	"math"

	"gollh/domain/core"
	"gollh/domain/events"
	"gollh/domain/source"
)

// SpatialBoxSelector selects events inside a declination band and
// right-ascension window around the source position. Selection depends only
// on the source position and the box extent, never on fit-parameter values,
// so selections cached per trial stay valid across optimizer iterations.
type SpatialBoxSelector struct {
	RAField  events.Field
	DecField events.Field
	// Half-widths of the box, in radians.
	RAWidth  float64
	DecWidth float64
}

// NewSpatialBoxSelector creates a selector with the conventional field names.
func NewSpatialBoxSelector(raWidth, decWidth float64) *SpatialBoxSelector {
	return &SpatialBoxSelector{
		RAField:  "ra",
		DecField: "dec",
		RAWidth:  raWidth,
		DecWidth: decWidth,
	}
}

// Select returns the indices of events inside the box. The RA window widens
// with declination to keep the solid angle roughly constant, and wraps at
// 2 pi.
func (s *SpatialBoxSelector) Select(src source.Hypothesis, sample *events.Sample) ([]int, error) {
	ra, ok := sample.Column(s.RAField)
	if !ok {
		return nil, core.NewMissingFieldError(string(s.RAField))
	}
	dec, ok := sample.Column(s.DecField)
	if !ok {
		return nil, core.NewMissingFieldError(string(s.DecField))
	}

	cosDec := math.Cos(src.Dec)
	raWidth := s.RAWidth
	if cosDec > 1e-3 {
		raWidth = math.Min(s.RAWidth/cosDec, math.Pi)
	} else {
		// At the poles every right ascension is close.
		raWidth = math.Pi
	}

	var indices []int
	for i := 0; i < sample.Len(); i++ {
		if math.Abs(dec[i]-src.Dec) > s.DecWidth {
			continue
		}
		dra := math.Abs(ra[i] - src.RA)
		if dra > math.Pi {
			dra = 2*math.Pi - dra
		}
		if dra > raWidth {
			continue
		}
		indices = append(indices, i)
	}
	return indices, nil
}

// AllEventsSelector selects every event for every source, for analyses that
// evaluate the full sample.
type AllEventsSelector struct{}

// Select returns 0..Len-1.
func (AllEventsSelector) Select(src source.Hypothesis, sample *events.Sample) ([]int, error) {
	indices := make([]int, sample.Len())
	for i := range indices {
		indices[i] = i
	}
	return indices, nil
}
