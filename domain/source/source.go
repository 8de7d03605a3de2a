package source

import "fmt"

// Hypothesis is a candidate emission point being tested. Coordinates are
// equatorial, in radians. Weight is the relative source weight within a
// multi-source search; it scales the source's share of the expected signal.
type Hypothesis struct {
	Name   string
	RA     float64
	Dec    float64
	Weight float64
}

// NewPointSource creates a unit-weight point-source hypothesis.
func NewPointSource(name string, ra, dec float64) Hypothesis {
	return Hypothesis{Name: name, RA: ra, Dec: dec, Weight: 1.0}
}

func (h Hypothesis) String() string {
	return fmt.Sprintf("%s (ra=%.4f, dec=%.4f, w=%g)", h.Name, h.RA, h.Dec, h.Weight)
}

// Catalog is the ordered list of hypotheses an analysis tests simultaneously.
// Source index positions are stable for the lifetime of a run.
type Catalog []Hypothesis

// TotalWeight sums the source weights.
func (c Catalog) TotalWeight() float64 {
	total := 0.0
	for _, h := range c {
		total += h.Weight
	}
	return total
}
