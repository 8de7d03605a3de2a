package pdf

import (
	"gollh/domain/core"
	"gollh/domain/events"
	"gollh/domain/params"
)

// BoxTimePDF is a uniform emission-window density: 1/Duration inside
// [Start, Start+Duration], 0 outside.
type BoxTimePDF struct {
	TimeField events.Field
	Start     float64
	Duration  float64
}

// NewBoxTimePDF creates a box time PDF over the given window.
func NewBoxTimePDF(start, duration float64) *BoxTimePDF {
	return &BoxTimePDF{TimeField: "time", Start: start, Duration: duration}
}

func (p *BoxTimePDF) Evaluate(src int, local params.LocalParams, sample *events.Sample, indices []int) (Result, error) {
	times, ok := sample.Column(p.TimeField)
	if !ok {
		return Result{}, core.NewMissingFieldError(string(p.TimeField))
	}
	out := newResult(len(indices))
	if p.Duration <= 0 {
		return out, nil
	}
	inv := 1 / p.Duration
	for i, idx := range indices {
		t := times[idx]
		if t >= p.Start && t <= p.Start+p.Duration {
			out.Densities[i] = inv
		}
	}
	return out, nil
}
