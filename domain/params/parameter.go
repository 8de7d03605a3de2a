package params

import "fmt"

// Kind distinguishes fixed parameters from parameters an optimizer floats.
type Kind int

const (
	Fixed Kind = iota
	Fit
)

func (k Kind) String() string {
	if k == Fixed {
		return "fixed"
	}
	return "fit"
}

// Parameter represents one named analysis parameter. Fixed parameters carry a
// value; fit parameters carry an initial value and bounds. Identity (name,
// kind, bounds) is immutable; the current value of a fit parameter lives in
// the optimizer's vector, never here.
type Parameter struct {
	Name string
	Kind Kind

	// Fixed parameters
	Value float64

	// Fit parameters
	Initial float64
	Min     float64
	Max     float64

	// BroadcastAll makes this global parameter resolve for every source that
	// requires a local parameter of the same name.
	BroadcastAll bool
}

// NewFixedParameter creates a fixed parameter with a constant value.
func NewFixedParameter(name string, value float64) Parameter {
	return Parameter{Name: name, Kind: Fixed, Value: value}
}

// NewFitParameter creates a fit parameter with an initial value and bounds.
func NewFitParameter(name string, initial, min, max float64) Parameter {
	return Parameter{Name: name, Kind: Fit, Initial: initial, Min: min, Max: max}
}

// Broadcast returns a copy of the parameter flagged to broadcast to all
// sources.
func (p Parameter) Broadcast() Parameter {
	p.BroadcastAll = true
	return p
}

func (p Parameter) String() string {
	if p.Kind == Fixed {
		return fmt.Sprintf("%s=%g (fixed)", p.Name, p.Value)
	}
	return fmt.Sprintf("%s=%g in [%g,%g] (fit)", p.Name, p.Initial, p.Min, p.Max)
}
