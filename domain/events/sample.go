package events

import (
	"fmt"
	"sort"

	"gollh/domain/core"
)

// Field names a per-event data column, e.g. "ra", "dec", "log_energy".
type Field string

// Sample is a column-oriented event sample. Each field holds one float64 per
// event. A sample is never mutated by the analysis core once built; selection
// works on index sets, synthesis materializes new samples via Take and Append.
type Sample struct {
	n       int
	columns map[Field][]float64
}

// NewSample creates an empty sample of n events with no columns yet.
func NewSample(n int) *Sample {
	return &Sample{
		n:       n,
		columns: make(map[Field][]float64),
	}
}

// Len returns the number of events in the sample.
func (s *Sample) Len() int {
	return s.n
}

// SetColumn stores a column. The column length must match the sample length.
func (s *Sample) SetColumn(field Field, values []float64) error {
	if len(values) != s.n {
		return fmt.Errorf("%w: field %q has %d values, sample holds %d events",
			core.ErrLengthMismatch, field, len(values), s.n)
	}
	s.columns[field] = values
	return nil
}

// Column returns the values of a field, or false when the field is absent.
// The returned slice is shared; callers must not mutate it.
func (s *Sample) Column(field Field) ([]float64, bool) {
	col, ok := s.columns[field]
	return col, ok
}

// Fields returns the declared field names in sorted order.
func (s *Sample) Fields() []Field {
	fields := make([]Field, 0, len(s.columns))
	for f := range s.columns {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Take materializes a new sample from the given event indices. Indices may
// repeat (sampling with replacement) and must all be in range.
func (s *Sample) Take(indices []int) (*Sample, error) {
	for _, idx := range indices {
		if idx < 0 || idx >= s.n {
			return nil, fmt.Errorf("event index %d out of range [0,%d)", idx, s.n)
		}
	}
	out := NewSample(len(indices))
	for field, col := range s.columns {
		taken := make([]float64, len(indices))
		for i, idx := range indices {
			taken[i] = col[idx]
		}
		out.columns[field] = taken
	}
	return out, nil
}

// Append concatenates samples into a new sample. All samples must declare the
// same field set; empty inputs are skipped.
func Append(samples ...*Sample) (*Sample, error) {
	total := 0
	var first *Sample
	for _, s := range samples {
		if s == nil {
			continue
		}
		total += s.n
		if first == nil {
			first = s
		}
	}
	out := NewSample(total)
	if first == nil {
		return out, nil
	}
	for _, field := range first.Fields() {
		merged := make([]float64, 0, total)
		for _, s := range samples {
			if s == nil {
				continue
			}
			col, ok := s.columns[field]
			if !ok {
				return nil, fmt.Errorf("%w: field %q absent in appended sample",
					core.ErrMissingField, field)
			}
			merged = append(merged, col...)
		}
		out.columns[field] = merged
	}
	return out, nil
}

// Clone returns a deep copy. Used by generators before per-trial scrambling so
// the pool sample itself is never touched.
func (s *Sample) Clone() *Sample {
	out := NewSample(s.n)
	for field, col := range s.columns {
		cp := make([]float64, len(col))
		copy(cp, col)
		out.columns[field] = cp
	}
	return out
}
