package events

import (
	"fmt"

	"gollh/domain/core"
)

// Schema declares the fields an event sample must carry before trial
// generation starts. Validation failures are configuration errors raised
// before any trial, never mid-trial.
type Schema []Field

// Validate checks that every declared field is present with a full column.
func (sc Schema) Validate(s *Sample) error {
	if s == nil {
		return fmt.Errorf("%w: nil sample", core.ErrMissingField)
	}
	for _, field := range sc {
		if _, ok := s.Column(field); !ok {
			return core.NewMissingFieldError(string(field))
		}
	}
	return nil
}

// Union merges schemas, preserving order and dropping duplicates.
func Union(schemas ...Schema) Schema {
	seen := make(map[Field]bool)
	var out Schema
	for _, sc := range schemas {
		for _, f := range sc {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}
