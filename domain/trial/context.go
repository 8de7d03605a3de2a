package trial

import (
	"fmt"

	"gollh/domain/core"
	"gollh/domain/events"
	"gollh/domain/source"
)

// BackgroundOrigin marks an event not attributed to any modeled source.
const BackgroundOrigin = -1

// EventSelector reduces a full event sample to the subset relevant to one
// source hypothesis. Selection must depend only on the source position and
// extent, never on fit-parameter values, so selections stay valid while
// parameters vary across optimizer iterations within a trial.
type EventSelector interface {
	Select(src source.Hypothesis, sample *events.Sample) ([]int, error)
}

// DataManager builds and owns the per-trial cache of source-event index
// mappings. The cache lifetime is exactly one trial: every Rebuild supersedes
// the previous Context, and accessors on a superseded Context fail with
// ErrStaleTrial instead of silently reading indices against the wrong sample.
type DataManager struct {
	selector EventSelector
	sources  source.Catalog
	schema   events.Schema
	gen      uint64
	current  *Context
}

// NewDataManager creates a manager for the given hypotheses. The schema is
// validated against every trial sample before any index mapping is built.
func NewDataManager(selector EventSelector, sources source.Catalog, schema events.Schema) *DataManager {
	return &DataManager{
		selector: selector,
		sources:  sources,
		schema:   schema,
	}
}

// Context is the per-trial view handed to PDF evaluation: the trial sample,
// per-source selected index sets, and for synthesized samples the originating
// source per event. It is valid until the manager rebuilds for the next
// trial.
type Context struct {
	mgr      *DataManager
	gen      uint64
	sample   *events.Sample
	selected [][]int
	origins  []int
}

// Rebuild validates the new trial sample, runs the selector for every source
// and returns the fresh Context. origins may be nil for experimental data;
// for synthesized samples it must carry one source index (or
// BackgroundOrigin) per event.
func (m *DataManager) Rebuild(sample *events.Sample, origins []int) (*Context, error) {
	if err := m.schema.Validate(sample); err != nil {
		return nil, err
	}
	if origins != nil && len(origins) != sample.Len() {
		return nil, fmt.Errorf("%w: %d origins for %d events",
			core.ErrLengthMismatch, len(origins), sample.Len())
	}

	selected := make([][]int, len(m.sources))
	for i, src := range m.sources {
		indices, err := m.selector.Select(src, sample)
		if err != nil {
			return nil, fmt.Errorf("selecting events for source %q: %w", src.Name, err)
		}
		for _, idx := range indices {
			if idx < 0 || idx >= sample.Len() {
				return nil, fmt.Errorf("selector returned index %d out of range for source %q", idx, src.Name)
			}
		}
		selected[i] = indices
	}

	m.gen++
	ctx := &Context{
		mgr:      m,
		gen:      m.gen,
		sample:   sample,
		selected: selected,
		origins:  origins,
	}
	m.current = ctx
	return ctx, nil
}

// live reports whether the context still belongs to the manager's current
// trial.
func (c *Context) live() error {
	if c.mgr == nil || c.gen != c.mgr.gen {
		return core.ErrStaleTrial
	}
	return nil
}

// Sample returns the trial's event sample.
func (c *Context) Sample() (*events.Sample, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	return c.sample, nil
}

// SourceEvents returns the selected event indices for one source. The slice
// is cached for the trial's lifetime and must not be mutated.
func (c *Context) SourceEvents(src int) ([]int, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	if src < 0 || src >= len(c.selected) {
		return nil, fmt.Errorf("source index %d out of range [0,%d)", src, len(c.selected))
	}
	return c.selected[src], nil
}

// Origin returns the generating source index of one event, or
// BackgroundOrigin. Only synthesized samples carry origins.
func (c *Context) Origin(event int) (int, error) {
	if err := c.live(); err != nil {
		return 0, err
	}
	if c.origins == nil {
		return BackgroundOrigin, nil
	}
	if event < 0 || event >= len(c.origins) {
		return 0, fmt.Errorf("event index %d out of range [0,%d)", event, len(c.origins))
	}
	return c.origins[event], nil
}

// NumSources returns the number of hypotheses the manager was built with.
func (c *Context) NumSources() int {
	return len(c.selected)
}
