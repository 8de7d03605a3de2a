package trial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gollh/domain/core"
	"gollh/domain/events"
	"gollh/domain/source"
)

// indexSelector returns fixed indices for every source.
type indexSelector struct {
	indices []int
}

func (s indexSelector) Select(src source.Hypothesis, sample *events.Sample) ([]int, error) {
	return s.indices, nil
}

func trialSample(t *testing.T, n int) *events.Sample {
	t.Helper()
	s := events.NewSample(n)
	col := make([]float64, n)
	for i := range col {
		col[i] = float64(i)
	}
	require.NoError(t, s.SetColumn("ra", col))
	return s
}

func TestDataManager_Rebuild(t *testing.T) {
	catalog := source.Catalog{source.NewPointSource("a", 0, 0)}
	mgr := NewDataManager(indexSelector{indices: []int{0, 2}}, catalog, events.Schema{"ra"})

	sample := trialSample(t, 4)
	ctx, err := mgr.Rebuild(sample, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, ctx.NumSources())

	got, err := ctx.Sample()
	require.NoError(t, err)
	assert.Same(t, sample, got)

	indices, err := ctx.SourceEvents(0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, indices)

	_, err = ctx.SourceEvents(1)
	assert.Error(t, err)
}

func TestDataManager_StaleContext(t *testing.T) {
	catalog := source.Catalog{source.NewPointSource("a", 0, 0)}
	mgr := NewDataManager(indexSelector{indices: []int{0}}, catalog, events.Schema{"ra"})

	first, err := mgr.Rebuild(trialSample(t, 2), nil)
	require.NoError(t, err)

	second, err := mgr.Rebuild(trialSample(t, 3), nil)
	require.NoError(t, err)

	// The superseded context fails loudly instead of reading stale indices.
	_, err = first.Sample()
	assert.ErrorIs(t, err, core.ErrStaleTrial)
	_, err = first.SourceEvents(0)
	assert.ErrorIs(t, err, core.ErrStaleTrial)
	_, err = first.Origin(0)
	assert.ErrorIs(t, err, core.ErrStaleTrial)

	// The current one keeps working.
	_, err = second.SourceEvents(0)
	assert.NoError(t, err)
}

func TestDataManager_Validation(t *testing.T) {
	catalog := source.Catalog{source.NewPointSource("a", 0, 0)}

	t.Run("schema violation", func(t *testing.T) {
		mgr := NewDataManager(indexSelector{}, catalog, events.Schema{"ra", "dec"})
		_, err := mgr.Rebuild(trialSample(t, 2), nil)
		assert.ErrorIs(t, err, core.ErrMissingField)
	})

	t.Run("origins length mismatch", func(t *testing.T) {
		mgr := NewDataManager(indexSelector{}, catalog, events.Schema{"ra"})
		_, err := mgr.Rebuild(trialSample(t, 2), []int{0})
		assert.ErrorIs(t, err, core.ErrLengthMismatch)
	})

	t.Run("selector index out of range", func(t *testing.T) {
		mgr := NewDataManager(indexSelector{indices: []int{5}}, catalog, events.Schema{"ra"})
		_, err := mgr.Rebuild(trialSample(t, 2), nil)
		assert.Error(t, err)
	})
}

func TestContext_Origins(t *testing.T) {
	catalog := source.Catalog{source.NewPointSource("a", 0, 0)}
	mgr := NewDataManager(indexSelector{indices: []int{0}}, catalog, events.Schema{"ra"})

	t.Run("synthesized sample", func(t *testing.T) {
		ctx, err := mgr.Rebuild(trialSample(t, 3), []int{BackgroundOrigin, 0, BackgroundOrigin})
		require.NoError(t, err)

		origin, err := ctx.Origin(1)
		require.NoError(t, err)
		assert.Equal(t, 0, origin)

		_, err = ctx.Origin(7)
		assert.Error(t, err)
	})

	t.Run("experimental sample has no origins", func(t *testing.T) {
		ctx, err := mgr.Rebuild(trialSample(t, 3), nil)
		require.NoError(t, err)
		origin, err := ctx.Origin(1)
		require.NoError(t, err)
		assert.Equal(t, BackgroundOrigin, origin)
	})
}
