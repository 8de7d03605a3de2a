package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gollh/domain/core"
)

func testSet(t *testing.T) *Set {
	t.Helper()
	set, err := NewSet(
		NewFitParameter("gamma", 2, 1, 4).Broadcast(),
		NewFitParameter("gamma_b", 2.5, 1, 4),
		NewFixedParameter("e0", 1000),
	)
	require.NoError(t, err)
	return set
}

func TestNewModelMapper_ResolutionPrecedence(t *testing.T) {
	set := testSet(t)

	mapper, err := NewModelMapper(set, []SourceMapping{
		// Source 0 broadcasts the shared gamma.
		{Requires: []string{"gamma"}},
		// Source 1 overrides gamma to its own global.
		{Requires: []string{"gamma"}, Overrides: map[string]string{"gamma": "gamma_b"}},
		// Source 2 pins gamma to a literal; literals beat broadcasting.
		{Requires: []string{"gamma"}, Literals: map[string]float64{"gamma": 3.0}},
	})
	require.NoError(t, err)
	require.Equal(t, 3, mapper.NumSources())

	locals, err := mapper.ToLocal([]float64{2.0, 2.5})
	require.NoError(t, err)
	require.Len(t, locals, 3)

	g0, err := locals[0].Get("gamma")
	require.NoError(t, err)
	assert.Equal(t, 2.0, g0)

	g1, err := locals[1].Get("gamma")
	require.NoError(t, err)
	assert.Equal(t, 2.5, g1)

	g2, err := locals[2].Get("gamma")
	require.NoError(t, err)
	assert.Equal(t, 3.0, g2)
}

func TestNewModelMapper_UnresolvedFailsEagerly(t *testing.T) {
	set := testSet(t)

	// gamma_b does not broadcast, so requiring it without an override fails
	// at construction, not at mapping time.
	_, err := NewModelMapper(set, []SourceMapping{
		{Requires: []string{"gamma_b"}},
	})
	assert.ErrorIs(t, err, core.ErrUnresolvedParameter)

	_, err = NewModelMapper(set, []SourceMapping{
		{Requires: []string{"gamma"}, Overrides: map[string]string{"gamma": "nonexistent"}},
	})
	assert.ErrorIs(t, err, core.ErrUnresolvedParameter)
}

func TestToLocal(t *testing.T) {
	set := testSet(t)
	mapper, err := NewModelMapper(set, []SourceMapping{
		{Requires: []string{"gamma", "e0"}},
	})
	// e0 is fixed and does not broadcast; requiring it must fail.
	assert.ErrorIs(t, err, core.ErrUnresolvedParameter)

	mapper, err = NewModelMapper(set, []SourceMapping{
		{Requires: []string{"gamma", "e0"}, Overrides: map[string]string{"e0": "e0"}},
	})
	require.NoError(t, err)

	t.Run("shape mismatch", func(t *testing.T) {
		_, err := mapper.ToLocal([]float64{1})
		assert.ErrorIs(t, err, core.ErrShapeMismatch)
	})

	t.Run("fixed values come from the set", func(t *testing.T) {
		locals, err := mapper.ToLocal([]float64{1.8, 2.5})
		require.NoError(t, err)
		e0, err := locals[0].Get("e0")
		require.NoError(t, err)
		assert.Equal(t, 1000.0, e0)
	})

	t.Run("mapping is pure", func(t *testing.T) {
		vec := []float64{2.2, 2.5}
		a, err := mapper.ToLocal(vec)
		require.NoError(t, err)
		b, err := mapper.ToLocal(vec)
		require.NoError(t, err)
		assert.Equal(t, a, b)

		// Mutating one record must not affect a fresh mapping.
		a[0]["gamma"] = 99
		c, err := mapper.ToLocal(vec)
		require.NoError(t, err)
		g, err := c[0].Get("gamma")
		require.NoError(t, err)
		assert.Equal(t, 2.2, g)
	})
}

func TestFitDependencies(t *testing.T) {
	set := testSet(t)
	mapper, err := NewModelMapper(set, []SourceMapping{
		{Requires: []string{"gamma"}},
		{Requires: []string{"gamma"}, Literals: map[string]float64{"gamma": 3.0}},
	})
	require.NoError(t, err)

	deps := mapper.FitDependencies(0)
	assert.Equal(t, map[string]int{"gamma": 0}, deps)

	// A literal tracks no fit parameter.
	assert.Empty(t, mapper.FitDependencies(1))
	assert.Nil(t, mapper.FitDependencies(5))
}

func TestLocalParams_Get(t *testing.T) {
	lp := LocalParams{"gamma": 2.0}
	_, err := lp.Get("ns")
	assert.ErrorIs(t, err, core.ErrUnresolvedParameter)
}
