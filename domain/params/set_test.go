package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gollh/domain/core"
)

func TestNewSet_Validation(t *testing.T) {
	t.Run("duplicate names", func(t *testing.T) {
		_, err := NewSet(
			NewFixedParameter("gamma", 2.0),
			NewFitParameter("gamma", 2.0, 1.0, 4.0),
		)
		assert.ErrorIs(t, err, core.ErrDuplicateParameter)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := NewSet(NewFixedParameter("", 1.0))
		assert.Error(t, err)
	})

	t.Run("inverted bounds", func(t *testing.T) {
		_, err := NewSet(NewFitParameter("ns", 5, 10, 0))
		assert.ErrorIs(t, err, core.ErrInvalidBounds)
	})

	t.Run("initial outside bounds", func(t *testing.T) {
		_, err := NewSet(NewFitParameter("ns", 50, 0, 10))
		assert.ErrorIs(t, err, core.ErrInvalidBounds)
	})
}

func TestSet_FitOrderIsStable(t *testing.T) {
	set, err := NewSet(
		NewFixedParameter("e0", 1000),
		NewFitParameter("ns", 0, 0, 100),
		NewFixedParameter("livetime", 365),
		NewFitParameter("gamma", 2, 1, 4),
	)
	require.NoError(t, err)

	assert.Equal(t, 4, set.Len())
	assert.Equal(t, 2, set.FitCount())
	assert.Equal(t, []string{"ns", "gamma"}, set.FitNames())
	assert.Equal(t, []float64{0, 2}, set.FitInitials())
	assert.Equal(t, 0, set.FitIndex("ns"))
	assert.Equal(t, 1, set.FitIndex("gamma"))
	assert.Equal(t, -1, set.FitIndex("e0"), "fixed parameters have no fit index")
	assert.Equal(t, -1, set.FitIndex("unknown"))

	lower, upper := set.FitBounds()
	assert.Equal(t, []float64{0, 1}, lower)
	assert.Equal(t, []float64{100, 4}, upper)
}

func TestSet_ByName(t *testing.T) {
	set, err := NewSet(NewFixedParameter("gamma", 3.7))
	require.NoError(t, err)

	p, ok := set.ByName("gamma")
	require.True(t, ok)
	assert.Equal(t, 3.7, p.Value)

	_, ok = set.ByName("ns")
	assert.False(t, ok)
}
