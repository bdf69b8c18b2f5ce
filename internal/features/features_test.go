package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RateCast/internal/model"
)

func TestMinIndexAndCount(t *testing.T) {
	spec := model.FeatureSpec{Lags: 2, RollingWindows: []int{2}}
	assert.Equal(t, 2, MinIndex(spec))
	assert.Equal(t, 5, Count(spec)) // 2 lags + mean/std + expanding mean

	seasonal := model.FeatureSpec{Lags: 3, SeasonalLag: 7, RollingWindows: []int{2, 5}}
	assert.Equal(t, 7, MinIndex(seasonal))
	assert.Equal(t, 3+1+4+1, Count(seasonal))
}

func TestRow_UsesOnlyPastValues(t *testing.T) {
	spec := model.FeatureSpec{Lags: 2, RollingWindows: []int{2}}
	history := []float64{1, 2, 3, 4}

	row, err := Row(history, 3, spec)
	require.NoError(t, err)
	require.Len(t, row, Count(spec))

	assert.Equal(t, 3.0, row[0]) // lag 1
	assert.Equal(t, 2.0, row[1]) // lag 2
	assert.InDelta(t, 2.5, row[2], 1e-12)      // rolling mean of {2, 3}
	assert.InDelta(t, 0.70710678, row[3], 1e-6) // rolling std of {2, 3}
	assert.InDelta(t, 2.0, row[4], 1e-12)      // expanding mean of {1, 2, 3}
}

func TestRow_TooEarly(t *testing.T) {
	spec := model.FeatureSpec{Lags: 3}
	_, err := Row([]float64{1, 2, 3, 4}, 2, spec)
	assert.Error(t, err)
}

func TestMatrix(t *testing.T) {
	spec := model.FeatureSpec{Lags: 2, RollingWindows: []int{2}}
	history := []float64{1, 2, 3, 4}

	rows, targets, err := Matrix(history, 0, len(history), spec)
	require.NoError(t, err)
	require.Len(t, rows, 2) // indices 2 and 3
	assert.Equal(t, []float64{3, 4}, targets)

	_, _, err = Matrix(history, 0, len(history)+1, spec)
	assert.Error(t, err)

	_, _, err = Matrix(history, 2, 2, spec)
	assert.Error(t, err)
}
