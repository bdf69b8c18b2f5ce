package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RateCast/internal/model"
)

func constantModel() *model.TrainedModel {
	// One lag plus the expanding mean; coefficients pass lag-1 through, so
	// every step predicts the previous value.
	return &model.TrainedModel{
		Code:     "EUR",
		Spec:     model.FeatureSpec{Lags: 1},
		Coeffs:   []float64{1, 0, 0},
		TrainEnd: time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		History:  []float64{4.5, 4.5, 4.5},
	}
}

func TestHorizon_Sequence(t *testing.T) {
	m := constantModel()
	gen := time.Now()

	points, err := Horizon(m, 4, gen)
	require.NoError(t, err)
	require.Len(t, points, 4)

	for i, p := range points {
		assert.Equal(t, "EUR", p.Code)
		assert.InDelta(t, 4.5, p.Predicted, 1e-12)
		assert.Equal(t, gen, p.GeneratedAt)
		assert.Equal(t, m.TrainEnd.AddDate(0, 0, i+1), p.TargetDate)
		if i > 0 {
			assert.True(t, p.TargetDate.After(points[i-1].TargetDate))
		}
	}
}

func TestHorizon_NoModel(t *testing.T) {
	_, err := Horizon(nil, 4, time.Now())
	assert.ErrorIs(t, err, model.ErrForecastUnavailable)

	_, err = Horizon(&model.TrainedModel{}, 4, time.Now())
	assert.ErrorIs(t, err, model.ErrForecastUnavailable)
}

func TestHorizon_BadHorizon(t *testing.T) {
	_, err := Horizon(constantModel(), 0, time.Now())
	assert.ErrorIs(t, err, model.ErrForecastUnavailable)
}
