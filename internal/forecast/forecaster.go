// Package forecast produces the future-horizon prediction sequence from a
// trained model.
package forecast

import (
	"fmt"
	"math"
	"time"

	"RateCast/internal/features"
	"RateCast/internal/model"
)

// Horizon generates one ForecastPoint per future day, target dates strictly
// increasing from the day after the model's training window end. Each step
// feeds its prediction back into the history for the next step's features.
//
// It fails with model.ErrForecastUnavailable when invoked without a usable
// model or when iteration produces a non-finite value; it never returns a
// partial sequence.
func Horizon(m *model.TrainedModel, horizon int, generatedAt time.Time) ([]model.ForecastPoint, error) {
	if m == nil || len(m.Coeffs) == 0 {
		return nil, fmt.Errorf("no trained model: %w", model.ErrForecastUnavailable)
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("non-positive horizon %d: %w", horizon, model.ErrForecastUnavailable)
	}

	history := make([]float64, len(m.History), len(m.History)+horizon)
	copy(history, m.History)

	points := make([]model.ForecastPoint, 0, horizon)
	for step := 1; step <= horizon; step++ {
		row, err := features.Row(history, len(history), m.Spec)
		if err != nil {
			return nil, fmt.Errorf("%s step %d: %v: %w", m.Code, step, err, model.ErrForecastUnavailable)
		}
		pred := m.Predict(row)
		if math.IsNaN(pred) || math.IsInf(pred, 0) {
			return nil, fmt.Errorf("%s step %d: non-finite prediction: %w",
				m.Code, step, model.ErrForecastUnavailable)
		}
		history = append(history, pred)
		points = append(points, model.ForecastPoint{
			Code:        m.Code,
			TargetDate:  m.TrainEnd.AddDate(0, 0, step),
			Predicted:   pred,
			GeneratedAt: generatedAt,
		})
	}
	return points, nil
}
