package model

import "time"

// FeatureSpec describes the lag features a model is trained on.
type FeatureSpec struct {
	Lags           int   // autoregressive lags 1..Lags
	SeasonalLag    int   // extra single lag at the seasonality period, 0 = off
	RollingWindows []int // rolling mean+std window sizes over past values
}

// Residual is one held-out prediction error: Actual - Predicted at Date.
type Residual struct {
	Date      time.Time
	Actual    float64
	Predicted float64
	Filled    bool // actual was a gap-filled value, excluded from scoring
}

// TrainedModel is the immutable artifact of one currency's daily fit.
// It is superseded, never mutated, by the next day's retrain.
type TrainedModel struct {
	Code       string
	Spec       FeatureSpec
	Coeffs     []float64 // feature coefficients, intercept last
	TrainStart time.Time
	TrainEnd   time.Time
	FittedAt   time.Time

	// History carries the full series the final fit used, in date order.
	// The forecaster extends it iteratively; the model itself never changes.
	History []float64

	InSample    []Residual
	OutOfSample []Residual
}

// Predict applies the fitted coefficients to one feature row.
func (m *TrainedModel) Predict(row []float64) float64 {
	pred := m.Coeffs[len(m.Coeffs)-1] // intercept
	for i, v := range row {
		pred += m.Coeffs[i] * v
	}
	return pred
}
