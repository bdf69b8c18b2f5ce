package model

import "errors"

// Per-currency failure taxonomy. Each of these excludes one currency from
// the current run; none of them is fatal to the run itself.
var (
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrDataGap             = errors.New("data gap beyond tolerance")
	ErrTrainingDivergence  = errors.New("training divergence")
	ErrUndefinedRisk       = errors.New("undefined risk")
	ErrForecastUnavailable = errors.New("forecast unavailable")
)

// ExclusionReason maps a per-currency failure to the reason label recorded
// in the recommendation table. Unrecognized errors map to "Error".
func ExclusionReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientHistory):
		return "InsufficientHistory"
	case errors.Is(err, ErrDataGap):
		return "DataGap"
	case errors.Is(err, ErrTrainingDivergence):
		return "TrainingDivergence"
	case errors.Is(err, ErrUndefinedRisk):
		return "UndefinedRisk"
	case errors.Is(err, ErrForecastUnavailable):
		return "ForecastUnavailable"
	default:
		return "Error"
	}
}
