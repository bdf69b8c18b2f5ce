package model

import "time"

// ForecastPoint is one predicted future rate for a currency.
type ForecastPoint struct {
	Code        string
	TargetDate  time.Time
	Predicted   float64
	GeneratedAt time.Time
}

// RiskResult holds the RMAPE-derived risk indicator for one currency.
// Indicator is the mean relative absolute error over held-out points with a
// non-zero actual, as a ratio. ZeroActual counts the excluded points.
type RiskResult struct {
	Indicator  float64
	Included   int
	ZeroActual int
}

// Recommendation statuses in the published table.
const (
	StatusRanked   = "ranked"
	StatusUnscored = "unscored"
	StatusExcluded = "excluded"
)

// Recommendation is one row of the published ranking table. Rank is 1-based
// for ranked currencies and 0 for unscored/excluded ones. Reason is set only
// for excluded rows.
type Recommendation struct {
	Code    string
	RunDate time.Time
	Risk    float64
	Rank    int
	Status  string
	Reason  string
}
