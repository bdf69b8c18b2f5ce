package store

import (
	"time"

	"RateCast/internal/model"
)

// Publication is the complete output of one successful run: the forecast
// table and the recommendation table, written together or not at all.
type Publication struct {
	RunID           string
	RunDate         time.Time
	CompletedAt     time.Time
	Forecasts       []model.ForecastPoint
	Recommendations []model.Recommendation
}

// Store persists ingested rate history and published run output.
type Store interface {
	// SaveRates upserts observed points for one currency; already-present
	// dates are left untouched so repeated ingest is safe.
	SaveRates(code string, pts []model.RatePoint) error
	// LoadRates returns all stored points for one currency up to and
	// including upTo, in date order.
	LoadRates(code string, upTo time.Time) ([]model.RatePoint, error)
	// LatestRateDate returns the most recent stored date for one currency,
	// and false when nothing is stored yet.
	LatestRateDate(code string) (time.Time, bool, error)
	// Publication returns the stored output for a run date, or nil.
	Publication(runDate time.Time) (*Publication, error)
	// Publish writes a run's output atomically. A second publication for
	// the same run date is rejected.
	Publish(pub *Publication) error
	Close() error
}
