package model

import "time"

// RatePoint is a single observed (or gap-filled) exchange rate for one day.
type RatePoint struct {
	Date   time.Time
	Rate   float64
	Filled bool // true when the value was forward-filled, not observed
}

// RateSeries holds the uniform daily rate history for one currency,
// strictly increasing in date, truncated at the run's as-of date.
type RateSeries struct {
	Code        string
	Points      []RatePoint
	AsOf        time.Time
	FilledCount int
}

// Len returns the number of points in the series.
func (s *RateSeries) Len() int { return len(s.Points) }

// Rates returns the rate values in date order.
func (s *RateSeries) Rates() []float64 {
	rates := make([]float64, len(s.Points))
	for i, p := range s.Points {
		rates[i] = p.Rate
	}
	return rates
}

// Last returns the most recent point. Callers must check Len first.
func (s *RateSeries) Last() RatePoint { return s.Points[len(s.Points)-1] }
