package feed

import (
	"context"
	"time"

	"RateCast/internal/model"
)

// Feed defines the interface for fetching exchange rates from the upstream source.
type Feed interface {
	// FetchRates returns the observed rates for one currency over [from, to],
	// in date order. Days without a published rate are simply absent.
	FetchRates(ctx context.Context, code string, from, to time.Time) ([]model.RatePoint, error)
	// Healthy probes the upstream source. A failure here is run-fatal.
	Healthy(ctx context.Context) error
	Name() string
}
