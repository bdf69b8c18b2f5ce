package series

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"RateCast/internal/feed"
	"RateCast/internal/model"
)

// RateStore is the subset of the store the adapter needs for cache-through
// ingestion of observed rates.
type RateStore interface {
	SaveRates(code string, pts []model.RatePoint) error
	LoadRates(code string, upTo time.Time) ([]model.RatePoint, error)
	LatestRateDate(code string) (time.Time, bool, error)
}

// Adapter builds a validated, gap-filled RateSeries per currency up to the
// run's as-of date. New observations are fetched incrementally from the feed
// and persisted before the series is assembled.
type Adapter struct {
	Feed       feed.Feed
	Store      RateStore
	MinHistory int
	MaxGapFill int
	Log        zerolog.Logger
}

// NewAdapter creates a series adapter.
func NewAdapter(f feed.Feed, st RateStore, minHistory, maxGapFill int, log zerolog.Logger) *Adapter {
	return &Adapter{
		Feed:       f,
		Store:      st,
		MinHistory: minHistory,
		MaxGapFill: maxGapFill,
		Log:        log.With().Str("component", "series").Logger(),
	}
}

// Build returns the full available series for one currency up to asOf.
// It fails with model.ErrInsufficientHistory when observed points fall below
// the minimum window, and with model.ErrDataGap when the series contains a
// gap beyond the forward-fill tolerance or an invalid rate.
func (a *Adapter) Build(ctx context.Context, code string, asOf time.Time) (*model.RateSeries, error) {
	if err := a.ingest(ctx, code, asOf); err != nil {
		return nil, err
	}

	observed, err := a.Store.LoadRates(code, asOf)
	if err != nil {
		return nil, fmt.Errorf("load rates for %s: %w", code, err)
	}
	if len(observed) < a.MinHistory {
		return nil, fmt.Errorf("%s: %d observed points, need %d: %w",
			code, len(observed), a.MinHistory, model.ErrInsufficientHistory)
	}

	points, filled, err := a.fillGaps(code, observed)
	if err != nil {
		return nil, err
	}
	if filled > 0 {
		a.Log.Debug().Str("currency", code).Int("filled", filled).Msg("forward-filled gap days")
	}

	return &model.RateSeries{
		Code:        code,
		Points:      points,
		AsOf:        asOf,
		FilledCount: filled,
	}, nil
}

// backfillFactor sizes the first-run fetch window in calendar days per
// required observation: business-day feeds publish roughly five points per
// seven calendar days, so two calendar days per point covers weekends and
// holidays.
const backfillFactor = 2

// ingest fetches any observations newer than the stored history and persists
// them. A currency with no stored history is backfilled deep enough that the
// minimum window can be met on business-day data.
func (a *Adapter) ingest(ctx context.Context, code string, asOf time.Time) error {
	from := asOf.AddDate(0, 0, -backfillFactor*a.MinHistory)
	if latest, ok, err := a.Store.LatestRateDate(code); err != nil {
		return fmt.Errorf("latest rate date for %s: %w", code, err)
	} else if ok {
		from = latest.AddDate(0, 0, 1)
	}
	if from.After(asOf) {
		return nil
	}

	pts, err := a.Feed.FetchRates(ctx, code, from, asOf)
	if err != nil {
		return fmt.Errorf("fetch rates for %s: %w", code, err)
	}
	if len(pts) == 0 {
		return nil
	}
	if err := a.Store.SaveRates(code, pts); err != nil {
		return fmt.Errorf("save rates for %s: %w", code, err)
	}
	return nil
}

// fillGaps validates ordering and rates, and forward-fills missing calendar
// days between observations up to the configured tolerance. Filled points
// are flagged so downstream error computation can skip them.
func (a *Adapter) fillGaps(code string, observed []model.RatePoint) ([]model.RatePoint, int, error) {
	points := make([]model.RatePoint, 0, len(observed))
	filled := 0

	for i, p := range observed {
		if p.Rate <= 0 {
			return nil, 0, fmt.Errorf("%s: non-positive rate %.6f on %s: %w",
				code, p.Rate, p.Date.Format("2006-01-02"), model.ErrDataGap)
		}
		if i > 0 {
			prev := observed[i-1]
			if !p.Date.After(prev.Date) {
				return nil, 0, fmt.Errorf("%s: non-monotonic dates %s -> %s: %w",
					code, prev.Date.Format("2006-01-02"), p.Date.Format("2006-01-02"), model.ErrDataGap)
			}
			missing := daysBetween(prev.Date, p.Date) - 1
			if missing > a.MaxGapFill {
				return nil, 0, fmt.Errorf("%s: %d missing days before %s, tolerance %d: %w",
					code, missing, p.Date.Format("2006-01-02"), a.MaxGapFill, model.ErrDataGap)
			}
			for d := 1; d <= missing; d++ {
				points = append(points, model.RatePoint{
					Date:   prev.Date.AddDate(0, 0, d),
					Rate:   prev.Rate,
					Filled: true,
				})
				filled++
			}
		}
		points = append(points, p)
	}
	return points, filled, nil
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
