// Package pipeline sequences the daily run: per-currency series build,
// training, scoring, and forecasting under bounded parallelism, then the
// ranking barrier and the all-or-nothing publication.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"RateCast/internal/feed"
	"RateCast/internal/forecast"
	"RateCast/internal/model"
	"RateCast/internal/ranker"
	"RateCast/internal/risk"
	"RateCast/internal/runmark"
	"RateCast/internal/series"
	"RateCast/internal/store"
	"RateCast/internal/trainer"
)

// Config are the orchestrator's knobs.
type Config struct {
	Currencies      []string
	ForecastHorizon int
	Parallelism     int
	RunTimeout      time.Duration
	MinMovement     float64
}

// Pipeline runs the full per-currency forecasting-and-risk pipeline for one
// as-of date.
type Pipeline struct {
	cfg     Config
	feed    feed.Feed
	adapter *series.Adapter
	trainer *trainer.Trainer
	ranker  *ranker.Ranker
	store   store.Store
	marker  *runmark.Manager
	log     zerolog.Logger
}

// New wires a pipeline.
func New(cfg Config, f feed.Feed, a *series.Adapter, t *trainer.Trainer, st store.Store, mk *runmark.Manager, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		feed:    f,
		adapter: a,
		trainer: t,
		ranker:  &ranker.Ranker{MinMovement: cfg.MinMovement},
		store:   st,
		marker:  mk,
		log:     log.With().Str("component", "pipeline").Logger(),
	}
}

// Result is the published output of one run.
type Result struct {
	RunID           string
	RunDate         time.Time
	Reused          bool // true when an existing publication was returned
	Forecasts       []model.ForecastPoint
	Recommendations []model.Recommendation
}

// outcome is the terminal state of one currency's sub-pipeline.
type outcome struct {
	code      string
	status    string // StatusRanked candidates carry risk + forecasts
	reason    string
	risk      model.RiskResult
	lastRate  float64
	forecasts []model.ForecastPoint
}

// Run executes the pipeline for the given as-of date. Re-invoking for an
// already-published date returns the stored tables unchanged. Per-currency
// failures exclude that currency; a feed outage, invalid date, timeout, or
// cancellation aborts the run with nothing published.
func (p *Pipeline) Run(ctx context.Context, asOf time.Time) (*Result, error) {
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	runLog := p.log.With().Str("as_of", day.Format("2006-01-02")).Logger()

	if pub, err := p.store.Publication(day); err != nil {
		return nil, fmt.Errorf("check publication: %w", err)
	} else if pub != nil {
		runLog.Info().Str("run_id", pub.RunID).Msg("run already published, reusing")
		return &Result{
			RunID:           pub.RunID,
			RunDate:         day,
			Reused:          true,
			Forecasts:       pub.Forecasts,
			Recommendations: pub.Recommendations,
		}, nil
	}

	if err := p.feed.Healthy(ctx); err != nil {
		return nil, fmt.Errorf("feed unavailable: %w", err)
	}

	if last, ok := p.marker.Last(); ok {
		runLog.Info().Str("last_run", last.Format("2006-01-02")).Msg("incremental ingest since last successful run")
	} else {
		runLog.Info().Msg("no previous successful run, full backfill")
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.RunTimeout)
	defer cancel()

	runID := uuid.NewString()
	generatedAt := time.Now()

	outcomes := make([]outcome, len(p.cfg.Currencies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Parallelism)
	for i, code := range p.cfg.Currencies {
		i, code := i, code
		g.Go(func() error {
			out, err := p.runCurrency(gctx, code, day, generatedAt)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	// The ranking barrier: nothing is ordered or published until every
	// currency has reached a terminal state.
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run aborted: %w", err)
	}

	result := p.assemble(runID, day, outcomes)

	pub := &store.Publication{
		RunID:           runID,
		RunDate:         day,
		CompletedAt:     time.Now(),
		Forecasts:       result.Forecasts,
		Recommendations: result.Recommendations,
	}
	if err := p.store.Publish(pub); err != nil {
		return nil, fmt.Errorf("publish run: %w", err)
	}
	if err := p.marker.Advance(day, runID); err != nil {
		runLog.Warn().Err(err).Msg("run published but marker not advanced")
	}

	runLog.Info().
		Str("run_id", runID).
		Int("currencies", len(p.cfg.Currencies)).
		Int("forecasts", len(result.Forecasts)).
		Msg("run published")
	return result, nil
}

// runCurrency drives one currency to a terminal state. Only context
// cancellation is returned as an error; every domain failure is captured in
// the outcome so the remaining currencies keep running.
func (p *Pipeline) runCurrency(ctx context.Context, code string, day, generatedAt time.Time) (outcome, error) {
	log := p.log.With().Str("currency", code).Logger()

	// Abandon immediately on run-level cancellation; partial results from a
	// cancelled run are never published.
	if err := ctx.Err(); err != nil {
		return outcome{}, err
	}

	s, err := p.adapter.Build(ctx, code, day)
	if err != nil {
		if ctx.Err() != nil {
			return outcome{}, ctx.Err()
		}
		log.Warn().Err(err).Msg("series excluded")
		return excluded(code, err), nil
	}

	m, err := p.trainer.Train(s)
	if err != nil {
		if ctx.Err() != nil {
			return outcome{}, ctx.Err()
		}
		log.Warn().Err(err).Msg("training excluded")
		return excluded(code, err), nil
	}

	points, err := forecast.Horizon(m, p.cfg.ForecastHorizon, generatedAt)
	if err != nil {
		log.Warn().Err(err).Msg("forecast excluded")
		return excluded(code, err), nil
	}

	out := outcome{
		code:      code,
		lastRate:  s.Last().Rate,
		forecasts: points,
	}
	r, err := risk.Score(m.OutOfSample)
	if err != nil {
		if !errors.Is(err, model.ErrUndefinedRisk) {
			log.Warn().Err(err).Msg("risk excluded")
			return excluded(code, err), nil
		}
		// Forecast stays publishable, only the ranking slot is lost.
		log.Warn().Err(err).Msg("risk undefined, forecast published unscored")
		out.status = model.StatusUnscored
		return out, nil
	}

	out.status = model.StatusRanked
	out.risk = r
	log.Debug().
		Float64("rmape", r.Indicator).
		Int("held_out", r.Included).
		Int("zero_actual", r.ZeroActual).
		Msg("currency scored")
	return out, nil
}

// assemble merges the terminal outcomes into the published tables with a
// deterministic order: ranked rows by ascending risk, then unscored, then
// excluded rows by currency code.
func (p *Pipeline) assemble(runID string, day time.Time, outcomes []outcome) *Result {
	var candidates []ranker.Candidate
	var unscored, excludedRecs []model.Recommendation
	var forecasts []model.ForecastPoint

	for _, out := range outcomes {
		switch out.status {
		case model.StatusRanked:
			candidates = append(candidates, ranker.Candidate{
				Code:      out.code,
				Risk:      out.risk.Indicator,
				LastRate:  out.lastRate,
				Forecasts: out.forecasts,
			})
			forecasts = append(forecasts, out.forecasts...)
		case model.StatusUnscored:
			unscored = append(unscored, model.Recommendation{
				Code:    out.code,
				RunDate: day,
				Status:  model.StatusUnscored,
			})
			forecasts = append(forecasts, out.forecasts...)
		default:
			excludedRecs = append(excludedRecs, model.Recommendation{
				Code:    out.code,
				RunDate: day,
				Status:  model.StatusExcluded,
				Reason:  out.reason,
			})
		}
	}

	recs := make([]model.Recommendation, 0, len(outcomes))
	for _, r := range p.ranker.Rank(day, candidates) {
		if r.Status == model.StatusExcluded {
			excludedRecs = append(excludedRecs, r)
			continue
		}
		recs = append(recs, r)
	}
	sort.Slice(unscored, func(i, j int) bool { return unscored[i].Code < unscored[j].Code })
	sort.Slice(excludedRecs, func(i, j int) bool { return excludedRecs[i].Code < excludedRecs[j].Code })
	recs = append(recs, unscored...)
	recs = append(recs, excludedRecs...)

	sort.Slice(forecasts, func(i, j int) bool {
		if forecasts[i].Code != forecasts[j].Code {
			return forecasts[i].Code < forecasts[j].Code
		}
		return forecasts[i].TargetDate.Before(forecasts[j].TargetDate)
	})

	return &Result{
		RunID:           runID,
		RunDate:         day,
		Forecasts:       forecasts,
		Recommendations: recs,
	}
}

func excluded(code string, err error) outcome {
	return outcome{
		code:   code,
		status: model.StatusExcluded,
		reason: model.ExclusionReason(err),
	}
}
