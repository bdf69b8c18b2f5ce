package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RateCast/internal/feed"
	"RateCast/internal/model"
	"RateCast/internal/runmark"
	"RateCast/internal/series"
	"RateCast/internal/store"
	"RateCast/internal/trainer"
)

var asOf = time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

type fixture struct {
	pipeline *Pipeline
	store    *store.MemoryStore
	marker   *runmark.Manager
	feed     *feed.MockFeed
}

func newFixture(t *testing.T, currencies []string, rates map[string][]model.RatePoint) *fixture {
	t.Helper()

	f := &feed.MockFeed{Rates: rates}
	st := store.NewMemoryStore()
	marker, err := runmark.NewManager(filepath.Join(t.TempDir(), "marker.json"))
	require.NoError(t, err)

	adapter := series.NewAdapter(f, st, 100, 3, zerolog.Nop())
	tr := trainer.New(model.FeatureSpec{Lags: 3, RollingWindows: []int{2}}, 0.8)

	p := New(Config{
		Currencies:      currencies,
		ForecastHorizon: 5,
		Parallelism:     2,
		RunTimeout:      time.Minute,
	}, f, adapter, tr, st, marker, zerolog.Nop())

	return &fixture{pipeline: p, store: st, marker: marker, feed: f}
}

func scenarioRates() map[string][]model.RatePoint {
	return map[string][]model.RatePoint{
		"EUR": feed.GenerateRates(4.5, 400, asOf),
		"GBP": feed.GenerateRates(5.2, 40, asOf),
		"JPY": feed.GenerateRates(0.027, 400, asOf),
	}
}

func TestRun_MixedHistoryScenario(t *testing.T) {
	fx := newFixture(t, []string{"EUR", "GBP", "JPY"}, scenarioRates())

	res, err := fx.pipeline.Run(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, res.Recommendations, 3)

	// EUR and JPY ranked by ascending risk, GBP excluded for short history.
	ranked := res.Recommendations[:2]
	assert.ElementsMatch(t, []string{"EUR", "JPY"}, []string{ranked[0].Code, ranked[1].Code})
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.LessOrEqual(t, ranked[0].Risk, ranked[1].Risk)
	for _, r := range ranked {
		assert.Equal(t, model.StatusRanked, r.Status)
	}

	gbp := res.Recommendations[2]
	assert.Equal(t, "GBP", gbp.Code)
	assert.Equal(t, model.StatusExcluded, gbp.Status)
	assert.Equal(t, "InsufficientHistory", gbp.Reason)

	// 5 forecast points each for EUR and JPY, none for GBP.
	require.Len(t, res.Forecasts, 10)
	for _, f := range res.Forecasts {
		assert.NotEqual(t, "GBP", f.Code)
		assert.True(t, f.TargetDate.After(asOf))
	}
}

func TestRun_ForecastDatesStrictlyIncreasing(t *testing.T) {
	fx := newFixture(t, []string{"EUR"}, scenarioRates())

	res, err := fx.pipeline.Run(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, res.Forecasts, 5)

	for i, f := range res.Forecasts {
		assert.Equal(t, asOf.AddDate(0, 0, i+1), f.TargetDate)
	}
}

func TestRun_Idempotent(t *testing.T) {
	fx := newFixture(t, []string{"EUR", "GBP", "JPY"}, scenarioRates())

	first, err := fx.pipeline.Run(context.Background(), asOf)
	require.NoError(t, err)
	second, err := fx.pipeline.Run(context.Background(), asOf)
	require.NoError(t, err)

	assert.False(t, first.Reused)
	assert.True(t, second.Reused)
	assert.Equal(t, first.RunID, second.RunID)
	assert.Equal(t, first.Forecasts, second.Forecasts)
	assert.Equal(t, first.Recommendations, second.Recommendations)
}

func TestRun_CancelledPublishesNothing(t *testing.T) {
	fx := newFixture(t, []string{"EUR", "JPY"}, scenarioRates())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fx.pipeline.Run(ctx, asOf)
	require.Error(t, err)

	pub, err := fx.store.Publication(asOf)
	require.NoError(t, err)
	assert.Nil(t, pub)
	_, ok := fx.marker.Last()
	assert.False(t, ok)
}

func TestRun_FeedDownIsFatal(t *testing.T) {
	fx := newFixture(t, []string{"EUR"}, scenarioRates())
	fx.feed.Unhealthy = true

	_, err := fx.pipeline.Run(context.Background(), asOf)
	require.Error(t, err)

	pub, err := fx.store.Publication(asOf)
	require.NoError(t, err)
	assert.Nil(t, pub)
}

func TestRun_MarkerAdvancesOnSuccess(t *testing.T) {
	fx := newFixture(t, []string{"EUR"}, scenarioRates())

	_, ok := fx.marker.Last()
	require.False(t, ok)

	_, err := fx.pipeline.Run(context.Background(), asOf)
	require.NoError(t, err)

	last, ok := fx.marker.Last()
	require.True(t, ok)
	assert.Equal(t, asOf, last)
}

// An undefined risk indicator loses the ranking slot but not the forecast:
// the currency's points stay in the table and its row follows the ranked
// block, ahead of exclusions regardless of code order.
func TestAssemble_UnscoredForecastPublishedUnranked(t *testing.T) {
	fx := newFixture(t, []string{"AAA", "EUR", "ZZZ"}, scenarioRates())
	generated := time.Now()

	outcomes := []outcome{
		{code: "ZZZ", status: model.StatusUnscored, lastRate: 1.0, forecasts: []model.ForecastPoint{
			{Code: "ZZZ", TargetDate: asOf.AddDate(0, 0, 1), Predicted: 1.02, GeneratedAt: generated},
		}},
		{code: "EUR", status: model.StatusRanked, risk: model.RiskResult{Indicator: 0.015, Included: 10},
			lastRate: 4.5, forecasts: []model.ForecastPoint{
				{Code: "EUR", TargetDate: asOf.AddDate(0, 0, 1), Predicted: 4.51, GeneratedAt: generated},
			}},
		{code: "AAA", status: model.StatusExcluded, reason: "DataGap"},
	}

	res := fx.pipeline.assemble("run-1", asOf, outcomes)

	require.Len(t, res.Recommendations, 3)
	assert.Equal(t, "EUR", res.Recommendations[0].Code)
	assert.Equal(t, model.StatusRanked, res.Recommendations[0].Status)
	assert.Equal(t, 1, res.Recommendations[0].Rank)

	zzz := res.Recommendations[1]
	assert.Equal(t, "ZZZ", zzz.Code)
	assert.Equal(t, model.StatusUnscored, zzz.Status)
	assert.Zero(t, zzz.Rank)
	assert.Zero(t, zzz.Risk)
	assert.Empty(t, zzz.Reason)

	aaa := res.Recommendations[2]
	assert.Equal(t, "AAA", aaa.Code)
	assert.Equal(t, model.StatusExcluded, aaa.Status)
	assert.Equal(t, "DataGap", aaa.Reason)

	require.Len(t, res.Forecasts, 2)
	assert.Equal(t, "EUR", res.Forecasts[0].Code)
	assert.Equal(t, "ZZZ", res.Forecasts[1].Code)
}

func TestRun_UnknownCurrencyExcluded(t *testing.T) {
	fx := newFixture(t, []string{"EUR", "XXX"}, scenarioRates())

	res, err := fx.pipeline.Run(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, res.Recommendations, 2)

	assert.Equal(t, "EUR", res.Recommendations[0].Code)
	assert.Equal(t, model.StatusRanked, res.Recommendations[0].Status)
	assert.Equal(t, "XXX", res.Recommendations[1].Code)
	assert.Equal(t, model.StatusExcluded, res.Recommendations[1].Status)
	assert.Equal(t, "Error", res.Recommendations[1].Reason)
}
