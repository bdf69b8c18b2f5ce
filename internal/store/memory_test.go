package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RateCast/internal/model"
)

var day = func(offset int) time.Time {
	return time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestMemoryStore_Rates(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, s.SaveRates("EUR", []model.RatePoint{
		{Date: day(-2), Rate: 4.5},
		{Date: day(-1), Rate: 4.6},
		{Date: day(0), Rate: 4.7},
		{Date: day(-1), Rate: 9.9},              // duplicate date, first wins
		{Date: day(1), Rate: 4.8, Filled: true}, // filled points not persisted
	}))

	pts, err := s.LoadRates("EUR", day(0))
	require.NoError(t, err)
	require.Len(t, pts, 3)
	assert.Equal(t, 4.6, pts[1].Rate)

	// upTo truncation
	pts, err = s.LoadRates("EUR", day(-1))
	require.NoError(t, err)
	assert.Len(t, pts, 2)

	latest, ok, err := s.LatestRateDate("EUR")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, day(0), latest)

	_, ok, err = s.LatestRateDate("GBP")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_PublishOnce(t *testing.T) {
	s := NewMemoryStore()

	pub, err := s.Publication(day(0))
	require.NoError(t, err)
	assert.Nil(t, pub)

	first := &Publication{RunID: "run-1", RunDate: day(0), CompletedAt: time.Now()}
	require.NoError(t, s.Publish(first))

	got, err := s.Publication(day(0))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "run-1", got.RunID)

	assert.Error(t, s.Publish(&Publication{RunID: "run-2", RunDate: day(0)}))
}
