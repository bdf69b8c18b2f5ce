package feed

import (
	"context"
	"fmt"
	"time"

	"RateCast/internal/model"
)

// MockFeed returns controllable fixed data for development and testing.
type MockFeed struct {
	Rates     map[string][]model.RatePoint
	Unhealthy bool
}

func (m *MockFeed) Name() string { return "mock" }

func (m *MockFeed) FetchRates(_ context.Context, code string, from, to time.Time) ([]model.RatePoint, error) {
	pts, ok := m.Rates[code]
	if !ok {
		return nil, fmt.Errorf("mock: unknown currency %s", code)
	}
	var out []model.RatePoint
	for _, p := range pts {
		if p.Date.Before(from) || p.Date.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *MockFeed) Healthy(_ context.Context) error {
	if m.Unhealthy {
		return fmt.Errorf("mock: feed down")
	}
	return nil
}

// GenerateRates produces a smooth daily series ending at end, for fixtures.
func GenerateRates(base float64, days int, end time.Time) []model.RatePoint {
	pts := make([]model.RatePoint, days)
	for i := 0; i < days; i++ {
		r := base * (1 + float64(i-days/2)*0.0005)
		pts[i] = model.RatePoint{
			Date: end.AddDate(0, 0, -(days - 1 - i)),
			Rate: r,
		}
	}
	return pts
}
