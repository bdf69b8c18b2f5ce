package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"RateCast/internal/model"
)

// MemoryStore is an in-memory Store used in tests and when no database is
// configured.
type MemoryStore struct {
	mu    sync.Mutex
	rates map[string]map[string]float64 // code -> date -> rate
	pubs  map[string]*Publication      // run date -> publication
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rates: make(map[string]map[string]float64),
		pubs:  make(map[string]*Publication),
	}
}

func (s *MemoryStore) SaveRates(code string, pts []model.RatePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDate, ok := s.rates[code]
	if !ok {
		byDate = make(map[string]float64)
		s.rates[code] = byDate
	}
	for _, p := range pts {
		if p.Filled {
			continue
		}
		day := p.Date.Format(dateLayout)
		if _, exists := byDate[day]; !exists {
			byDate[day] = p.Rate
		}
	}
	return nil
}

func (s *MemoryStore) LoadRates(code string, upTo time.Time) ([]model.RatePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := upTo.Format(dateLayout)
	var pts []model.RatePoint
	for day, rate := range s.rates[code] {
		if day > limit {
			continue
		}
		date, err := time.Parse(dateLayout, day)
		if err != nil {
			return nil, err
		}
		pts = append(pts, model.RatePoint{Date: date, Rate: rate})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date) })
	return pts, nil
}

func (s *MemoryStore) LatestRateDate(code string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest string
	for day := range s.rates[code] {
		if day > latest {
			latest = day
		}
	}
	if latest == "" {
		return time.Time{}, false, nil
	}
	date, err := time.Parse(dateLayout, latest)
	return date, err == nil, err
}

func (s *MemoryStore) Publication(runDate time.Time) (*Publication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pubs[runDate.Format(dateLayout)], nil
}

func (s *MemoryStore) Publish(pub *Publication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := pub.RunDate.Format(dateLayout)
	if _, exists := s.pubs[day]; exists {
		return fmt.Errorf("run %s already published", day)
	}
	s.pubs[day] = pub
	return nil
}

func (s *MemoryStore) Close() error { return nil }
