// Package ranker turns the per-currency risk scores into the published
// recommendation order. Lower relative risk ranks better; that is the only
// judgment applied here.
package ranker

import (
	"math"
	"sort"
	"time"

	"RateCast/internal/model"
)

// Candidate is one currency that completed training, scoring, and
// forecasting in the current run.
type Candidate struct {
	Code      string
	Risk      float64
	LastRate  float64 // most recent observed rate
	Forecasts []model.ForecastPoint
}

// Ranker orders candidates by ascending risk indicator, with the currency
// code as the deterministic tie-break. MinMovement, when positive, is an
// explicit filter: candidates whose end-of-horizon forecast moves less than
// that fraction of the last observed rate are excluded instead of ranked.
type Ranker struct {
	MinMovement float64
}

// Rank produces the recommendation rows for all candidates. Ranks are
// 1-based and dense over the ranked rows; identical inputs always produce
// identical output order.
func (r *Ranker) Rank(runDate time.Time, cands []Candidate) []model.Recommendation {
	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Risk != sorted[j].Risk {
			return sorted[i].Risk < sorted[j].Risk
		}
		return sorted[i].Code < sorted[j].Code
	})

	recs := make([]model.Recommendation, 0, len(sorted))
	rank := 0
	var filtered []model.Recommendation
	for _, c := range sorted {
		if r.MinMovement > 0 && !r.moves(c) {
			filtered = append(filtered, model.Recommendation{
				Code:    c.Code,
				RunDate: runDate,
				Risk:    c.Risk,
				Status:  model.StatusExcluded,
				Reason:  "BelowMinimumMovement",
			})
			continue
		}
		rank++
		recs = append(recs, model.Recommendation{
			Code:    c.Code,
			RunDate: runDate,
			Risk:    c.Risk,
			Rank:    rank,
			Status:  model.StatusRanked,
		})
	}
	return append(recs, filtered...)
}

// moves reports whether the candidate's end-of-horizon forecast moves at
// least MinMovement relative to the last observed rate.
func (r *Ranker) moves(c Candidate) bool {
	if len(c.Forecasts) == 0 || c.LastRate == 0 {
		return false
	}
	last := c.Forecasts[len(c.Forecasts)-1].Predicted
	return math.Abs(last-c.LastRate)/c.LastRate >= r.MinMovement
}
