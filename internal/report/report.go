// Package report renders a run's published tables as plain text for the log
// and any downstream reporting channel.
package report

import (
	"fmt"
	"strings"

	"RateCast/internal/model"
	"RateCast/internal/pipeline"
)

// FormatRun formats the recommendation table of one run.
func FormatRun(res *pipeline.Result) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("RateCast run %s | %s\n", res.RunDate.Format("2006-01-02"), res.RunID))
	if res.Reused {
		b.WriteString("(previously published)\n")
	}
	b.WriteString("\nRecommendations:\n")

	for _, r := range res.Recommendations {
		switch r.Status {
		case model.StatusRanked:
			b.WriteString(fmt.Sprintf("  #%d %s  risk=%.4f\n", r.Rank, r.Code, r.Risk))
		case model.StatusUnscored:
			b.WriteString(fmt.Sprintf("  -- %s  unscored (forecast published)\n", r.Code))
		default:
			b.WriteString(fmt.Sprintf("  -- %s  excluded: %s\n", r.Code, r.Reason))
		}
	}

	b.WriteString(fmt.Sprintf("\nForecast points: %d\n", len(res.Forecasts)))
	return b.String()
}
