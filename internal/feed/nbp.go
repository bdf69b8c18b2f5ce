package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"RateCast/internal/model"
)

// maxRangeDays is the widest date range the NBP API serves per request.
const maxRangeDays = 367

// NBPFeed implements Feed using the National Bank of Poland exchange-rate API.
type NBPFeed struct {
	BaseURL string
	Client  *http.Client
}

// NewNBPFeed creates a new NBP feed client.
func NewNBPFeed(baseURL string, timeout time.Duration) *NBPFeed {
	return &NBPFeed{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (f *NBPFeed) Name() string { return "nbp" }

// nbpRates is the response structure of the per-currency rates endpoint.
type nbpRates struct {
	Table    string `json:"table"`
	Currency string `json:"currency"`
	Code     string `json:"code"`
	Rates    []struct {
		No            string  `json:"no"`
		EffectiveDate string  `json:"effectiveDate"`
		Mid           float64 `json:"mid"`
	} `json:"rates"`
}

func (f *NBPFeed) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("nbp fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("nbp read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// FetchRates downloads the mid rates for one currency over [from, to],
// chunking requests to the API's maximum range.
func (f *NBPFeed) FetchRates(ctx context.Context, code string, from, to time.Time) ([]model.RatePoint, error) {
	var points []model.RatePoint

	for start := from; !start.After(to); {
		end := start.AddDate(0, 0, maxRangeDays-1)
		if end.After(to) {
			end = to
		}

		url := fmt.Sprintf("%s/exchangerates/rates/a/%s/%s/%s/?format=json",
			f.BaseURL, code, start.Format("2006-01-02"), end.Format("2006-01-02"))
		body, status, err := f.get(ctx, url)
		if err != nil {
			return nil, err
		}
		// 404 means no rates published in the requested window (e.g. a
		// weekend-only range), not an error.
		if status == http.StatusNotFound {
			start = end.AddDate(0, 0, 1)
			continue
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("nbp: status %d for %s: %s", status, code, string(body))
		}

		var payload nbpRates
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("nbp decode: %w", err)
		}
		for _, r := range payload.Rates {
			date, err := time.Parse("2006-01-02", r.EffectiveDate)
			if err != nil {
				return nil, fmt.Errorf("nbp date %q: %w", r.EffectiveDate, err)
			}
			points = append(points, model.RatePoint{Date: date, Rate: r.Mid})
		}

		start = end.AddDate(0, 0, 1)
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

// Healthy fetches the current table A to verify the API is reachable.
func (f *NBPFeed) Healthy(ctx context.Context) error {
	url := fmt.Sprintf("%s/exchangerates/tables/a/?format=json", f.BaseURL)
	body, status, err := f.get(ctx, url)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("nbp health: status %d: %s", status, string(body))
	}
	return nil
}
