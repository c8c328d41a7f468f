package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"

	"golfwatch/internal/forecast"
	"golfwatch/internal/httpx"
)

// JSONFeed implements forecast.Source against the published forecast JSON
// (the output of the scraper that walks the course's two-week forecast page).
type JSONFeed struct {
	name    string
	url     string
	httpCfg httpx.ClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewJSONFeed(client *http.Client, url string) *JSONFeed {
	return &JSONFeed{
		name: "forecast-feed",
		url:  url,
		httpCfg: httpx.ClientConfig{
			Client:  client,
			Backoff: httpx.DefaultBackoff(),
		},
		circuit: httpx.NewBreaker("forecast-feed"),
	}
}

func (f *JSONFeed) Name() string {
	return f.name
}

func (f *JSONFeed) Fetch(ctx context.Context) ([]forecast.RawDay, error) {
	resp, err := httpx.Do(ctx, f.httpCfg, f.circuit, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, f.url, nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast feed returned status %d", resp.StatusCode)
	}

	var days []forecast.RawDay
	if err := json.NewDecoder(resp.Body).Decode(&days); err != nil {
		return nil, fmt.Errorf("decode forecast feed: %w", err)
	}

	if len(days) == 0 {
		return nil, fmt.Errorf("forecast feed returned no days")
	}

	return days, nil
}
