// Package datacommons fetches yearly statistical series from the Data
// Commons REST API.
package datacommons

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"climate-migration-pipeline/internal/observability"
)

// SeriesProvider fetches the yearly series of one statistical variable for
// one place. Keys are date strings as the API returns them ("2011", or
// "2011-07" for sub-yearly series).
type SeriesProvider interface {
	StatSeries(ctx context.Context, geoID, statVar string) (map[string]float64, error)
}

// Client implements SeriesProvider against the Data Commons API.
type Client struct {
	key        string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Data Commons client.
func NewClient(key string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		key: key,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.datacommons.org",
		metrics: metrics,
		logger:  logger,
	}
}

// StatSeries fetches one variable's series for one place. Places the API has
// no data for yield an empty series, not an error; per-county gaps are
// routine.
func (c *Client) StatSeries(ctx context.Context, geoID, statVar string) (map[string]float64, error) {
	params := url.Values{
		"place":    {geoID},
		"stat_var": {statVar},
	}
	if c.key != "" {
		params.Set("key", c.key)
	}
	fullURL := fmt.Sprintf("%s/v1/stat/series?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.DataCommonsAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.DataCommonsRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("data commons request %s %s: %w", geoID, statVar, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.metrics.DataCommonsRequests.WithLabelValues("empty").Inc()
		return map[string]float64{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.DataCommonsRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("data commons API error: status %d: %s", resp.StatusCode, body)
	}

	var decoded struct {
		Series map[string]float64 `json:"series"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.metrics.DataCommonsRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(decoded.Series) == 0 {
		c.metrics.DataCommonsRequests.WithLabelValues("empty").Inc()
		return map[string]float64{}, nil
	}
	c.metrics.DataCommonsRequests.WithLabelValues("success").Inc()
	c.logger.Debug("series fetched", "place", geoID, "stat_var", statVar, "points", len(decoded.Series))
	return decoded.Series, nil
}
