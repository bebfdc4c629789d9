// Package censusapi downloads ACS 5-year estimate tables from the US Census
// Bureau API.
package censusapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client fetches ACS tables. The zero key is accepted; the API throttles
// keyless callers but serves them.
type Client struct {
	key        string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Census API client.
func NewClient(key string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		key: key,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.census.gov/data",
		logger:  logger,
	}
}

// DownloadCounties fetches the given variables for every county of the given
// states in one request. The result is the API's row-major table: a header
// row followed by one row per county, with state and county FIPS columns
// appended by the API.
func (c *Client) DownloadCounties(ctx context.Context, dataset string, year int, variables, states []string) ([][]string, error) {
	params := url.Values{
		"get": {strings.Join(variables, ",")},
		"for": {"county:*"},
		"in":  {"state:" + strings.Join(states, ",")},
	}
	return c.doRequest(ctx, dataset, year, params)
}

// DownloadStates fetches the given variables for every state.
func (c *Client) DownloadStates(ctx context.Context, dataset string, year int, variables []string) ([][]string, error) {
	params := url.Values{
		"get": {strings.Join(variables, ",")},
		"for": {"state:*"},
	}
	return c.doRequest(ctx, dataset, year, params)
}

func (c *Client) doRequest(ctx context.Context, dataset string, year int, params url.Values) ([][]string, error) {
	if c.key != "" {
		params.Set("key", c.key)
	}
	fullURL := fmt.Sprintf("%s/%d/%s?%s", c.baseURL, year, dataset, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("census request %s %d: %w", dataset, year, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("census API error: status %d: %s", resp.StatusCode, body)
	}

	// The API answers with a JSON array of rows. Values are usually strings
	// but some estimates come back as bare numbers or null.
	var raw [][]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("census API returned an empty table for %s %d", dataset, year)
	}

	rows := make([][]string, len(raw))
	for i, r := range raw {
		row := make([]string, len(r))
		for j, v := range r {
			row[j] = cellString(v)
		}
		rows[i] = row
	}
	c.logger.Debug("census table fetched", "dataset", dataset, "year", year, "rows", len(rows)-1)
	return rows, nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
