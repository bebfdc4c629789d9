package acquire

import (
	"context"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"climate-migration-pipeline/internal/adapter/csvstore"
)

// seriesRow is one geography's value for one year of a series dataset.
type seriesRow struct {
	state  string
	county string
	value  float64
}

// seriesCollector accumulates per-year rows from concurrent fetches. Only
// years registered at construction are kept; values for years whose files
// already exist are dropped.
type seriesCollector struct {
	mu     sync.Mutex
	byYear map[int][]seriesRow
}

func newSeriesCollector(years []int) *seriesCollector {
	byYear := make(map[int][]seriesRow, len(years))
	for _, y := range years {
		byYear[y] = nil
	}
	return &seriesCollector{byYear: byYear}
}

func (c *seriesCollector) add(year int, row seriesRow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, wanted := c.byYear[year]; !wanted {
		return
	}
	c.byYear[year] = append(c.byYear[year], row)
}

func (c *seriesCollector) rows(year int) []seriesRow {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := c.byYear[year]
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].state != rows[j].state {
			return rows[i].state < rows[j].state
		}
		return rows[i].county < rows[j].county
	})
	return rows
}

// downloadSeries stages the missing per-year files of one Data Commons
// dataset. All geographies are fetched concurrently into one collector and
// the collected years are written at the end, so a year's file is complete
// or absent, never partial.
func (a *Acquirer) downloadSeries(ctx context.Context, ds SeriesDataset, states []string, counties map[string][]string) {
	missing := a.missingSeriesYears(ds)
	if len(missing) == 0 {
		a.logger.Info("series files complete, skipping", "dataset", ds.Name)
		a.metrics.DownloadRequests.WithLabelValues(ds.Name, "skipped").Inc()
		return
	}

	collector := newSeriesCollector(missing)

	g, ctx := errgroup.WithContext(ctx)
	if ds.Level == "county" {
		g.SetLimit(a.seriesWorkers)
		for _, state := range states {
			for _, county := range counties[state] {
				state, county := state, county
				g.Go(func() error {
					a.fetchSeries(ctx, ds, collector, state, county)
					return nil
				})
			}
		}
	} else {
		g.SetLimit(a.censusWorkers)
		for _, state := range states {
			state := state
			g.Go(func() error {
				a.fetchSeries(ctx, ds, collector, state, "")
				return nil
			})
		}
	}
	_ = g.Wait()

	for _, year := range missing {
		rows := collector.rows(year)
		if len(rows) == 0 {
			continue
		}
		a.writeSeriesYear(ds, year, rows)
	}
}

// fetchSeries pulls one geography's series and feeds the in-range years to
// the collector. Date keys longer than a year ("2021-07") are truncated to
// the year, as the sources mix yearly and sub-yearly observation dates.
func (a *Acquirer) fetchSeries(ctx context.Context, ds SeriesDataset, collector *seriesCollector, state, county string) {
	geoID := "geoId/" + state + county
	series, err := a.series.StatSeries(ctx, geoID, ds.Variable)
	if err != nil {
		a.logger.Warn("series fetch failed", "dataset", ds.Name, "geo", geoID, "error", err)
		a.metrics.DownloadRequests.WithLabelValues(ds.Name, "error").Inc()
		return
	}
	a.metrics.DownloadRequests.WithLabelValues(ds.Name, "success").Inc()

	keys := make([]string, 0, len(series))
	for key := range series {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := series[key]
		yearKey := key
		if len(yearKey) > 4 {
			yearKey = yearKey[:4]
		}
		year, err := strconv.Atoi(yearKey)
		if err != nil {
			a.logger.Warn("unparseable series date", "dataset", ds.Name, "geo", geoID, "date", key)
			continue
		}
		collector.add(year, seriesRow{state: state, county: county, value: value})
	}
}

func (a *Acquirer) missingSeriesYears(ds SeriesDataset) []int {
	var missing []int
	for _, year := range ds.Span.years() {
		if _, err := os.Stat(a.layout.DataCommonsFile(ds.Level, ds.Name, year)); err != nil {
			missing = append(missing, year)
		}
	}
	return missing
}

func (a *Acquirer) writeSeriesYear(ds SeriesDataset, year int, rows []seriesRow) {
	columns := []string{"state", strings.ToLower(ds.Variable)}
	if ds.Level == "county" {
		columns = append(columns, "county")
	}
	t := csvstore.NewTable(columns...)
	for _, r := range rows {
		row := []string{r.state, csvstore.FormatFloat(r.value)}
		if ds.Level == "county" {
			row = append(row, r.county)
		}
		t.AppendRow(row)
	}

	path := a.layout.DataCommonsFile(ds.Level, ds.Name, year)
	if err := t.Write(path); err != nil {
		a.logger.Error("series save failed", "dataset", ds.Name, "year", year, "error", err)
		a.metrics.DownloadRequests.WithLabelValues(ds.Name, "error").Inc()
		return
	}
	a.logger.Info("series file saved", "dataset", ds.Name, "year", year, "rows", len(t.Rows))
}
