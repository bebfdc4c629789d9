// Package acquire stages the pipeline's raw inputs under the data
// directory: yearly ACS county tables from the Census API and crime and
// hazard series from Data Commons.
//
// Every download is skipped when its output file already exists, so an
// interrupted run resumes where it stopped. Individual file failures are
// logged and skipped; only the metadata bootstrap is fatal, since every
// later fan-out depends on the state and county lists.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"climate-migration-pipeline/internal/adapter/csvstore"
	"climate-migration-pipeline/internal/adapter/datacommons"
	"climate-migration-pipeline/internal/domain"
	"climate-migration-pipeline/internal/observability"
)

// CensusDownloader is the slice of the Census client acquisition uses.
type CensusDownloader interface {
	DownloadCounties(ctx context.Context, dataset string, year int, variables, states []string) ([][]string, error)
	DownloadStates(ctx context.Context, dataset string, year int, variables []string) ([][]string, error)
}

// Acquirer downloads and stages every raw input.
type Acquirer struct {
	census CensusDownloader
	series datacommons.SeriesProvider
	layout csvstore.Layout

	censusWorkers int
	seriesWorkers int

	censusDatasets []CensusDataset
	seriesDatasets []SeriesDataset

	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates an Acquirer over the standard dataset tables. workers bounds
// both download pools; zero sizes them from the CPU count.
func New(census CensusDownloader, series datacommons.SeriesProvider, layout csvstore.Layout, workers int, metrics *observability.Metrics, logger *slog.Logger) *Acquirer {
	censusWorkers := workers
	seriesWorkers := workers
	if workers <= 0 {
		censusWorkers = min(32, runtime.NumCPU()+4)
		seriesWorkers = min(50, runtime.NumCPU()*2)
	}
	return &Acquirer{
		census:         census,
		series:         series,
		layout:         layout,
		censusWorkers:  censusWorkers,
		seriesWorkers:  seriesWorkers,
		censusDatasets: CensusDatasets,
		seriesDatasets: SeriesDatasets,
		metrics:        metrics,
		logger:         logger,
	}
}

// Run stages the state and county metadata, the ACS datasets, and the Data
// Commons series.
func (a *Acquirer) Run(ctx context.Context) error {
	states, err := a.ensureStateNames(ctx)
	if err != nil {
		return err
	}
	counties, err := a.ensureCountyNames(ctx, states)
	if err != nil {
		return err
	}

	a.downloadCensus(ctx, states)
	for _, ds := range a.seriesDatasets {
		a.downloadSeries(ctx, ds, states, counties)
	}
	return ctx.Err()
}

// ensureStateNames stages the contiguous-state metadata file on first run
// and returns the state FIPS codes every later download fans out over.
func (a *Acquirer) ensureStateNames(ctx context.Context) ([]string, error) {
	path := a.layout.StateNamesFile()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		rows, err := a.census.DownloadStates(ctx, "acs/acs5", 2010, []string{"NAME"})
		if err != nil {
			return nil, fmt.Errorf("bootstrap state names: %w", err)
		}
		t := csvstore.NewTable(rows[0]...)
		stateIdx := t.Index("state")
		if stateIdx < 0 {
			return nil, errors.New("bootstrap state names: response has no state column")
		}
		for _, row := range rows[1:] {
			if ExcludedStates[domain.PadStateFIPS(row[stateIdx])] {
				continue
			}
			t.AppendRow(row)
		}
		if err := t.Write(path); err != nil {
			return nil, err
		}
		a.logger.Info("state metadata staged", "states", len(t.Rows))
	} else if err != nil {
		return nil, err
	}

	names, err := csvstore.ReadStateNames(path)
	if err != nil {
		return nil, err
	}
	states := make([]string, 0, len(names))
	for fips := range names {
		states = append(states, fips)
	}
	sort.Strings(states)
	return states, nil
}

// ensureCountyNames stages the county metadata file on first run and
// returns county codes grouped by state.
func (a *Acquirer) ensureCountyNames(ctx context.Context, states []string) (map[string][]string, error) {
	path := a.layout.CountyNamesFile()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		rows, err := a.census.DownloadCounties(ctx, "acs/acs5", 2010, []string{"NAME"}, states)
		if err != nil {
			return nil, fmt.Errorf("bootstrap county names: %w", err)
		}
		t := csvstore.NewTable(rows[0]...)
		for _, row := range rows[1:] {
			t.AppendRow(row)
		}
		if err := t.Write(path); err != nil {
			return nil, err
		}
		a.logger.Info("county metadata staged", "counties", len(t.Rows))
	} else if err != nil {
		return nil, err
	}

	t, err := csvstore.ReadTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require("state", "county"); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	stateIdx, countyIdx := t.Index("state"), t.Index("county")

	counties := make(map[string][]string, len(states))
	for _, row := range t.Rows {
		st := domain.PadStateFIPS(row[stateIdx])
		counties[st] = append(counties[st], domain.PadCountyCode(row[countyIdx]))
	}
	return counties, nil
}

// downloadCensus fans one task per missing (dataset, year) file out over
// the census worker pool.
func (a *Acquirer) downloadCensus(ctx context.Context, states []string) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.censusWorkers)
	for _, ds := range a.censusDatasets {
		for _, year := range ds.Span.years() {
			ds, year := ds, year
			g.Go(func() error {
				a.downloadCensusYear(ctx, ds, year, states)
				return nil
			})
		}
	}
	_ = g.Wait()
}

func (a *Acquirer) downloadCensusYear(ctx context.Context, ds CensusDataset, year int, states []string) {
	path := a.layout.CensusFile(ds.Name, year)
	if _, err := os.Stat(path); err == nil {
		a.logger.Debug("census file exists, skipping", "dataset", ds.Name, "year", year)
		a.metrics.DownloadRequests.WithLabelValues(ds.Name, "skipped").Inc()
		return
	}

	variables, err := ds.variablesFor(year)
	if err != nil {
		a.logger.Error("census download failed", "dataset", ds.Name, "year", year, "error", err)
		a.metrics.DownloadRequests.WithLabelValues(ds.Name, "error").Inc()
		return
	}

	start := time.Now()
	rows, err := a.census.DownloadCounties(ctx, ds.Product, year, variables, states)
	a.metrics.DownloadDuration.WithLabelValues(ds.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		a.logger.Error("census download failed", "dataset", ds.Name, "year", year, "error", err)
		a.metrics.DownloadRequests.WithLabelValues(ds.Name, "error").Inc()
		return
	}

	t := csvstore.NewTable(rows[0]...)
	for _, row := range rows[1:] {
		t.AppendRow(row)
	}
	if err := t.Write(path); err != nil {
		a.logger.Error("census save failed", "dataset", ds.Name, "year", year, "error", err)
		a.metrics.DownloadRequests.WithLabelValues(ds.Name, "error").Inc()
		return
	}

	a.logger.Info("census file saved", "dataset", ds.Name, "year", year, "rows", len(t.Rows))
	a.metrics.DownloadRequests.WithLabelValues(ds.Name, "success").Inc()
}
