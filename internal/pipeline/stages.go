package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"climate-migration-pipeline/internal/adapter/csvstore"
	"climate-migration-pipeline/internal/adapter/postgres"
	"climate-migration-pipeline/internal/domain"
	"climate-migration-pipeline/internal/observability"
)

// Forecaster builds the 2065 county population projections from the 2010
// census anchor and the regional share tables.
type Forecaster struct {
	layout csvstore.Layout
	logger *slog.Logger
}

func NewForecaster(layout csvstore.Layout, logger *slog.Logger) *Forecaster {
	return &Forecaster{layout: layout, logger: logger}
}

func (f *Forecaster) Name() string { return "forecast" }

func (f *Forecaster) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	counties, err := csvstore.ReadCensusPopulation(f.layout.Population2010File())
	if err != nil {
		return fmt.Errorf("read 2010 population: %w", err)
	}
	states, err := csvstore.ReadStateNames(f.layout.StateNamesFile())
	if err != nil {
		return fmt.Errorf("read state names: %w", err)
	}
	rows := domain.BuildPopulationProjections(counties, states, f.logger)
	if len(rows) == 0 {
		return errors.New("no counties produced a population projection")
	}
	if err := csvstore.WritePopulationProjections(f.layout.PopulationProjectionsFile(), rows); err != nil {
		return err
	}
	f.logger.Info("population projections written", "counties", len(rows))
	return nil
}

// Projector joins the cleaned domain tables, expands the base-year snapshot
// across the 2065 scenarios and writes the combined table and its indices.
type Projector struct {
	layout  csvstore.Layout
	metrics *observability.Metrics
	logger  *slog.Logger
}

func NewProjector(layout csvstore.Layout, metrics *observability.Metrics, logger *slog.Logger) *Projector {
	return &Projector{layout: layout, metrics: metrics, logger: logger}
}

func (p *Projector) Name() string { return "project" }

func (p *Projector) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	merged, err := p.mergeCleaned()
	if err != nil {
		return err
	}
	p.metrics.RowsMerged.Add(float64(len(merged)))

	projections, err := csvstore.ReadPopulationProjections(p.layout.PopulationProjectionsFile())
	if err != nil {
		return fmt.Errorf("read population projections: %w", err)
	}
	census, err := csvstore.ReadCensusPopulation(p.layout.CensusFile("population", domain.BaseYear))
	if err != nil {
		return fmt.Errorf("read base-year population: %w", err)
	}

	changes := domain.BuildPercentChanges(projections, census, p.logger)
	rows, stats := domain.ExpandScenarios(domain.FilterBaseYear(merged), changes, p.logger)
	if len(rows) == 0 {
		return errors.New("scenario expansion produced no rows")
	}
	p.metrics.ScenarioRowsBuilt.Add(float64(len(rows)))
	p.metrics.CountiesProjected.Add(float64(stats.CountiesProjected))
	p.metrics.CountiesSkipped.Add(float64(stats.CountiesSkipped))

	fallbacks := domain.ApplyDerivedMetrics(rows, domain.CollectBaselines(merged), p.logger)
	p.metrics.DerivedFallbacks.Add(float64(fallbacks))
	degenerate := domain.ApplyZScores(rows, p.logger)
	p.metrics.ZeroSpreadCohorts.Add(float64(degenerate))

	if err := csvstore.WriteCombined(p.layout.CombinedFile(), rows); err != nil {
		return err
	}
	if err := csvstore.WriteIndices(p.layout.IndicesFile(), domain.CalculateIndices(rows)); err != nil {
		return err
	}
	p.logger.Info("projection written",
		"merged_rows", len(merged),
		"scenario_rows", len(rows),
		"counties", stats.CountiesProjected,
		"skipped", stats.CountiesSkipped,
	)
	return nil
}

func (p *Projector) mergeCleaned() ([]domain.MergedRecord, error) {
	economic, err := csvstore.ReadEconomic(p.layout.CleanedFile("economic"))
	if err != nil {
		return nil, fmt.Errorf("read cleaned economic: %w", err)
	}
	education, err := csvstore.ReadEducation(p.layout.CleanedFile("education"))
	if err != nil {
		return nil, fmt.Errorf("read cleaned education: %w", err)
	}
	housing, err := csvstore.ReadHousing(p.layout.CleanedFile("housing"))
	if err != nil {
		return nil, fmt.Errorf("read cleaned housing: %w", err)
	}
	jobs, err := csvstore.ReadJobOpenings(p.layout.CleanedFile("job_openings"))
	if err != nil {
		return nil, fmt.Errorf("read cleaned job openings: %w", err)
	}
	school, err := csvstore.ReadSchool(p.layout.CleanedFile("public_school"))
	if err != nil {
		return nil, fmt.Errorf("read cleaned public school: %w", err)
	}
	merged := domain.MergeDomains(domain.MergeInputs{
		Economic:    economic,
		Education:   education,
		Housing:     housing,
		JobOpenings: jobs,
		School:      school,
	})
	if len(merged) == 0 {
		return nil, errors.New("cleaned tables share no county-year rows")
	}
	return merged, nil
}

// OutputStore replaces warehouse tables from the pipeline's output files.
type OutputStore interface {
	UploadDirectory(ctx context.Context, dir string) (postgres.UploadStats, error)
}

// Uploader pushes the cleaned and projected tables to the warehouse.
type Uploader struct {
	store  OutputStore
	layout csvstore.Layout
	logger *slog.Logger
}

func NewUploader(store OutputStore, layout csvstore.Layout, logger *slog.Logger) *Uploader {
	return &Uploader{store: store, layout: layout, logger: logger}
}

func (u *Uploader) Name() string { return "upload" }

func (u *Uploader) Run(ctx context.Context) error {
	var total postgres.UploadStats
	for _, dir := range []string{u.layout.CleanedDir(), u.layout.ProjectedDir()} {
		if _, err := os.Stat(dir); err != nil {
			u.logger.Warn("output directory missing, nothing to upload", "dir", dir)
			continue
		}
		stats, err := u.store.UploadDirectory(ctx, dir)
		if err != nil {
			return err
		}
		total.Tables += stats.Tables
		total.Rows += stats.Rows
		total.Skipped += stats.Skipped
		total.Failed += stats.Failed
	}
	if total.Failed > 0 {
		return fmt.Errorf("%d of %d tables failed to upload", total.Failed, total.Failed+total.Tables)
	}
	u.logger.Info("outputs uploaded", "tables", total.Tables, "rows", total.Rows, "skipped", total.Skipped)
	return nil
}
