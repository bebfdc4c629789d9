// Package clean turns the staged raw downloads into the per-domain cleaned
// tables the projection pipeline consumes. Every cleaned table carries the
// county identity columns (county_fips, state, county, name, population,
// year) next to its indicators, plus a per-year standardized copy of each
// indicator column.
package clean

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"climate-migration-pipeline/internal/adapter/csvstore"
)

// Domains lists every cleaned table in production order. Economic runs
// before housing because the affordability ratio needs its median income.
var Domains = []string{
	"economic", "education", "housing", "job_openings",
	"crime", "fema_nri", "cbsa", "public_school",
}

type Cleaner struct {
	layout csvstore.Layout
	logger *slog.Logger
}

func New(layout csvstore.Layout, logger *slog.Logger) *Cleaner {
	return &Cleaner{layout: layout, logger: logger}
}

// Run converts the staged workbooks and rebuilds every cleaned table. A
// domain that fails is logged and skipped so the remaining tables still
// refresh; the returned error joins one entry per failed domain.
func (c *Cleaner) Run(ctx context.Context) error {
	if err := c.ConvertJobOpenings(); err != nil {
		return fmt.Errorf("convert job openings workbooks: %w", err)
	}
	if err := c.ConsolidateSchools(); err != nil {
		return fmt.Errorf("consolidate school workbooks: %w", err)
	}

	population, err := c.loadPopulationLookup()
	if err != nil {
		return err
	}

	var failures []error
	var income map[string]float64
	for _, name := range Domains {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, err := c.buildDomain(name, population, income)
		if err != nil {
			c.logger.Error("cleaning failed", "domain", name, "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if name == "economic" {
			income = incomeLookup(t)
		}
		appendYearZScores(t, zScoreColumns(t))
		if err := t.Write(c.layout.CleanedFile(name)); err != nil {
			c.logger.Error("cleaned table save failed", "domain", name, "error", err)
			failures = append(failures, err)
			continue
		}
		c.logger.Info("cleaned table written", "domain", name, "rows", len(t.Rows))
	}
	return errors.Join(failures...)
}

func (c *Cleaner) buildDomain(name string, population populationLookup, income map[string]float64) (*csvstore.Table, error) {
	switch name {
	case "economic", "education", "fema_nri":
		t, err := c.cleanCensusDomain(name)
		if err != nil {
			return nil, err
		}
		joinPopulation(t, population)
		return t, nil
	case "housing":
		if income == nil {
			return nil, errors.New("cleaned economic table required for affordability")
		}
		t, err := c.cleanCensusDomain(name)
		if err != nil {
			return nil, err
		}
		joinPopulation(t, population)
		addHouseAffordability(t, income)
		return t, nil
	case "job_openings":
		return c.cleanJobOpenings()
	case "crime":
		return c.cleanCrime()
	case "cbsa":
		t, err := c.cleanCBSA()
		if err != nil {
			return nil, err
		}
		joinPopulation(t, population)
		return t, nil
	case "public_school":
		return c.cleanPublicSchool()
	}
	return nil, fmt.Errorf("unknown domain %q", name)
}
