// Package csvstore reads and writes the pipeline's on-disk CSV tree: raw
// downloads under data/raw, cleaned tables under data/processed/cleaned_data,
// and projection outputs under data/processed/projected_data.
//
// Typed readers return domain records and fail fast when a required column is
// missing. Numeric cells follow the missing-value convention of the cleaned
// tables: an empty cell is NaN, and NaN round-trips back to an empty cell.
package csvstore

import (
	"fmt"
	"path/filepath"
)

// Layout resolves every file the pipeline reads or writes against a single
// data root.
type Layout struct {
	root string
}

func NewLayout(root string) Layout {
	return Layout{root: root}
}

func (l Layout) Root() string         { return l.root }
func (l Layout) RawDir() string       { return filepath.Join(l.root, "raw") }
func (l Layout) CleanedDir() string   { return filepath.Join(l.root, "processed", "cleaned_data") }
func (l Layout) ProjectedDir() string { return filepath.Join(l.root, "processed", "projected_data") }

// RawDatasetDir is the directory holding one raw dataset's yearly files,
// e.g. raw/housing_data.
func (l Layout) RawDatasetDir(dataset string) string {
	return filepath.Join(l.RawDir(), dataset+"_data")
}

// CensusFile is a yearly ACS download, e.g.
// raw/housing_data/census_housing_data_2023.csv.
func (l Layout) CensusFile(dataset string, year int) string {
	return filepath.Join(l.RawDatasetDir(dataset), fmt.Sprintf("census_%s_data_%d.csv", dataset, year))
}

// DataCommonsFile is a yearly Data Commons download, e.g.
// raw/state_crime_data/state_crime_data_2010.csv.
func (l Layout) DataCommonsFile(level, dataset string, year int) string {
	name := fmt.Sprintf("%s_%s_data", level, dataset)
	return filepath.Join(l.RawDir(), name, fmt.Sprintf("%s_%d.csv", name, year))
}

// JobOpeningsWorkbookDir holds the BLS JOLTS workbooks as staged, one per
// state.
func (l Layout) JobOpeningsWorkbookDir() string {
	return filepath.Join(l.RawDir(), "monthly_job_openings_xlsx_data")
}

// JobOpeningsCSVFile is a converted per-year state job openings table.
func (l Layout) JobOpeningsCSVFile(year int) string {
	return filepath.Join(l.RawDir(), "monthly_job_openings_csvs_data", fmt.Sprintf("state_job_opening_data_%d.csv", year))
}

// SchoolWorkbookDir holds the NCES school search exports as staged.
func (l Layout) SchoolWorkbookDir() string {
	return filepath.Join(l.RawDir(), "public_school_xlsx_data")
}

// SchoolCSVFile is the consolidated public school table for one year.
func (l Layout) SchoolCSVFile(year int) string {
	return filepath.Join(l.RawDir(), "public_school_csvs_data", fmt.Sprintf("public_school_data_%d.csv", year))
}

// CBSAWorkbookFile is the staged county-to-CBSA delineation workbook.
func (l Layout) CBSAWorkbookFile() string {
	return filepath.Join(l.RawDir(), "cbsa_data", "cbsa_counties_data.xlsx")
}

// StateNamesFile maps state FIPS codes to display names.
func (l Layout) StateNamesFile() string {
	return filepath.Join(l.RawDir(), "state_data", "state_names.csv")
}

// CountyNamesFile maps county FIPS codes to display names.
func (l Layout) CountyNamesFile() string {
	return filepath.Join(l.RawDir(), "county_data", "county_names.csv")
}

// Population2010File is the decennial-anchor county population snapshot the
// regional projection apportions by.
func (l Layout) Population2010File() string {
	return l.CensusFile("population", 2010)
}

// CleanedFile is a processed domain table, e.g.
// processed/cleaned_data/cleaned_economic_data.csv.
func (l Layout) CleanedFile(domain string) string {
	return filepath.Join(l.CleanedDir(), fmt.Sprintf("cleaned_%s_data.csv", domain))
}

func (l Layout) PopulationProjectionsFile() string {
	return filepath.Join(l.ProjectedDir(), "county_population_projections.csv")
}

func (l Layout) CombinedFile() string {
	return filepath.Join(l.ProjectedDir(), "combined_2065_data.csv")
}

func (l Layout) IndicesFile() string {
	return filepath.Join(l.ProjectedDir(), "projected_socioeconomic_indices.csv")
}
