// Package postgres persists pipeline outputs to a relational database
// through GORM and serves the typed queries the dashboard consumes.
//
// Upload follows the output-file convention: each CSV replaces the table
// named after its lower-cased file stem. Only tables in the closed set below
// are ever touched.
package postgres

import (
	"path/filepath"
	"strings"
)

// Table is a physical table name owned by the pipeline.
type Table string

const (
	TableCleanedEconomic     Table = "cleaned_economic_data"
	TableCleanedEducation    Table = "cleaned_education_data"
	TableCleanedHousing      Table = "cleaned_housing_data"
	TableCleanedCrime        Table = "cleaned_crime_data"
	TableCleanedFEMANRI      Table = "cleaned_fema_nri_data"
	TableCleanedCBSA         Table = "cleaned_cbsa_data"
	TableCleanedJobOpenings  Table = "cleaned_job_openings_data"
	TableCleanedPublicSchool Table = "cleaned_public_school_data"

	TablePopulationProjections Table = "county_population_projections"
	TableCombined2065          Table = "combined_2065_data"
	TableProjectedIndices      Table = "projected_socioeconomic_indices"
)

// AllTables lists every owned table, cleaned domains before projection
// outputs.
func AllTables() []Table {
	return []Table{
		TableCleanedEconomic,
		TableCleanedEducation,
		TableCleanedHousing,
		TableCleanedCrime,
		TableCleanedFEMANRI,
		TableCleanedCBSA,
		TableCleanedJobOpenings,
		TableCleanedPublicSchool,
		TablePopulationProjections,
		TableCombined2065,
		TableProjectedIndices,
	}
}

var knownTables = func() map[Table]bool {
	m := make(map[Table]bool)
	for _, t := range AllTables() {
		m[t] = true
	}
	return m
}()

// TableForFile maps an output CSV to its table by lower-casing the file
// stem. Files outside the owned set report false and are not uploaded.
func TableForFile(path string) (Table, bool) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	t := Table(strings.ToLower(stem))
	return t, knownTables[t]
}
