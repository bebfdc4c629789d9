package csvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayoutPaths(t *testing.T) {
	l := NewLayout("data")

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"census file", l.CensusFile("housing", 2023), "data/raw/housing_data/census_housing_data_2023.csv"},
		{"data commons file", l.DataCommonsFile("state", "crime", 2010), "data/raw/state_crime_data/state_crime_data_2010.csv"},
		{"job openings csv", l.JobOpeningsCSVFile(2015), "data/raw/monthly_job_openings_csvs_data/state_job_opening_data_2015.csv"},
		{"school csv", l.SchoolCSVFile(2023), "data/raw/public_school_csvs_data/public_school_data_2023.csv"},
		{"state names", l.StateNamesFile(), "data/raw/state_data/state_names.csv"},
		{"population 2010", l.Population2010File(), "data/raw/population_data/census_population_data_2010.csv"},
		{"cleaned file", l.CleanedFile("economic"), "data/processed/cleaned_data/cleaned_economic_data.csv"},
		{"projections", l.PopulationProjectionsFile(), "data/processed/projected_data/county_population_projections.csv"},
		{"combined", l.CombinedFile(), "data/processed/projected_data/combined_2065_data.csv"},
		{"indices", l.IndicesFile(), "data/processed/projected_data/projected_socioeconomic_indices.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.expected), tt.got)
		})
	}
}
