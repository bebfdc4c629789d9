package csvstore

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-migration-pipeline/internal/domain"
)

func TestCombinedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined_2065_data.csv")

	rows := []domain.ScenarioRow{
		{
			CountyFIPS: "01001", State: "01", County: "001",
			Name: "Alpha County, Alabama", Year: 2023,
			Scenario:   domain.ScenarioOriginal,
			Population: 1000, PublicSchoolStudents: 100,
			ElementarySchoolPopulation: 50, MiddleSchoolPopulation: 40, HighSchoolPopulation: 30,
			TotalEmployedPopulation: 450, TotalLaborForce: 500,
			MonthlyOpenings:      [12]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
			OccupiedHousingUnits: 400,
			StudentTeacherRatio:  12.5, AvailableHousingUnits: 200,
			TotalEmployedPercentage: 90, UnemploymentRate: 10,
			ZStudentTeacherRatio: -0.7071, ZAvailableHousingUnits: 0.7071, ZUnemploymentRate: 0,
		},
		{
			CountyFIPS: "01003", State: "01", County: "003",
			Name: "Beta County, Alabama", Year: 2023,
			Scenario:   domain.ScenarioS5A,
			Population: math.NaN(), PublicSchoolStudents: math.NaN(),
			StudentTeacherRatio: math.NaN(), ZUnemploymentRate: math.NaN(),
		},
	}

	require.NoError(t, WriteCombined(path, rows))

	got, err := ReadCombined(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, rows[0], first)

	second := got[1]
	assert.Equal(t, domain.ScenarioS5A, second.Scenario)
	assert.True(t, math.IsNaN(second.Population))
	assert.True(t, math.IsNaN(second.PublicSchoolStudents))
	assert.True(t, math.IsNaN(second.StudentTeacherRatio))
	assert.True(t, math.IsNaN(second.ZUnemploymentRate))
	assert.Equal(t, 0.0, second.OccupiedHousingUnits)
}

func TestCombinedHeaderOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined_2065_data.csv")
	require.NoError(t, WriteCombined(path, nil))

	tbl, err := ReadTable(path)
	require.NoError(t, err)

	// The snapshot columns lead, scenario follows the base columns, and
	// derived metrics plus z-scores close out the row.
	assert.Equal(t, "public_school_students", tbl.Columns[0])
	assert.Equal(t, "county_fips", tbl.Columns[4])
	assert.Equal(t, "job_opening_jan", tbl.Columns[10])
	assert.Equal(t, "job_opening_dec", tbl.Columns[21])
	assert.Equal(t, "scenario", tbl.Columns[25])
	assert.Equal(t, "z_unemployment_rate", tbl.Columns[len(tbl.Columns)-1])
	assert.Len(t, tbl.Columns, 33)
}

func TestPopulationProjectionsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "county_population_projections.csv")

	rows := []domain.PopulationProjection{
		{
			CountyFIPS: "06037", StateFIPS: "06",
			CountyName: "Los Angeles County, California", StateName: "California",
			ClimateRegion:  domain.RegionCalifornia,
			Population2010: 9_000_000, RegionalShare: 0.25,
			Population2065: domain.ScenarioPopulations{
				S3: 48_742_151, S5A: 51_799_980, S5B: 54_857_808, S5C: 60_973_465,
			},
		},
	}

	require.NoError(t, WritePopulationProjections(path, rows))

	got, err := ReadPopulationProjections(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rows[0], got[0])
}

func TestIndicesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projected_socioeconomic_indices.csv")

	rows := []domain.IndexRow{
		{CountyFIPS: "01001", Scenario: domain.ScenarioS3, IndexBalanced: 0.33, IndexEmployment: 0.6, IndexHousing: 0.2, IndexEducation: 0.2},
		{CountyFIPS: "01001", Scenario: domain.ScenarioS5C, IndexBalanced: -0.33, IndexEmployment: -0.6, IndexHousing: -0.2, IndexEducation: -0.2},
	}

	require.NoError(t, WriteIndices(path, rows))

	got, err := ReadIndices(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestReadIndicesUnknownScenario(t *testing.T) {
	path := writeCSV(t, "projected_socioeconomic_indices.csv",
		"county_fips,scenario,index_balanced,index_employment,index_housing,index_education\n"+
			"01001,S9,0,0,0,0\n")

	_, err := ReadIndices(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S9")
}
