package csvstore

import (
	"fmt"
	"strconv"
	"strings"

	"climate-migration-pipeline/internal/domain"
)

// combinedColumns is the column order of combined_2065_data.csv: the filtered
// base-year snapshot, then scenario, derived metrics, and z-scores in the
// order the pipeline appends them.
var combinedColumns = func() []string {
	cols := []string{
		"public_school_students",
		"elementary_school_population",
		"middle_school_population",
		"high_school_population",
		colCountyFIPS,
		colState,
		colCounty,
		colName,
		"total_employed_population",
		"total_labor_force",
	}
	months := jobOpeningColumns()
	cols = append(cols, months[:]...)
	return append(cols,
		colPopulation,
		colYear,
		"occupied_housing_units",
		"scenario",
		"student_teacher_ratio",
		"available_housing_units",
		"total_employed_percentage",
		"unemployment_rate",
		"z_student_teacher_ratio",
		"z_available_housing_units",
		"z_unemployment_rate",
	)
}()

var projectionColumns = []string{
	colCountyFIPS,
	"state_fips",
	"county_name",
	"population_2010",
	"state_name",
	"climate_region",
	"percentage_of_regional_population",
	"population_2065_s3",
	"population_2065_s5b",
	"population_2065_s5a",
	"population_2065_s5c",
}

var indexColumns = []string{
	colCountyFIPS,
	"scenario",
	"index_balanced",
	"index_employment",
	"index_housing",
	"index_education",
}

// WriteCombined saves the combined 2065 table.
func WriteCombined(path string, rows []domain.ScenarioRow) error {
	t := NewTable(combinedColumns...)
	for _, r := range rows {
		row := []string{
			FormatFloat(r.PublicSchoolStudents),
			FormatFloat(r.ElementarySchoolPopulation),
			FormatFloat(r.MiddleSchoolPopulation),
			FormatFloat(r.HighSchoolPopulation),
			r.CountyFIPS,
			r.State,
			r.County,
			r.Name,
			FormatFloat(r.TotalEmployedPopulation),
			FormatFloat(r.TotalLaborForce),
		}
		for _, v := range r.MonthlyOpenings {
			row = append(row, FormatFloat(v))
		}
		row = append(row,
			FormatFloat(r.Population),
			strconv.Itoa(r.Year),
			FormatFloat(r.OccupiedHousingUnits),
			string(r.Scenario),
			FormatFloat(r.StudentTeacherRatio),
			FormatFloat(r.AvailableHousingUnits),
			FormatFloat(r.TotalEmployedPercentage),
			FormatFloat(r.UnemploymentRate),
			FormatFloat(r.ZStudentTeacherRatio),
			FormatFloat(r.ZAvailableHousingUnits),
			FormatFloat(r.ZUnemploymentRate),
		)
		t.AppendRow(row)
	}
	return t.Write(path)
}

// ReadCombined loads the combined 2065 table back into scenario rows.
func ReadCombined(path string) ([]domain.ScenarioRow, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require(combinedColumns...); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	idx := make(map[string]int, len(combinedColumns))
	for _, c := range combinedColumns {
		idx[c] = t.Index(c)
	}
	months := jobOpeningColumns()

	out := make([]domain.ScenarioRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		year, err := strconv.Atoi(strings.TrimSpace(row[idx[colYear]]))
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: invalid year %q", path, i+2, row[idx[colYear]])
		}
		scenario, err := domain.ParseScenario(row[idx["scenario"]])
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", path, i+2, err)
		}
		r := domain.ScenarioRow{
			CountyFIPS: domain.PadCountyFIPS(row[idx[colCountyFIPS]]),
			State:      domain.PadStateFIPS(row[idx[colState]]),
			County:     domain.PadCountyCode(row[idx[colCounty]]),
			Name:       row[idx[colName]],
			Year:       year,
			Scenario:   scenario,

			Population:                 ParseFloat(row[idx[colPopulation]]),
			PublicSchoolStudents:       ParseFloat(row[idx["public_school_students"]]),
			ElementarySchoolPopulation: ParseFloat(row[idx["elementary_school_population"]]),
			MiddleSchoolPopulation:     ParseFloat(row[idx["middle_school_population"]]),
			HighSchoolPopulation:       ParseFloat(row[idx["high_school_population"]]),
			TotalEmployedPopulation:    ParseFloat(row[idx["total_employed_population"]]),
			TotalLaborForce:            ParseFloat(row[idx["total_labor_force"]]),
			OccupiedHousingUnits:       ParseFloat(row[idx["occupied_housing_units"]]),

			StudentTeacherRatio:     ParseFloat(row[idx["student_teacher_ratio"]]),
			AvailableHousingUnits:   ParseFloat(row[idx["available_housing_units"]]),
			TotalEmployedPercentage: ParseFloat(row[idx["total_employed_percentage"]]),
			UnemploymentRate:        ParseFloat(row[idx["unemployment_rate"]]),

			ZStudentTeacherRatio:   ParseFloat(row[idx["z_student_teacher_ratio"]]),
			ZAvailableHousingUnits: ParseFloat(row[idx["z_available_housing_units"]]),
			ZUnemploymentRate:      ParseFloat(row[idx["z_unemployment_rate"]]),
		}
		for m, c := range months {
			r.MonthlyOpenings[m] = ParseFloat(row[idx[c]])
		}
		out = append(out, r)
	}
	return out, nil
}

// WritePopulationProjections saves the county population projection table.
func WritePopulationProjections(path string, rows []domain.PopulationProjection) error {
	t := NewTable(projectionColumns...)
	for _, r := range rows {
		t.AppendRow([]string{
			r.CountyFIPS,
			r.StateFIPS,
			r.CountyName,
			FormatFloat(r.Population2010),
			r.StateName,
			string(r.ClimateRegion),
			FormatFloat(r.RegionalShare),
			FormatFloat(r.Population2065.S3),
			FormatFloat(r.Population2065.S5B),
			FormatFloat(r.Population2065.S5A),
			FormatFloat(r.Population2065.S5C),
		})
	}
	return t.Write(path)
}

// ReadPopulationProjections loads the county population projection table.
func ReadPopulationProjections(path string) ([]domain.PopulationProjection, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require(projectionColumns...); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	idx := make(map[string]int, len(projectionColumns))
	for _, c := range projectionColumns {
		idx[c] = t.Index(c)
	}

	out := make([]domain.PopulationProjection, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, domain.PopulationProjection{
			CountyFIPS:     domain.PadCountyFIPS(row[idx[colCountyFIPS]]),
			StateFIPS:      domain.PadStateFIPS(row[idx["state_fips"]]),
			CountyName:     row[idx["county_name"]],
			StateName:      row[idx["state_name"]],
			ClimateRegion:  domain.Region(row[idx["climate_region"]]),
			Population2010: ParseFloat(row[idx["population_2010"]]),
			RegionalShare:  ParseFloat(row[idx["percentage_of_regional_population"]]),
			Population2065: domain.ScenarioPopulations{
				S3:  ParseFloat(row[idx["population_2065_s3"]]),
				S5A: ParseFloat(row[idx["population_2065_s5a"]]),
				S5B: ParseFloat(row[idx["population_2065_s5b"]]),
				S5C: ParseFloat(row[idx["population_2065_s5c"]]),
			},
		})
	}
	return out, nil
}

// WriteIndices saves the projected socioeconomic index table.
func WriteIndices(path string, rows []domain.IndexRow) error {
	t := NewTable(indexColumns...)
	for _, r := range rows {
		t.AppendRow([]string{
			r.CountyFIPS,
			string(r.Scenario),
			FormatFloat(r.IndexBalanced),
			FormatFloat(r.IndexEmployment),
			FormatFloat(r.IndexHousing),
			FormatFloat(r.IndexEducation),
		})
	}
	return t.Write(path)
}

// ReadIndices loads the projected socioeconomic index table.
func ReadIndices(path string) ([]domain.IndexRow, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require(indexColumns...); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	idx := make(map[string]int, len(indexColumns))
	for _, c := range indexColumns {
		idx[c] = t.Index(c)
	}

	out := make([]domain.IndexRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		scenario, err := domain.ParseScenario(row[idx["scenario"]])
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", path, i+2, err)
		}
		out = append(out, domain.IndexRow{
			CountyFIPS:      domain.PadCountyFIPS(row[idx[colCountyFIPS]]),
			Scenario:        scenario,
			IndexBalanced:   ParseFloat(row[idx["index_balanced"]]),
			IndexEmployment: ParseFloat(row[idx["index_employment"]]),
			IndexHousing:    ParseFloat(row[idx["index_housing"]]),
			IndexEducation:  ParseFloat(row[idx["index_education"]]),
		})
	}
	return out, nil
}
