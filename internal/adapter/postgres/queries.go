package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"climate-migration-pipeline/internal/domain"
)

// Scan targets mirror the uploaded tables column for column. NULL numeric
// cells come back as NaN, matching the CSV missing-value convention.

type projectionRow struct {
	CountyFIPS                     string          `gorm:"column:county_fips"`
	StateFIPS                      string          `gorm:"column:state_fips"`
	CountyName                     string          `gorm:"column:county_name"`
	StateName                      string          `gorm:"column:state_name"`
	ClimateRegion                  string          `gorm:"column:climate_region"`
	Population2010                 sql.NullFloat64 `gorm:"column:population_2010"`
	PercentageOfRegionalPopulation sql.NullFloat64 `gorm:"column:percentage_of_regional_population"`
	Population2065S3               sql.NullFloat64 `gorm:"column:population_2065_s3"`
	Population2065S5A              sql.NullFloat64 `gorm:"column:population_2065_s5a"`
	Population2065S5B              sql.NullFloat64 `gorm:"column:population_2065_s5b"`
	Population2065S5C              sql.NullFloat64 `gorm:"column:population_2065_s5c"`
}

type indexRow struct {
	CountyFIPS      string          `gorm:"column:county_fips"`
	Scenario        string          `gorm:"column:scenario"`
	IndexBalanced   sql.NullFloat64 `gorm:"column:index_balanced"`
	IndexEmployment sql.NullFloat64 `gorm:"column:index_employment"`
	IndexHousing    sql.NullFloat64 `gorm:"column:index_housing"`
	IndexEducation  sql.NullFloat64 `gorm:"column:index_education"`
}

type scoreRow struct {
	Scenario               string          `gorm:"column:scenario"`
	ZStudentTeacherRatio   sql.NullFloat64 `gorm:"column:z_student_teacher_ratio"`
	ZAvailableHousingUnits sql.NullFloat64 `gorm:"column:z_available_housing_units"`
	ZUnemploymentRate      sql.NullFloat64 `gorm:"column:z_unemployment_rate"`
}

// ScenarioScores holds the standardized indicator scores recorded for one
// county under one scenario.
type ScenarioScores struct {
	Scenario               domain.Scenario
	ZStudentTeacherRatio   float64
	ZAvailableHousingUnits float64
	ZUnemploymentRate      float64
}

// PopulationProjections returns county population projection rows, every
// county when no FIPS codes are given. Codes are validated and zero-padded
// before the lookup.
func (s *Store) PopulationProjections(ctx context.Context, countyFIPS ...string) ([]domain.PopulationProjection, error) {
	q := s.db.WithContext(ctx).Table(string(TablePopulationProjections)).Order("county_fips")
	if len(countyFIPS) > 0 {
		codes := make([]string, len(countyFIPS))
		for i, raw := range countyFIPS {
			code, err := domain.NormalizeCountyFIPS(raw)
			if err != nil {
				return nil, err
			}
			codes[i] = code
		}
		q = q.Where("county_fips IN ?", codes)
	}
	var rows []projectionRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", TablePopulationProjections, err)
	}

	out := make([]domain.PopulationProjection, len(rows))
	for i, r := range rows {
		out[i] = domain.PopulationProjection{
			CountyFIPS:     domain.PadCountyFIPS(r.CountyFIPS),
			CountyName:     r.CountyName,
			StateFIPS:      domain.PadStateFIPS(r.StateFIPS),
			StateName:      r.StateName,
			ClimateRegion:  domain.Region(r.ClimateRegion),
			Population2010: nullFloat(r.Population2010),
			RegionalShare:  nullFloat(r.PercentageOfRegionalPopulation),
			Population2065: domain.ScenarioPopulations{
				S3:  nullFloat(r.Population2065S3),
				S5A: nullFloat(r.Population2065S5A),
				S5B: nullFloat(r.Population2065S5B),
				S5C: nullFloat(r.Population2065S5C),
			},
		}
	}
	return out, nil
}

// ProjectedIndices returns the per-scenario composite index rows for one
// county in scenario label order.
func (s *Store) ProjectedIndices(ctx context.Context, countyFIPS string) ([]domain.IndexRow, error) {
	code, err := domain.NormalizeCountyFIPS(countyFIPS)
	if err != nil {
		return nil, err
	}
	var rows []indexRow
	err = s.db.WithContext(ctx).
		Table(string(TableProjectedIndices)).
		Where("county_fips = ?", code).
		Order("scenario").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", TableProjectedIndices, err)
	}

	out := make([]domain.IndexRow, len(rows))
	for i, r := range rows {
		scenario, err := domain.ParseScenario(r.Scenario)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", TableProjectedIndices, err)
		}
		out[i] = domain.IndexRow{
			CountyFIPS:      domain.PadCountyFIPS(r.CountyFIPS),
			Scenario:        scenario,
			IndexBalanced:   nullFloat(r.IndexBalanced),
			IndexEmployment: nullFloat(r.IndexEmployment),
			IndexHousing:    nullFloat(r.IndexHousing),
			IndexEducation:  nullFloat(r.IndexEducation),
		}
	}
	return out, nil
}

// CombinedScores returns the combined table's z-score columns for one
// county, one row per scenario in scenario label order.
func (s *Store) CombinedScores(ctx context.Context, countyFIPS string) ([]ScenarioScores, error) {
	code, err := domain.NormalizeCountyFIPS(countyFIPS)
	if err != nil {
		return nil, err
	}
	var rows []scoreRow
	err = s.db.WithContext(ctx).
		Table(string(TableCombined2065)).
		Select("scenario, z_student_teacher_ratio, z_available_housing_units, z_unemployment_rate").
		Where("county_fips = ?", code).
		Order("scenario").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", TableCombined2065, err)
	}

	out := make([]ScenarioScores, len(rows))
	for i, r := range rows {
		scenario, err := domain.ParseScenario(r.Scenario)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", TableCombined2065, err)
		}
		out[i] = ScenarioScores{
			Scenario:               scenario,
			ZStudentTeacherRatio:   nullFloat(r.ZStudentTeacherRatio),
			ZAvailableHousingUnits: nullFloat(r.ZAvailableHousingUnits),
			ZUnemploymentRate:      nullFloat(r.ZUnemploymentRate),
		}
	}
	return out, nil
}

func nullFloat(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
