package domain

import "log/slog"

// BaselineDenominators fixes a county's base-year capacity figures. The
// scenario ratios divide projected demand by today's teachers, housing stock
// and employment; the denominators stay at their base-year values rather
// than scaling with the scenario.
type BaselineDenominators struct {
	PublicSchoolTeachers    float64
	TotalHousingUnits       float64
	TotalEmployedPopulation float64
}

// CollectBaselines indexes the base-year merged rows by county FIPS. The
// first row per county wins.
func CollectBaselines(merged []MergedRecord) map[string]BaselineDenominators {
	out := make(map[string]BaselineDenominators)
	for _, m := range merged {
		if m.Year != BaseYear {
			continue
		}
		if _, ok := out[m.CountyFIPS]; ok {
			continue
		}
		out[m.CountyFIPS] = BaselineDenominators{
			PublicSchoolTeachers:    m.PublicSchoolTeachers,
			TotalHousingUnits:       m.TotalHousingUnits,
			TotalEmployedPopulation: m.TotalEmployedPopulation,
		}
	}
	return out
}

// ApplyDerivedMetrics fills in the projected ratios for every scenario row:
//
//	student_teacher_ratio     = projected students / base-year teachers
//	available_housing_units   = base-year housing stock − projected occupied units
//	total_employed_percentage = base-year employed / projected labor force × 100
//	unemployment_rate         = 100 − total_employed_percentage
//
// A county absent from the baselines falls back to denominators of 1, which
// produces a large ratio rather than dropping the county; each fallback is
// logged once and counted in the return value.
func ApplyDerivedMetrics(rows []ScenarioRow, baselines map[string]BaselineDenominators, logger *slog.Logger) int {
	fallbacks := 0
	warned := make(map[string]bool)
	for i := range rows {
		row := &rows[i]
		base, ok := baselines[row.CountyFIPS]
		if !ok {
			base = BaselineDenominators{
				PublicSchoolTeachers:    1,
				TotalHousingUnits:       1,
				TotalEmployedPopulation: 1,
			}
			if !warned[row.CountyFIPS] {
				warned[row.CountyFIPS] = true
				fallbacks++
				logger.Warn("missing base-year data for county, using denominator 1",
					"county_fips", row.CountyFIPS)
			}
		}

		row.StudentTeacherRatio = row.PublicSchoolStudents / base.PublicSchoolTeachers
		row.AvailableHousingUnits = base.TotalHousingUnits - row.OccupiedHousingUnits
		row.TotalEmployedPercentage = base.TotalEmployedPopulation / row.TotalLaborForce * 100
		row.UnemploymentRate = 100 - row.TotalEmployedPercentage
	}
	return fallbacks
}
