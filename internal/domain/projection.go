package domain

import (
	"log/slog"
	"math"
)

// FilterBaseYear extracts the base-year snapshot columns the scenario
// expansion scales. School-only rows survive with NaN in their economic
// columns; the students > 0 filter downstream keeps them out of the indices.
func FilterBaseYear(merged []MergedRecord) []ProjectionInputs {
	out := make([]ProjectionInputs, 0, len(merged))
	for _, m := range merged {
		if m.Year != BaseYear {
			continue
		}
		out = append(out, ProjectionInputs{
			CountyYear:                 m.CountyYear,
			PublicSchoolStudents:       m.PublicSchoolStudents,
			ElementarySchoolPopulation: m.ElementarySchoolPopulation,
			MiddleSchoolPopulation:     m.MiddleSchoolPopulation,
			HighSchoolPopulation:       m.HighSchoolPopulation,
			TotalEmployedPopulation:    m.TotalEmployedPopulation,
			TotalLaborForce:            m.TotalLaborForce,
			MonthlyOpenings:            m.MonthlyOpenings,
			OccupiedHousingUnits:       m.OccupiedHousingUnits,
		})
	}
	return out
}

// BuildPercentChanges joins the county projection table with the base-year
// census population and computes each scenario's percentage change:
// (pop2065 − pop2023) / pop2023 × 100. Counties with a missing or
// non-positive base-year population get no entry (and a warning) so NaN and
// Inf factors never reach the expansion.
func BuildPercentChanges(projections []PopulationProjection, census []CensusPopulation, logger *slog.Logger) map[string]PercentChanges {
	popByFIPS := make(map[string]float64, len(census))
	for _, c := range census {
		popByFIPS[JoinFIPS(c.State, c.County)] = c.Population
	}

	changes := make(map[string]PercentChanges, len(projections))
	for _, p := range projections {
		base, ok := popByFIPS[p.CountyFIPS]
		if !ok || math.IsNaN(base) || base <= 0 {
			logger.Warn("no usable base-year population for county, skipping",
				"county_fips", p.CountyFIPS)
			continue
		}
		pct := func(pop2065 float64) float64 {
			return (pop2065 - base) / base * 100
		}
		changes[p.CountyFIPS] = PercentChanges{
			S3:  pct(p.Population2065.S3),
			S5A: pct(p.Population2065.S5A),
			S5B: pct(p.Population2065.S5B),
			S5C: pct(p.Population2065.S5C),
		}
	}
	return changes
}

// ExpansionStats reports how the scenario expansion went.
type ExpansionStats struct {
	CountiesProjected int
	CountiesSkipped   int
}

// ExpandScenarios turns each county's base-year snapshot into five rows: the
// unscaled Original plus S3, S5b, S5a and S5c, with every scalable column
// multiplied by (1 + pct/100) and rounded to the nearest whole count.
// Identifier columns and year are never scaled. Counties without percentage
// changes are skipped entirely and logged. Output order is county blocks in
// input order, scenarios in emission order within each block.
func ExpandScenarios(filtered []ProjectionInputs, changes map[string]PercentChanges, logger *slog.Logger) ([]ScenarioRow, ExpansionStats) {
	order := make([]string, 0, len(filtered))
	byCounty := make(map[string][]ProjectionInputs, len(filtered))
	for _, in := range filtered {
		if _, seen := byCounty[in.CountyFIPS]; !seen {
			order = append(order, in.CountyFIPS)
		}
		byCounty[in.CountyFIPS] = append(byCounty[in.CountyFIPS], in)
	}

	var stats ExpansionStats
	rows := make([]ScenarioRow, 0, len(filtered)*(len(ProjectedScenarios)+1))
	for _, fips := range order {
		pct, ok := changes[fips]
		if !ok {
			logger.Warn("no projection data for county, skipping", "county_fips", fips)
			stats.CountiesSkipped++
			continue
		}
		for _, in := range byCounty[fips] {
			rows = append(rows, baselineRow(in))
		}
		for _, sc := range ProjectedScenarios {
			for _, in := range byCounty[fips] {
				rows = append(rows, scaledRow(in, sc, pct.For(sc)))
			}
		}
		stats.CountiesProjected++
	}
	return rows, stats
}

func baselineRow(in ProjectionInputs) ScenarioRow {
	row := ScenarioRow{
		CountyFIPS:                 in.CountyFIPS,
		State:                      PadStateFIPS(in.State),
		County:                     PadCountyCode(in.County),
		Name:                       in.Name,
		Year:                       in.Year,
		Scenario:                   ScenarioOriginal,
		Population:                 in.Population,
		PublicSchoolStudents:       in.PublicSchoolStudents,
		ElementarySchoolPopulation: in.ElementarySchoolPopulation,
		MiddleSchoolPopulation:     in.MiddleSchoolPopulation,
		HighSchoolPopulation:       in.HighSchoolPopulation,
		TotalEmployedPopulation:    in.TotalEmployedPopulation,
		TotalLaborForce:            in.TotalLaborForce,
		MonthlyOpenings:            in.MonthlyOpenings,
		OccupiedHousingUnits:       in.OccupiedHousingUnits,
	}
	markUnscored(&row)
	return row
}

func scaledRow(in ProjectionInputs, sc Scenario, pct float64) ScenarioRow {
	row := baselineRow(in)
	row.Scenario = sc

	factor := 1 + pct/100
	row.Population = scaleCount(row.Population, factor)
	row.PublicSchoolStudents = scaleCount(row.PublicSchoolStudents, factor)
	row.ElementarySchoolPopulation = scaleCount(row.ElementarySchoolPopulation, factor)
	row.MiddleSchoolPopulation = scaleCount(row.MiddleSchoolPopulation, factor)
	row.HighSchoolPopulation = scaleCount(row.HighSchoolPopulation, factor)
	row.TotalEmployedPopulation = scaleCount(row.TotalEmployedPopulation, factor)
	row.TotalLaborForce = scaleCount(row.TotalLaborForce, factor)
	for i := range row.MonthlyOpenings {
		row.MonthlyOpenings[i] = scaleCount(row.MonthlyOpenings[i], factor)
	}
	row.OccupiedHousingUnits = scaleCount(row.OccupiedHousingUnits, factor)
	return row
}

// scaleCount scales a base-year count by the population factor and rounds to
// the nearest whole count. NaN stays NaN.
func scaleCount(v, factor float64) float64 {
	return math.Round(v * factor)
}

// markUnscored initializes the derived and z-score fields to NaN; later
// stages fill them in.
func markUnscored(row *ScenarioRow) {
	nan := math.NaN()
	row.StudentTeacherRatio = nan
	row.AvailableHousingUnits = nan
	row.TotalEmployedPercentage = nan
	row.UnemploymentRate = nan
	row.ZStudentTeacherRatio = nan
	row.ZAvailableHousingUnits = nan
	row.ZUnemploymentRate = nan
}
