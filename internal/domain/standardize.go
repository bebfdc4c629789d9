package domain

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"
)

// scoredIndicator binds an indicator's scenario value to its z-score slot so
// the cohort loops stay free of per-field copies.
type scoredIndicator struct {
	name  string
	value func(*ScenarioRow) float64
	score func(*ScenarioRow) *float64
}

var scoredIndicators = []scoredIndicator{
	{
		name:  "student_teacher_ratio",
		value: func(r *ScenarioRow) float64 { return r.StudentTeacherRatio },
		score: func(r *ScenarioRow) *float64 { return &r.ZStudentTeacherRatio },
	},
	{
		name:  "available_housing_units",
		value: func(r *ScenarioRow) float64 { return r.AvailableHousingUnits },
		score: func(r *ScenarioRow) *float64 { return &r.ZAvailableHousingUnits },
	},
	{
		name:  "unemployment_rate",
		value: func(r *ScenarioRow) float64 { return r.UnemploymentRate },
		score: func(r *ScenarioRow) *float64 { return &r.ZUnemploymentRate },
	},
}

// ApplyZScores standardizes the three headline indicators within each
// scenario cohort: z = (value − mean) / sample std, rounded to 4 decimals.
// NaN observations are excluded from the cohort statistics and keep a NaN
// z-score. A zero-spread cohort gets z = 0 across the board; an all-NaN
// cohort is left NaN. Both degenerate cases log a warning and count toward
// the return value.
func ApplyZScores(rows []ScenarioRow, logger *slog.Logger) int {
	degenerate := 0
	for _, sc := range scenarioOrder(rows) {
		cohort := cohortIndexes(rows, sc)
		for _, ind := range scoredIndicators {
			valid := make([]float64, 0, len(cohort))
			for _, i := range cohort {
				if v := ind.value(&rows[i]); !math.IsNaN(v) {
					valid = append(valid, v)
				}
			}
			if len(valid) == 0 {
				logger.Warn("all values missing for indicator in scenario",
					"indicator", ind.name, "scenario", sc)
				degenerate++
				continue
			}

			mean := stat.Mean(valid, nil)
			std := stat.StdDev(valid, nil)
			if std == 0 {
				logger.Warn("zero spread for indicator in scenario",
					"indicator", ind.name, "scenario", sc)
				degenerate++
				for _, i := range cohort {
					*ind.score(&rows[i]) = 0
				}
				continue
			}

			for _, i := range cohort {
				v := ind.value(&rows[i])
				if math.IsNaN(v) {
					continue
				}
				*ind.score(&rows[i]) = round4((v - mean) / std)
			}
		}
	}
	return degenerate
}

// CalculateIndices builds the composite index table. Only counties with
// public-school students participate. Inputs are re-standardized pooled
// across all scenarios using the population standard deviation; a zero or
// undefined spread degrades to a scale of 1. Unemployment and student-teacher
// ratio enter negated because lower is better.
func CalculateIndices(rows []ScenarioRow) []IndexRow {
	eligible := make([]int, 0, len(rows))
	for i := range rows {
		if rows[i].PublicSchoolStudents > 0 {
			eligible = append(eligible, i)
		}
	}

	unemp := fitPooled(rows, eligible, func(r *ScenarioRow) float64 { return r.UnemploymentRate })
	ratio := fitPooled(rows, eligible, func(r *ScenarioRow) float64 { return r.StudentTeacherRatio })
	housing := fitPooled(rows, eligible, func(r *ScenarioRow) float64 { return r.AvailableHousingUnits })

	out := make([]IndexRow, 0, len(eligible))
	for _, i := range eligible {
		r := &rows[i]
		zu := (r.UnemploymentRate - unemp.mean) / unemp.scale
		zs := (r.StudentTeacherRatio - ratio.mean) / ratio.scale
		zh := (r.AvailableHousingUnits - housing.mean) / housing.scale

		mix := func(wu, ws, wh float64) float64 {
			return -zu*wu - zs*ws + zh*wh
		}
		out = append(out, IndexRow{
			CountyFIPS:      r.CountyFIPS,
			Scenario:        r.Scenario,
			IndexBalanced:   mix(0.33, 0.33, 0.33),
			IndexEmployment: mix(0.6, 0.2, 0.2),
			IndexHousing:    mix(0.2, 0.2, 0.6),
			IndexEducation:  mix(0.2, 0.6, 0.2),
		})
	}
	return out
}

type pooledFit struct {
	mean  float64
	scale float64
}

func fitPooled(rows []ScenarioRow, eligible []int, value func(*ScenarioRow) float64) pooledFit {
	valid := make([]float64, 0, len(eligible))
	for _, i := range eligible {
		if v := value(&rows[i]); !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return pooledFit{mean: 0, scale: 1}
	}
	fit := pooledFit{
		mean:  stat.Mean(valid, nil),
		scale: stat.PopStdDev(valid, nil),
	}
	if fit.scale == 0 || math.IsNaN(fit.scale) {
		fit.scale = 1
	}
	return fit
}

// scenarioOrder returns scenarios in first-seen row order.
func scenarioOrder(rows []ScenarioRow) []Scenario {
	seen := make(map[Scenario]bool, len(AllScenarios))
	order := make([]Scenario, 0, len(AllScenarios))
	for i := range rows {
		if !seen[rows[i].Scenario] {
			seen[rows[i].Scenario] = true
			order = append(order, rows[i].Scenario)
		}
	}
	return order
}

func cohortIndexes(rows []ScenarioRow, sc Scenario) []int {
	idx := make([]int, 0, len(rows)/len(AllScenarios)+1)
	for i := range rows {
		if rows[i].Scenario == sc {
			idx = append(idx, i)
		}
	}
	return idx
}

// round4 rounds to four decimal places.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
