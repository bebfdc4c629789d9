// Command validate performs end-to-end integrity checks on the pipeline
// outputs under a data directory: the county population projection table, the
// combined 2065 scenario table, and the socioeconomic index table. It
// verifies scenario block shape, population scaling against the projections,
// derived-metric identities, z-score cohort statistics, and index
// reproducibility.
//
// Usage:
//
//	go run ./cmd/validate -data data
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/stat"

	"climate-migration-pipeline/internal/adapter/csvstore"
	"climate-migration-pipeline/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data", "data", "pipeline data directory (the layout root)")
	flag.Parse()

	if code := run(*dataDir); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir string) int {
	layout := csvstore.NewLayout(dataDir)

	// ── Load all output tables ──
	fmt.Println("=== Climate Migration Output Validation ===")
	fmt.Println()

	projections, err := csvstore.ReadPopulationProjections(layout.PopulationProjectionsFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load population projections: %v\n", err)
		return 1
	}

	combined, err := csvstore.ReadCombined(layout.CombinedFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load combined table: %v\n", err)
		return 1
	}

	indices, err := csvstore.ReadIndices(layout.IndicesFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load index table: %v\n", err)
		return 1
	}

	// ── Run validation phases ──
	phases := []*phase{
		validateScenarioBlocks(combined),
		validatePopulationScaling(combined, projections),
		validateDerivedIdentities(combined),
		validateZScoreCohorts(combined),
		validateIndexReproducibility(combined, indices),
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-48s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d projection rows, %d combined rows, %d index rows\n",
		len(projections), len(combined), len(indices))

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Scenario Blocks ──
// Every county appears as one contiguous block of five rows, one per scenario
// in output order, all at the base year with consistent identifier columns.

func validateScenarioBlocks(combined []domain.ScenarioRow) *phase {
	p := &phase{name: "Phase 1: Scenario Blocks (combined table)"}

	seen := map[string]bool{}
	for start := 0; start < len(combined); {
		fips := combined[start].CountyFIPS
		end := start
		for end < len(combined) && combined[end].CountyFIPS == fips {
			end++
		}
		block := combined[start:end]

		if seen[fips] {
			p.errorf("county %s: rows split across multiple blocks", fips)
		}
		seen[fips] = true

		if len(block) != len(domain.AllScenarios) {
			p.errorf("county %s: %d rows, want %d", fips, len(block), len(domain.AllScenarios))
		} else {
			for i := range block {
				if block[i].Scenario != domain.AllScenarios[i] {
					p.errorf("county %s row %d: scenario %s, want %s",
						fips, i, block[i].Scenario, domain.AllScenarios[i])
				}
			}
		}

		for i := range block {
			r := &block[i]
			if r.Year != domain.BaseYear {
				p.errorf("county %s scenario %s: year %d, want %d", fips, r.Scenario, r.Year, domain.BaseYear)
			}
			if r.State != block[0].State || r.County != block[0].County || r.Name != block[0].Name {
				p.errorf("county %s scenario %s: identifier columns differ within block", fips, r.Scenario)
			}
		}
		start = end
	}
	return p
}

// ── Phase 2: Population Scaling ──
// Scaled scenario populations must land on the projected 2065 populations.
// Whole-count rounding lets them differ by at most one person.

func validatePopulationScaling(combined []domain.ScenarioRow, projections []domain.PopulationProjection) *phase {
	p := &phase{name: "Phase 2: Population Scaling (vs projections)"}

	byFIPS := make(map[string]domain.PopulationProjection, len(projections))
	for _, pr := range projections {
		byFIPS[pr.CountyFIPS] = pr
	}

	missing := map[string]bool{}
	for i := range combined {
		r := &combined[i]
		if r.Scenario == domain.ScenarioOriginal {
			continue
		}
		pr, ok := byFIPS[r.CountyFIPS]
		if !ok {
			if !missing[r.CountyFIPS] {
				p.errorf("county %s: scaled rows present but no projection row", r.CountyFIPS)
				missing[r.CountyFIPS] = true
			}
			continue
		}
		want := pr.Population2065.For(r.Scenario)
		if math.IsNaN(r.Population) || math.Abs(r.Population-want) > 1 {
			p.errorf("county %s scenario %s: population %v, projection says %v",
				r.CountyFIPS, r.Scenario, r.Population, want)
		}
	}
	return p
}

// ── Phase 3: Derived Metrics ──
// The derived columns satisfy fixed identities: the two employment rates sum
// to 100, and within a county block the baseline denominators cancel out of
// the housing, employment and student-teacher figures.

func validateDerivedIdentities(combined []domain.ScenarioRow) *phase {
	p := &phase{name: "Phase 3: Derived Metrics (identities)"}

	originals := map[string]*domain.ScenarioRow{}
	for i := range combined {
		if combined[i].Scenario == domain.ScenarioOriginal {
			originals[combined[i].CountyFIPS] = &combined[i]
		}
	}

	for i := range combined {
		r := &combined[i]

		if !math.IsNaN(r.UnemploymentRate) && !math.IsNaN(r.TotalEmployedPercentage) {
			if sum := r.UnemploymentRate + r.TotalEmployedPercentage; math.Abs(sum-100) > 1e-6 {
				p.errorf("county %s scenario %s: unemployment_rate + total_employed_percentage = %v, want 100",
					r.CountyFIPS, r.Scenario, sum)
			}
		}

		if r.Scenario == domain.ScenarioOriginal {
			continue
		}
		orig, ok := originals[r.CountyFIPS]
		if !ok {
			continue
		}

		// Available + occupied housing reconstructs the fixed county stock.
		stock, baseStock := r.AvailableHousingUnits+r.OccupiedHousingUnits,
			orig.AvailableHousingUnits+orig.OccupiedHousingUnits
		if !math.IsNaN(stock) && !math.IsNaN(baseStock) && !relClose(stock, baseStock) {
			p.errorf("county %s scenario %s: housing stock %v, baseline row says %v",
				r.CountyFIPS, r.Scenario, stock, baseStock)
		}

		// Employed percentage times labor force reconstructs the fixed
		// baseline employed count.
		emp, baseEmp := r.TotalEmployedPercentage*r.TotalLaborForce/100,
			orig.TotalEmployedPercentage*orig.TotalLaborForce/100
		if !math.IsNaN(emp) && !math.IsNaN(baseEmp) && !relClose(emp, baseEmp) {
			p.errorf("county %s scenario %s: implied employed count %v, baseline row says %v",
				r.CountyFIPS, r.Scenario, emp, baseEmp)
		}

		// Student-teacher ratio scales in proportion to the student count.
		a, b := r.StudentTeacherRatio*orig.PublicSchoolStudents,
			orig.StudentTeacherRatio*r.PublicSchoolStudents
		if !math.IsNaN(a) && !math.IsNaN(b) && !relClose(a, b) {
			p.errorf("county %s scenario %s: student_teacher_ratio %v out of proportion with student count %v",
				r.CountyFIPS, r.Scenario, r.StudentTeacherRatio, r.PublicSchoolStudents)
		}
	}
	return p
}

// ── Phase 4: Z-Score Cohorts ──
// Within each scenario cohort the standardized columns have mean 0 and sample
// standard deviation 1, up to the 4-decimal rounding applied on write. An
// all-zero cohort is the zero-spread degenerate case and is skipped.

func validateZScoreCohorts(combined []domain.ScenarioRow) *phase {
	p := &phase{name: "Phase 4: Z-Score Cohorts (combined table)"}

	zColumns := []struct {
		name  string
		value func(*domain.ScenarioRow) float64
	}{
		{"z_student_teacher_ratio", func(r *domain.ScenarioRow) float64 { return r.ZStudentTeacherRatio }},
		{"z_available_housing_units", func(r *domain.ScenarioRow) float64 { return r.ZAvailableHousingUnits }},
		{"z_unemployment_rate", func(r *domain.ScenarioRow) float64 { return r.ZUnemploymentRate }},
	}

	for _, sc := range domain.AllScenarios {
		for _, col := range zColumns {
			var valid []float64
			allZero := true
			for i := range combined {
				if combined[i].Scenario != sc {
					continue
				}
				v := col.value(&combined[i])
				if math.IsNaN(v) {
					continue
				}
				valid = append(valid, v)
				if v != 0 {
					allZero = false
				}
			}
			if len(valid) < 2 || allZero {
				continue
			}
			if mean := stat.Mean(valid, nil); math.Abs(mean) > 1e-3 {
				p.errorf("%s scenario %s: cohort mean %v, want 0", col.name, sc, mean)
			}
			if std := stat.StdDev(valid, nil); math.Abs(std-1) > 0.01 {
				p.errorf("%s scenario %s: cohort std %v, want 1", col.name, sc, std)
			}
		}
	}
	return p
}

// ── Phase 5: Index Reproducibility ──
// Recomputing the indices from the combined table reproduces the saved index
// table row for row.

func validateIndexReproducibility(combined []domain.ScenarioRow, indices []domain.IndexRow) *phase {
	p := &phase{name: "Phase 5: Index Reproducibility (vs combined)"}

	want := domain.CalculateIndices(combined)
	if len(want) != len(indices) {
		p.errorf("index rows: recomputation yields %d, file has %d", len(want), len(indices))
		return p
	}

	for i := range want {
		w, got := &want[i], &indices[i]
		if got.CountyFIPS != w.CountyFIPS || got.Scenario != w.Scenario {
			p.errorf("index row %d: got %s/%s, want %s/%s",
				i, got.CountyFIPS, got.Scenario, w.CountyFIPS, w.Scenario)
			continue
		}
		checks := []struct {
			name      string
			got, want float64
		}{
			{"index_balanced", got.IndexBalanced, w.IndexBalanced},
			{"index_employment", got.IndexEmployment, w.IndexEmployment},
			{"index_housing", got.IndexHousing, w.IndexHousing},
			{"index_education", got.IndexEducation, w.IndexEducation},
		}
		for _, c := range checks {
			if math.IsNaN(c.got) != math.IsNaN(c.want) {
				p.errorf("county %s scenario %s: %s = %v, recomputed %v",
					got.CountyFIPS, got.Scenario, c.name, c.got, c.want)
			} else if !math.IsNaN(c.got) && !relClose(c.got, c.want) {
				p.errorf("county %s scenario %s: %s = %v, recomputed %v",
					got.CountyFIPS, got.Scenario, c.name, c.got, c.want)
			}
		}
	}
	return p
}

// relClose reports whether two values agree within a small relative
// tolerance.
func relClose(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
