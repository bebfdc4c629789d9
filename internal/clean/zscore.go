package clean

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"climate-migration-pipeline/internal/adapter/csvstore"
)

// identityColumns never get a standardized copy: they key or describe the
// county rather than measure it.
var identityColumns = map[string]bool{
	"county_fips": true,
	"year":        true,
	"population":  true,
	"state":       true,
	"county":      true,
	"name":        true,
}

// zScoreColumns selects the standardizable columns of a cleaned table:
// everything outside the identity set whose populated cells all parse as
// numbers.
func zScoreColumns(t *csvstore.Table) []string {
	var cols []string
	for i, col := range t.Columns {
		if identityColumns[col] {
			continue
		}
		populated, numeric := 0, true
		for _, row := range t.Rows {
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			populated++
			if math.IsNaN(csvstore.ParseFloat(cell)) {
				numeric = false
				break
			}
		}
		if populated > 0 && numeric {
			cols = append(cols, col)
		}
	}
	return cols
}

// appendYearZScores adds a <col>_z_score column for each listed column,
// standardized against the mean and sample deviation of the column within
// each year. Empty cells stay empty and are left out of the year's
// statistics; a year with fewer than two values yields empty scores.
func appendYearZScores(t *csvstore.Table, cols []string) {
	yearIdx := t.Index("year")
	rowsByYear := map[string][]int{}
	var years []string
	for i, row := range t.Rows {
		y := row[yearIdx]
		if _, ok := rowsByYear[y]; !ok {
			years = append(years, y)
		}
		rowsByYear[y] = append(rowsByYear[y], i)
	}

	for _, col := range cols {
		idx := t.Index(col)
		scores := make([]string, len(t.Rows))
		for _, y := range years {
			sample := make([]float64, 0, len(rowsByYear[y]))
			for _, r := range rowsByYear[y] {
				if v := csvstore.ParseFloat(t.Rows[r][idx]); !math.IsNaN(v) {
					sample = append(sample, v)
				}
			}
			mean := stat.Mean(sample, nil)
			std := stat.StdDev(sample, nil)
			for _, r := range rowsByYear[y] {
				v := csvstore.ParseFloat(t.Rows[r][idx])
				z := math.NaN()
				if std > 0 {
					z = round4((v - mean) / std)
				}
				scores[r] = csvstore.FormatFloat(z)
			}
		}
		t.AddColumn(col+"_z_score", scores)
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
