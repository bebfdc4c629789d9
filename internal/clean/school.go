package clean

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"climate-migration-pipeline/internal/adapter/csvstore"
	"climate-migration-pipeline/internal/domain"
)

// schoolStateFIPS maps the postal abbreviations the NCES exports carry to
// state FIPS codes. Only the contiguous states appear; rows from anywhere
// else are dropped.
var schoolStateFIPS = map[string]string{
	"AL": "01", "AZ": "04", "AR": "05", "CA": "06",
	"CO": "08", "CT": "09", "DE": "10", "FL": "12",
	"GA": "13", "ID": "16", "IL": "17", "IN": "18",
	"IA": "19", "KS": "20", "KY": "21", "LA": "22", "ME": "23",
	"MD": "24", "MA": "25", "MI": "26", "MN": "27", "MS": "28",
	"MO": "29", "MT": "30", "NE": "31", "NV": "32", "NH": "33",
	"NJ": "34", "NM": "35", "NY": "36", "NC": "37", "ND": "38",
	"OH": "39", "OK": "40", "OR": "41", "PA": "42", "RI": "44",
	"SC": "45", "SD": "46", "TN": "47", "TX": "48", "UT": "49",
	"VT": "50", "VA": "51", "WA": "53", "WV": "54", "WI": "55",
	"WY": "56",
}

// cleanPublicSchool rolls the per-school NCES rows up to county totals and
// attaches the county identity by matching the county name within the
// state. School rows outside the contiguous states, and counties without a
// population match, are dropped.
func (c *Cleaner) cleanPublicSchool() (*csvstore.Table, error) {
	path := c.layout.SchoolCSVFile(domain.BaseYear)
	t, err := csvstore.ReadTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require("county name", "state", "students", "teachers"); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	countyIdx, stateIdx := t.Index("county name"), t.Index("state")
	studentsIdx, teachersIdx := t.Index("students"), t.Index("teachers")

	type countyKey struct{ state, county string }
	totals := map[countyKey][2]float64{}
	for _, row := range t.Rows {
		fips, ok := schoolStateFIPS[strings.ToUpper(strings.TrimSpace(row[stateIdx]))]
		if !ok {
			continue
		}
		key := countyKey{fips, strings.TrimSpace(row[countyIdx])}
		cur := totals[key]
		cur[0] += numericOrZero(row[studentsIdx])
		cur[1] += numericOrZero(row[teachersIdx])
		totals[key] = cur
	}

	keys := make([]countyKey, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].state != keys[j].state {
			return keys[i].state < keys[j].state
		}
		return keys[i].county < keys[j].county
	})

	shares, err := c.countyShares(domain.BaseYear)
	if err != nil {
		return nil, err
	}
	counties := make(map[countyKey]countyShare, len(shares))
	for _, sh := range shares {
		// "Autauga County, Alabama" matches the NCES county name column.
		key := countyKey{sh.state, strings.SplitN(sh.name, ",", 2)[0]}
		if _, ok := counties[key]; !ok {
			counties[key] = sh
		}
	}

	out := csvstore.NewTable(
		"public_school_students", "public_school_teachers", "student_teacher_ratio",
		"county_fips", "state", "county", "name", "population", "year",
	)
	yearCell := strconv.Itoa(domain.BaseYear)
	for _, k := range keys {
		sh, ok := counties[k]
		if !ok {
			continue
		}
		students := math.Round(totals[k][0])
		teachers := math.Round(totals[k][1])
		ratio := math.NaN()
		if teachers != 0 {
			ratio = students / teachers
		}
		out.AppendRow([]string{
			csvstore.FormatFloat(students),
			csvstore.FormatFloat(teachers),
			csvstore.FormatFloat(ratio),
			sh.fips, sh.state, sh.county, sh.name,
			csvstore.FormatFloat(sh.population),
			yearCell,
		})
	}
	return out, nil
}

func numericOrZero(cell string) float64 {
	if v := csvstore.ParseFloat(cell); !math.IsNaN(v) {
		return v
	}
	return 0
}
