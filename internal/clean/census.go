package clean

import (
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"

	"climate-migration-pipeline/internal/adapter/csvstore"
	"climate-migration-pipeline/internal/domain"
)

// firstVintage is the earliest data year any raw dataset carries.
const firstVintage = 2010

// rawCensusPath resolves where a domain's raw file for one year lives. The
// FEMA risk index arrives through the Data Commons tree rather than the ACS
// one.
func (c *Cleaner) rawCensusPath(name string, year int) string {
	if name == "fema_nri" {
		return c.layout.DataCommonsFile("county", name, year)
	}
	return c.layout.CensusFile(name, year)
}

// cleanCensusDomain builds one cleaned table from per-year raw files: each
// year is mapped through the domain's rename set, stamped with county FIPS
// and year, then concatenated. Years without a file or a mapping are
// skipped.
func (c *Cleaner) cleanCensusDomain(name string) (*csvstore.Table, error) {
	var out *csvstore.Table
	for year := firstVintage; year <= domain.BaseYear; year++ {
		renames := renamesFor(name, year)
		if renames == nil {
			continue
		}
		path := c.rawCensusPath(name, year)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		raw, err := csvstore.ReadTable(path)
		if err != nil {
			return nil, err
		}
		mapped, err := mapCensusYear(raw, renames, year)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		switch name {
		case "education":
			addSchoolAgePopulations(mapped)
		case "economic":
			addUnemploymentRate(mapped)
		}
		if out == nil {
			out = mapped
			continue
		}
		if !slices.Equal(out.Columns, mapped.Columns) {
			return nil, fmt.Errorf("%s: columns differ from earlier years", path)
		}
		out.Rows = append(out.Rows, mapped.Rows...)
	}
	if out == nil {
		return nil, fmt.Errorf("no raw %s files found", name)
	}
	return out, nil
}

// mapCensusYear selects and renames the mapped columns of one raw year and
// appends the county FIPS and year identity columns. Numeric cells are
// normalized; annotations and other unparseable values become empty cells.
func mapCensusYear(raw *csvstore.Table, renames []rename, year int) (*csvstore.Table, error) {
	if err := raw.Require("state", "county"); err != nil {
		return nil, err
	}
	src := make([]int, len(renames))
	for i, r := range renames {
		idx := raw.Index(r.from)
		if idx < 0 {
			return nil, fmt.Errorf("missing required column %q", r.from)
		}
		src[i] = idx
	}
	stateIdx, countyIdx := raw.Index("state"), raw.Index("county")

	cols := make([]string, 0, len(renames)+2)
	for _, r := range renames {
		cols = append(cols, r.to)
	}
	cols = append(cols, "county_fips", "year")
	out := csvstore.NewTable(cols...)

	yearCell := strconv.Itoa(year)
	for _, row := range raw.Rows {
		cells := make([]string, 0, len(cols))
		for _, idx := range src {
			cells = append(cells, csvstore.FormatFloat(csvstore.ParseFloat(row[idx])))
		}
		cells = append(cells, domain.JoinFIPS(row[stateIdx], row[countyIdx]), yearCell)
		out.AppendRow(cells)
	}
	return out, nil
}

// addSchoolAgePopulations derives the school-age bands from the ACS
// sex-by-age buckets: ages 5-9, 10-14 and 15-17.
func addSchoolAgePopulations(t *csvstore.Table) {
	bands := []struct{ male, female, out string }{
		{"male_5_9", "female_5_9", "elementary_school_population"},
		{"male_10_14", "female_10_14", "middle_school_population"},
		{"male_15_17", "female_15_17", "high_school_population"},
	}
	for _, b := range bands {
		m, f := t.Index(b.male), t.Index(b.female)
		values := make([]string, len(t.Rows))
		for i, row := range t.Rows {
			values[i] = csvstore.FormatFloat(csvstore.ParseFloat(row[m]) + csvstore.ParseFloat(row[f]))
		}
		t.AddColumn(b.out, values)
	}
}

func addUnemploymentRate(t *csvstore.Table) {
	unemployed, labor := t.Index("unemployed_persons"), t.Index("total_labor_force")
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		u, l := csvstore.ParseFloat(row[unemployed]), csvstore.ParseFloat(row[labor])
		rate := math.NaN()
		if l != 0 {
			rate = round2(u / l * 100)
		}
		values[i] = csvstore.FormatFloat(rate)
	}
	t.AddColumn("unemployment_rate", values)
}

// populationLookup indexes the yearly population files by county FIPS and
// year. Values are the raw population, state, county and name cells.
type populationLookup map[string][4]string

func popKey(fips, year string) string { return fips + "|" + year }

func (c *Cleaner) loadPopulationLookup() (populationLookup, error) {
	lookup := populationLookup{}
	for year := firstVintage; year <= domain.BaseYear; year++ {
		path := c.layout.CensusFile("population", year)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		t, err := csvstore.ReadTable(path)
		if err != nil {
			return nil, err
		}
		if err := t.Require("name", "b01003_001e", "state", "county"); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		nameIdx, popIdx := t.Index("name"), t.Index("b01003_001e")
		stateIdx, countyIdx := t.Index("state"), t.Index("county")
		yearCell := strconv.Itoa(year)
		for _, row := range t.Rows {
			key := popKey(domain.JoinFIPS(row[stateIdx], row[countyIdx]), yearCell)
			if _, ok := lookup[key]; ok {
				continue
			}
			lookup[key] = [4]string{row[popIdx], row[stateIdx], row[countyIdx], row[nameIdx]}
		}
	}
	if len(lookup) == 0 {
		return nil, fmt.Errorf("no raw population files under %s", c.layout.RawDatasetDir("population"))
	}
	return lookup, nil
}

// joinPopulation appends the population, state, county and name columns,
// left-joined on (county_fips, year). Counties absent from the population
// files keep empty cells.
func joinPopulation(t *csvstore.Table, lookup populationLookup) {
	fipsIdx, yearIdx := t.Index("county_fips"), t.Index("year")
	pop := make([]string, len(t.Rows))
	state := make([]string, len(t.Rows))
	county := make([]string, len(t.Rows))
	name := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if v, ok := lookup[popKey(row[fipsIdx], row[yearIdx])]; ok {
			pop[i], state[i], county[i], name[i] = v[0], v[1], v[2], v[3]
		}
	}
	t.AddColumn("population", pop)
	t.AddColumn("state", state)
	t.AddColumn("county", county)
	t.AddColumn("name", name)
}

// incomeLookup indexes median income by (county_fips, year) for the housing
// affordability join.
func incomeLookup(economic *csvstore.Table) map[string]float64 {
	fipsIdx, yearIdx := economic.Index("county_fips"), economic.Index("year")
	incomeIdx := economic.Index("median_income")
	out := make(map[string]float64, len(economic.Rows))
	for _, row := range economic.Rows {
		out[popKey(row[fipsIdx], row[yearIdx])] = csvstore.ParseFloat(row[incomeIdx])
	}
	return out
}

// addHouseAffordability derives annual rent as a share of per-capita income.
// Counties without a usable income stay empty.
func addHouseAffordability(t *csvstore.Table, income map[string]float64) {
	fipsIdx, yearIdx := t.Index("county_fips"), t.Index("year")
	rentIdx := t.Index("median_gross_rent")
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		v := math.NaN()
		if inc, ok := income[popKey(row[fipsIdx], row[yearIdx])]; ok && inc != 0 {
			v = csvstore.ParseFloat(row[rentIdx]) * 12 / inc
		}
		values[i] = csvstore.FormatFloat(v)
	}
	t.AddColumn("house_affordability", values)
}
