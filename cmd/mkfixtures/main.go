// Command mkfixtures writes a synthetic raw data tree under a data directory
// so the clean, forecast and project stages can run offline. It stages every
// file the acquire stage would have downloaded, driven by the same dataset
// catalog: state and county metadata, the per-year ACS tables, the Data
// Commons series, and the JOLTS, NCES and CBSA workbooks. Values come from a
// seeded generator, so one seed always produces the same tree.
//
// Usage:
//
//	go run ./cmd/mkfixtures -data data -seed 1
package main

import (
	"flag"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"climate-migration-pipeline/internal/acquire"
	"climate-migration-pipeline/internal/adapter/csvstore"
	"climate-migration-pipeline/internal/domain"
)

// firstYear anchors every generated time series at the projection base.
const firstYear = 2010

type county struct {
	stateFIPS string
	code      string
	postal    string
	stateName string
	name      string // county name without the state suffix
	pop2010   float64
	growth    float64 // yearly population multiplier
	income    float64 // 2010 per-capita income
}

func (c county) population(year int) float64 {
	return math.Round(c.pop2010 * math.Pow(c.growth, float64(year-firstYear)))
}

type stateInfo struct {
	fips    string
	postal  string
	name    string
	pop2010 float64
}

type generator struct {
	layout   csvstore.Layout
	rng      *rand.Rand
	counties []county
	states   []stateInfo
	files    int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dataDir := flag.String("data", "data", "output data directory (the layout root)")
	seed := flag.Int64("seed", 1, "seed for the value generator")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	g := &generator{
		layout:   csvstore.NewLayout(*dataDir),
		rng:      rng,
		counties: roster(rng),
	}
	g.states = statesOf(g.counties)

	if err := g.writeMetadata(); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	if err := g.writeCensus(); err != nil {
		return fmt.Errorf("census tables: %w", err)
	}
	if err := g.writeSeries(); err != nil {
		return fmt.Errorf("series tables: %w", err)
	}
	if err := g.writeJobWorkbooks(); err != nil {
		return fmt.Errorf("job openings workbooks: %w", err)
	}
	if err := g.writeSchoolWorkbooks(); err != nil {
		return fmt.Errorf("school workbooks: %w", err)
	}
	if err := g.writeCBSAWorkbook(); err != nil {
		return fmt.Errorf("cbsa workbook: %w", err)
	}

	log.Printf("total: %d files under %s", g.files, g.layout.Root())
	printStats(g)
	return nil
}

// roster spans all five climate regions so the forecast stage exercises every
// regional share. 2010 populations are the published county totals.
func roster(rng *rand.Rand) []county {
	defs := []struct {
		stateFIPS, code, postal, stateName, name string

		pop2010 float64
	}{
		{"01", "001", "AL", "Alabama", "Autauga County", 54571},
		{"01", "003", "AL", "Alabama", "Baldwin County", 182265},
		{"48", "201", "TX", "Texas", "Harris County", 4092459},
		{"17", "031", "IL", "Illinois", "Cook County", 5194675},
		{"39", "049", "OH", "Ohio", "Franklin County", 1163414},
		{"36", "061", "NY", "New York", "New York County", 1585873},
		{"42", "003", "PA", "Pennsylvania", "Allegheny County", 1223348},
		{"32", "003", "NV", "Nevada", "Clark County", 1951269},
		{"08", "031", "CO", "Colorado", "Denver County", 600158},
		{"06", "037", "CA", "California", "Los Angeles County", 9818605},
		{"06", "073", "CA", "California", "San Diego County", 3095313},
	}
	out := make([]county, 0, len(defs))
	for _, d := range defs {
		out = append(out, county{
			stateFIPS: d.stateFIPS,
			code:      d.code,
			postal:    d.postal,
			stateName: d.stateName,
			name:      d.name,
			pop2010:   d.pop2010,
			growth:    1.002 + 0.010*rng.Float64(),
			income:    24000 + 18000*rng.Float64(),
		})
	}
	return out
}

// statesOf collapses the roster to its states in first-seen order.
func statesOf(counties []county) []stateInfo {
	index := map[string]int{}
	var out []stateInfo
	for _, c := range counties {
		i, ok := index[c.stateFIPS]
		if !ok {
			i = len(out)
			index[c.stateFIPS] = i
			out = append(out, stateInfo{fips: c.stateFIPS, postal: c.postal, name: c.stateName})
		}
		out[i].pop2010 += c.pop2010
	}
	return out
}

func (g *generator) writeMetadata() error {
	states := csvstore.NewTable("NAME", "state")
	for _, st := range g.states {
		states.AppendRow([]string{st.name, st.fips})
	}
	if err := states.Write(g.layout.StateNamesFile()); err != nil {
		return err
	}
	g.files++

	counties := csvstore.NewTable("NAME", "state", "county")
	for _, c := range g.counties {
		counties.AppendRow([]string{c.name + ", " + c.stateName, c.stateFIPS, c.code})
	}
	if err := counties.Write(g.layout.CountyNamesFile()); err != nil {
		return err
	}
	g.files++

	log.Printf("metadata: %d states, %d counties", len(g.states), len(g.counties))
	return nil
}

// writeCensus stages one file per dataset vintage, with the same header shape
// the Census API responses carry.
func (g *generator) writeCensus() error {
	for _, ds := range acquire.CensusDatasets {
		n := 0
		for year := ds.Span.First; year <= ds.Span.Last; year++ {
			variables := variablesForYear(ds, year)
			if variables == nil {
				return fmt.Errorf("no %s variables for %d", ds.Name, year)
			}
			columns := append([]string{"NAME"}, variables...)
			t := csvstore.NewTable(append(columns, "state", "county")...)
			for _, c := range g.counties {
				row := append([]string{c.name + ", " + c.stateName}, g.censusValues(ds.Name, c, year, variables)...)
				t.AppendRow(append(row, c.stateFIPS, c.code))
			}
			if err := t.Write(g.layout.CensusFile(ds.Name, year)); err != nil {
				return err
			}
			g.files++
			n++
		}
		log.Printf("%s: %d census files", ds.Name, n)
	}
	return nil
}

func variablesForYear(ds acquire.CensusDataset, year int) []string {
	for _, set := range ds.Sets {
		if set.Span.First <= year && year <= set.Span.Last {
			return set.Variables
		}
	}
	return nil
}

// censusValues produces one county-year's cells in catalog variable order.
// The employment triple stays coherent (labor force = employed + unemployed)
// so the cleaned rates land in a realistic range.
func (g *generator) censusValues(dataset string, c county, year int, variables []string) []string {
	pop := c.population(year)
	switch dataset {
	case "population":
		return []string{csvstore.FormatFloat(pop)}
	case "economic":
		employed := math.Round(pop * (0.40 + 0.08*g.rng.Float64()))
		unemployed := math.Round(pop * (0.015 + 0.030*g.rng.Float64()))
		income := math.Round(c.income * math.Pow(1.02, float64(year-firstYear)))
		return []string{
			csvstore.FormatFloat(income),
			csvstore.FormatFloat(employed),
			csvstore.FormatFloat(unemployed),
			csvstore.FormatFloat(employed + unemployed),
		}
	case "housing":
		units := math.Round(pop / (2.2 + 0.4*g.rng.Float64()))
		occupied := math.Round(units * (0.85 + 0.10*g.rng.Float64()))
		price := math.Round(90000 + 500000*g.rng.Float64())
		rent := math.Round(600 + 1400*g.rng.Float64())
		return []string{
			csvstore.FormatFloat(units),
			csvstore.FormatFloat(occupied),
			csvstore.FormatFloat(price),
			csvstore.FormatFloat(rent),
		}
	default:
		out := make([]string, len(variables))
		for i, v := range variables {
			out[i] = csvstore.FormatFloat(math.Round(pop * shareFor(v) * (0.9 + 0.2*g.rng.Float64())))
		}
		return out
	}
}

// shareFor gives variables without a dedicated rule a stable population share
// in [0.05, 0.45), so every education bucket lands on a plausible count.
func shareFor(variable string) float64 {
	h := fnv.New32a()
	h.Write([]byte(variable))
	return 0.05 + 0.4*float64(h.Sum32()%1000)/1000
}

func (g *generator) writeSeries() error {
	for _, ds := range acquire.SeriesDatasets {
		n := 0
		for year := ds.Span.First; year <= ds.Span.Last; year++ {
			columns := []string{"state", strings.ToLower(ds.Variable)}
			if ds.Level == "county" {
				columns = append(columns, "county")
			}
			t := csvstore.NewTable(columns...)
			switch ds.Level {
			case "state":
				for _, st := range g.states {
					value := math.Round(st.pop2010 * (0.02 + 0.02*g.rng.Float64()))
					t.AppendRow([]string{st.fips, csvstore.FormatFloat(value)})
				}
			case "county":
				for _, c := range g.counties {
					value := math.Round((5+90*g.rng.Float64())*100) / 100
					t.AppendRow([]string{c.stateFIPS, csvstore.FormatFloat(value), c.code})
				}
			}
			if err := t.Write(g.layout.DataCommonsFile(ds.Level, ds.Name, year)); err != nil {
				return err
			}
			g.files++
			n++
		}
		log.Printf("%s: %d series files", ds.Name, n)
	}
	return nil
}

// writeJobWorkbooks stages one JOLTS export per state: the series ID in B4
// carries the state FIPS, the header sits on row 14, and yearly rows follow.
func (g *generator) writeJobWorkbooks() error {
	dir := g.layout.JobOpeningsWorkbookDir()
	for _, st := range g.states {
		f := excelize.NewFile()
		if err := f.SetCellValue("Sheet1", "B4", "JTS000000"+st.fips+"0000000JOL"); err != nil {
			return err
		}
		header := append([]string{"Year"}, domain.MonthAbbrevs[:]...)
		for i, h := range header {
			if err := setCell(f, i+1, 14, h); err != nil {
				return err
			}
		}
		base := st.pop2010 * 0.003
		row := 15
		for year := firstYear; year <= domain.BaseYear; year++ {
			if err := setCell(f, 1, row, year); err != nil {
				return err
			}
			for m := range domain.MonthAbbrevs {
				openings := int(math.Round(base * (0.85 + 0.30*g.rng.Float64())))
				if err := setCell(f, m+2, row, openings); err != nil {
					return err
				}
			}
			row++
		}
		path := filepath.Join(dir, "SeriesReport-"+st.postal+".xlsx")
		if err := saveWorkbook(f, path); err != nil {
			return err
		}
		g.files++
	}
	log.Printf("job openings: %d workbooks", len(g.states))
	return nil
}

// writeSchoolWorkbooks stages one NCES export per state with a few schools
// per county. County names match the census NAME column so the rollup joins.
func (g *generator) writeSchoolWorkbooks() error {
	dir := g.layout.SchoolWorkbookDir()
	levels := []string{"Elementary School", "Middle School", "High School"}
	schools := 0
	for _, st := range g.states {
		f := excelize.NewFile()
		header := []string{"school name", "county name", "state", "students", "teachers"}
		for i, h := range header {
			if err := setCell(f, i+1, 1, h); err != nil {
				return err
			}
		}
		row := 2
		for _, c := range g.counties {
			if c.stateFIPS != st.fips {
				continue
			}
			prefix := strings.TrimSuffix(c.name, " County")
			for _, level := range levels {
				students := 250 + g.rng.Intn(1150)
				teachers := int(math.Round(float64(students) / (13 + 6*g.rng.Float64())))
				cells := []any{prefix + " " + level, c.name, st.postal, students, teachers}
				for i, v := range cells {
					if err := setCell(f, i+1, row, v); err != nil {
						return err
					}
				}
				row++
				schools++
			}
		}
		path := filepath.Join(dir, "ncesdata_"+strings.ToLower(st.postal)+".xlsx")
		if err := saveWorkbook(f, path); err != nil {
			return err
		}
		g.files++
	}
	log.Printf("schools: %d rows across %d workbooks", schools, len(g.states))
	return nil
}

// writeCBSAWorkbook stages the OMB delineation workbook: a title row, the
// header on row 3, one row per county, and a trailing footnote.
func (g *generator) writeCBSAWorkbook() error {
	f := excelize.NewFile()
	if err := setCell(f, 1, 1, "Core based statistical areas and counties"); err != nil {
		return err
	}
	header := []string{
		"CBSA Code", "CBSA Title", "Metropolitan/Micropolitan Statistical Area",
		"FIPS State Code", "FIPS County Code",
	}
	for i, h := range header {
		if err := setCell(f, i+1, 3, h); err != nil {
			return err
		}
	}
	row := 4
	for i, c := range g.counties {
		kind := "Micropolitan Statistical Area"
		if c.pop2010 > 250000 {
			kind = "Metropolitan Statistical Area"
		}
		title := strings.TrimSuffix(c.name, " County") + ", " + c.postal
		cells := []any{fmt.Sprintf("%d", 10180+i*520), title, kind, c.stateFIPS, c.code}
		for j, v := range cells {
			if err := setCell(f, j+1, row, v); err != nil {
				return err
			}
		}
		row++
	}
	note := "Note: Metropolitan and micropolitan statistical area delineations follow the July 2023 OMB bulletin."
	if err := setCell(f, 1, row, note); err != nil {
		return err
	}
	if err := saveWorkbook(f, g.layout.CBSAWorkbookFile()); err != nil {
		return err
	}
	g.files++
	log.Printf("cbsa: %d rows", len(g.counties))
	return nil
}

func setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue("Sheet1", cell, v)
}

func saveWorkbook(f *excelize.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return err
	}
	return f.Close()
}

func printStats(g *generator) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Counties: %d across %d states\n", len(g.counties), len(g.states))

	regionCounts := map[domain.Region]int{}
	for _, c := range g.counties {
		if region, ok := domain.RegionForState(c.stateName); ok {
			regionCounts[region]++
		}
	}
	fmt.Printf("By region: Northeast=%d South=%d Midwest=%d West=%d California=%d\n",
		regionCounts[domain.RegionNortheast], regionCounts[domain.RegionSouth],
		regionCounts[domain.RegionMidwest], regionCounts[domain.RegionWest],
		regionCounts[domain.RegionCalifornia])

	var total2010, totalBase float64
	largest := g.counties[0]
	for _, c := range g.counties {
		total2010 += c.pop2010
		totalBase += c.population(domain.BaseYear)
		if c.pop2010 > largest.pop2010 {
			largest = c
		}
	}
	fmt.Printf("2010 population: %.0f\n", total2010)
	fmt.Printf("%d population: %.0f\n", domain.BaseYear, totalBase)
	fmt.Printf("Largest county: %s, %s (%.0f)\n", largest.name, largest.stateName, largest.pop2010)
}
