package clean

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"climate-migration-pipeline/internal/adapter/csvstore"
	"climate-migration-pipeline/internal/domain"
)

// countyShare is one county's slice of its state population for a single
// year. State-level indicators are spread over counties by this ratio.
type countyShare struct {
	fips       string
	state      string
	county     string
	name       string
	population float64
	ratio      float64
}

// countyShares loads a year's population file and computes each county's
// share of its state total.
func (c *Cleaner) countyShares(year int) ([]countyShare, error) {
	t, err := csvstore.ReadTable(c.layout.CensusFile("population", year))
	if err != nil {
		return nil, err
	}
	if err := t.Require("name", "b01003_001e", "state", "county"); err != nil {
		return nil, fmt.Errorf("%s: %w", c.layout.CensusFile("population", year), err)
	}
	nameIdx, popIdx := t.Index("name"), t.Index("b01003_001e")
	stateIdx, countyIdx := t.Index("state"), t.Index("county")

	shares := make([]countyShare, 0, len(t.Rows))
	stateTotals := map[string]float64{}
	for _, row := range t.Rows {
		pop := csvstore.ParseFloat(row[popIdx])
		state := domain.PadStateFIPS(row[stateIdx])
		shares = append(shares, countyShare{
			fips:       domain.JoinFIPS(row[stateIdx], row[countyIdx]),
			state:      state,
			county:     domain.PadCountyCode(row[countyIdx]),
			name:       row[nameIdx],
			population: pop,
		})
		if !math.IsNaN(pop) {
			stateTotals[state] += pop
		}
	}
	for i := range shares {
		shares[i].ratio = shares[i].population / stateTotals[shares[i].state]
	}
	return shares, nil
}

// monthColumns are the twelve cleaned job-openings columns in calendar
// order.
var monthColumns = func() [12]string {
	var cols [12]string
	for i, m := range domain.MonthAbbrevs {
		cols[i] = "job_opening_" + strings.ToLower(m)
	}
	return cols
}()

// cleanJobOpenings spreads each state's monthly JOLTS openings over its
// counties by population share. Series values are thousands, so the
// apportioned counts scale by 1000 before rounding.
func (c *Cleaner) cleanJobOpenings() (*csvstore.Table, error) {
	cols := append([]string{"county_fips", "state", "county", "name", "population"}, monthColumns[:]...)
	out := csvstore.NewTable(append(cols, "year")...)

	for year := firstVintage; year <= domain.BaseYear; year++ {
		path := c.layout.JobOpeningsCSVFile(year)
		if _, err := os.Stat(path); err != nil {
			c.logger.Debug("no job openings data", "year", year)
			continue
		}
		jobs, err := csvstore.ReadTable(path)
		if err != nil {
			return nil, err
		}
		if err := jobs.Require("state"); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		shares, err := c.countyShares(year)
		if err != nil {
			c.logger.Warn("population data unavailable, year skipped", "year", year, "error", err)
			continue
		}

		stateIdx := jobs.Index("state")
		var monthIdx [12]int
		for i, m := range domain.MonthAbbrevs {
			monthIdx[i] = jobs.Index(m)
		}
		byState := make(map[string][]string, len(jobs.Rows))
		for _, row := range jobs.Rows {
			byState[domain.PadStateFIPS(row[stateIdx])] = row
		}

		yearCell := strconv.Itoa(year)
		for _, sh := range shares {
			cells := make([]string, 0, len(out.Columns))
			cells = append(cells, sh.fips, sh.state, sh.county, sh.name, csvstore.FormatFloat(sh.population))
			stateRow := byState[sh.state]
			for _, mi := range monthIdx {
				v := 0.0
				if stateRow != nil && mi >= 0 {
					if parsed := csvstore.ParseFloat(stateRow[mi]); !math.IsNaN(parsed) {
						v = parsed
					}
				}
				cells = append(cells, csvstore.FormatFloat(math.Round(sh.ratio*v*1000)))
			}
			cells = append(cells, yearCell)
			out.AppendRow(cells)
		}
	}
	if len(out.Rows) == 0 {
		return nil, fmt.Errorf("no job openings files under %s", c.layout.JobOpeningsCSVFile(domain.BaseYear))
	}
	return out, nil
}

// cleanCrime spreads each state's combined crime count over its counties by
// population share.
func (c *Cleaner) cleanCrime() (*csvstore.Table, error) {
	const variable = "count_criminalactivities_combinedcrime"
	out := csvstore.NewTable("county_fips", "state", "county", "name", "population", "criminal_activities", "year")

	for year := firstVintage; year <= domain.BaseYear; year++ {
		path := c.layout.DataCommonsFile("state", "crime", year)
		if _, err := os.Stat(path); err != nil {
			c.logger.Debug("no crime data", "year", year)
			continue
		}
		crime, err := csvstore.ReadTable(path)
		if err != nil {
			return nil, err
		}
		if err := crime.Require("state", variable); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		shares, err := c.countyShares(year)
		if err != nil {
			c.logger.Warn("population data unavailable, year skipped", "year", year, "error", err)
			continue
		}

		stateIdx, valueIdx := crime.Index("state"), crime.Index(variable)
		byState := make(map[string]float64, len(crime.Rows))
		for _, row := range crime.Rows {
			byState[domain.PadStateFIPS(row[stateIdx])] = csvstore.ParseFloat(row[valueIdx])
		}

		yearCell := strconv.Itoa(year)
		for _, sh := range shares {
			v := byState[sh.state]
			if math.IsNaN(v) {
				v = 0
			}
			out.AppendRow([]string{
				sh.fips, sh.state, sh.county, sh.name,
				csvstore.FormatFloat(sh.population),
				csvstore.FormatFloat(math.Round(sh.ratio * v)),
				yearCell,
			})
		}
	}
	if len(out.Rows) == 0 {
		return nil, fmt.Errorf("no crime files under %s", c.layout.DataCommonsFile("state", "crime", domain.BaseYear))
	}
	return out, nil
}
