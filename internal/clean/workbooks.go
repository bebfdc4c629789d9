package clean

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"climate-migration-pipeline/internal/adapter/csvstore"
	"climate-migration-pipeline/internal/domain"
)

// jobSeriesPrefix opens every JOLTS series ID; the state FIPS code sits at
// characters 9-10 of the ID.
const jobSeriesPrefix = "JTS"

// ConvertJobOpenings rebuilds the per-year state job openings tables from
// the staged BLS JOLTS workbooks. Each workbook carries one state's monthly
// series; years with an incomplete month set are dropped.
func (c *Cleaner) ConvertJobOpenings() error {
	dir := c.layout.JobOpeningsWorkbookDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Info("no job openings workbooks staged", "dir", dir)
			return nil
		}
		return err
	}

	years := map[int]map[string][12]float64{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xlsx") {
			continue
		}
		state, byYear, err := c.readJobWorkbook(filepath.Join(dir, e.Name()))
		if err != nil {
			c.logger.Warn("job openings workbook skipped", "file", e.Name(), "error", err)
			continue
		}
		for year, months := range byYear {
			if years[year] == nil {
				years[year] = map[string][12]float64{}
			}
			years[year][state] = months
		}
	}

	sorted := make([]int, 0, len(years))
	for year := range years {
		sorted = append(sorted, year)
	}
	sort.Ints(sorted)
	for _, year := range sorted {
		if err := c.writeJobYear(year, years[year]); err != nil {
			return err
		}
	}
	return nil
}

// readJobWorkbook extracts one state's complete years from a JOLTS export.
// The series ID on the cover rows names the state; the data table starts
// after thirteen rows of preamble.
func (c *Cleaner) readJobWorkbook(path string) (string, map[int][12]float64, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	seriesID, err := f.GetCellValue(sheet, "B4")
	if err != nil {
		return "", nil, err
	}
	if !strings.HasPrefix(seriesID, jobSeriesPrefix) {
		return "", nil, fmt.Errorf("unexpected series ID %q", seriesID)
	}
	if len(seriesID) < 13 {
		return "", nil, fmt.Errorf("series ID %q too short for a state code", seriesID)
	}
	state := seriesID[9:11]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", nil, err
	}
	if len(rows) < 15 {
		return "", nil, errors.New("missing data table")
	}
	header := rows[13]
	yearIdx := headerIndex(header, "Year")
	if yearIdx < 0 {
		return "", nil, errors.New("missing Year column")
	}
	var monthIdx [12]int
	for i, m := range domain.MonthAbbrevs {
		monthIdx[i] = headerIndex(header, m)
		if monthIdx[i] < 0 {
			return "", nil, fmt.Errorf("missing %s column", m)
		}
	}

	out := map[int][12]float64{}
	for _, row := range rows[14:] {
		year, err := strconv.Atoi(cell(row, yearIdx))
		if err != nil {
			continue
		}
		var months [12]float64
		complete := true
		for i, mi := range monthIdx {
			v := csvstore.ParseFloat(cell(row, mi))
			if math.IsNaN(v) {
				complete = false
				break
			}
			months[i] = v
		}
		if !complete {
			c.logger.Debug("incomplete year dropped", "file", filepath.Base(path), "state", state, "year", year)
			continue
		}
		out[year] = months
	}
	return state, out, nil
}

func (c *Cleaner) writeJobYear(year int, states map[string][12]float64) error {
	cols := make([]string, 0, 13)
	cols = append(cols, "state")
	for _, m := range domain.MonthAbbrevs {
		cols = append(cols, strings.ToLower(m))
	}
	t := csvstore.NewTable(cols...)

	fips := make([]string, 0, len(states))
	for state := range states {
		fips = append(fips, state)
	}
	sort.Strings(fips)
	for _, state := range fips {
		row := make([]string, 0, 13)
		row = append(row, state)
		for _, v := range states[state] {
			row = append(row, csvstore.FormatFloat(v))
		}
		t.AppendRow(row)
	}

	path := c.layout.JobOpeningsCSVFile(year)
	if err := t.Write(path); err != nil {
		return err
	}
	c.logger.Info("job openings year converted", "year", year, "states", len(t.Rows))
	return nil
}

// ConsolidateSchools merges the staged NCES workbook exports into the single
// school table the cleaning stage reads. Columns align against the first
// workbook's header.
func (c *Cleaner) ConsolidateSchools() error {
	dir := c.layout.SchoolWorkbookDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Info("no school workbooks staged", "dir", dir)
			return nil
		}
		return err
	}

	var combined *csvstore.Table
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xlsx") {
			continue
		}
		rows, err := readWorkbookRows(filepath.Join(dir, e.Name()))
		if err != nil {
			c.logger.Warn("school workbook skipped", "file", e.Name(), "error", err)
			continue
		}
		if combined == nil {
			combined = csvstore.NewTable(rows[0]...)
		}
		idx := make([]int, len(combined.Columns))
		for i, col := range combined.Columns {
			idx[i] = headerIndex(rows[0], col)
		}
		for _, row := range rows[1:] {
			cells := make([]string, len(idx))
			for i, j := range idx {
				cells[i] = cell(row, j)
			}
			combined.AppendRow(cells)
		}
	}
	if combined == nil {
		c.logger.Info("no school workbooks staged", "dir", dir)
		return nil
	}
	if err := combined.Write(c.layout.SchoolCSVFile(domain.BaseYear)); err != nil {
		return err
	}
	c.logger.Info("school workbooks consolidated", "rows", len(combined.Rows))
	return nil
}

func readWorkbookRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty workbook")
	}
	return rows, nil
}

// cleanCBSA reads the county-to-CBSA delineation workbook. The delineation
// sheet opens with two title rows, so the third row is the header; trailing
// footnote rows carry no FIPS codes and are dropped.
func (c *Cleaner) cleanCBSA() (*csvstore.Table, error) {
	path := c.layout.CBSAWorkbookFile()
	rows, err := readWorkbookRows(path)
	if err != nil {
		return nil, fmt.Errorf("cbsa workbook: %w", err)
	}
	if len(rows) < 4 {
		return nil, fmt.Errorf("cbsa workbook %s: missing delineation rows", path)
	}
	header := rows[2]
	stateIdx := headerIndex(header, "FIPS State Code")
	countyIdx := headerIndex(header, "FIPS County Code")
	cbsaIdx := headerIndex(header, "CBSA Code")
	typeIdx := headerIndex(header, "Metropolitan/Micropolitan Statistical Area")
	if stateIdx < 0 || countyIdx < 0 || cbsaIdx < 0 || typeIdx < 0 {
		return nil, fmt.Errorf("cbsa workbook %s: missing delineation columns", path)
	}

	out := csvstore.NewTable("county_fips", "cbsa", "type", "year")
	yearCell := strconv.Itoa(domain.BaseYear)
	for _, row := range rows[3:] {
		state, county := cell(row, stateIdx), cell(row, countyIdx)
		if state == "" || county == "" {
			continue
		}
		out.AppendRow([]string{
			domain.JoinFIPS(state, county),
			cell(row, cbsaIdx),
			cell(row, typeIdx),
			yearCell,
		})
	}
	return out, nil
}

// headerIndex finds a column in a workbook header row, ignoring case.
func headerIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// cell reads one cell of a workbook row. Workbook rows are ragged: trailing
// empty cells are simply absent.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
