package clean

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"climate-migration-pipeline/internal/adapter/csvstore"
	"climate-migration-pipeline/internal/domain"
)

// writeJobWorkbook stages a JOLTS-shaped export: series ID on the cover,
// header on row 14, data rows after. A nil cell stays unset.
func writeJobWorkbook(t *testing.T, path, seriesID string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "B4", seriesID))
	headers := append([]string{"Year"}, domain.MonthAbbrevs[:]...)
	for i, h := range headers {
		cellName, err := excelize.CoordinatesToCellName(i+1, 14)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", cellName, h))
	}
	for r, row := range rows {
		for i, v := range row {
			if v == nil {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(i+1, 15+r)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cellName, v))
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func writeCBSAWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "List 1. Core Based Statistical Areas"))
	headers := []string{
		"CBSA Code", "CBSA Title", "Metropolitan/Micropolitan Statistical Area",
		"FIPS State Code", "FIPS County Code",
	}
	for i, h := range headers {
		cellName, err := excelize.CoordinatesToCellName(i+1, 3)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", cellName, h))
	}
	data := [][]any{
		{33860, "Montgomery, AL", "Metropolitan Statistical Area", "01", "001"},
		{31080, "Los Angeles-Long Beach-Anaheim, CA", "Metropolitan Statistical Area", "06", "037"},
		{"Note: the delineations reflect OMB bulletin 23-01."},
	}
	for r, row := range data {
		for i, v := range row {
			cellName, err := excelize.CoordinatesToCellName(i+1, 4+r)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cellName, v))
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func writeSchoolWorkbook(t *testing.T, path string, header []string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	for i, h := range header {
		cellName, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", cellName, h))
	}
	for r, row := range rows {
		for i, v := range row {
			cellName, err := excelize.CoordinatesToCellName(i+1, 2+r)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cellName, v))
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func TestConvertJobOpenings(t *testing.T) {
	c, layout := newTestCleaner(t)
	months := func(year int, base float64) [][]any {
		row := []any{year}
		for i := 0; i < 12; i++ {
			row = append(row, base+float64(i))
		}
		return [][]any{row}
	}
	alabama := months(2021, 100)
	// 2022 is missing December and must be dropped.
	incomplete := []any{2022, 90.0, 91.0, 92.0, 93.0, 94.0, 95.0, 96.0, 97.0, 98.0, 99.0, 100.0, nil}
	alabama = append(alabama, incomplete)
	writeJobWorkbook(t, filepath.Join(layout.JobOpeningsWorkbookDir(), "al.xlsx"),
		"JTS000000010000000JOL", alabama)
	writeJobWorkbook(t, filepath.Join(layout.JobOpeningsWorkbookDir(), "nv.xlsx"),
		"JTS000000320000000JOL", months(2021, 40))
	// A workbook without a JOLTS series ID is skipped.
	writeJobWorkbook(t, filepath.Join(layout.JobOpeningsWorkbookDir(), "junk.xlsx"),
		"Annual averages", months(2021, 1))

	require.NoError(t, c.ConvertJobOpenings())

	tbl, err := csvstore.ReadTable(layout.JobOpeningsCSVFile(2021))
	require.NoError(t, err)
	assert.Equal(t, "state", tbl.Columns[0])
	assert.Equal(t, "jan", tbl.Columns[1])
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "01", tbl.Rows[0][0])
	assert.Equal(t, "100", tbl.Rows[0][1])
	assert.Equal(t, "111", tbl.Rows[0][12])
	assert.Equal(t, "32", tbl.Rows[1][0])

	_, err = os.Stat(layout.JobOpeningsCSVFile(2022))
	assert.Error(t, err, "the incomplete year produces no file")
}

func TestConvertJobOpeningsWithoutWorkbooks(t *testing.T) {
	c, _ := newTestCleaner(t)
	require.NoError(t, c.ConvertJobOpenings())
}

func TestConsolidateSchools(t *testing.T) {
	c, layout := newTestCleaner(t)
	writeSchoolWorkbook(t, filepath.Join(layout.SchoolWorkbookDir(), "a_page1.xlsx"),
		[]string{"School Name", "County Name", "State", "Students", "Teachers"},
		[][]any{{"Anytown Elementary", "Autauga County", "AL", 300, 20}})
	// The second export lists its columns in a different order.
	writeSchoolWorkbook(t, filepath.Join(layout.SchoolWorkbookDir(), "b_page2.xlsx"),
		[]string{"County Name", "State", "School Name", "Students", "Teachers"},
		[][]any{{"Baldwin County", "AL", "Coast High", 500, 25}})

	require.NoError(t, c.ConsolidateSchools())

	tbl, err := csvstore.ReadTable(layout.SchoolCSVFile(2023))
	require.NoError(t, err)
	assert.Equal(t, []string{"school name", "county name", "state", "students", "teachers"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"Anytown Elementary", "Autauga County", "AL", "300", "20"}, tbl.Rows[0])
	assert.Equal(t, []string{"Coast High", "Baldwin County", "AL", "500", "25"}, tbl.Rows[1])
}

func TestConsolidateSchoolsWithoutWorkbooks(t *testing.T) {
	c, layout := newTestCleaner(t)
	require.NoError(t, c.ConsolidateSchools())
	_, err := os.Stat(layout.SchoolCSVFile(2023))
	assert.Error(t, err)
}

func TestCleanCBSA(t *testing.T) {
	c, layout := newTestCleaner(t)
	writeCBSAWorkbook(t, layout.CBSAWorkbookFile())

	tbl, err := c.cleanCBSA()
	require.NoError(t, err)

	assert.Equal(t, []string{"county_fips", "cbsa", "type", "year"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2, "footnote rows carry no FIPS codes and are dropped")
	assert.Equal(t, []string{"01001", "33860", "Metropolitan Statistical Area", "2023"}, tbl.Rows[0])
	assert.Equal(t, "06037", tbl.Rows[1][0])
}

func TestCleanCBSAMissingWorkbook(t *testing.T) {
	c, _ := newTestCleaner(t)
	_, err := c.cleanCBSA()
	require.Error(t, err)
}
