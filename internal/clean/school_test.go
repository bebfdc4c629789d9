package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPublicSchool(t *testing.T) {
	c, layout := newTestCleaner(t)
	stagePopulation(t, layout, 2023)
	writeRawCSV(t, layout.SchoolCSVFile(2023),
		"School Name,County Name,State,Students,Teachers\n"+
			"Prattville Elementary,Autauga County,AL,1000,50\n"+
			"Prattville High,Autauga County,AL,500,\xe2\x80\x93\n"+
			"Nowhere Academy,Unknown County,AL,10,1\n"+
			"Anchorage School,Anchorage,AK,5,1\n")

	tbl, err := c.cleanPublicSchool()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"public_school_students", "public_school_teachers", "student_teacher_ratio",
		"county_fips", "state", "county", "name", "population", "year",
	}, tbl.Columns)
	require.Len(t, tbl.Rows, 1, "unmatched and non-contiguous counties are dropped")
	assert.Equal(t, []string{
		"1500", "50", "30",
		"01001", "01", "001", "Autauga County, Alabama", "50000", "2023",
	}, tbl.Rows[0])
}

func TestCleanPublicSchoolZeroTeachers(t *testing.T) {
	c, layout := newTestCleaner(t)
	stagePopulation(t, layout, 2023)
	writeRawCSV(t, layout.SchoolCSVFile(2023),
		"County Name,State,Students,Teachers\n"+
			"Autauga County,AL,120,0\n")

	tbl, err := c.cleanPublicSchool()
	require.NoError(t, err)

	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "", tbl.Rows[0][2], "no teachers means no ratio")
}

func TestCleanPublicSchoolSortsByCounty(t *testing.T) {
	c, layout := newTestCleaner(t)
	stagePopulation(t, layout, 2023)
	writeRawCSV(t, layout.SchoolCSVFile(2023),
		"County Name,State,Students,Teachers\n"+
			"Los Angeles County,CA,2000,100\n"+
			"Baldwin County,AL,800,40\n"+
			"Autauga County,AL,400,20\n")

	tbl, err := c.cleanPublicSchool()
	require.NoError(t, err)

	require.Len(t, tbl.Rows, 3)
	fips := tbl.Index("county_fips")
	assert.Equal(t, "01001", tbl.Rows[0][fips])
	assert.Equal(t, "01003", tbl.Rows[1][fips])
	assert.Equal(t, "06037", tbl.Rows[2][fips])
}

func TestCleanPublicSchoolMissingFile(t *testing.T) {
	c, _ := newTestCleaner(t)
	_, err := c.cleanPublicSchool()
	require.Error(t, err)
}
