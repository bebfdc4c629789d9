package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanEconomic(t *testing.T) {
	c, layout := newTestCleaner(t)
	writeRawCSV(t, layout.CensusFile("economic", 2023),
		"NAME,B19301_001E,B23025_004E,B23025_005E,B23025_003E,state,county\n"+
			"\"Autauga County, Alabama\",30000,25000,1000,26000,01,001\n"+
			"\"Los Angeles County, California\",40000,5000000,250000,5250000,06,037\n")

	tbl, err := c.cleanCensusDomain("economic")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"median_income", "total_employed_population", "unemployed_persons",
		"total_labor_force", "county_fips", "year", "unemployment_rate",
	}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"30000", "25000", "1000", "26000", "01001", "2023", "3.85"}, tbl.Rows[0])
	assert.Equal(t, "4.76", tbl.Rows[1][6])
}

func TestCleanEconomicCoercesAnnotations(t *testing.T) {
	c, layout := newTestCleaner(t)
	writeRawCSV(t, layout.CensusFile("economic", 2023),
		"NAME,B19301_001E,B23025_004E,B23025_005E,B23025_003E,state,county\n"+
			"\"Kalawao County, Hawaii\",(X),100,5,,15,005\n")

	tbl, err := c.cleanCensusDomain("economic")
	require.NoError(t, err)

	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "", tbl.Rows[0][0], "annotation becomes an empty cell")
	assert.Equal(t, "", tbl.Rows[0][6], "no labor force means no rate")
	assert.Equal(t, "15005", tbl.Rows[0][4])
}

func TestCleanHousingSpansVintages(t *testing.T) {
	c, layout := newTestCleaner(t)
	writeRawCSV(t, layout.CensusFile("housing", 2014),
		"NAME,DP04_0001E,DP04_0044E,DP04_0088E,DP04_0132E,state,county\n"+
			"\"Autauga County, Alabama\",20000,18000,120000,700,01,001\n")
	writeRawCSV(t, layout.CensusFile("housing", 2023),
		"NAME,DP04_0001E,DP04_0002E,DP04_0089E,DP04_0134E,state,county\n"+
			"\"Autauga County, Alabama\",23000,21000,180000,1000,01,001\n")

	tbl, err := c.cleanCensusDomain("housing")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"total_housing_units", "occupied_housing_units", "median_housing_value",
		"median_gross_rent", "county_fips", "year",
	}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "18000", tbl.Rows[0][1], "2014 occupancy comes from the early variable")
	assert.Equal(t, "21000", tbl.Rows[1][1], "2023 occupancy comes from the renumbered variable")
}

func TestCleanEducationDerivesSchoolAges(t *testing.T) {
	c, layout := newTestCleaner(t)
	header, row := educationRaw(map[string]string{
		"B01001_004E": "100", "B01001_028E": "90",
		"B01001_005E": "110", "B01001_029E": "105",
		"B01001_006E": "60", "B01001_030E": "",
	})
	writeRawCSV(t, layout.CensusFile("education", 2023), header+"\n"+row+"\n")

	tbl, err := c.cleanCensusDomain("education")
	require.NoError(t, err)

	elem := tbl.Index("elementary_school_population")
	middle := tbl.Index("middle_school_population")
	high := tbl.Index("high_school_population")
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "190", tbl.Rows[0][elem])
	assert.Equal(t, "215", tbl.Rows[0][middle])
	assert.Equal(t, "", tbl.Rows[0][high], "a missing bucket leaves the band unknown")
}

func TestCleanCensusDomainWithoutFiles(t *testing.T) {
	c, _ := newTestCleaner(t)
	_, err := c.cleanCensusDomain("economic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no raw economic files")
}

func TestCleanCensusDomainMissingVariable(t *testing.T) {
	c, layout := newTestCleaner(t)
	writeRawCSV(t, layout.CensusFile("economic", 2023),
		"NAME,B19301_001E,state,county\n\"Autauga County, Alabama\",30000,01,001\n")

	_, err := c.cleanCensusDomain("economic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "B23025_004E")
}

func TestJoinPopulation(t *testing.T) {
	c, layout := newTestCleaner(t)
	stagePopulation(t, layout, 2023)
	lookup, err := c.loadPopulationLookup()
	require.NoError(t, err)

	tbl := indicatorTable("fema_nri",
		[]string{"10.5", "01001", "2023"},
		[]string{"12.0", "99999", "2023"},
	)
	joinPopulation(tbl, lookup)

	assert.Equal(t, []string{"fema_nri", "county_fips", "year", "population", "state", "county", "name"}, tbl.Columns)
	assert.Equal(t, []string{"10.5", "01001", "2023", "50000", "01", "001", "Autauga County, Alabama"}, tbl.Rows[0])
	assert.Equal(t, []string{"12.0", "99999", "2023", "", "", "", ""}, tbl.Rows[1], "unmatched county keeps empty cells")
}

func TestJoinPopulationKeysOnYear(t *testing.T) {
	c, layout := newTestCleaner(t)
	writeRawCSV(t, layout.CensusFile("population", 2022),
		"NAME,B01003_001E,state,county\n\"Autauga County, Alabama\",48000,01,001\n")
	writeRawCSV(t, layout.CensusFile("population", 2023),
		"NAME,B01003_001E,state,county\n\"Autauga County, Alabama\",50000,01,001\n")
	lookup, err := c.loadPopulationLookup()
	require.NoError(t, err)

	tbl := indicatorTable("value",
		[]string{"1", "01001", "2022"},
		[]string{"2", "01001", "2023"},
	)
	joinPopulation(tbl, lookup)

	pop := tbl.Index("population")
	assert.Equal(t, "48000", tbl.Rows[0][pop])
	assert.Equal(t, "50000", tbl.Rows[1][pop])
}

func TestAddHouseAffordability(t *testing.T) {
	income := map[string]float64{
		"01001|2023": 30000,
		"01003|2023": 0,
	}
	tbl := indicatorTable("median_gross_rent",
		[]string{"1000", "01001", "2023"},
		[]string{"900", "01003", "2023"},
		[]string{"800", "06037", "2023"},
	)
	addHouseAffordability(tbl, income)

	idx := tbl.Index("house_affordability")
	assert.Equal(t, "0.4", tbl.Rows[0][idx])
	assert.Equal(t, "", tbl.Rows[1][idx], "zero income yields no ratio")
	assert.Equal(t, "", tbl.Rows[2][idx], "county missing from economic data yields no ratio")
}
