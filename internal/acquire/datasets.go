package acquire

import "fmt"

// yearRange is an inclusive span of vintage years.
type yearRange struct {
	First int
	Last  int
}

func (r yearRange) contains(year int) bool {
	return r.First <= year && year <= r.Last
}

func (r yearRange) years() []int {
	out := make([]int, 0, r.Last-r.First+1)
	for y := r.First; y <= r.Last; y++ {
		out = append(out, y)
	}
	return out
}

// variableSet binds an ACS variable list to the vintages that publish it.
// Profile tables renumber variables between vintages, so a dataset may need
// several sets.
type variableSet struct {
	Span      yearRange
	Variables []string
}

// CensusDataset describes one ACS product staged as per-year county files.
type CensusDataset struct {
	// Name keys directories and file names, e.g. "housing".
	Name string
	// Product is the API dataset path, e.g. "acs/acs5/profile".
	Product string
	Span    yearRange
	Sets    []variableSet
}

// variablesFor resolves the download variables for one vintage, with the
// geography display name always first.
func (d CensusDataset) variablesFor(year int) ([]string, error) {
	for _, set := range d.Sets {
		if set.Span.contains(year) {
			return append([]string{"NAME"}, set.Variables...), nil
		}
	}
	return nil, fmt.Errorf("no %s variables defined for %d", d.Name, year)
}

// SeriesDataset describes one Data Commons statistical variable staged as
// per-year files at state or county level.
type SeriesDataset struct {
	Name     string
	Level    string // "state" or "county"
	Variable string
	Span     yearRange
}

// ExcludedStates are the FIPS codes never downloaded: the District of
// Columbia, Puerto Rico, Hawaii, Alaska, and the Virgin Islands. The
// analysis covers the contiguous states only.
var ExcludedStates = map[string]bool{
	"11": true,
	"72": true,
	"15": true,
	"02": true,
	"78": true,
}

// CensusDatasets lists the staged ACS products. The housing profile table
// renumbered its variables in 2015.
var CensusDatasets = []CensusDataset{
	{
		Name:    "housing",
		Product: "acs/acs5/profile",
		Span:    yearRange{2010, 2023},
		Sets: []variableSet{
			{yearRange{2010, 2014}, []string{"DP04_0001E", "DP04_0044E", "DP04_0088E", "DP04_0132E"}},
			{yearRange{2015, 2023}, []string{"DP04_0001E", "DP04_0002E", "DP04_0089E", "DP04_0134E"}},
		},
	},
	{
		Name:    "population",
		Product: "acs/acs5",
		Span:    yearRange{2010, 2023},
		Sets: []variableSet{
			{yearRange{2010, 2023}, []string{"B01003_001E"}},
		},
	},
	{
		Name:    "education",
		Product: "acs/acs5",
		Span:    yearRange{2011, 2023},
		Sets: []variableSet{
			{yearRange{2011, 2023}, []string{
				"B23006_001E",
				"B23006_002E",
				"B23006_009E",
				"B23006_016E",
				"B23006_023E",
				"B14001_001E",
				"B14001_002E",
				"B14001_003E",
				"B14001_004E",
				"B14001_005E",
				"B14001_006E",
				"B14001_007E",
				"B14001_008E",
				"B14001_009E",
				"B23006_007E",
				"B23006_014E",
				"B23006_021E",
				"B23006_028E",
				"B01001_004E", // male 5-9
				"B01001_005E", // male 10-14
				"B01001_006E", // male 15-17
				"B01001_028E", // female 5-9
				"B01001_029E", // female 10-14
				"B01001_030E", // female 15-17
			}},
		},
	},
	{
		Name:    "economic",
		Product: "acs/acs5",
		Span:    yearRange{2011, 2023},
		Sets: []variableSet{
			{yearRange{2011, 2023}, []string{"B19301_001E", "B23025_004E", "B23025_005E", "B23025_003E"}},
		},
	},
}

// SeriesDatasets lists the staged Data Commons variables. Crime counts are
// published per state and apportioned to counties during cleaning; the FEMA
// hazard index is published per county.
var SeriesDatasets = []SeriesDataset{
	{
		Name:     "crime",
		Level:    "state",
		Variable: "Count_CriminalActivities_CombinedCrime",
		Span:     yearRange{2010, 2023},
	},
	{
		Name:     "fema_nri",
		Level:    "county",
		Variable: "FemaNaturalHazardRiskIndex_NaturalHazardImpact",
		Span:     yearRange{2021, 2023},
	},
}
