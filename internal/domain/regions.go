package domain

import (
	"log/slog"
	"math"
	"strings"
)

// Region is one of the five climate regions the 2065 projection apportions
// population across.
type Region string

const (
	RegionNortheast  Region = "Northeast"
	RegionSouth      Region = "South"
	RegionMidwest    Region = "Midwest"
	RegionWest       Region = "West"
	RegionCalifornia Region = "California"
)

// NationalPopulation2065 is the Census Bureau's 2065 national population
// projection.
const NationalPopulation2065 = 366_207_000

// regionStates maps each climate region to its member states. The split
// follows Qin Fan et al.; California stands alone because the study models it
// separately from the rest of the West.
var regionStates = map[Region][]string{
	RegionNortheast: {
		"Pennsylvania", "New Jersey", "New York", "Connecticut", "Rhode Island",
		"Massachusetts", "New Hampshire", "Vermont", "Maine",
	},
	RegionSouth: {
		"District of Columbia", "Maryland", "Delaware", "Virginia", "West Virginia",
		"Kentucky", "North Carolina", "South Carolina", "Tennessee", "Alabama",
		"Georgia", "Florida", "Arkansas", "Mississippi", "Louisiana", "Oklahoma", "Texas",
	},
	RegionMidwest: {
		"Montana", "Wyoming", "North Dakota", "South Dakota", "Nebraska", "Kansas",
		"Minnesota", "Iowa", "Missouri", "Wisconsin", "Illinois", "Michigan",
		"Indiana", "Ohio",
	},
	RegionWest: {
		"Washington", "Oregon", "Idaho", "Nevada", "Utah", "Colorado", "Arizona", "New Mexico",
	},
	RegionCalifornia: {"California"},
}

var regionByState = func() map[string]Region {
	m := make(map[string]Region, 49)
	for region, states := range regionStates {
		for _, s := range states {
			m[strings.ToLower(s)] = region
		}
	}
	return m
}()

// regionShares2065 holds the Scenario 3 and Scenario 5 regional shares of
// the 2065 national population, in percent, from Table 5 of Qin Fan et al.
type regionShare struct {
	scenario3 float64
	scenario5 float64
}

var regionShares2065 = map[Region]regionShare{
	RegionNortheast:  {scenario3: 15.05, scenario5: 16.42},
	RegionMidwest:    {scenario3: 21.33, scenario5: 20.35},
	RegionSouth:      {scenario3: 41.53, scenario5: 38.18},
	RegionWest:       {scenario3: 8.78, scenario5: 10.07},
	RegionCalifornia: {scenario3: 13.31, scenario5: 14.98},
}

// RegionForState returns the climate region for a state name,
// case-insensitively. ok is false for states outside the projection scope.
func RegionForState(stateName string) (Region, bool) {
	r, ok := regionByState[strings.ToLower(strings.TrimSpace(stateName))]
	return r, ok
}

// BuildPopulationProjections apportions the 2065 national population to
// counties. Each region's scenario share of the national total is computed
// first (S5a, S5b and S5c apply 50%, 100% and 200% of the S3→S5 share
// shift), then distributed within the region by the county's share of the
// region's 2010 population. Values truncate to whole persons at both the
// regional and county level, matching the integer-cast convention of the
// source tables. Counties in states outside the five regions, and counties
// without a 2010 population, are skipped and logged.
func BuildPopulationProjections(counties []CensusPopulation, stateNames map[string]string, logger *slog.Logger) []PopulationProjection {
	type countyInfo struct {
		fips      string
		name      string
		stateFIPS string
		stateName string
		region    Region
		pop2010   float64
	}

	infos := make([]countyInfo, 0, len(counties))
	regionPop := make(map[Region]float64, len(regionShares2065))
	for _, c := range counties {
		stateFIPS := PadStateFIPS(c.State)
		stateName := stateNames[stateFIPS]
		region, ok := RegionForState(stateName)
		if !ok {
			logger.Warn("state outside climate regions, skipping county",
				"state", stateName, "county_fips", JoinFIPS(c.State, c.County))
			continue
		}
		if math.IsNaN(c.Population) || c.Population <= 0 {
			logger.Warn("county without 2010 population, skipping",
				"county_fips", JoinFIPS(c.State, c.County))
			continue
		}
		infos = append(infos, countyInfo{
			fips:      JoinFIPS(c.State, c.County),
			name:      c.Name,
			stateFIPS: stateFIPS,
			stateName: stateName,
			region:    region,
			pop2010:   c.Population,
		})
		regionPop[region] += c.Population
	}

	// Regional 2065 populations per scenario, truncated at the regional level
	// before county apportionment.
	regional := make(map[Region]ScenarioPopulations, len(regionShares2065))
	for region, share := range regionShares2065 {
		effect := share.scenario5/share.scenario3 - 1
		variant := func(intensity float64) float64 {
			adjusted := share.scenario3 * (1 + effect*intensity)
			return math.Trunc(adjusted / 100 * NationalPopulation2065)
		}
		regional[region] = ScenarioPopulations{
			S3:  math.Trunc(share.scenario3 / 100 * NationalPopulation2065),
			S5A: variant(0.5),
			S5B: variant(1.0),
			S5C: variant(2.0),
		}
	}

	out := make([]PopulationProjection, 0, len(infos))
	for _, ci := range infos {
		proportion := ci.pop2010 / regionPop[ci.region]
		reg := regional[ci.region]
		out = append(out, PopulationProjection{
			CountyFIPS:     ci.fips,
			CountyName:     ci.name,
			StateFIPS:      ci.stateFIPS,
			StateName:      ci.stateName,
			ClimateRegion:  ci.region,
			Population2010: ci.pop2010,
			RegionalShare:  proportion,
			Population2065: ScenarioPopulations{
				S3:  math.Trunc(reg.S3 * proportion),
				S5A: math.Trunc(reg.S5A * proportion),
				S5B: math.Trunc(reg.S5B * proportion),
				S5C: math.Trunc(reg.S5C * proportion),
			},
		})
	}
	return out
}
