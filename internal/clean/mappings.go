package clean

// vintageSpan is an inclusive range of data years.
type vintageSpan struct {
	first, last int
}

func (s vintageSpan) contains(year int) bool { return s.first <= year && year <= s.last }

// rename binds one raw column to its cleaned name. Cleaned tables carry
// their indicator columns in rename order.
type rename struct {
	from, to string
}

type mappedSpan struct {
	span    vintageSpan
	renames []rename
}

// censusMappings drive the shared ACS cleaning path. Housing carries two
// spans because the profile table renumbered its variables in 2015; the
// renamed targets are identical so the years concatenate cleanly.
var censusMappings = map[string][]mappedSpan{
	"economic": {{
		span: vintageSpan{2011, 2023},
		renames: []rename{
			{"B19301_001E", "median_income"},
			{"B23025_004E", "total_employed_population"},
			{"B23025_005E", "unemployed_persons"},
			{"B23025_003E", "total_labor_force"},
		},
	}},
	"education": {{
		span: vintageSpan{2011, 2023},
		renames: []rename{
			{"B23006_001E", "total_population_25_64"},
			{"B23006_002E", "less_than_high_school_total"},
			{"B23006_009E", "high_school_graduate_total"},
			{"B23006_016E", "some_college_total"},
			{"B23006_023E", "bachelors_or_higher_total"},
			{"B14001_001E", "total_enrolled_and_not_enrolled"},
			{"B14001_002E", "total_enrolled"},
			{"B14001_003E", "enrolled_nursery_preschool"},
			{"B14001_004E", "enrolled_kindergarten"},
			{"B14001_005E", "enrolled_grade1_4"},
			{"B14001_006E", "enrolled_grade5_8"},
			{"B14001_007E", "enrolled_grade9_12"},
			{"B14001_008E", "enrolled_college_undergrad"},
			{"B14001_009E", "enrolled_graduate_professional"},
			{"B23006_007E", "less_than_high_school_unemployed"},
			{"B23006_014E", "high_school_graduate_unemployed"},
			{"B23006_021E", "some_college_unemployed"},
			{"B23006_028E", "bachelors_or_higher_unemployed"},
			{"B01001_004E", "male_5_9"},
			{"B01001_005E", "male_10_14"},
			{"B01001_006E", "male_15_17"},
			{"B01001_028E", "female_5_9"},
			{"B01001_029E", "female_10_14"},
			{"B01001_030E", "female_15_17"},
		},
	}},
	"housing": {
		{
			span: vintageSpan{2010, 2014},
			renames: []rename{
				{"DP04_0001E", "total_housing_units"},
				{"DP04_0044E", "occupied_housing_units"},
				{"DP04_0088E", "median_housing_value"},
				{"DP04_0132E", "median_gross_rent"},
			},
		},
		{
			span: vintageSpan{2015, 2023},
			renames: []rename{
				{"DP04_0001E", "total_housing_units"},
				{"DP04_0002E", "occupied_housing_units"},
				{"DP04_0089E", "median_housing_value"},
				{"DP04_0134E", "median_gross_rent"},
			},
		},
	},
	"fema_nri": {{
		span: vintageSpan{2021, 2023},
		renames: []rename{
			{"FemaNaturalHazardRiskIndex_NaturalHazardImpact", "fema_nri"},
		},
	}},
}

// renamesFor resolves the rename set for one data year, or nil when the
// domain publishes nothing for it.
func renamesFor(domain string, year int) []rename {
	for _, m := range censusMappings[domain] {
		if m.span.contains(year) {
			return m.renames
		}
	}
	return nil
}
