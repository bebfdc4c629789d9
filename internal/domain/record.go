package domain

import "math"

// BaseYear is the snapshot year the 2065 scenarios scale from and the only
// year with school data.
const BaseYear = 2023

// MonthAbbrevs lists JOLTS month column abbreviations in calendar order.
// Job-openings columns follow this order everywhere.
var MonthAbbrevs = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// CountyYear is the composite key the cleaned domain tables join on.
type CountyYear struct {
	CountyFIPS string
	State      string // 2-digit state FIPS
	County     string // 3-digit county code
	Name       string // census display name, e.g. "Autauga County, Alabama"
	Population float64
	Year       int
}

// EconomicRecord is the slice of the cleaned economic table the projection
// consumes.
type EconomicRecord struct {
	CountyYear
	TotalEmployedPopulation float64
	TotalLaborForce         float64
}

// EducationRecord carries the school-age population roll-ups.
type EducationRecord struct {
	CountyYear
	ElementarySchoolPopulation float64
	MiddleSchoolPopulation     float64
	HighSchoolPopulation       float64
}

// HousingRecord carries the housing-stock columns.
type HousingRecord struct {
	CountyYear
	TotalHousingUnits    float64
	OccupiedHousingUnits float64
}

// JobOpeningsRecord holds estimated county job openings for each month.
type JobOpeningsRecord struct {
	CountyYear
	MonthlyOpenings [12]float64
}

// SchoolRecord holds the public-school roll-up. School data exists only for
// the base year.
type SchoolRecord struct {
	CountyYear
	PublicSchoolStudents float64
	PublicSchoolTeachers float64
	StudentTeacherRatio  float64
}

// MergedRecord is one row of the wide table joining all five domains.
// School fields are NaN for base-year counties with no school source and
// zero for every other year.
type MergedRecord struct {
	CountyYear

	TotalEmployedPopulation float64
	TotalLaborForce         float64

	ElementarySchoolPopulation float64
	MiddleSchoolPopulation     float64
	HighSchoolPopulation       float64

	TotalHousingUnits    float64
	OccupiedHousingUnits float64

	MonthlyOpenings [12]float64

	PublicSchoolStudents float64
	PublicSchoolTeachers float64
	StudentTeacherRatio  float64
}

// ProjectionInputs is a county's filtered base-year snapshot: the columns the
// scenario expansion scales.
type ProjectionInputs struct {
	CountyYear
	PublicSchoolStudents       float64
	ElementarySchoolPopulation float64
	MiddleSchoolPopulation     float64
	HighSchoolPopulation       float64
	TotalEmployedPopulation    float64
	TotalLaborForce            float64
	MonthlyOpenings            [12]float64
	OccupiedHousingUnits       float64
}

// ScenarioRow is one row of the combined 2065 table: a county's base-year
// snapshot scaled to one scenario, plus derived metrics and z-scores.
type ScenarioRow struct {
	CountyFIPS string
	State      string
	County     string
	Name       string
	Year       int
	Scenario   Scenario

	Population                 float64
	PublicSchoolStudents       float64
	ElementarySchoolPopulation float64
	MiddleSchoolPopulation     float64
	HighSchoolPopulation       float64
	TotalEmployedPopulation    float64
	TotalLaborForce            float64
	MonthlyOpenings            [12]float64
	OccupiedHousingUnits       float64

	// Derived against fixed base-year denominators, see ApplyDerivedMetrics.
	StudentTeacherRatio     float64
	AvailableHousingUnits   float64
	TotalEmployedPercentage float64
	UnemploymentRate        float64

	// Per-scenario z-scores, see ApplyZScores.
	ZStudentTeacherRatio   float64
	ZAvailableHousingUnits float64
	ZUnemploymentRate      float64
}

// IndexRow is one row of the projected socioeconomic indices output.
type IndexRow struct {
	CountyFIPS      string
	Scenario        Scenario
	IndexBalanced   float64
	IndexEmployment float64
	IndexHousing    float64
	IndexEducation  float64
}

// CensusPopulation is one county row of a yearly census population file.
type CensusPopulation struct {
	State      string
	County     string
	Name       string
	Population float64
}

// ScenarioPopulations holds the four projected 2065 county populations.
type ScenarioPopulations struct {
	S3  float64
	S5A float64
	S5B float64
	S5C float64
}

// For returns the projected population for a scaled scenario.
func (p ScenarioPopulations) For(sc Scenario) float64 {
	switch sc {
	case ScenarioS3:
		return p.S3
	case ScenarioS5A:
		return p.S5A
	case ScenarioS5B:
		return p.S5B
	case ScenarioS5C:
		return p.S5C
	}
	return math.NaN()
}

// PopulationProjection is one county row of the 2065 population projection
// table.
type PopulationProjection struct {
	CountyFIPS     string
	CountyName     string
	StateFIPS      string
	StateName      string
	ClimateRegion  Region
	Population2010 float64
	// RegionalShare is the county's share of its climate region's 2010
	// population, in [0, 1].
	RegionalShare  float64
	Population2065 ScenarioPopulations
}

// PercentChanges holds one county's 2023→2065 population change per
// projected scenario, in percent.
type PercentChanges struct {
	S3  float64
	S5A float64
	S5B float64
	S5C float64
}

// For returns the change for a projected scenario. The Original scenario has
// no change by definition.
func (p PercentChanges) For(sc Scenario) float64 {
	switch sc {
	case ScenarioS3:
		return p.S3
	case ScenarioS5A:
		return p.S5A
	case ScenarioS5B:
		return p.S5B
	case ScenarioS5C:
		return p.S5C
	}
	return 0
}
