package csvstore

import (
	"fmt"
	"strconv"
	"strings"

	"climate-migration-pipeline/internal/domain"
)

// Column names shared by every cleaned domain table.
const (
	colCountyFIPS = "county_fips"
	colState      = "state"
	colCounty     = "county"
	colName       = "name"
	colPopulation = "population"
	colYear       = "year"
)

var keyColumns = []string{colCountyFIPS, colState, colCounty, colName, colPopulation, colYear}

func requireColumns(t *Table, path string, extra ...string) error {
	if err := t.Require(keyColumns...); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := t.Require(extra...); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// keyIndex caches the positions of the shared key columns.
type keyIndex struct {
	fips, state, county, name, population, year int
}

func newKeyIndex(t *Table) keyIndex {
	return keyIndex{
		fips:       t.Index(colCountyFIPS),
		state:      t.Index(colState),
		county:     t.Index(colCounty),
		name:       t.Index(colName),
		population: t.Index(colPopulation),
		year:       t.Index(colYear),
	}
}

func (k keyIndex) read(row []string, line int) (domain.CountyYear, error) {
	year, err := strconv.Atoi(strings.TrimSpace(row[k.year]))
	if err != nil {
		return domain.CountyYear{}, fmt.Errorf("line %d: invalid year %q", line, row[k.year])
	}
	return domain.CountyYear{
		CountyFIPS: domain.PadCountyFIPS(row[k.fips]),
		State:      domain.PadStateFIPS(row[k.state]),
		County:     domain.PadCountyCode(row[k.county]),
		Name:       row[k.name],
		Population: ParseFloat(row[k.population]),
		Year:       year,
	}, nil
}

// jobOpeningColumns lists the twelve monthly columns in calendar order.
func jobOpeningColumns() [12]string {
	var cols [12]string
	for i, m := range domain.MonthAbbrevs {
		cols[i] = "job_opening_" + strings.ToLower(m)
	}
	return cols
}

// ReadEconomic loads the cleaned economic table.
func ReadEconomic(path string) ([]domain.EconomicRecord, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(t, path, "total_employed_population", "total_labor_force"); err != nil {
		return nil, err
	}
	keys := newKeyIndex(t)
	employed := t.Index("total_employed_population")
	labor := t.Index("total_labor_force")

	out := make([]domain.EconomicRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		key, err := keys.read(row, i+2)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, domain.EconomicRecord{
			CountyYear:              key,
			TotalEmployedPopulation: ParseFloat(row[employed]),
			TotalLaborForce:         ParseFloat(row[labor]),
		})
	}
	return out, nil
}

// ReadEducation loads the cleaned education table.
func ReadEducation(path string) ([]domain.EducationRecord, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	cols := []string{"elementary_school_population", "middle_school_population", "high_school_population"}
	if err := requireColumns(t, path, cols...); err != nil {
		return nil, err
	}
	keys := newKeyIndex(t)
	elem := t.Index(cols[0])
	middle := t.Index(cols[1])
	high := t.Index(cols[2])

	out := make([]domain.EducationRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		key, err := keys.read(row, i+2)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, domain.EducationRecord{
			CountyYear:                 key,
			ElementarySchoolPopulation: ParseFloat(row[elem]),
			MiddleSchoolPopulation:     ParseFloat(row[middle]),
			HighSchoolPopulation:       ParseFloat(row[high]),
		})
	}
	return out, nil
}

// ReadHousing loads the cleaned housing table.
func ReadHousing(path string) ([]domain.HousingRecord, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(t, path, "total_housing_units", "occupied_housing_units"); err != nil {
		return nil, err
	}
	keys := newKeyIndex(t)
	total := t.Index("total_housing_units")
	occupied := t.Index("occupied_housing_units")

	out := make([]domain.HousingRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		key, err := keys.read(row, i+2)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, domain.HousingRecord{
			CountyYear:           key,
			TotalHousingUnits:    ParseFloat(row[total]),
			OccupiedHousingUnits: ParseFloat(row[occupied]),
		})
	}
	return out, nil
}

// ReadJobOpenings loads the cleaned job openings table.
func ReadJobOpenings(path string) ([]domain.JobOpeningsRecord, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	months := jobOpeningColumns()
	if err := requireColumns(t, path, months[:]...); err != nil {
		return nil, err
	}
	keys := newKeyIndex(t)
	var monthIdx [12]int
	for i, c := range months {
		monthIdx[i] = t.Index(c)
	}

	out := make([]domain.JobOpeningsRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		key, err := keys.read(row, i+2)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		rec := domain.JobOpeningsRecord{CountyYear: key}
		for m, idx := range monthIdx {
			rec.MonthlyOpenings[m] = ParseFloat(row[idx])
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReadSchool loads the cleaned public school table.
func ReadSchool(path string) ([]domain.SchoolRecord, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	cols := []string{"public_school_students", "public_school_teachers", "student_teacher_ratio"}
	if err := requireColumns(t, path, cols...); err != nil {
		return nil, err
	}
	keys := newKeyIndex(t)
	students := t.Index(cols[0])
	teachers := t.Index(cols[1])
	ratio := t.Index(cols[2])

	out := make([]domain.SchoolRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		key, err := keys.read(row, i+2)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, domain.SchoolRecord{
			CountyYear:           key,
			PublicSchoolStudents: ParseFloat(row[students]),
			PublicSchoolTeachers: ParseFloat(row[teachers]),
			StudentTeacherRatio:  ParseFloat(row[ratio]),
		})
	}
	return out, nil
}
