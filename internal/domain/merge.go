package domain

import "math"

// MergeInputs carries the five cleaned domain tables.
type MergeInputs struct {
	Economic    []EconomicRecord
	Education   []EducationRecord
	Housing     []HousingRecord
	JobOpenings []JobOpeningsRecord
	School      []SchoolRecord
}

// MergeDomains joins the cleaned tables into one wide table on the full
// CountyYear key. Economic, education, housing and job openings join inner:
// a row missing from any of the four drops silently. School data joins outer
// because it exists only for the base year; base rows keep their input order
// and unmatched school rows append at the end with NaN in every non-school
// column. School columns are then zeroed for every year other than the base
// year.
func MergeDomains(in MergeInputs) []MergedRecord {
	eduByKey := make(map[CountyYear]EducationRecord, len(in.Education))
	for _, r := range in.Education {
		eduByKey[r.CountyYear] = r
	}
	housingByKey := make(map[CountyYear]HousingRecord, len(in.Housing))
	for _, r := range in.Housing {
		housingByKey[r.CountyYear] = r
	}
	jobsByKey := make(map[CountyYear]JobOpeningsRecord, len(in.JobOpenings))
	for _, r := range in.JobOpenings {
		jobsByKey[r.CountyYear] = r
	}
	schoolByKey := make(map[CountyYear]SchoolRecord, len(in.School))
	for _, r := range in.School {
		schoolByKey[r.CountyYear] = r
	}

	merged := make([]MergedRecord, 0, len(in.Economic))
	matchedSchool := make(map[CountyYear]bool, len(in.School))

	for _, eco := range in.Economic {
		edu, ok := eduByKey[eco.CountyYear]
		if !ok {
			continue
		}
		hou, ok := housingByKey[eco.CountyYear]
		if !ok {
			continue
		}
		job, ok := jobsByKey[eco.CountyYear]
		if !ok {
			continue
		}

		rec := MergedRecord{
			CountyYear:                 eco.CountyYear,
			TotalEmployedPopulation:    eco.TotalEmployedPopulation,
			TotalLaborForce:            eco.TotalLaborForce,
			ElementarySchoolPopulation: edu.ElementarySchoolPopulation,
			MiddleSchoolPopulation:     edu.MiddleSchoolPopulation,
			HighSchoolPopulation:       edu.HighSchoolPopulation,
			TotalHousingUnits:          hou.TotalHousingUnits,
			OccupiedHousingUnits:       hou.OccupiedHousingUnits,
			MonthlyOpenings:            job.MonthlyOpenings,
		}
		if sch, ok := schoolByKey[eco.CountyYear]; ok {
			rec.PublicSchoolStudents = sch.PublicSchoolStudents
			rec.PublicSchoolTeachers = sch.PublicSchoolTeachers
			rec.StudentTeacherRatio = sch.StudentTeacherRatio
			matchedSchool[eco.CountyYear] = true
		} else {
			rec.PublicSchoolStudents = math.NaN()
			rec.PublicSchoolTeachers = math.NaN()
			rec.StudentTeacherRatio = math.NaN()
		}
		merged = append(merged, rec)
	}

	// Right side of the outer join: school rows with no base row.
	for _, sch := range in.School {
		if matchedSchool[sch.CountyYear] {
			continue
		}
		nan := math.NaN()
		rec := MergedRecord{
			CountyYear:                 sch.CountyYear,
			TotalEmployedPopulation:    nan,
			TotalLaborForce:            nan,
			ElementarySchoolPopulation: nan,
			MiddleSchoolPopulation:     nan,
			HighSchoolPopulation:       nan,
			TotalHousingUnits:          nan,
			OccupiedHousingUnits:       nan,
			PublicSchoolStudents:       sch.PublicSchoolStudents,
			PublicSchoolTeachers:       sch.PublicSchoolTeachers,
			StudentTeacherRatio:        sch.StudentTeacherRatio,
		}
		for i := range rec.MonthlyOpenings {
			rec.MonthlyOpenings[i] = nan
		}
		merged = append(merged, rec)
	}

	zeroSchoolOutsideBaseYear(merged)
	return merged
}

// zeroSchoolOutsideBaseYear zeroes school columns for years without a school
// source, so historical rows read "no school data" rather than NaN.
func zeroSchoolOutsideBaseYear(rows []MergedRecord) {
	for i := range rows {
		if rows[i].Year == BaseYear {
			continue
		}
		rows[i].PublicSchoolStudents = 0
		rows[i].PublicSchoolTeachers = 0
		rows[i].StudentTeacherRatio = 0
	}
}
