package domain

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func key(fips string, year int) CountyYear {
	return CountyYear{
		CountyFIPS: fips,
		State:      fips[:2],
		County:     fips[2:],
		Name:       "County " + fips,
		Population: 1000,
		Year:       year,
	}
}

func mergeInputsFor(keys ...CountyYear) MergeInputs {
	var in MergeInputs
	for _, k := range keys {
		in.Economic = append(in.Economic, EconomicRecord{
			CountyYear: k, TotalEmployedPopulation: 450, TotalLaborForce: 500,
		})
		in.Education = append(in.Education, EducationRecord{
			CountyYear: k, ElementarySchoolPopulation: 50, MiddleSchoolPopulation: 40, HighSchoolPopulation: 30,
		})
		in.Housing = append(in.Housing, HousingRecord{
			CountyYear: k, TotalHousingUnits: 600, OccupiedHousingUnits: 400,
		})
		jobs := JobOpeningsRecord{CountyYear: k}
		for i := range jobs.MonthlyOpenings {
			jobs.MonthlyOpenings[i] = float64(10 + i)
		}
		in.JobOpenings = append(in.JobOpenings, jobs)
	}
	return in
}

func TestMergeDomains(t *testing.T) {
	t.Run("inner join on full key", func(t *testing.T) {
		in := mergeInputsFor(key("01001", 2023), key("01003", 2023))
		in.School = append(in.School, SchoolRecord{
			CountyYear: key("01001", 2023), PublicSchoolStudents: 120, PublicSchoolTeachers: 10, StudentTeacherRatio: 12,
		})

		merged := MergeDomains(in)
		require.Len(t, merged, 2)

		assert.Equal(t, "01001", merged[0].CountyFIPS)
		assert.Equal(t, 450.0, merged[0].TotalEmployedPopulation)
		assert.Equal(t, 50.0, merged[0].ElementarySchoolPopulation)
		assert.Equal(t, 600.0, merged[0].TotalHousingUnits)
		assert.Equal(t, 10.0, merged[0].MonthlyOpenings[0])
		assert.Equal(t, 21.0, merged[0].MonthlyOpenings[11])
		assert.Equal(t, 120.0, merged[0].PublicSchoolStudents)
		assert.Equal(t, 12.0, merged[0].StudentTeacherRatio)
	})

	t.Run("row missing from one domain drops silently", func(t *testing.T) {
		in := mergeInputsFor(key("01001", 2023), key("01003", 2023))
		in.Housing = in.Housing[:1] // drop 01003's housing row

		merged := MergeDomains(in)
		require.Len(t, merged, 1)
		assert.Equal(t, "01001", merged[0].CountyFIPS)
	})

	t.Run("key mismatch on population drops the row", func(t *testing.T) {
		in := mergeInputsFor(key("01001", 2023))
		in.Education[0].Population = 999 // disagrees with the other tables

		merged := MergeDomains(in)
		assert.Empty(t, merged)
	})

	t.Run("base-year county without school data carries NaN", func(t *testing.T) {
		in := mergeInputsFor(key("01001", 2023))

		merged := MergeDomains(in)
		require.Len(t, merged, 1)
		assert.True(t, math.IsNaN(merged[0].PublicSchoolStudents))
		assert.True(t, math.IsNaN(merged[0].PublicSchoolTeachers))
		assert.True(t, math.IsNaN(merged[0].StudentTeacherRatio))
	})

	t.Run("school columns zeroed outside the base year", func(t *testing.T) {
		in := mergeInputsFor(key("01001", 2022))

		merged := MergeDomains(in)
		require.Len(t, merged, 1)
		assert.Equal(t, 0.0, merged[0].PublicSchoolStudents)
		assert.Equal(t, 0.0, merged[0].PublicSchoolTeachers)
		assert.Equal(t, 0.0, merged[0].StudentTeacherRatio)
	})

	t.Run("unmatched school rows append with NaN elsewhere", func(t *testing.T) {
		in := mergeInputsFor(key("01001", 2023))
		in.School = append(in.School, SchoolRecord{
			CountyYear: key("56045", 2023), PublicSchoolStudents: 80, PublicSchoolTeachers: 8, StudentTeacherRatio: 10,
		})

		merged := MergeDomains(in)
		require.Len(t, merged, 2)

		last := merged[1]
		assert.Equal(t, "56045", last.CountyFIPS)
		assert.Equal(t, 80.0, last.PublicSchoolStudents)
		assert.True(t, math.IsNaN(last.TotalEmployedPopulation))
		assert.True(t, math.IsNaN(last.TotalHousingUnits))
		assert.True(t, math.IsNaN(last.MonthlyOpenings[5]))
	})

	t.Run("base rows keep input order", func(t *testing.T) {
		in := mergeInputsFor(key("56045", 2023), key("01001", 2023), key("30031", 2023))

		merged := MergeDomains(in)
		require.Len(t, merged, 3)
		assert.Equal(t, "56045", merged[0].CountyFIPS)
		assert.Equal(t, "01001", merged[1].CountyFIPS)
		assert.Equal(t, "30031", merged[2].CountyFIPS)
	})
}

func TestFilterBaseYear(t *testing.T) {
	in := mergeInputsFor(key("01001", 2022), key("01001", 2023), key("01003", 2023))
	merged := MergeDomains(in)

	filtered := FilterBaseYear(merged)
	require.Len(t, filtered, 2)
	for _, f := range filtered {
		assert.Equal(t, BaseYear, f.Year)
	}
	assert.Equal(t, "01001", filtered[0].CountyFIPS)
	assert.Equal(t, 400.0, filtered[0].OccupiedHousingUnits)
	assert.Equal(t, 500.0, filtered[0].TotalLaborForce)
}
