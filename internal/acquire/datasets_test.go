package acquire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariablesForYear(t *testing.T) {
	housing := CensusDatasets[0]
	require.Equal(t, "housing", housing.Name)

	t.Run("early vintage set", func(t *testing.T) {
		vars, err := housing.variablesFor(2014)
		require.NoError(t, err)
		assert.Equal(t, []string{"NAME", "DP04_0001E", "DP04_0044E", "DP04_0088E", "DP04_0132E"}, vars)
	})

	t.Run("renumbered vintage set", func(t *testing.T) {
		vars, err := housing.variablesFor(2015)
		require.NoError(t, err)
		assert.Equal(t, []string{"NAME", "DP04_0001E", "DP04_0002E", "DP04_0089E", "DP04_0134E"}, vars)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := housing.variablesFor(2009)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2009")
	})
}

func TestEducationVariableCount(t *testing.T) {
	var education CensusDataset
	for _, ds := range CensusDatasets {
		if ds.Name == "education" {
			education = ds
		}
	}
	require.NotEmpty(t, education.Name)

	vars, err := education.variablesFor(2023)
	require.NoError(t, err)
	assert.Len(t, vars, 25)
	assert.Equal(t, "NAME", vars[0])
	assert.Contains(t, vars, "B01001_030E")
}

func TestYearRange(t *testing.T) {
	r := yearRange{2021, 2023}
	assert.Equal(t, []int{2021, 2022, 2023}, r.years())
	assert.True(t, r.contains(2021))
	assert.True(t, r.contains(2023))
	assert.False(t, r.contains(2020))
}

func TestExcludedStates(t *testing.T) {
	for _, fips := range []string{"11", "72", "15", "02", "78"} {
		assert.True(t, ExcludedStates[fips], fips)
	}
	assert.False(t, ExcludedStates["01"])
}
