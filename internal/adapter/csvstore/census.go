package csvstore

import (
	"fmt"

	"climate-migration-pipeline/internal/domain"
)

// populationVariable is the ACS total-population estimate column.
const populationVariable = "b01003_001e"

// ReadCensusPopulation loads a raw yearly census population file as the API
// wrote it: NAME, B01003_001E, state, county.
func ReadCensusPopulation(path string) ([]domain.CensusPopulation, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require(colName, populationVariable, colState, colCounty); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	name := t.Index(colName)
	pop := t.Index(populationVariable)
	state := t.Index(colState)
	county := t.Index(colCounty)

	out := make([]domain.CensusPopulation, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, domain.CensusPopulation{
			State:      domain.PadStateFIPS(row[state]),
			County:     domain.PadCountyCode(row[county]),
			Name:       row[name],
			Population: ParseFloat(row[pop]),
		})
	}
	return out, nil
}

// ReadStateNames loads the state metadata file into a FIPS→name map.
func ReadStateNames(path string) (map[string]string, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require(colName, colState); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	name := t.Index(colName)
	state := t.Index(colState)

	out := make(map[string]string, len(t.Rows))
	for _, row := range t.Rows {
		out[domain.PadStateFIPS(row[state])] = row[name]
	}
	return out, nil
}
