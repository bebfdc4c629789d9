package domain

import (
	"fmt"
	"strings"
)

// NormalizeCountyFIPS validates a county FIPS code and zero-pads it to five
// digits ("1001" → "01001"). Use at external boundaries such as query
// parameters, where a malformed code should be rejected outright.
func NormalizeCountyFIPS(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("county FIPS is empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("county FIPS %q contains non-digit characters", raw)
		}
	}
	if len(s) > 5 {
		return "", fmt.Errorf("county FIPS %q is longer than 5 digits", raw)
	}
	return padLeft(s, 5), nil
}

// PadCountyFIPS zero-pads a county FIPS code to five digits without
// validating it. Used at read boundaries where a malformed code should flow
// through (and fail to join) rather than abort a load.
func PadCountyFIPS(raw string) string { return padLeft(strings.TrimSpace(raw), 5) }

// PadStateFIPS zero-pads a state FIPS code to two digits.
func PadStateFIPS(raw string) string { return padLeft(strings.TrimSpace(raw), 2) }

// PadCountyCode zero-pads a county code to three digits.
func PadCountyCode(raw string) string { return padLeft(strings.TrimSpace(raw), 3) }

// JoinFIPS builds a five-digit county FIPS from state and county parts.
func JoinFIPS(state, county string) string {
	return padLeft(PadStateFIPS(state)+PadCountyCode(county), 5)
}

func padLeft(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}
