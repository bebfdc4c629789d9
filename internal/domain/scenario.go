package domain

import "fmt"

// Scenario labels one population-growth assumption for 2065.
type Scenario string

const (
	// ScenarioOriginal is the unscaled base-year row.
	ScenarioOriginal Scenario = "Original"
	// ScenarioS3 is the 2065 projection without additional climate migration.
	ScenarioS3 Scenario = "S3"
	// ScenarioS5A applies half of the S3→S5 climate-migration effect.
	ScenarioS5A Scenario = "S5a"
	// ScenarioS5B applies the full effect (Scenario 5 as published).
	ScenarioS5B Scenario = "S5b"
	// ScenarioS5C doubles the effect.
	ScenarioS5C Scenario = "S5c"
)

// ProjectedScenarios lists the four scaled scenarios in emission order. The
// baseline row precedes them within every county block.
var ProjectedScenarios = []Scenario{ScenarioS3, ScenarioS5B, ScenarioS5A, ScenarioS5C}

// AllScenarios lists every scenario label in output order.
var AllScenarios = []Scenario{ScenarioOriginal, ScenarioS3, ScenarioS5B, ScenarioS5A, ScenarioS5C}

// ParseScenario validates a scenario label read from persisted output.
func ParseScenario(s string) (Scenario, error) {
	switch Scenario(s) {
	case ScenarioOriginal, ScenarioS3, ScenarioS5A, ScenarioS5B, ScenarioS5C:
		return Scenario(s), nil
	}
	return "", fmt.Errorf("unknown scenario %q", s)
}
