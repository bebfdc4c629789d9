// Package domain models county-level socioeconomic data and the 2065
// climate-migration projection math.
//
// # Keys and Identifiers
//
// Counties are identified by 5-digit FIPS codes: a 2-digit state FIPS plus a
// 3-digit county code, zero-padded ("1001" → "01001"). Cleaned tables join on
// the full CountyYear key (county FIPS, state, county, name, population,
// year). Every cleaned table carries the same census population join, which
// is why population participates in the key; rows disagreeing on any key
// component silently fail to join.
//
// # Scenarios
//
// Projections follow the regional 2065 population shares of Qin Fan et al.
// (Table 5), apportioned to counties by their share of their climate region's
// 2010 population:
//
//	Original  2023 values, unscaled
//	S3        2065 without additional climate migration
//	S5a       50% of the S3→S5 climate-migration effect
//	S5b       the full effect (Scenario 5 as published)
//	S5c       double the effect
//
// The national 2065 projection is 366,207,000. Year stays 2023 in projected
// rows: every non-population column is a scaled 2023 observation, not a
// forecast of 2065 conditions.
//
// # Missing Values
//
// Missing numeric observations travel as NaN, never zero. School columns are
// NaN for 2023 counties without a school source and zero for all other years,
// where no school source exists at all. NaN values are excluded from cohort
// statistics, produce NaN z-scores, and stay out of the composite indices via
// the students > 0 filter. In CSV form NaN round-trips as an empty cell.
//
// # Standardization
//
// Per-scenario z-scores divide by the sample standard deviation; the
// composite index stage standardizes pooled across all scenarios using the
// population standard deviation. The two conventions are deliberate and must
// not be unified: index values are comparable between scenarios only because
// the pooled fit sees every scenario at once.
package domain
