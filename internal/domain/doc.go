// Package domain models EPA Toxics Release Inventory (TRI) and TCEQ
// point-source emissions data and the pure computations the dashboard runs
// over it: unit normalization, reference joins, grouped aggregation, pivots
// and choropleth banding.
//
// # Data Sources
//
// The TRI "basic download" is published per reporting year and region at
//
//	https://data.epa.gov/efservice/downloads/tri/mv_tri_basic_download/{year}_{region}/csv
//
// where region is a two-letter state code ("TX") or "US". Each row is one
// (facility, chemical, reporting year) combination. The TCEQ STARS export is a
// local or remote CSV of point-source annual emissions already denominated
// in tons.
//
// # TRI Data Conventions
//
// Column headers carry an ordinal prefix that shifts between vintages:
//
//	"48. 5.1 - FUGITIVE AIR"  →  "5.1 - FUGITIVE AIR"
//	"13. LATITUDE"            →  "LATITUDE"
//
// The prefix is stripped by [NormalizeHeader] before columns are looked up.
//
// Air releases are split into fugitive (5.1) and stack (5.2) emissions and
// reported in the unit named by "UNIT OF MEASURE":
//
//	Pounds: total pounds = fugitive + stack
//	Grams:  total pounds = (fugitive + stack) / 453.592 (dioxin-like compounds)
//	Tons:   total pounds = (fugitive + stack) × 2000 (point-source variant)
//
// Tons are always pounds / 2000. Any other label is an [ErrUnknownUnit]; see
// [UnitPolicy] for how such rows are counted.
//
// Chemical names are truncated to 100 characters. County names are upper-cased
// so they join against the county boundary layer's CNTY_NM property.
//
// # Southeast Texas (SETx)
//
// The regional audience is the five counties in [SETxCounties]: Jasper,
// Jefferson, Orange, Hardin and Newton. Pivots are always restricted to them;
// aggregations restrict to them on request.
//
// # Ranking
//
// Group totals are ordered by descending tons with ties broken by group key,
// so output is deterministic. County ranks are dense: equal totals share a rank
// and the next distinct total takes the next integer.
package domain
