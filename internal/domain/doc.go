// Package domain models subdivision-level COVID-19 case data and the rules
// that turn a provider table into analysis-ready daily regional records.
//
// # Data Source
//
// Records originate from the COVID-19 Data Hub (https://covid19datahub.io),
// which publishes one CSV per country containing every administrative level.
// Level 1 rows are national totals, level 2 rows are states or provinces,
// level 3 rows are counties. The pipeline keeps a single level (2 by default)
// and a single inclusive date range.
//
// # Column Vintages
//
// Column names are not stable across provider vintages and mirrors:
//
//	Data Hub v3:  date, administrative_area_level_2, confirmed, deaths, recovered, population
//	JHU daily:    Province_State, Confirmed, Deaths, Recovered, Active
//	Others:       state, cases, total_cases, active_cases, pop
//
// Each logical field therefore carries an ordered alias list and the first
// alias present in the table wins. See [ResolveColumns]. The date, region and
// confirmed fields are required; the rest degrade to fallback rules.
//
// # Derived Fields
//
//	recovered:  source value, missing -> 0; no column -> 0
//	infected:   active when available (missing -> 0), else
//	            confirmed - deaths - recovered (missing -> 0)
//	            either way clamped at 0
//	population: source value, missing -> 1; no column -> 1
//	mobility:   always 1.0, a neutral placeholder since the provider
//	            publishes no mobility index
//
// A population of 1 is the sentinel for "unknown" and keeps per-capita
// ratios finite downstream.
//
// # Missing Values
//
// Numeric cells are parsed with [ParseNumber]. Empty cells, "NA", "NaN",
// infinities and anything unparseable become the missing variant of [Number]
// and are collapsed to a default where they are used. Missing values are
// never errors.
//
// # Aggregate Rows
//
// Some vintages publish national totals inside the subdivision table under
// region names such as "US" or "United States", and unattributed cases under
// "Unknown". These rows are dropped by exact, case-sensitive match against
// [DefaultExcludedRegions].
//
// # Ordering
//
// Output is stably sorted by region (byte-wise) and then date, so identical
// input always produces identical output.
package domain
