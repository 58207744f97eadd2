// Package domain models wetland sites, their weather snapshots, and the
// threshold rules that turn a snapshot into risk ratings.
//
// # Data Source
//
// Weather comes from the Open-Meteo forecast API. A snapshot carries the
// current temperature plus the first element of the daily series
// (precipitation sum, max and min temperature). Open-Meteo resolves the
// timezone from the coordinates, so "today" is the site's local day.
//
// # Risk Rules
//
// Stress and migration share one set of thresholds:
//
//	temp > 40°C or precipitation < 5mm   → High
//	temp > 35°C or precipitation < 10mm  → Moderate
//	otherwise                            → Low
//
// Either condition alone is enough to escalate. A 36°C day with 20mm of rain
// is Moderate on temperature alone.
//
// Poaching combines site context with the calendar:
//
//	near human activity and Friday/Saturday → High
//	near human activity                      → Moderate
//	otherwise                                → Low
//
// Friday and Saturday are the regional weekend. The weekday is evaluated in
// the site's timezone.
//
// Each level maps to a fixed headline and recommendation per category. All
// classification is pure: the caller supplies the evaluation time, and the
// same inputs always produce the same [Assessment].
package domain
