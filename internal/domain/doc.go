// Package domain models daily city weather records and the rollups derived
// from them.
//
// # Data Source
//
// Raw records come from the QWeather v7 API (https://dev.qweather.com/). The
// collector writes one small CSV file per city per date into the raw
// directory; the Daily Table Builder treats that directory as append-only
// input and never modifies it.
//
// # Raw Record Conventions
//
// Columns (header row required, order free):
//
//	city_id, date, temp_min, temp_max, temp_avg, precipitation,
//	wind_speed, humidity, condition, source, collected_at
//
// Dates are "YYYY-MM-DD" in the city's local calendar. Temperatures are °C,
// precipitation mm, wind km/h, humidity percent. An empty numeric cell means
// "not reported" and is kept as a nil pointer, never as zero. When temp_avg
// is empty but both extremes are present, the midpoint is used.
//
// Source is "historical" (observed) or "forecast"; an empty cell means
// historical. collected_at is RFC 3339; when empty, the file modification time
// is used. On duplicate (city, date) the most recently collected row wins.
//
// Condition codes:
//
//	QWeather icon codes, e.g. "100" clear, "101" cloudy, "104" overcast,
//	"305" light rain, "400" light snow. They are treated as opaque
//	categorical strings; the dominant condition of a bucket is the most
//	frequent code, ties resolved by the lexicographically smallest code.
//
// # Reference Data
//
// The city table maps city_id to name, province, and coordinates. Province
// is never inferred from free text: a city missing from the table has no
// province, and provincial aggregation refuses to run until it is mapped
// (see [MappingError]).
//
// # Rollups
//
//	WeatherRecord     one city, one date
//	MonthlySummary    one city, one year-month
//	YearlySummary     one city, one year, re-derived from monthly rows only
//	ProvincialSummary one province, one period
//	StatisticsSummary one period, across cities
//	ComfortRanking    one period, cities ordered by comfort score
//
// Every rollup is recomputed in full on each run and written by atomic
// replace; no row is ever upserted in place.
package domain
