package domain

import "time"

// CollectWindow is the date range a collector fetches. Dates are inclusive
// and truncated to days.
type CollectWindow struct {
	From time.Time
	To   time.Time
	// Forecast also fetches the short-range forecast for each city.
	Forecast bool
}

// DefaultCollectWindow covers the given number of days of history up to and
// including today, plus the forecast. Explicit ranges skip the forecast.
func DefaultCollectWindow(now time.Time, days int) CollectWindow {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return CollectWindow{
		From:     today.AddDate(0, 0, -days),
		To:       today,
		Forecast: true,
	}
}

// Dates lists every day in the window, oldest first.
func (w CollectWindow) Dates() []time.Time {
	var out []time.Time
	for d := w.From; !d.After(w.To); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// CollectSummary reports what a collection pass fetched.
type CollectSummary struct {
	Cities int
	Failed int
	Rows   int
	Files  int
}
