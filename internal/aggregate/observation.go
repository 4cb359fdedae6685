package aggregate

import "github.com/couchcryptid/city-weather-etl/internal/domain"

// Observation is one city over one period, the common input of the
// provincial, statistics, and comfort rollups.
type Observation struct {
	CityID      string
	Province    string
	Period      string
	Granularity domain.Granularity

	TempMin *float64
	TempMax *float64
	TempAvg *float64

	Precipitation     float64
	Humidity          *float64
	DominantCondition string
	DayCount          int
}

// ObservationsFromMonthly turns monthly rows into monthly observations.
func ObservationsFromMonthly(months []domain.MonthlySummary) []Observation {
	out := make([]Observation, 0, len(months))
	for _, m := range sortedMonths(months) {
		out = append(out, Observation{
			CityID:            m.CityID,
			Province:          m.Province,
			Period:            m.Period(),
			Granularity:       domain.GranularityMonthly,
			TempMin:           m.TempMin,
			TempMax:           m.TempMax,
			TempAvg:           m.TempAvg,
			Precipitation:     m.Precipitation,
			Humidity:          m.Humidity,
			DominantCondition: m.DominantCondition,
			DayCount:          m.DayCount,
		})
	}
	return out
}

// ObservationsFromYearly turns yearly rows into yearly observations.
func ObservationsFromYearly(years []domain.YearlySummary) []Observation {
	out := make([]Observation, 0, len(years))
	for _, y := range years {
		out = append(out, Observation{
			CityID:            y.CityID,
			Province:          y.Province,
			Period:            y.Period(),
			Granularity:       domain.GranularityYearly,
			TempMin:           y.TempMin,
			TempMax:           y.TempMax,
			TempAvg:           y.TempAvg,
			Precipitation:     y.Precipitation,
			Humidity:          y.Humidity,
			DominantCondition: y.DominantCondition,
			DayCount:          y.DayCount,
		})
	}
	return out
}

// Observations selects the observation source for a granularity. Yearly
// observations are derived from the monthly rows with the yearly rule.
func Observations(months []domain.MonthlySummary, g domain.Granularity) []Observation {
	if g == domain.GranularityYearly {
		return ObservationsFromYearly(Yearly(months))
	}
	return ObservationsFromMonthly(months)
}

// groupByPeriod buckets observations by period, preserving input order.
func groupByPeriod(obs []Observation) map[string][]Observation {
	groups := make(map[string][]Observation)
	for _, o := range obs {
		groups[o.Period] = append(groups[o.Period], o)
	}
	return groups
}
