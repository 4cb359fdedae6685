package aggregate

import (
	"sort"

	"github.com/couchcryptid/city-weather-etl/internal/domain"
)

type monthKey struct {
	city  string
	year  int
	month int
}

type monthAcc struct {
	province   string
	tempMin    *float64
	tempMax    *float64
	tempAvg    meanAcc
	missing    int
	precip     float64
	humidity   meanAcc
	wind       meanAcc
	conditions domain.ConditionCounts
	days       int
	forecast   int
}

// Monthly groups daily rows by (city, year, month). Forecast rows only
// contribute when includeForecast is set. Days without a temperature count
// toward DayCount and MissingTempDays but not toward the means. Output is
// ordered by (city, year, month).
func Monthly(records []domain.WeatherRecord, includeForecast bool) []domain.MonthlySummary {
	sorted := make([]domain.WeatherRecord, len(records))
	copy(sorted, records)
	sortRecords(sorted)

	groups := make(map[monthKey]*monthAcc)
	for _, r := range sorted {
		if r.Source == domain.SourceForecast && !includeForecast {
			continue
		}
		k := monthKey{city: r.CityID, year: r.Date.Year(), month: int(r.Date.Month())}
		acc, ok := groups[k]
		if !ok {
			acc = &monthAcc{province: r.Province, conditions: domain.ConditionCounts{}}
			groups[k] = acc
		}

		acc.days++
		if r.Source == domain.SourceForecast {
			acc.forecast++
		}
		acc.tempMin = minOf(acc.tempMin, r.TempMin)
		acc.tempMax = maxOf(acc.tempMax, r.TempMax)
		if r.HasTemperature() {
			acc.tempAvg.add(r.TempAvg)
		} else {
			acc.missing++
		}
		if r.Precipitation != nil {
			acc.precip += *r.Precipitation
		}
		acc.humidity.add(r.Humidity)
		acc.wind.add(r.WindSpeed)
		acc.conditions.Add(r.Condition)
	}

	keys := make([]monthKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.city != b.city {
			return a.city < b.city
		}
		if a.year != b.year {
			return a.year < b.year
		}
		return a.month < b.month
	})

	out := make([]domain.MonthlySummary, 0, len(keys))
	for _, k := range keys {
		acc := groups[k]
		out = append(out, domain.MonthlySummary{
			CityID:            k.city,
			Province:          acc.province,
			Year:              k.year,
			Month:             k.month,
			TempMin:           acc.tempMin,
			TempMax:           acc.tempMax,
			TempAvg:           acc.tempAvg.value(),
			MissingTempDays:   acc.missing,
			Precipitation:     acc.precip,
			Humidity:          acc.humidity.value(),
			WindSpeed:         acc.wind.value(),
			DominantCondition: acc.conditions.Dominant(),
			DayCount:          acc.days,
			ForecastDays:      acc.forecast,
		})
	}
	return out
}
