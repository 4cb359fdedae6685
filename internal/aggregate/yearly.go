package aggregate

import (
	"sort"

	"github.com/couchcryptid/city-weather-etl/internal/domain"
)

const monthsPerYear = 12

type yearKey struct {
	city string
	year int
}

type yearAcc struct {
	province   string
	tempMin    *float64
	tempMax    *float64
	tempAvg    meanAcc
	precip     float64
	humidity   meanAcc
	conditions domain.ConditionCounts
	days       int
	months     map[int]bool
}

func newYearAcc() *yearAcc {
	return &yearAcc{conditions: domain.ConditionCounts{}, months: map[int]bool{}}
}

// addMonth folds one monthly row in. Extremes come from the monthly extremes,
// never from daily rows.
func (a *yearAcc) addMonth(m domain.MonthlySummary) {
	if a.province == "" {
		a.province = m.Province
	}
	a.tempMin = minOf(a.tempMin, m.TempMin)
	a.tempMax = maxOf(a.tempMax, m.TempMax)
	a.tempAvg.addWeighted(m.TempAvg, float64(m.TempDays()))
	a.precip += m.Precipitation
	a.humidity.addWeighted(m.Humidity, float64(m.DayCount))
	a.conditions.Add(m.DominantCondition)
	a.days += m.DayCount
	a.months[m.Month] = true
}

// Yearly groups monthly rows by (city, year). TempAvg is the mean of monthly
// means weighted by each month's temperature days. Years with fewer than
// twelve contributing months are marked incomplete.
func Yearly(months []domain.MonthlySummary) []domain.YearlySummary {
	sorted := sortedMonths(months)

	groups := make(map[yearKey]*yearAcc)
	for _, m := range sorted {
		k := yearKey{city: m.CityID, year: m.Year}
		acc, ok := groups[k]
		if !ok {
			acc = newYearAcc()
			groups[k] = acc
		}
		acc.addMonth(m)
	}

	keys := make([]yearKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].city != keys[j].city {
			return keys[i].city < keys[j].city
		}
		return keys[i].year < keys[j].year
	})

	out := make([]domain.YearlySummary, 0, len(keys))
	for _, k := range keys {
		acc := groups[k]
		out = append(out, domain.YearlySummary{
			CityID:            k.city,
			Province:          acc.province,
			Year:              k.year,
			TempMin:           acc.tempMin,
			TempMax:           acc.tempMax,
			TempAvg:           acc.tempAvg.value(),
			Precipitation:     acc.precip,
			Humidity:          acc.humidity.value(),
			DominantCondition: acc.conditions.Dominant(),
			DayCount:          acc.days,
			MonthCount:        len(acc.months),
			Complete:          len(acc.months) >= monthsPerYear,
		})
	}
	return out
}

func sortedMonths(months []domain.MonthlySummary) []domain.MonthlySummary {
	sorted := make([]domain.MonthlySummary, len(months))
	copy(sorted, months)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.CityID != b.CityID {
			return a.CityID < b.CityID
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})
	return sorted
}
