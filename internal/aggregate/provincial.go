package aggregate

import (
	"errors"
	"sort"

	"github.com/couchcryptid/city-weather-etl/internal/domain"
)

type provinceKey struct {
	province string
	period   string
}

// Provincial aggregates city observations per (province, period). Provinces
// come from the reference table only; any city without a mapping aborts with
// a *domain.MappingError. TempAvg is the unweighted mean of the contributing
// city means. Output is ordered by (province, period).
func Provincial(months []domain.MonthlySummary, ref *domain.Reference, g domain.Granularity) ([]domain.ProvincialSummary, error) {
	if ref == nil {
		return nil, errors.New("provincial aggregation needs a reference table")
	}

	ids := make([]string, 0, len(months))
	for _, m := range months {
		ids = append(ids, m.CityID)
	}
	if err := ref.CheckProvinces(ids); err != nil {
		return nil, err
	}

	groups := make(map[provinceKey][]Observation)
	for _, o := range Observations(months, g) {
		province, _ := ref.Province(o.CityID)
		k := provinceKey{province: province, period: o.Period}
		groups[k] = append(groups[k], o)
	}

	keys := make([]provinceKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].province != keys[j].province {
			return keys[i].province < keys[j].province
		}
		return keys[i].period < keys[j].period
	})

	out := make([]domain.ProvincialSummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, summarizeProvince(k, groups[k], g))
	}
	return out, nil
}

func summarizeProvince(k provinceKey, obs []Observation, g domain.Granularity) domain.ProvincialSummary {
	var (
		tempMin, tempMax *float64
		tempAvg          meanAcc
		humidity         meanAcc
		precip           float64
		days             int
		conditions       = domain.ConditionCounts{}
		cities           = map[string]bool{}
	)
	for _, o := range obs {
		tempMin = minOf(tempMin, o.TempMin)
		tempMax = maxOf(tempMax, o.TempMax)
		tempAvg.add(o.TempAvg)
		humidity.add(o.Humidity)
		precip += o.Precipitation
		days += o.DayCount
		conditions.Add(o.DominantCondition)
		cities[o.CityID] = true
	}

	s := domain.ProvincialSummary{
		Province:           k.province,
		Period:             k.period,
		Granularity:        g,
		TempMin:            tempMin,
		TempMax:            tempMax,
		TempAvg:            tempAvg.value(),
		PrecipitationTotal: precip,
		Humidity:           humidity.value(),
		DominantCondition:  conditions.Dominant(),
		DayCount:           days,
		CityCount:          len(cities),
	}
	if s.CityCount > 0 {
		s.PrecipitationAvg = precip / float64(s.CityCount)
	}
	return s
}
