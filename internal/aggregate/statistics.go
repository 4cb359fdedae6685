package aggregate

import (
	"sort"

	"github.com/couchcryptid/city-weather-etl/internal/domain"
)

// StatisticsOptions configures the statistics rollup.
type StatisticsOptions struct {
	// TopK is how many leaders and laggards to report per ranking.
	TopK int
}

// Statistics computes cross-city descriptive statistics per period: the
// distribution of city mean temperatures and the top-K/bottom-K cities by
// temperature and precipitation. Fewer cities than K yields all of them.
// Output is ordered by period.
func Statistics(obs []Observation, opts StatisticsOptions) []domain.StatisticsSummary {
	groups := groupByPeriod(obs)
	out := make([]domain.StatisticsSummary, 0, len(groups))
	for _, period := range sortedKeys(groups) {
		out = append(out, summarizePeriod(period, groups[period], opts.TopK))
	}
	return out
}

func summarizePeriod(period string, obs []Observation, k int) domain.StatisticsSummary {
	s := domain.StatisticsSummary{
		Period:    period,
		CityCount: len(obs),
	}
	if len(obs) > 0 {
		s.Granularity = obs[0].Granularity
	}

	var withTemp []Observation
	for _, o := range obs {
		if o.TempAvg != nil {
			withTemp = append(withTemp, o)
		}
	}

	if len(withTemp) > 0 {
		temps := make([]float64, len(withTemp))
		for i, o := range withTemp {
			temps[i] = *o.TempAvg
		}
		sort.Float64s(temps)

		s.TempMin = ptr(temps[0])
		s.TempMax = ptr(temps[len(temps)-1])
		s.TempMean = ptr(mean(temps))
		s.TempMedian = ptr(percentile(temps, 0.5))
		s.TempP10 = ptr(percentile(temps, 0.10))
		s.TempP25 = ptr(percentile(temps, 0.25))
		s.TempP75 = ptr(percentile(temps, 0.75))
		s.TempP90 = ptr(percentile(temps, 0.90))

		warmest := rankBy(withTemp, func(o Observation) float64 { return *o.TempAvg }, true)
		coldest := rankBy(withTemp, func(o Observation) float64 { return *o.TempAvg }, false)
		s.WarmestCity = warmest[0]
		s.ColdestCity = coldest[0]
		s.WarmestTopK = head(warmest, k)
		s.ColdestTopK = head(coldest, k)
	}

	if len(obs) > 0 {
		wettest := rankBy(obs, func(o Observation) float64 { return o.Precipitation }, true)
		driest := rankBy(obs, func(o Observation) float64 { return o.Precipitation }, false)
		s.WettestCity = wettest[0]
		s.DriestCity = driest[0]
		s.WettestTopK = head(wettest, k)
		s.DriestTopK = head(driest, k)
	}

	return s
}

// rankBy orders distinct city IDs by value, ties broken by city ID ascending.
func rankBy(obs []Observation, value func(Observation) float64, desc bool) []string {
	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, vj := value(sorted[i]), value(sorted[j])
		if vi != vj {
			if desc {
				return vi > vj
			}
			return vi < vj
		}
		return sorted[i].CityID < sorted[j].CityID
	})

	ids := make([]string, 0, len(sorted))
	seen := make(map[string]bool, len(sorted))
	for _, o := range sorted {
		if seen[o.CityID] {
			continue
		}
		seen[o.CityID] = true
		ids = append(ids, o.CityID)
	}
	return ids
}

// head copies the first k ids; a negative k yields none.
func head(ids []string, k int) []string {
	k = max(k, 0)
	if k < len(ids) {
		ids = ids[:k]
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
