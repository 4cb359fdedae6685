package aggregate

import (
	"sort"

	"github.com/couchcryptid/city-weather-etl/internal/domain"
)

// ComfortScore scores one observation. It reports false when the
// observation has no mean temperature and cannot be scored.
func ComfortScore(o Observation, w domain.ComfortWeights) (float64, bool) {
	if o.TempAvg == nil {
		return 0, false
	}

	score := w.Base
	score -= w.TempWeight * outside(*o.TempAvg, w.IdealTempLow, w.IdealTempHigh)
	if o.Humidity != nil {
		score -= w.HumidityWeight * outside(*o.Humidity, w.IdealHumidityLow, w.IdealHumidityHigh)
	}
	if o.DayCount > 0 {
		score -= w.PrecipWeight * (o.Precipitation / float64(o.DayCount))
	}

	switch {
	case score < 0:
		score = 0
	case score > w.Base:
		score = w.Base
	}
	return score, true
}

// outside returns how far v lies outside [lo, hi], or 0 inside the band.
func outside(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo - v
	case v > hi:
		return v - hi
	default:
		return 0
	}
}

// RankComfort ranks cities per period, highest score first, ties broken by
// city ID ascending. Unscorable observations are skipped. Output is ordered
// by (period, rank).
func RankComfort(obs []Observation, w domain.ComfortWeights) []domain.ComfortRanking {
	groups := groupByPeriod(obs)

	var out []domain.ComfortRanking
	for _, period := range sortedKeys(groups) {
		var ranked []domain.ComfortRanking
		for _, o := range groups[period] {
			score, ok := ComfortScore(o, w)
			if !ok {
				continue
			}
			ranked = append(ranked, domain.ComfortRanking{
				Period:        period,
				Granularity:   o.Granularity,
				CityID:        o.CityID,
				Province:      o.Province,
				Score:         score,
				TempAvg:       o.TempAvg,
				Humidity:      o.Humidity,
				Precipitation: o.Precipitation,
			})
		}

		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Score != ranked[j].Score {
				return ranked[i].Score > ranked[j].Score
			}
			return ranked[i].CityID < ranked[j].CityID
		})
		for i := range ranked {
			ranked[i].Rank = i + 1
		}
		out = append(out, ranked...)
	}
	return out
}
