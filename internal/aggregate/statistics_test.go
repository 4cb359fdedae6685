package aggregate

import (
	"testing"

	"github.com/couchcryptid/city-weather-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(city, period string, temp, precip float64) Observation {
	return Observation{
		CityID:        city,
		Period:        period,
		Granularity:   domain.GranularityMonthly,
		TempAvg:       f(temp),
		Humidity:      f(55),
		Precipitation: precip,
		DayCount:      30,
	}
}

func TestStatistics_TopKLeadersAndLaggards(t *testing.T) {
	input := []Observation{
		obs("a", "2024-07", 10, 50),
		obs("b", "2024-07", 30, 10),
		obs("c", "2024-07", 20, 40),
		obs("d", "2024-07", 25, 0),
		obs("e", "2024-07", 15, 90),
	}

	out := Statistics(input, StatisticsOptions{TopK: 2})

	require.Len(t, out, 1)
	s := out[0]
	assert.Equal(t, 5, s.CityCount)
	assert.Equal(t, []string{"b", "d"}, s.WarmestTopK)
	assert.Equal(t, []string{"a", "e"}, s.ColdestTopK)
	assert.Equal(t, []string{"e", "a"}, s.WettestTopK)
	assert.Equal(t, []string{"d", "b"}, s.DriestTopK)
	assert.Equal(t, "b", s.WarmestCity)
	assert.Equal(t, "a", s.ColdestCity)
	assert.Equal(t, "e", s.WettestCity)
	assert.Equal(t, "d", s.DriestCity)

	assert.Equal(t, 10.0, *s.TempMin)
	assert.Equal(t, 30.0, *s.TempMax)
	assert.Equal(t, 20.0, *s.TempMean)
	assert.Equal(t, 20.0, *s.TempMedian)
	assert.InDelta(t, 12.0, *s.TempP10, 1e-9)
	assert.InDelta(t, 15.0, *s.TempP25, 1e-9)
	assert.InDelta(t, 25.0, *s.TempP75, 1e-9)
	assert.InDelta(t, 28.0, *s.TempP90, 1e-9)
}

func TestStatistics_FewerCitiesThanK(t *testing.T) {
	out := Statistics([]Observation{
		obs("a", "2024-07", 10, 5),
		obs("b", "2024-07", 20, 5),
	}, StatisticsOptions{TopK: 5})

	require.Len(t, out, 1)
	assert.Equal(t, []string{"b", "a"}, out[0].WarmestTopK)
	assert.Equal(t, []string{"a", "b"}, out[0].ColdestTopK)
	assert.Equal(t, []string{"a", "b"}, out[0].WettestTopK, "ties break by city id")
	assert.Equal(t, []string{"a", "b"}, out[0].DriestTopK)
}

func TestStatistics_NonPositiveTopK(t *testing.T) {
	input := []Observation{
		obs("a", "2024-07", 10, 5),
		obs("b", "2024-07", 20, 1),
	}
	for _, k := range []int{0, -1} {
		var out []domain.StatisticsSummary
		require.NotPanics(t, func() {
			out = Statistics(input, StatisticsOptions{TopK: k})
		})
		require.Len(t, out, 1)
		assert.Empty(t, out[0].WarmestTopK)
		assert.Empty(t, out[0].ColdestTopK)
		assert.Empty(t, out[0].WettestTopK)
		assert.Empty(t, out[0].DriestTopK)
		assert.Equal(t, "b", out[0].WarmestCity)
	}
}

func TestStatistics_SkipsMissingTemperatures(t *testing.T) {
	noTemp := obs("c", "2024-07", 0, 100)
	noTemp.TempAvg = nil

	out := Statistics([]Observation{
		obs("a", "2024-07", 10, 5),
		noTemp,
	}, StatisticsOptions{TopK: 3})

	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].CityCount)
	assert.Equal(t, []string{"a"}, out[0].WarmestTopK)
	assert.Equal(t, 10.0, *out[0].TempMedian)
	assert.Equal(t, "c", out[0].WettestCity)
}

func TestStatistics_PerPeriodOrdered(t *testing.T) {
	out := Statistics([]Observation{
		obs("a", "2024-08", 10, 5),
		obs("a", "2024-07", 20, 5),
	}, StatisticsOptions{TopK: 1})

	require.Len(t, out, 2)
	assert.Equal(t, "2024-07", out[0].Period)
	assert.Equal(t, "2024-08", out[1].Period)
}

func TestPercentile(t *testing.T) {
	assert.Equal(t, 7.0, percentile([]float64{7}, 0.9))
	assert.Equal(t, 2.5, percentile([]float64{1, 2, 3, 4}, 0.5))
	assert.Equal(t, 4.0, percentile([]float64{1, 2, 3, 4}, 1))
}
