package aggregate

import (
	"testing"

	"github.com/couchcryptid/city-weather-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthly_BasicAggregates(t *testing.T) {
	records := []domain.WeatherRecord{
		day(t, "a", "2024-03-03", 30),
		day(t, "a", "2024-03-01", 10),
		day(t, "a", "2024-03-02", 20),
	}

	out := Monthly(records, false)

	require.Len(t, out, 1)
	m := out[0]
	assert.Equal(t, "a", m.CityID)
	assert.Equal(t, 2024, m.Year)
	assert.Equal(t, 3, m.Month)
	assert.Equal(t, 10.0, *m.TempMin)
	assert.Equal(t, 30.0, *m.TempMax)
	assert.Equal(t, 20.0, *m.TempAvg)
	assert.Equal(t, 3, m.DayCount)
	assert.Equal(t, 0, m.MissingTempDays)
	assert.Equal(t, "2024-03", m.Period())
	assert.LessOrEqual(t, m.DayCount, domain.DaysIn(m.Year, m.Month))
}

func TestMonthly_MissingTemperatureExcludedFromMean(t *testing.T) {
	missing := day(t, "a", "2024-03-03", 0)
	missing.TempMin, missing.TempMax, missing.TempAvg = nil, nil, nil

	out := Monthly([]domain.WeatherRecord{
		day(t, "a", "2024-03-01", 10),
		day(t, "a", "2024-03-02", 20),
		missing,
	}, false)

	require.Len(t, out, 1)
	assert.Equal(t, 15.0, *out[0].TempAvg)
	assert.Equal(t, 3, out[0].DayCount)
	assert.Equal(t, 1, out[0].MissingTempDays)
	assert.Equal(t, 2, out[0].TempDays())
}

func TestMonthly_AllTemperaturesMissing(t *testing.T) {
	missing := day(t, "a", "2024-03-01", 0)
	missing.TempMin, missing.TempMax, missing.TempAvg = nil, nil, nil

	out := Monthly([]domain.WeatherRecord{missing}, false)

	require.Len(t, out, 1)
	assert.Nil(t, out[0].TempAvg)
	assert.Nil(t, out[0].TempMin)
	assert.Equal(t, 1, out[0].MissingTempDays)
}

func TestMonthly_SumsAndDominantCondition(t *testing.T) {
	d1 := day(t, "a", "2024-03-01", 10)
	d1.Precipitation, d1.Condition, d1.Humidity = f(1.5), "305", f(80)
	d2 := day(t, "a", "2024-03-02", 10)
	d2.Precipitation, d2.Condition, d2.Humidity = f(2.5), "101", f(60)
	d3 := day(t, "a", "2024-03-03", 10)
	d3.Precipitation, d3.Condition = nil, "305"
	d4 := day(t, "a", "2024-03-04", 10)
	d4.Condition = "101"

	out := Monthly([]domain.WeatherRecord{d1, d2, d3, d4}, false)

	require.Len(t, out, 1)
	assert.InDelta(t, 4.0, out[0].Precipitation, 1e-9)
	assert.Equal(t, 70.0, *out[0].Humidity)
	assert.Equal(t, "101", out[0].DominantCondition, "tie resolves to the smallest code")
}

func TestMonthly_ForecastFilter(t *testing.T) {
	fc := day(t, "a", "2024-04-01", 25)
	fc.Source = domain.SourceForecast
	records := []domain.WeatherRecord{day(t, "a", "2024-03-01", 10), fc}

	out := Monthly(records, false)
	require.Len(t, out, 1, "a forecast-only month is omitted, not emitted empty")
	assert.Equal(t, 3, out[0].Month)

	out = Monthly(records, true)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[1].ForecastDays)
}

func TestMonthly_SortedOutput(t *testing.T) {
	out := Monthly([]domain.WeatherRecord{
		day(t, "b", "2024-01-01", 1),
		day(t, "a", "2024-02-01", 1),
		day(t, "a", "2023-12-01", 1),
		day(t, "a", "2024-01-15", 1),
	}, false)

	var got []string
	for _, m := range out {
		got = append(got, m.CityID+" "+m.Period())
	}
	assert.Equal(t, []string{"a 2023-12", "a 2024-01", "a 2024-02", "b 2024-01"}, got)
}
