package aggregate

import (
	"testing"

	"github.com/couchcryptid/city-weather-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearly_FullYear(t *testing.T) {
	var months []domain.MonthlySummary
	for m := 1; m <= 12; m++ {
		months = append(months, month("a", 2023, m, float64(m), float64(m)+10, 1, 30))
	}
	months[6].TempMax = f(40) // July

	out := Yearly(months)

	require.Len(t, out, 1)
	y := out[0]
	assert.Equal(t, "2023", y.Period())
	assert.True(t, y.Complete)
	assert.Equal(t, 12, y.MonthCount)
	assert.Equal(t, 40.0, *y.TempMax, "yearly max is the max of the monthly maxima")
	assert.Equal(t, -4.0, *y.TempMin)
	assert.InDelta(t, 6.5, *y.TempAvg, 1e-9)
	assert.InDelta(t, 12.0, y.Precipitation, 1e-9)
	assert.Equal(t, 360, y.DayCount)
}

func TestYearly_PartialYearIsIncomplete(t *testing.T) {
	var months []domain.MonthlySummary
	for m := 1; m <= 6; m++ {
		months = append(months, month("a", 2024, m, 10, 20, 0, 28))
	}

	out := Yearly(months)

	require.Len(t, out, 1)
	assert.False(t, out[0].Complete)
	assert.Equal(t, 6, out[0].MonthCount)
}

func TestYearly_WeightsMeansByTemperatureDays(t *testing.T) {
	jan := month("a", 2024, 1, 10, 15, 0, 30)
	feb := month("a", 2024, 2, 20, 25, 0, 10)

	out := Yearly([]domain.MonthlySummary{feb, jan})

	require.Len(t, out, 1)
	assert.InDelta(t, 12.5, *out[0].TempAvg, 1e-9)
}

func TestYearly_SeparatesCitiesAndYears(t *testing.T) {
	out := Yearly([]domain.MonthlySummary{
		month("b", 2024, 1, 1, 1, 0, 1),
		month("a", 2024, 1, 1, 1, 0, 1),
		month("a", 2023, 12, 1, 1, 0, 1),
	})

	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].CityID)
	assert.Equal(t, 2023, out[0].Year)
	assert.Equal(t, "a", out[1].CityID)
	assert.Equal(t, 2024, out[1].Year)
	assert.Equal(t, "b", out[2].CityID)
}
