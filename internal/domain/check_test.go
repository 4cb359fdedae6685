package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailyRow(city, date string, src Source) WeatherRecord {
	d, _ := time.Parse(DateLayout, date)
	avg := 10.0
	return WeatherRecord{CityID: city, Date: d, TempAvg: &avg, Source: src}
}

func TestCheckDailyTable(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		rows := []WeatherRecord{
			dailyRow("gz", "2024-02-01", SourceHistorical),
			dailyRow("gz", "2024-02-02", SourceForecast),
			dailyRow("sz", "2024-02-01", SourceHistorical),
		}
		assert.NoError(t, CheckDailyTable(rows))
	})

	t.Run("duplicate key", func(t *testing.T) {
		rows := []WeatherRecord{
			dailyRow("gz", "2024-02-01", SourceHistorical),
			dailyRow("sz", "2024-02-01", SourceHistorical),
			dailyRow("gz", "2024-02-01", SourceHistorical),
		}
		err := CheckDailyTable(rows)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, 4, verr.Line)
		assert.Equal(t, "gz|2024-02-01", verr.Value)
		assert.Contains(t, verr.Error(), "duplicate of line 2")
	})

	t.Run("unknown source", func(t *testing.T) {
		err := CheckDailyTable([]WeatherRecord{dailyRow("gz", "2024-02-01", "bogus")})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "source", verr.Field)
		assert.Equal(t, "bogus", verr.Value)
		assert.Equal(t, "line 2: invalid record for city gz: source=\"bogus\": failed oneof historical forecast", verr.Error())
	})

	t.Run("inverted temperatures", func(t *testing.T) {
		r := dailyRow("gz", "2024-02-01", SourceHistorical)
		lo, hi := 20.0, 5.0
		r.TempMin, r.TempMax = &lo, &hi
		err := CheckDailyTable([]WeatherRecord{r})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "temp_min", verr.Field)
	})

	t.Run("missing date", func(t *testing.T) {
		err := CheckDailyTable([]WeatherRecord{{CityID: "gz", Source: SourceHistorical}})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "date", verr.Field)
	})
}

func TestCheckMonthlyTable(t *testing.T) {
	month := func(city string, year, m, days int) MonthlySummary {
		return MonthlySummary{CityID: city, Year: year, Month: m, DayCount: days}
	}

	assert.NoError(t, CheckMonthlyTable([]MonthlySummary{
		month("gz", 2024, 2, 29),
		month("gz", 2024, 3, 1),
	}))

	tests := []struct {
		name  string
		rows  []MonthlySummary
		field string
	}{
		{"day count beyond month", []MonthlySummary{month("gz", 2023, 2, 29)}, "day_count"},
		{"zero days", []MonthlySummary{month("gz", 2024, 2, 0)}, "day_count"},
		{"month out of range", []MonthlySummary{month("gz", 2024, 13, 1)}, "month"},
		{"duplicate period", []MonthlySummary{month("gz", 2024, 2, 3), month("gz", 2024, 2, 3)}, "key"},
		{"forecast days exceed days", []MonthlySummary{{CityID: "gz", Year: 2024, Month: 2, DayCount: 2, ForecastDays: 3}}, "forecast_days"},
		{"negative precipitation", []MonthlySummary{{CityID: "gz", Year: 2024, Month: 2, DayCount: 2, Precipitation: -1}}, "precipitation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *ValidationError
			require.ErrorAs(t, CheckMonthlyTable(tt.rows), &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCheckYearlyTable(t *testing.T) {
	year := YearlySummary{CityID: "gz", Year: 2024, DayCount: 60, MonthCount: 2}
	assert.NoError(t, CheckYearlyTable([]YearlySummary{year}))

	var verr *ValidationError
	require.ErrorAs(t, CheckYearlyTable([]YearlySummary{year, year}), &verr)
	assert.Equal(t, "key", verr.Field)

	bad := year
	bad.MonthCount = 13
	require.ErrorAs(t, CheckYearlyTable([]YearlySummary{bad}), &verr)
	assert.Equal(t, "month_count", verr.Field)
}
