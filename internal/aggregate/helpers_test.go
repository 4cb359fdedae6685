package aggregate

import (
	"testing"
	"time"

	"github.com/couchcryptid/city-weather-etl/internal/domain"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func day(t *testing.T, city, date string, temp float64) domain.WeatherRecord {
	t.Helper()
	d, err := time.Parse(domain.DateLayout, date)
	require.NoError(t, err)
	return domain.WeatherRecord{
		CityID:        city,
		Date:          d,
		TempMin:       f(temp),
		TempMax:       f(temp),
		TempAvg:       f(temp),
		Precipitation: f(0),
		Condition:     "100",
		Source:        domain.SourceHistorical,
	}
}

func month(city string, year, m int, avg, maxT, precip float64, days int) domain.MonthlySummary {
	return domain.MonthlySummary{
		CityID:            city,
		Province:          "Zhejiang",
		Year:              year,
		Month:             m,
		TempMin:           f(avg - 5),
		TempMax:           f(maxT),
		TempAvg:           f(avg),
		Precipitation:     precip,
		Humidity:          f(60),
		DominantCondition: "100",
		DayCount:          days,
	}
}

func rawRow(city, date, temp, collectedAt, file string) domain.RawRecord {
	return domain.RawRecord{
		CityID:      city,
		Date:        date,
		TempMin:     temp,
		TempMax:     temp,
		TempAvg:     temp,
		Condition:   "100",
		Source:      "historical",
		CollectedAt: collectedAt,
		File:        file,
		Line:        2,
	}
}

func mustRef(t *testing.T, cities ...domain.City) *domain.Reference {
	t.Helper()
	ref, err := domain.NewReference(cities)
	require.NoError(t, err)
	return ref
}
