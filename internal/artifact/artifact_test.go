package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/city-weather-etl/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestWriteRead_Monthly(t *testing.T) {
	path := filepath.Join(t.TempDir(), MonthlyFile)
	rows := []domain.MonthlySummary{
		{
			CityID: "hz", Province: "Zhejiang", Year: 2024, Month: 7,
			TempMin: f(22.5), TempMax: f(38), TempAvg: f(29.125), MissingTempDays: 1,
			Precipitation: 120.4, Humidity: f(78), DominantCondition: "305",
			DayCount: 31, ForecastDays: 2,
		},
		{CityID: "nb", Province: "Zhejiang", Year: 2024, Month: 7, MissingTempDays: 3, DayCount: 3},
	}

	require.NoError(t, Write(path, MonthlyCodec, rows))
	got, err := Read(path, MonthlyCodec)

	require.NoError(t, err)
	if diff := cmp.Diff(rows, got); diff != "" {
		t.Errorf("monthly rows changed on disk (-want +got):\n%s", diff)
	}
}

func TestWrite_MissingValuesAreEmptyCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), ComfortFile)
	rows := []domain.ComfortRanking{
		{Period: "2024-07", Granularity: domain.GranularityMonthly, Rank: 1, CityID: "hz", Province: "Zhejiang", Score: 87.5, TempAvg: f(25)},
	}

	require.NoError(t, Write(path, ComfortCodec, rows))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t,
		"period,granularity,rank,city_id,province,score,temp_avg,humidity,precipitation\n"+
			"2024-07,monthly,1,hz,Zhejiang,87.5,25,,0\n",
		string(data))
}

func TestWrite_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, StatisticsFile)
	rows := []domain.StatisticsSummary{
		{
			Period: "2024", Granularity: domain.GranularityYearly, CityCount: 3,
			TempMean: f(18.2), WarmestTopK: []string{"gz", "sz"}, ColdestTopK: []string{"hrb"},
		},
	}

	require.NoError(t, Write(path, StatisticsCodec, rows))
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, Write(path, StatisticsCodec, rows))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	got, err := Read(path, StatisticsCodec)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"gz", "sz"}, got[0].WarmestTopK)
	assert.Nil(t, got[0].WettestTopK)
}

func TestWrite_ReplacesPreviousContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), YearlyFile)
	require.NoError(t, Write(path, YearlyCodec, []domain.YearlySummary{
		{CityID: "a", Year: 2023}, {CityID: "b", Year: 2023},
	}))
	require.NoError(t, Write(path, YearlyCodec, []domain.YearlySummary{
		{CityID: "c", Year: 2024, Complete: true, MonthCount: 12},
	}))

	got, err := Read(path, YearlyCodec)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].CityID)
	assert.True(t, got[0].Complete)
}

func TestWriteRead_Daily(t *testing.T) {
	path := filepath.Join(t.TempDir(), DailyFile)
	rows := []domain.WeatherRecord{{
		CityID: "hz", CityName: "Hangzhou", Province: "Zhejiang", Lat: f(30.27), Lon: f(120.15),
		Date:    time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		TempMin: f(25), TempMax: f(35), TempAvg: f(30), Precipitation: f(0.4), Humidity: f(80),
		Condition: "101", Source: domain.SourceHistorical,
		CollectedAt: time.Date(2024, 7, 2, 8, 0, 0, 0, time.UTC),
	}}

	require.NoError(t, Write(path, DailyCodec, rows))
	got, err := Read(path, DailyCodec)

	require.NoError(t, err)
	if diff := cmp.Diff(rows, got); diff != "" {
		t.Errorf("daily rows changed on disk (-want +got):\n%s", diff)
	}
}

func TestRead_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Read(filepath.Join(dir, "nope.csv"), MonthlyCodec)
		var ioErr *domain.IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, "read", ioErr.Op)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("missing column", func(t *testing.T) {
		path := filepath.Join(dir, "short.csv")
		require.NoError(t, os.WriteFile(path, []byte("city_id,year\nhz,2024\n"), 0o644))
		_, err := Read(path, MonthlyCodec)
		var ioErr *domain.IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Contains(t, err.Error(), "province")
	})

	t.Run("bad number", func(t *testing.T) {
		path := filepath.Join(dir, "bad.csv")
		require.NoError(t, os.WriteFile(path, []byte("period,granularity,rank,city_id,province,score,temp_avg,humidity,precipitation\n2024-07,monthly,first,hz,Zhejiang,1,,,0\n"), 0o644))
		_, err := Read(path, ComfortCodec)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
		assert.Contains(t, err.Error(), "rank")
	})
}

func TestRead_ReferenceWithoutOptionalColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.csv")
	require.NoError(t, os.WriteFile(path, []byte("province,city_id,name\nZhejiang,hz,Hangzhou\n"), 0o644))

	got, err := Read(path, CityCodec)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.City{ID: "hz", Name: "Hangzhou", Province: "Zhejiang"}, got[0])
}
