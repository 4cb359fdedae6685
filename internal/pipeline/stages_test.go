package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/city-weather-etl/internal/artifact"
	"github.com/couchcryptid/city-weather-etl/internal/config"
	"github.com/couchcryptid/city-weather-etl/internal/domain"
	"github.com/couchcryptid/city-weather-etl/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tablePaths(t *testing.T) config.Paths {
	t.Helper()
	cfg := &config.Config{DataDir: t.TempDir()}
	cfg.RawDir = filepath.Join(cfg.DataDir, "raw")
	cfg.ReferencePath = filepath.Join(cfg.DataDir, "cities.csv")
	return cfg.Paths()
}

// runOnly runs the named stage of the default stage list on its own.
func runOnly(t *testing.T, opts pipeline.Options, name string) error {
	t.Helper()
	for _, s := range pipeline.Stages(opts, slog.Default()) {
		if s.Name() == name {
			p := pipeline.New([]pipeline.Stage{s}, slog.Default(), newTestMetrics())
			_, err := p.Run(context.Background())
			return err
		}
	}
	t.Fatalf("no stage named %s", name)
	return nil
}

func dailyRecord(city, date string, avg float64, src domain.Source) domain.WeatherRecord {
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return domain.WeatherRecord{
		CityID:      city,
		Province:    "Guangdong",
		Date:        d,
		TempAvg:     ptr(avg),
		Source:      src,
		CollectedAt: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
	}
}

func assertStageFailed(t *testing.T, err error, stage string) {
	t.Helper()
	var stageErr *pipeline.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, stage, stageErr.Stage)
}

func TestMonthlyStage_ForecastOnlyWithoutForecastIsEmpty(t *testing.T) {
	paths := tablePaths(t)
	require.NoError(t, artifact.Write(paths.Daily, artifact.DailyCodec, []domain.WeatherRecord{
		dailyRecord("gz", "2024-02-01", 18, domain.SourceForecast),
		dailyRecord("gz", "2024-02-02", 19, domain.SourceForecast),
	}))

	err := runOnly(t, defaultOptions(paths), pipeline.StageMonthly)

	require.ErrorIs(t, err, domain.ErrEmptyInput)
	assertStageFailed(t, err, pipeline.StageMonthly)
	var empty *domain.EmptyInputError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, paths.Daily, empty.Input)
	assert.NoFileExists(t, paths.Monthly)
}

func TestMonthlyStage_ForecastOnlyWithForecastSucceeds(t *testing.T) {
	paths := tablePaths(t)
	require.NoError(t, artifact.Write(paths.Daily, artifact.DailyCodec, []domain.WeatherRecord{
		dailyRecord("gz", "2024-02-01", 18, domain.SourceForecast),
	}))
	opts := defaultOptions(paths)
	opts.IncludeForecast = true

	require.NoError(t, runOnly(t, opts, pipeline.StageMonthly))
	months, err := artifact.Read(paths.Monthly, artifact.MonthlyCodec)
	require.NoError(t, err)
	require.Len(t, months, 1)
	assert.Equal(t, 1, months[0].ForecastDays)
}

func TestMonthlyStage_RejectsCorruptDailyTable(t *testing.T) {
	tests := []struct {
		name  string
		rows  []domain.WeatherRecord
		field string
	}{
		{
			name: "duplicate city-date",
			rows: []domain.WeatherRecord{
				dailyRecord("gz", "2024-02-01", 18, domain.SourceHistorical),
				dailyRecord("gz", "2024-02-02", 19, domain.SourceHistorical),
				dailyRecord("gz", "2024-02-01", 20, domain.SourceHistorical),
			},
			field: "key",
		},
		{
			name: "unknown source",
			rows: []domain.WeatherRecord{
				dailyRecord("gz", "2024-02-01", 18, domain.SourceHistorical),
				dailyRecord("gz", "2024-02-02", 19, "bogus"),
			},
			field: "source",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := tablePaths(t)
			require.NoError(t, artifact.Write(paths.Daily, artifact.DailyCodec, tt.rows))

			err := runOnly(t, defaultOptions(paths), pipeline.StageMonthly)

			assertStageFailed(t, err, pipeline.StageMonthly)
			var ioErr *domain.IOError
			require.ErrorAs(t, err, &ioErr)
			assert.Equal(t, "validate", ioErr.Op)
			assert.Equal(t, paths.Daily, ioErr.Path)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.NoFileExists(t, paths.Monthly)
		})
	}
}

func TestYearlyStage_RejectsImpossibleDayCount(t *testing.T) {
	paths := tablePaths(t)
	require.NoError(t, artifact.Write(paths.Monthly, artifact.MonthlyCodec, []domain.MonthlySummary{
		{CityID: "gz", Province: "Guangdong", Year: 2023, Month: 2, TempAvg: ptr(15), DayCount: 30},
	}))

	err := runOnly(t, defaultOptions(paths), pipeline.StageYearly)

	assertStageFailed(t, err, pipeline.StageYearly)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "day_count", verr.Field)
	assert.NoFileExists(t, paths.Yearly)
}

func TestComfortStage_NoTemperatureIsEmpty(t *testing.T) {
	paths := tablePaths(t)
	require.NoError(t, artifact.Write(paths.Monthly, artifact.MonthlyCodec, []domain.MonthlySummary{
		{CityID: "gz", Province: "Guangdong", Year: 2024, Month: 2, DayCount: 3, MissingTempDays: 3, Humidity: ptr(70)},
		{CityID: "sz", Province: "Guangdong", Year: 2024, Month: 2, DayCount: 2, MissingTempDays: 2},
	}))

	err := runOnly(t, defaultOptions(paths), pipeline.StageComfort)

	require.ErrorIs(t, err, domain.ErrEmptyInput)
	assertStageFailed(t, err, pipeline.StageComfort)
	var empty *domain.EmptyInputError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, paths.Monthly, empty.Input)
	assert.NoFileExists(t, paths.Comfort)
}

func TestComfortStage_YearlySourceNamedInEmptyError(t *testing.T) {
	paths := tablePaths(t)
	require.NoError(t, artifact.Write(paths.Yearly, artifact.YearlyCodec, []domain.YearlySummary{
		{CityID: "gz", Province: "Guangdong", Year: 2024, DayCount: 3, MonthCount: 1},
	}))
	opts := defaultOptions(paths)
	opts.Granularity = domain.GranularityYearly

	err := runOnly(t, opts, pipeline.StageComfort)

	var empty *domain.EmptyInputError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, paths.Yearly, empty.Input)
}
