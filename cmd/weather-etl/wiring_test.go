package main

import (
	"testing"
	"time"

	"github.com/couchcryptid/city-weather-etl/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectFlags_Window(t *testing.T) {
	w, err := collectFlags{}.window()
	require.NoError(t, err)
	assert.True(t, w.From.IsZero(), "no dates means a rolling window")

	w, err = collectFlags{startDate: "2024-03-01", endDate: "2024-03-07"}.window()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), w.To)
	assert.False(t, w.Forecast, "explicit ranges skip the forecast")
}

func TestCollectFlags_WindowErrors(t *testing.T) {
	tests := []struct {
		name  string
		flags collectFlags
		want  string
	}{
		{"start only", collectFlags{startDate: "2024-03-01"}, "together"},
		{"bad start", collectFlags{startDate: "03/01/2024", endDate: "2024-03-07"}, "--start-date"},
		{"bad end", collectFlags{startDate: "2024-03-01", endDate: "soon"}, "--end-date"},
		{"reversed", collectFlags{startDate: "2024-03-07", endDate: "2024-03-01"}, "before"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.flags.window()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCollectFlags_CollectorConfig(t *testing.T) {
	c := &config.Config{
		QWeatherAPIKey:  "env-key",
		QWeatherBaseURL: "https://devapi.qweather.com",
		QWeatherGeoURL:  "https://geoapi.qweather.com",
		QWeatherTimeout: 10 * time.Second,
		RawDir:          "data/raw",
	}

	q := collectFlags{collect: true}.collectorConfig(c)
	assert.Equal(t, "env-key", q.APIKey)
	assert.Equal(t, "https://devapi.qweather.com", q.BaseURL)
	assert.Equal(t, "https://geoapi.qweather.com", q.GeoURL)
	assert.Equal(t, 10*time.Second, q.Timeout)
	assert.Equal(t, "data/raw", q.RawDir)

	q = collectFlags{collect: true, apiKey: "flag-key"}.collectorConfig(c)
	assert.Equal(t, "flag-key", q.APIKey)
	assert.Equal(t, "env-key", c.QWeatherAPIKey, "flag override leaves the loaded config alone")
}
