package domain

import "time"

// DateLayout is the calendar date format used in raw files and artifacts.
const DateLayout = "2006-01-02"

// Source tells observed data apart from forecasts.
type Source string

const (
	SourceHistorical Source = "historical"
	SourceForecast   Source = "forecast"
)

// RawRecord is one row of a collector file, exactly as written.
type RawRecord struct {
	CityID        string
	Date          string
	TempMin       string
	TempMax       string
	TempAvg       string
	Precipitation string
	WindSpeed     string
	Humidity      string
	Condition     string
	Source        string
	CollectedAt   string

	// Provenance, used for logging and tie-breaking.
	File        string
	Line        int
	FileModTime time.Time
}

// WeatherRecord is the canonical daily row: one city, one date.
type WeatherRecord struct {
	CityID   string `validate:"required"`
	CityName string
	Province string
	Lat      *float64 `validate:"omitempty,gte=-90,lte=90"`
	Lon      *float64 `validate:"omitempty,gte=-180,lte=180"`
	Date     time.Time

	TempMin       *float64 `validate:"omitempty,gte=-90,lte=60"`
	TempMax       *float64 `validate:"omitempty,gte=-90,lte=60"`
	TempAvg       *float64 `validate:"omitempty,gte=-90,lte=60"`
	Precipitation *float64 `validate:"omitempty,gte=0"`
	WindSpeed     *float64 `validate:"omitempty,gte=0"`
	Humidity      *float64 `validate:"omitempty,gte=0,lte=100"`
	Condition     string

	Source      Source `validate:"oneof=historical forecast"`
	CollectedAt time.Time
}

// Key returns the natural key "city|YYYY-MM-DD".
func (r WeatherRecord) Key() string {
	return r.CityID + "|" + r.Date.Format(DateLayout)
}

// HasTemperature reports whether the day contributes to temperature means.
func (r WeatherRecord) HasTemperature() bool { return r.TempAvg != nil }
