package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ParseRawRecord coerces a raw collector row into a WeatherRecord. Every
// failure is returned as a *ValidationError carrying the row's provenance.
func ParseRawRecord(raw RawRecord) (WeatherRecord, error) {
	fail := func(field, value, reason string) (WeatherRecord, error) {
		return WeatherRecord{}, &ValidationError{
			File:   raw.File,
			Line:   raw.Line,
			CityID: raw.CityID,
			Field:  field,
			Value:  value,
			Reason: reason,
		}
	}

	cityID := strings.TrimSpace(raw.CityID)

	date, err := time.Parse(DateLayout, strings.TrimSpace(raw.Date))
	if err != nil {
		return fail("date", raw.Date, "expected YYYY-MM-DD")
	}

	rec := WeatherRecord{
		CityID:    cityID,
		Date:      date,
		Condition: strings.TrimSpace(raw.Condition),
		Source:    normalizeSource(raw.Source),
	}

	numeric := []struct {
		name  string
		value string
		dst   **float64
	}{
		{"temp_min", raw.TempMin, &rec.TempMin},
		{"temp_max", raw.TempMax, &rec.TempMax},
		{"temp_avg", raw.TempAvg, &rec.TempAvg},
		{"precipitation", raw.Precipitation, &rec.Precipitation},
		{"wind_speed", raw.WindSpeed, &rec.WindSpeed},
		{"humidity", raw.Humidity, &rec.Humidity},
	}
	for _, f := range numeric {
		v, err := parseOptionalFloat(f.value)
		if err != nil {
			return fail(f.name, f.value, "not a number")
		}
		*f.dst = v
	}

	rec.CollectedAt, err = parseCollectedAt(raw.CollectedAt, raw.FileModTime)
	if err != nil {
		return fail("collected_at", raw.CollectedAt, "expected RFC 3339 timestamp")
	}

	if err := validate.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fail(columnName(fe.Field()), fmt.Sprint(derefValue(fe.Value())), "failed "+fe.Tag()+" "+fe.Param())
		}
		return fail("", "", err.Error())
	}

	if rec.TempMin != nil && rec.TempMax != nil && *rec.TempMin > *rec.TempMax {
		return fail("temp_min", raw.TempMin, "greater than temp_max "+strings.TrimSpace(raw.TempMax))
	}
	if rec.TempAvg == nil && rec.TempMin != nil && rec.TempMax != nil {
		mid := (*rec.TempMin + *rec.TempMax) / 2
		rec.TempAvg = &mid
	}

	return rec, nil
}

// normalizeSource maps an empty or unrecognized-case source to its canonical
// value. Anything else is left for validation to reject.
func normalizeSource(s string) Source {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SourceHistorical
	}
	return Source(s)
}

// parseOptionalFloat returns nil for an empty cell and an error for anything
// that is not a finite number.
func parseOptionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("non-finite value %q", s)
	}
	return &v, nil
}

func parseCollectedAt(s string, fallback time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func derefValue(v any) any {
	if p, ok := v.(*float64); ok && p != nil {
		return *p
	}
	return v
}

// columnName maps a WeatherRecord field name back to its raw column.
func columnName(field string) string {
	switch field {
	case "CityID":
		return "city_id"
	case "TempMin":
		return "temp_min"
	case "TempMax":
		return "temp_max"
	case "TempAvg":
		return "temp_avg"
	case "Precipitation":
		return "precipitation"
	case "WindSpeed":
		return "wind_speed"
	case "Humidity":
		return "humidity"
	case "Source":
		return "source"
	case "DayCount":
		return "day_count"
	case "MissingTempDays":
		return "missing_temp_days"
	case "ForecastDays":
		return "forecast_days"
	case "MonthCount":
		return "month_count"
	default:
		return strings.ToLower(field)
	}
}
