package domain

import (
	"fmt"
	"time"
)

// Granularity selects the period used by provincial, statistics, and comfort
// rollups.
type Granularity string

const (
	GranularityMonthly Granularity = "monthly"
	GranularityYearly  Granularity = "yearly"
)

// ParseGranularity accepts "monthly" or "yearly".
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case GranularityMonthly, GranularityYearly:
		return g, nil
	default:
		return "", fmt.Errorf("unknown period granularity %q (want monthly or yearly)", s)
	}
}

// MonthlySummary aggregates one city over one calendar month.
type MonthlySummary struct {
	CityID   string `validate:"required"`
	Province string
	Year     int `validate:"gte=1"`
	Month    int `validate:"gte=1,lte=12"`

	TempMin *float64
	TempMax *float64
	TempAvg *float64
	// MissingTempDays counts contributing days without a temperature.
	MissingTempDays int `validate:"gte=0,ltefield=DayCount"`

	Precipitation float64 `validate:"gte=0"`
	Humidity      *float64
	WindSpeed     *float64

	DominantCondition string
	DayCount          int `validate:"gte=1"`
	ForecastDays      int `validate:"gte=0,ltefield=DayCount"`
}

// Period returns "YYYY-MM".
func (m MonthlySummary) Period() string { return MonthPeriod(m.Year, m.Month) }

// TempDays is the number of days that contributed to TempAvg.
func (m MonthlySummary) TempDays() int { return m.DayCount - m.MissingTempDays }

// YearlySummary aggregates one city over one year, derived from its monthly rows.
type YearlySummary struct {
	CityID   string `validate:"required"`
	Province string
	Year     int `validate:"gte=1"`

	TempMin *float64
	TempMax *float64
	TempAvg *float64

	Precipitation float64 `validate:"gte=0"`
	Humidity      *float64

	DominantCondition string
	DayCount          int `validate:"gte=1,lte=366"`
	MonthCount        int `validate:"gte=1,lte=12"`
	// Complete is false when fewer than twelve months contributed.
	Complete bool
}

// Period returns "YYYY".
func (y YearlySummary) Period() string { return YearPeriod(y.Year) }

// ProvincialSummary aggregates every city of one province over one period.
type ProvincialSummary struct {
	Province    string
	Period      string
	Granularity Granularity

	TempMin *float64
	TempMax *float64
	TempAvg *float64

	PrecipitationTotal float64
	PrecipitationAvg   float64
	Humidity           *float64

	DominantCondition string
	DayCount          int
	CityCount         int
}

// StatisticsSummary holds cross-city descriptive statistics for one period.
type StatisticsSummary struct {
	Period      string
	Granularity Granularity
	CityCount   int

	TempMin    *float64
	TempMax    *float64
	TempMean   *float64
	TempMedian *float64
	TempP10    *float64
	TempP25    *float64
	TempP75    *float64
	TempP90    *float64

	ColdestCity string
	WarmestCity string
	WettestCity string
	DriestCity  string

	WarmestTopK []string
	ColdestTopK []string
	WettestTopK []string
	DriestTopK  []string
}

// ComfortRanking is one ranked city within a period.
type ComfortRanking struct {
	Period      string
	Granularity Granularity
	Rank        int
	CityID      string
	Province    string
	Score       float64

	TempAvg       *float64
	Humidity      *float64
	Precipitation float64
}

// Rollups bundles the final artifacts handed to exporters.
type Rollups struct {
	Monthly    []MonthlySummary
	Yearly     []YearlySummary
	Provincial []ProvincialSummary
	Statistics []StatisticsSummary
	Comfort    []ComfortRanking
}

// MonthPeriod formats a year-month period key.
func MonthPeriod(year, month int) string { return fmt.Sprintf("%04d-%02d", year, month) }

// YearPeriod formats a year period key.
func YearPeriod(year int) string { return fmt.Sprintf("%04d", year) }

// DaysIn returns the number of days in the given month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
