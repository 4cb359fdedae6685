package artifact

import (
	"time"

	"github.com/couchcryptid/city-weather-etl/internal/domain"
)

// DailyCodec encodes the canonical daily table.
var DailyCodec = Codec[domain.WeatherRecord]{
	Header: []string{
		"city_id", "city_name", "province", "lat", "lon", "date",
		"temp_min", "temp_max", "temp_avg", "precipitation", "wind_speed", "humidity",
		"condition", "source", "collected_at",
	},
	Encode: func(r domain.WeatherRecord) []string {
		return []string{
			r.CityID, r.CityName, r.Province, fmtOptFloat(r.Lat), fmtOptFloat(r.Lon), r.Date.Format(domain.DateLayout),
			fmtOptFloat(r.TempMin), fmtOptFloat(r.TempMax), fmtOptFloat(r.TempAvg),
			fmtOptFloat(r.Precipitation), fmtOptFloat(r.WindSpeed), fmtOptFloat(r.Humidity),
			r.Condition, string(r.Source), fmtTime(r.CollectedAt),
		}
	},
	Decode: func(row Row) (domain.WeatherRecord, error) {
		d := decoder{row: row}
		r := domain.WeatherRecord{
			CityID:        d.str("city_id"),
			CityName:      d.str("city_name"),
			Province:      d.str("province"),
			Lat:           d.optFloat("lat"),
			Lon:           d.optFloat("lon"),
			Date:          d.when("date", domain.DateLayout),
			TempMin:       d.optFloat("temp_min"),
			TempMax:       d.optFloat("temp_max"),
			TempAvg:       d.optFloat("temp_avg"),
			Precipitation: d.optFloat("precipitation"),
			WindSpeed:     d.optFloat("wind_speed"),
			Humidity:      d.optFloat("humidity"),
			Condition:     d.str("condition"),
			Source:        domain.Source(d.str("source")),
			CollectedAt:   d.when("collected_at", time.RFC3339),
		}
		return r, d.err
	},
}

// MonthlyCodec encodes city-month summaries.
var MonthlyCodec = Codec[domain.MonthlySummary]{
	Header: []string{
		"city_id", "province", "year", "month",
		"temp_min", "temp_max", "temp_avg", "missing_temp_days",
		"precipitation", "humidity", "wind_speed",
		"dominant_condition", "day_count", "forecast_days",
	},
	Encode: func(m domain.MonthlySummary) []string {
		return []string{
			m.CityID, m.Province, fmtInt(m.Year), fmtInt(m.Month),
			fmtOptFloat(m.TempMin), fmtOptFloat(m.TempMax), fmtOptFloat(m.TempAvg), fmtInt(m.MissingTempDays),
			fmtFloat(m.Precipitation), fmtOptFloat(m.Humidity), fmtOptFloat(m.WindSpeed),
			m.DominantCondition, fmtInt(m.DayCount), fmtInt(m.ForecastDays),
		}
	},
	Decode: func(row Row) (domain.MonthlySummary, error) {
		d := decoder{row: row}
		m := domain.MonthlySummary{
			CityID:            d.str("city_id"),
			Province:          d.str("province"),
			Year:              d.count("year"),
			Month:             d.count("month"),
			TempMin:           d.optFloat("temp_min"),
			TempMax:           d.optFloat("temp_max"),
			TempAvg:           d.optFloat("temp_avg"),
			MissingTempDays:   d.count("missing_temp_days"),
			Precipitation:     d.float("precipitation"),
			Humidity:          d.optFloat("humidity"),
			WindSpeed:         d.optFloat("wind_speed"),
			DominantCondition: d.str("dominant_condition"),
			DayCount:          d.count("day_count"),
			ForecastDays:      d.count("forecast_days"),
		}
		return m, d.err
	},
}

// YearlyCodec encodes city-year summaries.
var YearlyCodec = Codec[domain.YearlySummary]{
	Header: []string{
		"city_id", "province", "year",
		"temp_min", "temp_max", "temp_avg",
		"precipitation", "humidity", "dominant_condition",
		"day_count", "month_count", "complete",
	},
	Encode: func(y domain.YearlySummary) []string {
		complete := "false"
		if y.Complete {
			complete = "true"
		}
		return []string{
			y.CityID, y.Province, fmtInt(y.Year),
			fmtOptFloat(y.TempMin), fmtOptFloat(y.TempMax), fmtOptFloat(y.TempAvg),
			fmtFloat(y.Precipitation), fmtOptFloat(y.Humidity), y.DominantCondition,
			fmtInt(y.DayCount), fmtInt(y.MonthCount), complete,
		}
	},
	Decode: func(row Row) (domain.YearlySummary, error) {
		d := decoder{row: row}
		y := domain.YearlySummary{
			CityID:            d.str("city_id"),
			Province:          d.str("province"),
			Year:              d.count("year"),
			TempMin:           d.optFloat("temp_min"),
			TempMax:           d.optFloat("temp_max"),
			TempAvg:           d.optFloat("temp_avg"),
			Precipitation:     d.float("precipitation"),
			Humidity:          d.optFloat("humidity"),
			DominantCondition: d.str("dominant_condition"),
			DayCount:          d.count("day_count"),
			MonthCount:        d.count("month_count"),
			Complete:          d.flag("complete"),
		}
		return y, d.err
	},
}

// ProvincialCodec encodes province-period summaries.
var ProvincialCodec = Codec[domain.ProvincialSummary]{
	Header: []string{
		"province", "period", "granularity",
		"temp_min", "temp_max", "temp_avg",
		"precipitation_total", "precipitation_avg", "humidity",
		"dominant_condition", "day_count", "city_count",
	},
	Encode: func(p domain.ProvincialSummary) []string {
		return []string{
			p.Province, p.Period, string(p.Granularity),
			fmtOptFloat(p.TempMin), fmtOptFloat(p.TempMax), fmtOptFloat(p.TempAvg),
			fmtFloat(p.PrecipitationTotal), fmtFloat(p.PrecipitationAvg), fmtOptFloat(p.Humidity),
			p.DominantCondition, fmtInt(p.DayCount), fmtInt(p.CityCount),
		}
	},
	Decode: func(row Row) (domain.ProvincialSummary, error) {
		d := decoder{row: row}
		p := domain.ProvincialSummary{
			Province:           d.str("province"),
			Period:             d.str("period"),
			Granularity:        domain.Granularity(d.str("granularity")),
			TempMin:            d.optFloat("temp_min"),
			TempMax:            d.optFloat("temp_max"),
			TempAvg:            d.optFloat("temp_avg"),
			PrecipitationTotal: d.float("precipitation_total"),
			PrecipitationAvg:   d.float("precipitation_avg"),
			Humidity:           d.optFloat("humidity"),
			DominantCondition:  d.str("dominant_condition"),
			DayCount:           d.count("day_count"),
			CityCount:          d.count("city_count"),
		}
		return p, d.err
	},
}

// StatisticsCodec encodes per-period statistics. Top-K lists are
// semicolon-separated city IDs.
var StatisticsCodec = Codec[domain.StatisticsSummary]{
	Header: []string{
		"period", "granularity", "city_count",
		"temp_min", "temp_max", "temp_mean", "temp_median",
		"temp_p10", "temp_p25", "temp_p75", "temp_p90",
		"coldest_city", "warmest_city", "wettest_city", "driest_city",
		"warmest_top_k", "coldest_top_k", "wettest_top_k", "driest_top_k",
	},
	Encode: func(s domain.StatisticsSummary) []string {
		return []string{
			s.Period, string(s.Granularity), fmtInt(s.CityCount),
			fmtOptFloat(s.TempMin), fmtOptFloat(s.TempMax), fmtOptFloat(s.TempMean), fmtOptFloat(s.TempMedian),
			fmtOptFloat(s.TempP10), fmtOptFloat(s.TempP25), fmtOptFloat(s.TempP75), fmtOptFloat(s.TempP90),
			s.ColdestCity, s.WarmestCity, s.WettestCity, s.DriestCity,
			fmtList(s.WarmestTopK), fmtList(s.ColdestTopK), fmtList(s.WettestTopK), fmtList(s.DriestTopK),
		}
	},
	Decode: func(row Row) (domain.StatisticsSummary, error) {
		d := decoder{row: row}
		s := domain.StatisticsSummary{
			Period:      d.str("period"),
			Granularity: domain.Granularity(d.str("granularity")),
			CityCount:   d.count("city_count"),
			TempMin:     d.optFloat("temp_min"),
			TempMax:     d.optFloat("temp_max"),
			TempMean:    d.optFloat("temp_mean"),
			TempMedian:  d.optFloat("temp_median"),
			TempP10:     d.optFloat("temp_p10"),
			TempP25:     d.optFloat("temp_p25"),
			TempP75:     d.optFloat("temp_p75"),
			TempP90:     d.optFloat("temp_p90"),
			ColdestCity: d.str("coldest_city"),
			WarmestCity: d.str("warmest_city"),
			WettestCity: d.str("wettest_city"),
			DriestCity:  d.str("driest_city"),
			WarmestTopK: d.list("warmest_top_k"),
			ColdestTopK: d.list("coldest_top_k"),
			WettestTopK: d.list("wettest_top_k"),
			DriestTopK:  d.list("driest_top_k"),
		}
		return s, d.err
	},
}

// ComfortCodec encodes the comfort ranking.
var ComfortCodec = Codec[domain.ComfortRanking]{
	Header: []string{
		"period", "granularity", "rank", "city_id", "province",
		"score", "temp_avg", "humidity", "precipitation",
	},
	Encode: func(c domain.ComfortRanking) []string {
		return []string{
			c.Period, string(c.Granularity), fmtInt(c.Rank), c.CityID, c.Province,
			fmtFloat(c.Score), fmtOptFloat(c.TempAvg), fmtOptFloat(c.Humidity), fmtFloat(c.Precipitation),
		}
	},
	Decode: func(row Row) (domain.ComfortRanking, error) {
		d := decoder{row: row}
		c := domain.ComfortRanking{
			Period:        d.str("period"),
			Granularity:   domain.Granularity(d.str("granularity")),
			Rank:          d.count("rank"),
			CityID:        d.str("city_id"),
			Province:      d.str("province"),
			Score:         d.float("score"),
			TempAvg:       d.optFloat("temp_avg"),
			Humidity:      d.optFloat("humidity"),
			Precipitation: d.float("precipitation"),
		}
		return c, d.err
	},
}

// CityCodec encodes the reference table. Coordinates and location_id may be
// absent from hand-maintained files.
var CityCodec = Codec[domain.City]{
	Header:   []string{"city_id", "name", "province", "lat", "lon", "location_id"},
	Optional: []string{"lat", "lon", "location_id"},
	Encode: func(c domain.City) []string {
		return []string{c.ID, c.Name, c.Province, fmtOptFloat(c.Lat), fmtOptFloat(c.Lon), c.LocationID}
	},
	Decode: func(row Row) (domain.City, error) {
		d := decoder{row: row}
		c := domain.City{
			ID:         d.str("city_id"),
			Name:       d.str("name"),
			Province:   d.str("province"),
			Lat:        d.optFloat("lat"),
			Lon:        d.optFloat("lon"),
			LocationID: d.str("location_id"),
		}
		return c, d.err
	},
}

// RawCodec encodes collector files. Only city_id and date are mandatory
// columns; every cell stays a string until the daily builder parses it.
var RawCodec = Codec[domain.RawRecord]{
	Header: []string{
		"city_id", "date", "temp_min", "temp_max", "temp_avg",
		"precipitation", "wind_speed", "humidity", "condition", "source", "collected_at",
	},
	Optional: []string{
		"temp_min", "temp_max", "temp_avg",
		"precipitation", "wind_speed", "humidity", "condition", "source", "collected_at",
	},
	Encode: func(r domain.RawRecord) []string {
		return []string{
			r.CityID, r.Date, r.TempMin, r.TempMax, r.TempAvg,
			r.Precipitation, r.WindSpeed, r.Humidity, r.Condition, r.Source, r.CollectedAt,
		}
	},
	Decode: func(row Row) (domain.RawRecord, error) {
		return domain.RawRecord{
			CityID:        row.Get("city_id"),
			Date:          row.Get("date"),
			TempMin:       row.Get("temp_min"),
			TempMax:       row.Get("temp_max"),
			TempAvg:       row.Get("temp_avg"),
			Precipitation: row.Get("precipitation"),
			WindSpeed:     row.Get("wind_speed"),
			Humidity:      row.Get("humidity"),
			Condition:     row.Get("condition"),
			Source:        row.Get("source"),
			CollectedAt:   row.Get("collected_at"),
			Line:          row.Line,
		}, nil
	},
}
