// Command genmock writes a synthetic reference table and raw collector files
// for local runs and demos. Output is deterministic for a given seed, and
// every generated row is checked with the same parser the pipeline uses.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data \
//	  -start 2023-01-01 -end 2024-12-31 \
//	  -forecast-days 3
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/couchcryptid/city-weather-etl/internal/artifact"
	"github.com/couchcryptid/city-weather-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// climate is a crude seasonal model for one city.
type climate struct {
	city      domain.City
	meanTemp  float64 // annual mean, °C
	amplitude float64 // half the summer/winter swing, °C
	rainDays  float64 // probability of rain on a given day
	humidity  float64 // baseline relative humidity, %
}

func ptr(v float64) *float64 { return &v }

var climates = []climate{
	{domain.City{ID: "bj", Name: "Beijing", Province: "Beijing", Lat: ptr(39.9042), Lon: ptr(116.4074), LocationID: "101010100"}, 12.9, 15.5, 0.18, 55},
	{domain.City{ID: "sh", Name: "Shanghai", Province: "Shanghai", Lat: ptr(31.2304), Lon: ptr(121.4737), LocationID: "101020100"}, 17.1, 11.5, 0.33, 74},
	{domain.City{ID: "gz", Name: "Guangzhou", Province: "Guangdong", Lat: ptr(23.1291), Lon: ptr(113.2644), LocationID: "101280101"}, 22.4, 7.5, 0.40, 78},
	{domain.City{ID: "sz", Name: "Shenzhen", Province: "Guangdong", Lat: ptr(22.5431), Lon: ptr(114.0579), LocationID: "101280601"}, 23.0, 6.5, 0.38, 76},
	{domain.City{ID: "hz", Name: "Hangzhou", Province: "Zhejiang", Lat: ptr(30.2741), Lon: ptr(120.1551), LocationID: "101210101"}, 17.0, 12.0, 0.36, 75},
	{domain.City{ID: "nb", Name: "Ningbo", Province: "Zhejiang", Lat: ptr(29.8683), Lon: ptr(121.5440), LocationID: "101210401"}, 16.9, 11.0, 0.35, 77},
	{domain.City{ID: "km", Name: "Kunming", Province: "Yunnan", Lat: ptr(25.0389), Lon: ptr(102.7183), LocationID: "101290101"}, 15.5, 5.5, 0.30, 68},
	{domain.City{ID: "cd", Name: "Chengdu", Province: "Sichuan", Lat: ptr(30.5728), Lon: ptr(104.0668), LocationID: "101270101"}, 16.5, 10.0, 0.35, 80},
	{domain.City{ID: "hrb", Name: "Harbin", Province: "Heilongjiang", Lat: ptr(45.8038), Lon: ptr(126.5350), LocationID: "101050101"}, 5.0, 21.0, 0.20, 62},
	{domain.City{ID: "wh", Name: "Wuhan", Province: "Hubei", Lat: ptr(30.5928), Lon: ptr(114.3055), LocationID: "101200101"}, 17.5, 13.0, 0.32, 75},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data", "data directory; cities.csv and raw/ are written here")
	start := flag.String("start", "2024-01-01", "first historical date (YYYY-MM-DD)")
	end := flag.String("end", "2024-12-31", "last historical date (YYYY-MM-DD)")
	forecastDays := flag.Int("forecast-days", 0, "forecast days to write after -end")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	from, err := time.Parse(domain.DateLayout, *start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	to, err := time.Parse(domain.DateLayout, *end)
	if err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}
	if to.Before(from) {
		return fmt.Errorf("-end %s is before -start %s", *end, *start)
	}

	// Fixed clock for reproducible collected_at values.
	domain.SetClock(clockwork.NewFakeClockAt(to.Add(30 * time.Hour)))
	defer domain.SetClock(nil)

	cities := make([]domain.City, 0, len(climates))
	for _, c := range climates {
		cities = append(cities, c.city)
	}
	refPath := filepath.Join(*out, "cities.csv")
	if err := artifact.Write(refPath, artifact.CityCodec, cities); err != nil {
		return fmt.Errorf("writing reference table: %w", err)
	}
	log.Printf("wrote %s (%d cities)", refPath, len(cities))

	rawDir := filepath.Join(*out, "raw")
	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	window := domain.CollectWindow{From: from, To: to}
	forecastEnd := to.AddDate(0, 0, *forecastDays)

	stats := map[string]int{}
	for _, c := range climates {
		for _, date := range window.Dates() {
			if err := emit(rawDir, c.day(rng, date, domain.SourceHistorical), stats); err != nil {
				return err
			}
		}
		for d := to.AddDate(0, 0, 1); !d.After(forecastEnd); d = d.AddDate(0, 0, 1) {
			if err := emit(rawDir, c.day(rng, d, domain.SourceForecast), stats); err != nil {
				return err
			}
		}
	}

	printStats(stats)
	return nil
}

// emit validates one row with the pipeline parser and writes its raw file.
func emit(rawDir string, rec domain.RawRecord, stats map[string]int) error {
	if _, err := domain.ParseRawRecord(rec); err != nil {
		return fmt.Errorf("generated an invalid row: %w", err)
	}
	path := artifact.RawPath(rawDir, rec.CityID, rec.Date, domain.Source(rec.Source))
	if err := artifact.WriteRaw(path, []domain.RawRecord{rec}); err != nil {
		return err
	}
	stats[rec.CityID]++
	stats["source:"+rec.Source]++
	return nil
}

func (c climate) day(rng *rand.Rand, date time.Time, source domain.Source) domain.RawRecord {
	// Coldest around mid-January, warmest around mid-July.
	phase := 2 * math.Pi * float64(date.YearDay()-105) / 365
	avg := c.meanTemp + c.amplitude*math.Sin(phase) + rng.NormFloat64()*2
	spread := 3 + rng.Float64()*3

	precip := 0.0
	condition := "100"
	if rng.Float64() < c.rainDays {
		precip = math.Round(rng.ExpFloat64()*8*10) / 10
		condition = "305"
		if precip > 10 {
			condition = "306"
		}
	} else if rng.Float64() < 0.4 {
		condition = "101"
	}
	humidity := math.Min(100, math.Max(10, c.humidity+rng.NormFloat64()*8+precip))

	return domain.RawRecord{
		CityID:        c.city.ID,
		Date:          date.Format(domain.DateLayout),
		TempMin:       format(avg - spread),
		TempMax:       format(avg + spread),
		TempAvg:       format(avg),
		Precipitation: format(precip),
		WindSpeed:     format(5 + rng.Float64()*15),
		Humidity:      format(humidity),
		Condition:     condition,
		Source:        string(source),
		CollectedAt:   domain.Now().Format(time.RFC3339),
	}
}

func format(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

func printStats(stats map[string]int) {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println("\n=== Generated rows ===")
	for _, k := range keys {
		fmt.Printf("  %-20s %d\n", k, stats[k])
	}
}
