package qweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/city-weather-etl/internal/artifact"
	"github.com/couchcryptid/city-weather-etl/internal/domain"
	"github.com/couchcryptid/city-weather-etl/internal/observability"
	"github.com/sony/gobreaker"
)

const (
	endpointLookup     = "lookup"
	endpointHistorical = "historical"
	endpointForecast   = "forecast"

	apiDateLayout = "20060102"
)

// errNoData marks a QWeather "204" response: the request was fine but the
// day has nothing to report.
var errNoData = errors.New("no data")

// Config holds the collector's connection settings.
type Config struct {
	APIKey  string
	BaseURL string
	GeoURL  string
	Timeout time.Duration
	RawDir  string
}

// Collector fetches daily history and forecasts from QWeather into the raw
// directory, one file per city, date and source.
type Collector struct {
	cfg     Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	backoff Backoff
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewCollector creates a QWeather collector.
func NewCollector(cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Collector {
	return &Collector{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: newBreaker("qweather"),
		backoff: DefaultBackoff,
		metrics: metrics,
		logger:  logger,
	}
}

// Collect fetches every city in turn. A city fails when none of its
// requests produced a file; the pass fails only when every city did.
func (c *Collector) Collect(ctx context.Context, cities []domain.City, window domain.CollectWindow) (domain.CollectSummary, error) {
	sum := domain.CollectSummary{Cities: len(cities)}
	if c.cfg.APIKey == "" {
		return sum, errors.New("qweather api key is not configured")
	}
	logger := c.logger.With("run_id", domain.RunIDFromContext(ctx))

	for _, city := range cities {
		files, err := c.collectCity(ctx, city, window, logger)
		sum.Files += files
		sum.Rows += files
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		sum.Failed++
		logger.Warn("city collection failed", "city_id", city.ID, "error", err)
	}

	logger.Info("collection finished",
		"cities", sum.Cities,
		"failed", sum.Failed,
		"files", sum.Files,
	)
	if sum.Cities > 0 && sum.Failed == sum.Cities {
		return sum, fmt.Errorf("collection failed for all %d cities", sum.Cities)
	}
	return sum, nil
}

func (c *Collector) collectCity(ctx context.Context, city domain.City, window domain.CollectWindow, logger *slog.Logger) (int, error) {
	locationID := city.LocationID
	if locationID == "" {
		id, err := c.lookup(ctx, city)
		if err != nil {
			return 0, err
		}
		locationID = id
	}

	collectedAt := domain.Now().Format(time.RFC3339)
	var (
		files int
		errs  []error
	)
	for _, date := range window.Dates() {
		rec, err := c.historical(ctx, locationID, date)
		if errors.Is(err, errNoData) {
			logger.Debug("no historical data", "city_id", city.ID, "date", date.Format(domain.DateLayout))
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("historical %s: %w", date.Format(domain.DateLayout), err))
			continue
		}
		rec.CityID = city.ID
		rec.CollectedAt = collectedAt
		if err := c.write(rec); err != nil {
			return files, err
		}
		files++
	}

	if window.Forecast {
		days, err := c.forecast(ctx, locationID)
		if err != nil && !errors.Is(err, errNoData) {
			errs = append(errs, fmt.Errorf("forecast: %w", err))
		}
		for _, rec := range days {
			rec.CityID = city.ID
			rec.CollectedAt = collectedAt
			if err := c.write(rec); err != nil {
				return files, err
			}
			files++
		}
	}

	if len(errs) == 0 {
		return files, nil
	}
	if files == 0 {
		return 0, errors.Join(errs...)
	}
	logger.Warn("partial city collection", "city_id", city.ID, "files", files, "error", errors.Join(errs...))
	return files, nil
}

func (c *Collector) write(rec domain.RawRecord) error {
	path := artifact.RawPath(c.cfg.RawDir, rec.CityID, rec.Date, domain.Source(rec.Source))
	return artifact.WriteRaw(path, []domain.RawRecord{rec})
}

func (c *Collector) lookup(ctx context.Context, city domain.City) (string, error) {
	params := url.Values{
		"location": {city.Name},
		"number":   {"1"},
		"range":    {"cn"},
	}
	if city.Province != "" {
		params.Set("adm", city.Province)
	}
	var resp lookupResponse
	if err := c.getJSON(ctx, endpointLookup, c.cfg.GeoURL+"/v2/city/lookup", params, &resp); err != nil {
		return "", fmt.Errorf("city lookup %q: %w", city.Name, err)
	}
	if len(resp.Location) == 0 || resp.Location[0].ID == "" {
		return "", fmt.Errorf("city lookup %q: no match", city.Name)
	}
	return resp.Location[0].ID, nil
}

func (c *Collector) historical(ctx context.Context, locationID string, date time.Time) (domain.RawRecord, error) {
	params := url.Values{
		"location": {locationID},
		"date":     {date.Format(apiDateLayout)},
	}
	var resp historicalResponse
	if err := c.getJSON(ctx, endpointHistorical, c.cfg.BaseURL+"/v7/historical/weather", params, &resp); err != nil {
		return domain.RawRecord{}, err
	}
	return historicalRecord(resp, date), nil
}

func (c *Collector) forecast(ctx context.Context, locationID string) ([]domain.RawRecord, error) {
	params := url.Values{"location": {locationID}}
	var resp forecastResponse
	if err := c.getJSON(ctx, endpointForecast, c.cfg.BaseURL+"/v7/weather/3d", params, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.RawRecord, 0, len(resp.Daily))
	for _, d := range resp.Daily {
		if strings.TrimSpace(d.FxDate) == "" {
			continue
		}
		out = append(out, forecastRecord(d))
	}
	return out, nil
}

func (c *Collector) getJSON(ctx context.Context, endpoint, base string, params url.Values, out apiStatus) error {
	err := c.fetch(ctx, base, params, out)
	outcome := "success"
	switch {
	case errors.Is(err, errNoData):
		outcome = "empty"
	case err != nil:
		outcome = "error"
	}
	c.metrics.CollectRequests.WithLabelValues(endpoint, outcome).Inc()
	return err
}

func (c *Collector) fetch(ctx context.Context, base string, params url.Values, out apiStatus) error {
	build := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("X-QW-Api-Key", c.cfg.APIKey)
		return req, nil
	}

	resp, err := getWithResilience(ctx, c.client, c.breaker, c.backoff, build)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	switch code := out.status(); code {
	case "200":
		return nil
	case "204":
		return errNoData
	default:
		return fmt.Errorf("qweather status %s", code)
	}
}

func historicalRecord(resp historicalResponse, date time.Time) domain.RawRecord {
	d := resp.WeatherDaily
	rec := domain.RawRecord{
		Date:          date.Format(domain.DateLayout),
		TempMin:       strings.TrimSpace(d.TempMin),
		TempMax:       strings.TrimSpace(d.TempMax),
		Precipitation: strings.TrimSpace(d.Precip),
		Humidity:      strings.TrimSpace(d.Humidity),
		Source:        string(domain.SourceHistorical),
	}

	var temps, winds []string
	icons := domain.ConditionCounts{}
	for _, h := range resp.WeatherHourly {
		temps = append(temps, h.Temp)
		winds = append(winds, h.WindSpeed)
		icons.Add(strings.TrimSpace(h.Icon))
	}
	rec.TempAvg = mean(temps)
	if rec.TempAvg == "" {
		rec.TempAvg = midpoint(d.TempMin, d.TempMax)
	}
	rec.WindSpeed = mean(winds)
	rec.Condition = icons.Dominant()
	return rec
}

func forecastRecord(d forecastDay) domain.RawRecord {
	return domain.RawRecord{
		Date:          strings.TrimSpace(d.FxDate),
		TempMin:       strings.TrimSpace(d.TempMin),
		TempMax:       strings.TrimSpace(d.TempMax),
		TempAvg:       midpoint(d.TempMin, d.TempMax),
		Precipitation: strings.TrimSpace(d.Precip),
		WindSpeed:     strings.TrimSpace(d.WindSpeedDay),
		Humidity:      strings.TrimSpace(d.Humidity),
		Condition:     strings.TrimSpace(d.IconDay),
		Source:        string(domain.SourceForecast),
	}
}

// mean averages the parseable values; empty when none parse.
func mean(values []string) string {
	var sum float64
	var n int
	for _, v := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			continue
		}
		sum += f
		n++
	}
	if n == 0 {
		return ""
	}
	return strconv.FormatFloat(sum/float64(n), 'f', -1, 64)
}

func midpoint(lo, hi string) string {
	a, errA := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	b, errB := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if errA != nil || errB != nil {
		return ""
	}
	return strconv.FormatFloat((a+b)/2, 'f', -1, 64)
}
