package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/city-weather-etl/internal/artifact"
	"github.com/couchcryptid/city-weather-etl/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"gopkg.in/yaml.v3"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataDir       string
	RawDir        string
	ReferencePath string

	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration
	ScheduleInterval time.Duration

	// Aggregation options.
	IncludeForecast bool
	Granularity     domain.Granularity
	TopK            int
	Comfort         domain.ComfortWeights

	// QWeather collector configuration.
	QWeatherAPIKey  string
	QWeatherBaseURL string
	QWeatherGeoURL  string
	QWeatherTimeout time.Duration
	QWeatherDays    int

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Exporters; empty values disable them.
	SQLitePath     string
	KafkaBrokers   []string
	KafkaTopic     string
	PushgatewayURL string
}

// Paths resolves the artifact locations under DataDir.
type Paths struct {
	Raw        string
	Reference  string
	Daily      string
	Monthly    string
	Yearly     string
	Provincial string
	Statistics string
	Comfort    string
}

// Paths returns the file layout for this configuration.
func (c *Config) Paths() Paths {
	return Paths{
		Raw:        c.RawDir,
		Reference:  c.ReferencePath,
		Daily:      filepath.Join(c.DataDir, artifact.DailyFile),
		Monthly:    filepath.Join(c.DataDir, artifact.MonthlyFile),
		Yearly:     filepath.Join(c.DataDir, artifact.YearlyFile),
		Provincial: filepath.Join(c.DataDir, artifact.ProvincialFile),
		Statistics: filepath.Join(c.DataDir, artifact.StatisticsFile),
		Comfort:    filepath.Join(c.DataDir, artifact.ComfortFile),
	}
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	scheduleInterval, err := parsePositiveDuration("SCHEDULE_INTERVAL", "24h")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	qweatherTimeout, err := parsePositiveDuration("QWEATHER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	granularity, err := domain.ParseGranularity(sharedcfg.EnvOrDefault("PERIOD_GRANULARITY", string(domain.GranularityMonthly)))
	if err != nil {
		return nil, fmt.Errorf("invalid PERIOD_GRANULARITY: %w", err)
	}

	topK, err := parsePositiveInt("STATS_TOP_K", 5)
	if err != nil {
		return nil, err
	}
	days, err := parsePositiveInt("QWEATHER_DAYS", 7)
	if err != nil {
		return nil, err
	}

	includeForecast, err := parseBool("INCLUDE_FORECAST", false)
	if err != nil {
		return nil, err
	}

	comfort, err := loadComfortWeights(os.Getenv("COMFORT_CONFIG"))
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	dataDir := sharedcfg.EnvOrDefault("DATA_DIR", "data")
	cfg := &Config{
		DataDir:       dataDir,
		RawDir:        sharedcfg.EnvOrDefault("RAW_DIR", filepath.Join(dataDir, "raw")),
		ReferencePath: sharedcfg.EnvOrDefault("REFERENCE_PATH", filepath.Join(dataDir, "cities.csv")),

		HTTPAddr:         sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,
		ScheduleInterval: scheduleInterval,

		IncludeForecast: includeForecast,
		Granularity:     granularity,
		TopK:            topK,
		Comfort:         comfort,

		QWeatherAPIKey:  os.Getenv("QWEATHER_API_KEY"),
		QWeatherBaseURL: sharedcfg.EnvOrDefault("QWEATHER_BASE_URL", "https://devapi.qweather.com"),
		QWeatherGeoURL:  sharedcfg.EnvOrDefault("QWEATHER_GEO_URL", "https://geoapi.qweather.com"),
		QWeatherTimeout: qweatherTimeout,
		QWeatherDays:    days,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),

		SQLitePath:     os.Getenv("SQLITE_PATH"),
		KafkaBrokers:   sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     sharedcfg.EnvOrDefault("KAFKA_TOPIC", "comfort-rankings"),
		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

// loadComfortWeights starts from the defaults and overlays the YAML file at
// path, if any. Keys absent from the file keep their default.
func loadComfortWeights(path string) (domain.ComfortWeights, error) {
	w := domain.DefaultComfortWeights()
	if path == "" {
		return w, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read COMFORT_CONFIG: %w", err)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, fmt.Errorf("parse COMFORT_CONFIG %s: %w", path, err)
	}
	switch {
	case w.Base <= 0:
		return w, errors.New("comfort base must be positive")
	case w.IdealTempLow > w.IdealTempHigh:
		return w, errors.New("comfort ideal_temp_low exceeds ideal_temp_high")
	case w.IdealHumidityLow > w.IdealHumidityHigh:
		return w, errors.New("comfort ideal_humidity_low exceeds ideal_humidity_high")
	case w.TempWeight < 0 || w.HumidityWeight < 0 || w.PrecipWeight < 0:
		return w, errors.New("comfort weights must not be negative")
	}
	return w, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
