package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkaadapter "github.com/couchcryptid/city-weather-etl/internal/adapter/kafka"
	"github.com/couchcryptid/city-weather-etl/internal/adapter/mapbox"
	"github.com/couchcryptid/city-weather-etl/internal/adapter/qweather"
	"github.com/couchcryptid/city-weather-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/city-weather-etl/internal/config"
	"github.com/couchcryptid/city-weather-etl/internal/domain"
	"github.com/couchcryptid/city-weather-etl/internal/pipeline"
)

// collectFlags are shared by commands that can fetch from QWeather.
type collectFlags struct {
	collect   bool
	apiKey    string
	startDate string
	endDate   string
}

// window returns the explicit date range, or a zero window meaning "the last
// QWEATHER_DAYS days plus the forecast" resolved at run time.
func (f collectFlags) window() (domain.CollectWindow, error) {
	if f.startDate == "" && f.endDate == "" {
		return domain.CollectWindow{}, nil
	}
	if f.startDate == "" || f.endDate == "" {
		return domain.CollectWindow{}, errors.New("--start-date and --end-date must be given together")
	}
	from, err := time.Parse(domain.DateLayout, f.startDate)
	if err != nil {
		return domain.CollectWindow{}, fmt.Errorf("invalid --start-date %q: want YYYY-MM-DD", f.startDate)
	}
	to, err := time.Parse(domain.DateLayout, f.endDate)
	if err != nil {
		return domain.CollectWindow{}, fmt.Errorf("invalid --end-date %q: want YYYY-MM-DD", f.endDate)
	}
	if to.Before(from) {
		return domain.CollectWindow{}, fmt.Errorf("--end-date %s is before --start-date %s", f.endDate, f.startDate)
	}
	return domain.CollectWindow{From: from, To: to}, nil
}

// wiring owns the adapters built for one command and closes them.
type wiring struct {
	closers []func() error
}

func (w *wiring) close() {
	for _, c := range w.closers {
		if err := c(); err != nil {
			logger.Error("close adapter", "error", err)
		}
	}
}

// collectorConfig derives the QWeather settings from c, with --api-key taking
// precedence over QWEATHER_API_KEY. c is left untouched.
func (f collectFlags) collectorConfig(c *config.Config) qweather.Config {
	apiKey := c.QWeatherAPIKey
	if f.apiKey != "" {
		apiKey = f.apiKey
	}
	return qweather.Config{
		APIKey:  apiKey,
		BaseURL: c.QWeatherBaseURL,
		GeoURL:  c.QWeatherGeoURL,
		Timeout: c.QWeatherTimeout,
		RawDir:  c.RawDir,
	}
}

// options builds the pipeline options from cfg plus the optional adapters.
func (w *wiring) options(flags collectFlags, exporters bool) (pipeline.Options, error) {
	opts := pipeline.OptionsFromConfig(cfg)

	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		opts.Geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		metrics.GeocodeEnabled.Set(0)
		logger.Info("mapbox geocoding disabled")
	}

	if !flags.collect && (flags.startDate != "" || flags.endDate != "") {
		return opts, errors.New("--start-date and --end-date require --collect")
	}
	if flags.collect {
		qcfg := flags.collectorConfig(cfg)
		if qcfg.APIKey == "" {
			return opts, errors.New("collecting requires an API key (--api-key or QWEATHER_API_KEY)")
		}
		window, err := flags.window()
		if err != nil {
			return opts, err
		}
		opts.Window = window
		opts.Collector = qweather.NewCollector(qcfg, metrics, logger)
	}

	if !exporters {
		return opts, nil
	}
	if cfg.SQLitePath != "" {
		store, err := sqlite.Open(cfg.SQLitePath, metrics, logger)
		if err != nil {
			return opts, err
		}
		w.closers = append(w.closers, store.Close)
		opts.Exporters = append(opts.Exporters, store)
		logger.Info("sqlite export enabled", "path", cfg.SQLitePath)
	}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafkaadapter.NewRankingPublisher(cfg, logger, metrics)
		w.closers = append(w.closers, publisher.Close)
		opts.Exporters = append(opts.Exporters, publisher)
		logger.Info("kafka ranking publisher enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	return opts, nil
}

// pushMetrics sends the run's metrics to the Pushgateway when configured.
// A failed push is logged, never fatal.
func pushMetrics(ctx context.Context) {
	if cfg.PushgatewayURL == "" {
		return
	}
	if err := metrics.Push(ctx, cfg.PushgatewayURL); err != nil {
		logger.Warn("pushgateway push failed", "url", cfg.PushgatewayURL, "error", err)
	}
}
