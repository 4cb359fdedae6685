package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/city-weather-etl/internal/config"
	"github.com/couchcryptid/city-weather-etl/internal/domain"
)

// Options selects and parameterizes the stages of a run.
type Options struct {
	Paths           config.Paths
	IncludeForecast bool
	Granularity     domain.Granularity
	TopK            int
	Comfort         domain.ComfortWeights

	// Geocoder resolves missing reference coordinates; nil disables it.
	Geocoder domain.Geocoder
	// Collector, when set, prepends a collect stage over Window, or over the
	// last CollectDays days when Window is zero.
	Collector   Collector
	Window      domain.CollectWindow
	CollectDays int
	// Exporters, when non-empty, append an export stage.
	Exporters []Exporter
}

// OptionsFromConfig copies the aggregation settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Paths:           cfg.Paths(),
		IncludeForecast: cfg.IncludeForecast,
		Granularity:     cfg.Granularity,
		TopK:            cfg.TopK,
		Comfort:         cfg.Comfort,
		CollectDays:     cfg.QWeatherDays,
	}
}

// Stages returns the fixed stage order: collect (optional), daily, monthly,
// yearly, provincial, statistics, comfort, export (optional).
func Stages(o Options, logger *slog.Logger) []Stage {
	p := o.Paths
	source := observationSource{Monthly: p.Monthly, Yearly: p.Yearly, Granularity: o.Granularity}

	var stages []Stage
	if o.Collector != nil {
		stages = append(stages, &CollectStage{
			ReferencePath: p.Reference,
			Window:        o.Window,
			Days:          o.CollectDays,
			Collector:     o.Collector,
		})
	}
	stages = append(stages,
		&DailyStage{
			RawDir:        p.Raw,
			ReferencePath: p.Reference,
			Output:        p.Daily,
			Enricher:      NewCityEnricher(o.Geocoder, logger),
			Logger:        logger.With("stage", StageDaily),
		},
		&MonthlyStage{Input: p.Daily, Output: p.Monthly, IncludeForecast: o.IncludeForecast},
		&YearlyStage{Input: p.Monthly, Output: p.Yearly},
		&ProvincialStage{Input: p.Monthly, ReferencePath: p.Reference, Output: p.Provincial, Granularity: o.Granularity},
		&StatisticsStage{Source: source, Output: p.Statistics, TopK: o.TopK},
		&ComfortStage{Source: source, Output: p.Comfort, Weights: o.Comfort},
	)
	if len(o.Exporters) > 0 {
		stages = append(stages, &ExportStage{
			Monthly:    p.Monthly,
			Yearly:     p.Yearly,
			Provincial: p.Provincial,
			Statistics: p.Statistics,
			Comfort:    p.Comfort,
			Exporters:  o.Exporters,
			Logger:     logger.With("stage", StageExport),
		})
	}
	return stages
}
