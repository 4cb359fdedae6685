package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/city-weather-etl/internal/aggregate"
	"github.com/couchcryptid/city-weather-etl/internal/artifact"
	"github.com/couchcryptid/city-weather-etl/internal/domain"
)

// Stage names, in pipeline order.
const (
	StageCollect    = "collect"
	StageDaily      = "daily"
	StageMonthly    = "monthly"
	StageYearly     = "yearly"
	StageProvincial = "provincial"
	StageStatistics = "statistics"
	StageComfort    = "comfort"
	StageExport     = "export"
)

// Collector fetches raw records for the reference cities into the raw
// directory.
type Collector interface {
	Collect(ctx context.Context, cities []domain.City, w domain.CollectWindow) (domain.CollectSummary, error)
}

// Exporter mirrors the final rollups into a downstream sink.
type Exporter interface {
	Name() string
	Export(ctx context.Context, r domain.Rollups) (int, error)
}

// readInput loads a table, rejects one without rows, and runs check over
// the decoded rows when given.
func readInput[T any](path string, codec artifact.Codec[T], check func([]T) error) ([]T, error) {
	rows, err := artifact.Read(path, codec)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.EmptyInputError{Input: path}
	}
	if check != nil {
		if err := check(rows); err != nil {
			return nil, &domain.IOError{Op: "validate", Path: path, Err: err}
		}
	}
	return rows, nil
}

func readReference(path string) ([]domain.City, error) {
	cities, err := readInput(path, artifact.CityCodec, nil)
	if err != nil {
		return nil, fmt.Errorf("load reference table: %w", err)
	}
	return cities, nil
}

// CollectStage runs the collector over every reference city. A zero Window
// is resolved at run time to the last Days days plus the forecast.
type CollectStage struct {
	ReferencePath string
	Window        domain.CollectWindow
	Days          int
	Collector     Collector
}

func (s *CollectStage) Name() string { return StageCollect }

func (s *CollectStage) Run(ctx context.Context) (Report, error) {
	cities, err := readReference(s.ReferencePath)
	if err != nil {
		return Report{}, err
	}
	window := s.Window
	if window.From.IsZero() {
		window = domain.DefaultCollectWindow(domain.Now(), s.Days)
	}
	sum, err := s.Collector.Collect(ctx, cities, window)
	report := Report{RowsIn: len(cities), RowsOut: sum.Rows, Rejected: sum.Failed}
	if err != nil {
		return report, err
	}
	return report, nil
}

// DailyStage builds the canonical daily table from the raw directory.
type DailyStage struct {
	RawDir        string
	ReferencePath string
	Output        string
	Enricher      *CityEnricher
	Logger        *slog.Logger
}

func (s *DailyStage) Name() string { return StageDaily }

func (s *DailyStage) Run(ctx context.Context) (Report, error) {
	logger := s.Logger.With("run_id", domain.RunIDFromContext(ctx))
	cities, err := readReference(s.ReferencePath)
	if err != nil {
		return Report{}, err
	}
	cities, resolved := s.Enricher.Enrich(ctx, cities)
	if resolved > 0 {
		logger.Info("geocoded reference cities", "count", resolved)
	}
	ref, err := domain.NewReference(cities)
	if err != nil {
		return Report{}, fmt.Errorf("load reference table: %w", err)
	}

	scan, err := artifact.ReadRawDir(s.RawDir)
	if err != nil {
		return Report{}, err
	}
	res := aggregate.BuildDaily(scan.Records, ref)

	rejected := append(scan.Rejected, res.Rejected...)
	for _, r := range rejected {
		logger.Warn("skipping malformed record",
			"file", r.File,
			"line", r.Line,
			"city_id", r.CityID,
			"field", r.Field,
			"value", r.Value,
			"reason", r.Reason,
		)
	}
	if len(res.Unmapped) > 0 {
		logger.Warn("cities missing from reference table", "city_ids", res.Unmapped)
	}
	if res.Duplicates > 0 {
		logger.Debug("collapsed duplicate records", "count", res.Duplicates)
	}

	report := Report{RowsIn: len(scan.Records), Rejected: len(rejected), Output: s.Output}
	if len(res.Records) == 0 {
		return report, &domain.EmptyInputError{Input: s.RawDir}
	}
	if err := artifact.Write(s.Output, artifact.DailyCodec, res.Records); err != nil {
		return report, err
	}
	report.RowsOut = len(res.Records)
	return report, nil
}

// MonthlyStage rolls the daily table up to city-months.
type MonthlyStage struct {
	Input           string
	Output          string
	IncludeForecast bool
}

func (s *MonthlyStage) Name() string { return StageMonthly }

func (s *MonthlyStage) Run(_ context.Context) (Report, error) {
	daily, err := readInput(s.Input, artifact.DailyCodec, domain.CheckDailyTable)
	if err != nil {
		return Report{}, err
	}
	months := aggregate.Monthly(daily, s.IncludeForecast)
	report := Report{RowsIn: len(daily), RowsOut: len(months), Output: s.Output}
	if len(months) == 0 {
		return report, &domain.EmptyInputError{Input: s.Input}
	}
	return report, artifact.Write(s.Output, artifact.MonthlyCodec, months)
}

// YearlyStage rolls the monthly table up to city-years.
type YearlyStage struct {
	Input  string
	Output string
}

func (s *YearlyStage) Name() string { return StageYearly }

func (s *YearlyStage) Run(_ context.Context) (Report, error) {
	months, err := readInput(s.Input, artifact.MonthlyCodec, domain.CheckMonthlyTable)
	if err != nil {
		return Report{}, err
	}
	years := aggregate.Yearly(months)
	report := Report{RowsIn: len(months), RowsOut: len(years), Output: s.Output}
	return report, artifact.Write(s.Output, artifact.YearlyCodec, years)
}

// ProvincialStage aggregates the monthly table per province and period.
type ProvincialStage struct {
	Input         string
	ReferencePath string
	Output        string
	Granularity   domain.Granularity
}

func (s *ProvincialStage) Name() string { return StageProvincial }

func (s *ProvincialStage) Run(_ context.Context) (Report, error) {
	months, err := readInput(s.Input, artifact.MonthlyCodec, domain.CheckMonthlyTable)
	if err != nil {
		return Report{}, err
	}
	cities, err := readReference(s.ReferencePath)
	if err != nil {
		return Report{}, err
	}
	ref, err := domain.NewReference(cities)
	if err != nil {
		return Report{}, fmt.Errorf("load reference table: %w", err)
	}

	report := Report{RowsIn: len(months), Output: s.Output}
	provinces, err := aggregate.Provincial(months, ref, s.Granularity)
	if err != nil {
		return report, err
	}
	report.RowsOut = len(provinces)
	return report, artifact.Write(s.Output, artifact.ProvincialCodec, provinces)
}

// observationSource reads per-city observations from the monthly or yearly
// table depending on granularity.
type observationSource struct {
	Monthly     string
	Yearly      string
	Granularity domain.Granularity
}

func (o observationSource) path() string {
	if o.Granularity == domain.GranularityYearly {
		return o.Yearly
	}
	return o.Monthly
}

func (o observationSource) read() ([]aggregate.Observation, error) {
	if o.Granularity == domain.GranularityYearly {
		years, err := readInput(o.Yearly, artifact.YearlyCodec, domain.CheckYearlyTable)
		if err != nil {
			return nil, err
		}
		return aggregate.ObservationsFromYearly(years), nil
	}
	months, err := readInput(o.Monthly, artifact.MonthlyCodec, domain.CheckMonthlyTable)
	if err != nil {
		return nil, err
	}
	return aggregate.ObservationsFromMonthly(months), nil
}

// StatisticsStage computes cross-city statistics per period.
type StatisticsStage struct {
	Source observationSource
	Output string
	TopK   int
}

func (s *StatisticsStage) Name() string { return StageStatistics }

func (s *StatisticsStage) Run(_ context.Context) (Report, error) {
	obs, err := s.Source.read()
	if err != nil {
		return Report{}, err
	}
	stats := aggregate.Statistics(obs, aggregate.StatisticsOptions{TopK: s.TopK})
	report := Report{RowsIn: len(obs), RowsOut: len(stats), Output: s.Output}
	return report, artifact.Write(s.Output, artifact.StatisticsCodec, stats)
}

// ComfortStage ranks cities by comfort score per period.
type ComfortStage struct {
	Source  observationSource
	Output  string
	Weights domain.ComfortWeights
}

func (s *ComfortStage) Name() string { return StageComfort }

func (s *ComfortStage) Run(_ context.Context) (Report, error) {
	obs, err := s.Source.read()
	if err != nil {
		return Report{}, err
	}
	ranking := aggregate.RankComfort(obs, s.Weights)
	report := Report{RowsIn: len(obs), RowsOut: len(ranking), Rejected: len(obs) - len(ranking), Output: s.Output}
	if len(ranking) == 0 {
		return report, &domain.EmptyInputError{Input: s.Source.path()}
	}
	return report, artifact.Write(s.Output, artifact.ComfortCodec, ranking)
}

// ExportStage hands the persisted rollups to each exporter in turn.
type ExportStage struct {
	Monthly    string
	Yearly     string
	Provincial string
	Statistics string
	Comfort    string
	Exporters  []Exporter
	Logger     *slog.Logger
}

func (s *ExportStage) Name() string { return StageExport }

func (s *ExportStage) Run(ctx context.Context) (Report, error) {
	var (
		r   domain.Rollups
		err error
	)
	if r.Monthly, err = artifact.Read(s.Monthly, artifact.MonthlyCodec); err != nil {
		return Report{}, err
	}
	if r.Yearly, err = artifact.Read(s.Yearly, artifact.YearlyCodec); err != nil {
		return Report{}, err
	}
	if r.Provincial, err = artifact.Read(s.Provincial, artifact.ProvincialCodec); err != nil {
		return Report{}, err
	}
	if r.Statistics, err = artifact.Read(s.Statistics, artifact.StatisticsCodec); err != nil {
		return Report{}, err
	}
	if r.Comfort, err = artifact.Read(s.Comfort, artifact.ComfortCodec); err != nil {
		return Report{}, err
	}

	logger := s.Logger.With("run_id", domain.RunIDFromContext(ctx))
	report := Report{RowsIn: len(r.Monthly) + len(r.Yearly) + len(r.Provincial) + len(r.Statistics) + len(r.Comfort)}
	var errs []error
	for _, e := range s.Exporters {
		n, err := e.Export(ctx, r)
		report.RowsOut += n
		if err != nil {
			errs = append(errs, fmt.Errorf("exporter %s: %w", e.Name(), err))
			continue
		}
		logger.Info("exported rollups", "exporter", e.Name(), "rows", n)
	}
	return report, errors.Join(errs...)
}
