// Package sqlite mirrors the final rollup tables into a SQLite database so
// they can be queried with SQL. Each export replaces every table in full.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/city-weather-etl/internal/domain"
	"github.com/couchcryptid/city-weather-etl/internal/observability"

	_ "modernc.org/sqlite"
)

// Store is a SQLite rollup mirror. It implements the pipeline exporter.
type Store struct {
	conn    *sql.DB
	path    string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// Open creates or opens the database at path and applies pending migrations.
func Open(path string, metrics *observability.Metrics, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if err := migrate(conn, logger); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{conn: conn, path: path, metrics: metrics, logger: logger}, nil
}

// Name identifies the exporter in logs and metrics.
func (s *Store) Name() string { return "sqlite" }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error { return s.conn.Close() }

type tableWrite struct {
	table string
	rows  int
	write func(ctx context.Context, tx *sql.Tx) error
}

// Export replaces every rollup table inside one transaction and records the
// run in the exports log. Either all tables change or none do.
func (s *Store) Export(ctx context.Context, r domain.Rollups) (int, error) {
	writes := []tableWrite{
		{"monthly", len(r.Monthly), func(ctx context.Context, tx *sql.Tx) error { return insertMonthly(ctx, tx, r.Monthly) }},
		{"yearly", len(r.Yearly), func(ctx context.Context, tx *sql.Tx) error { return insertYearly(ctx, tx, r.Yearly) }},
		{"provincial", len(r.Provincial), func(ctx context.Context, tx *sql.Tx) error { return insertProvincial(ctx, tx, r.Provincial) }},
		{"statistics", len(r.Statistics), func(ctx context.Context, tx *sql.Tx) error { return insertStatistics(ctx, tx, r.Statistics) }},
		{"comfort", len(r.Comfort), func(ctx context.Context, tx *sql.Tx) error { return insertComfort(ctx, tx, r.Comfort) }},
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin export: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	total := 0
	for _, w := range writes {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+w.table); err != nil {
			return 0, fmt.Errorf("clear %s: %w", w.table, err)
		}
		if err := w.write(ctx, tx); err != nil {
			return 0, fmt.Errorf("insert %s: %w", w.table, err)
		}
		total += w.rows
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO exports (run_id, exported_at, row_count) VALUES (?, ?, ?)`,
		domain.RunIDFromContext(ctx), domain.Now().Format(time.RFC3339), total,
	); err != nil {
		return 0, fmt.Errorf("record export: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit export: %w", err)
	}

	for _, w := range writes {
		s.metrics.ExportedRows.WithLabelValues(s.Name(), w.table).Add(float64(w.rows))
	}
	s.logger.Debug("sqlite export committed", "path", s.path, "rows", total)
	return total, nil
}

func insertMonthly(ctx context.Context, tx *sql.Tx, rows []domain.MonthlySummary) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO monthly (
		city_id, province, period, year, month, temp_min, temp_max, temp_avg,
		missing_temp_days, precipitation, humidity, wind_speed,
		dominant_condition, day_count, forecast_days
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, m := range rows {
		if _, err := stmt.ExecContext(ctx,
			m.CityID, m.Province, m.Period(), m.Year, m.Month, m.TempMin, m.TempMax, m.TempAvg,
			m.MissingTempDays, m.Precipitation, m.Humidity, m.WindSpeed,
			m.DominantCondition, m.DayCount, m.ForecastDays,
		); err != nil {
			return fmt.Errorf("%s %s: %w", m.CityID, m.Period(), err)
		}
	}
	return nil
}

func insertYearly(ctx context.Context, tx *sql.Tx, rows []domain.YearlySummary) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO yearly (
		city_id, province, period, year, temp_min, temp_max, temp_avg,
		precipitation, humidity, dominant_condition, day_count, month_count, complete
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, y := range rows {
		if _, err := stmt.ExecContext(ctx,
			y.CityID, y.Province, y.Period(), y.Year, y.TempMin, y.TempMax, y.TempAvg,
			y.Precipitation, y.Humidity, y.DominantCondition, y.DayCount, y.MonthCount, y.Complete,
		); err != nil {
			return fmt.Errorf("%s %s: %w", y.CityID, y.Period(), err)
		}
	}
	return nil
}

func insertProvincial(ctx context.Context, tx *sql.Tx, rows []domain.ProvincialSummary) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO provincial (
		province, period, granularity, temp_min, temp_max, temp_avg,
		precipitation_total, precipitation_avg, humidity, dominant_condition,
		day_count, city_count
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range rows {
		if _, err := stmt.ExecContext(ctx,
			p.Province, p.Period, string(p.Granularity), p.TempMin, p.TempMax, p.TempAvg,
			p.PrecipitationTotal, p.PrecipitationAvg, p.Humidity, p.DominantCondition,
			p.DayCount, p.CityCount,
		); err != nil {
			return fmt.Errorf("%s %s: %w", p.Province, p.Period, err)
		}
	}
	return nil
}

func insertStatistics(ctx context.Context, tx *sql.Tx, rows []domain.StatisticsSummary) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO statistics (
		period, granularity, city_count, temp_min, temp_max, temp_mean, temp_median,
		temp_p10, temp_p25, temp_p75, temp_p90,
		coldest_city, warmest_city, wettest_city, driest_city,
		warmest_top_k, coldest_top_k, wettest_top_k, driest_top_k
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, st := range rows {
		if _, err := stmt.ExecContext(ctx,
			st.Period, string(st.Granularity), st.CityCount, st.TempMin, st.TempMax, st.TempMean, st.TempMedian,
			st.TempP10, st.TempP25, st.TempP75, st.TempP90,
			st.ColdestCity, st.WarmestCity, st.WettestCity, st.DriestCity,
			joinList(st.WarmestTopK), joinList(st.ColdestTopK), joinList(st.WettestTopK), joinList(st.DriestTopK),
		); err != nil {
			return fmt.Errorf("%s: %w", st.Period, err)
		}
	}
	return nil
}

func insertComfort(ctx context.Context, tx *sql.Tx, rows []domain.ComfortRanking) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO comfort (
		period, granularity, rank, city_id, province, score,
		temp_avg, humidity, precipitation
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, c := range rows {
		if _, err := stmt.ExecContext(ctx,
			c.Period, string(c.Granularity), c.Rank, c.CityID, c.Province, c.Score,
			c.TempAvg, c.Humidity, c.Precipitation,
		); err != nil {
			return fmt.Errorf("%s %s: %w", c.Period, c.CityID, err)
		}
	}
	return nil
}

func joinList(ids []string) string { return strings.Join(ids, ";") }
