package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
)

type migration struct {
	version     int
	description string
	up          string
}

// migrations is applied in order; append new steps with the next version.
var migrations = []migration{
	{
		version:     1,
		description: "rollup tables",
		up: `
CREATE TABLE IF NOT EXISTS monthly (
    city_id TEXT NOT NULL,
    province TEXT NOT NULL,
    period TEXT NOT NULL,
    year INTEGER NOT NULL,
    month INTEGER NOT NULL,
    temp_min REAL,
    temp_max REAL,
    temp_avg REAL,
    missing_temp_days INTEGER NOT NULL DEFAULT 0,
    precipitation REAL NOT NULL DEFAULT 0,
    humidity REAL,
    wind_speed REAL,
    dominant_condition TEXT,
    day_count INTEGER NOT NULL,
    forecast_days INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (city_id, period)
);

CREATE TABLE IF NOT EXISTS yearly (
    city_id TEXT NOT NULL,
    province TEXT NOT NULL,
    period TEXT NOT NULL,
    year INTEGER NOT NULL,
    temp_min REAL,
    temp_max REAL,
    temp_avg REAL,
    precipitation REAL NOT NULL DEFAULT 0,
    humidity REAL,
    dominant_condition TEXT,
    day_count INTEGER NOT NULL,
    month_count INTEGER NOT NULL,
    complete INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (city_id, period)
);

CREATE TABLE IF NOT EXISTS provincial (
    province TEXT NOT NULL,
    period TEXT NOT NULL,
    granularity TEXT NOT NULL,
    temp_min REAL,
    temp_max REAL,
    temp_avg REAL,
    precipitation_total REAL NOT NULL DEFAULT 0,
    precipitation_avg REAL NOT NULL DEFAULT 0,
    humidity REAL,
    dominant_condition TEXT,
    day_count INTEGER NOT NULL,
    city_count INTEGER NOT NULL,
    PRIMARY KEY (province, period)
);

CREATE TABLE IF NOT EXISTS statistics (
    period TEXT PRIMARY KEY,
    granularity TEXT NOT NULL,
    city_count INTEGER NOT NULL,
    temp_min REAL,
    temp_max REAL,
    temp_mean REAL,
    temp_median REAL,
    temp_p10 REAL,
    temp_p25 REAL,
    temp_p75 REAL,
    temp_p90 REAL,
    coldest_city TEXT,
    warmest_city TEXT,
    wettest_city TEXT,
    driest_city TEXT,
    warmest_top_k TEXT,
    coldest_top_k TEXT,
    wettest_top_k TEXT,
    driest_top_k TEXT
);

CREATE TABLE IF NOT EXISTS comfort (
    period TEXT NOT NULL,
    granularity TEXT NOT NULL,
    rank INTEGER NOT NULL,
    city_id TEXT NOT NULL,
    province TEXT NOT NULL,
    score REAL NOT NULL,
    temp_avg REAL,
    humidity REAL,
    precipitation REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (period, city_id)
);

CREATE INDEX IF NOT EXISTS idx_comfort_rank ON comfort(period, rank);

CREATE TABLE IF NOT EXISTS exports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT,
    exported_at TEXT NOT NULL,
    row_count INTEGER NOT NULL
);
`,
	},
}

func schemaVersion(conn *sql.DB) (int, error) {
	var version int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// migrate brings the schema up to date, tracking progress in PRAGMA user_version.
func migrate(conn *sql.DB, logger *slog.Logger) error {
	current, err := schemaVersion(conn)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		logger.Info("applying sqlite migration", "version", m.version, "description", m.description)

		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.up); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
		// modernc/sqlite rejects user_version changes inside a transaction.
		if _, err := conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			return fmt.Errorf("set version %d: %w", m.version, err)
		}
	}
	return nil
}
