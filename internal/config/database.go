package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Canonical database drivers. The names double as database/sql driver names.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DriverName returns the canonical driver for the configured alias, or "" when unknown.
func (d *DatabaseConfig) DriverName() string {
	switch strings.ToLower(strings.TrimSpace(d.Driver)) {
	case "mysql", "tidb":
		return DriverMySQL
	case "postgres", "postgresql", "pq":
		return DriverPostgres
	case "sqlite", "sqlite3":
		return DriverSQLite
	default:
		return ""
	}
}

// EffectiveDSN returns the DSN the driver is opened with.
// MySQL DSNs always get parseTime=true and loc=UTC, and Password replaces the DSN password when set.
// Other drivers use DSN unchanged.
func (d *DatabaseConfig) EffectiveDSN() (string, error) {
	if d.DriverName() != DriverMySQL {
		return d.DSN, nil
	}
	cfg, err := mysql.ParseDSN(strings.TrimSpace(d.DSN))
	if err != nil {
		return "", fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if d.Password != "" {
		cfg.Passwd = d.Password
	}
	return cfg.FormatDSN(), nil
}

// DatabaseName returns the database a MySQL DSN targets. Catalog loading reads this schema.
func (d *DatabaseConfig) DatabaseName() (string, error) {
	if d.DriverName() != DriverMySQL {
		return "", fmt.Errorf("database name is only derived from MySQL DSNs (driver %q)", d.Driver)
	}
	cfg, err := mysql.ParseDSN(strings.TrimSpace(d.DSN))
	if err != nil {
		return "", fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	return cfg.DBName, nil
}
