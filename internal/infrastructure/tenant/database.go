package tenant

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/CoursePulse/coursepulse-go/pkg/config"
)

// openDatabase opens the tenant's database with the pool settings from
// config. Turso is preferred when configured, otherwise a local SQLite file
// is created on demand.
func openDatabase(cfg *Config) (*sql.DB, error) {
	var (
		driver string
		dsn    string
	)

	if cfg.TursoDatabaseURL != "" {
		driver = "libsql"
		dsn = cfg.TursoDatabaseURL
		if cfg.TursoAuthToken != "" {
			dsn = fmt.Sprintf("%s?authToken=%s", cfg.TursoDatabaseURL, cfg.TursoAuthToken)
		}
	} else {
		driver = "sqlite3"
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory for tenant %s: %w", cfg.TenantID, err)
		}
		dsn = cfg.SQLitePath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database for tenant %s: %w", driver, cfg.TenantID, err)
	}

	db.SetMaxOpenConns(config.DBMaxOpenConns)
	db.SetMaxIdleConns(config.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute)
	db.SetConnMaxIdleTime(time.Duration(config.DBConnMaxIdleMinutes) * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database for tenant %s: %w", cfg.TenantID, err)
	}

	return db, nil
}
