// Package database provides the shared database wrapper used by the
// per-tenant repositories.
package database

import (
	"database/sql"
	"time"

	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/pkg/config"
)

// DB wraps a per-tenant sql.DB handle with slow-query instrumentation
type DB struct {
	*sql.DB
	TenantID string
	logger   *logging.ChanneledLogger
}

// New wraps an open connection for a tenant
func New(conn *sql.DB, tenantID string, logger *logging.ChanneledLogger) *DB {
	return &DB{DB: conn, TenantID: tenantID, logger: logger}
}

// QueryTimed runs a query and logs it when it exceeds the slow-query threshold
func (db *DB) QueryTimed(query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.Query(query, args...)
	db.observe(query, start)
	return rows, err
}

// ExecTimed runs a statement and logs it when it exceeds the slow-query threshold
func (db *DB) ExecTimed(query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := db.Exec(query, args...)
	db.observe(query, start)
	return result, err
}

func (db *DB) observe(query string, start time.Time) {
	elapsed := time.Since(start)
	if db.logger != nil && elapsed > config.SlowQueryThreshold {
		db.logger.LogSlowQuery(query, elapsed, db.TenantID)
	}
}
