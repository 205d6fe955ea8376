// Package analytics implements the SQL repositories backing the scoring
// pipeline. Each repository holds a per-tenant database handle obtained from
// the tenant context.
package analytics

import (
	"fmt"
	"time"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/persistence/database"
)

// StudentRepository reads the tenant's student roster
type StudentRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewStudentRepository creates a student repository for one tenant database
func NewStudentRepository(db *database.DB, logger *logging.ChanneledLogger) *StudentRepository {
	return &StudentRepository{db: db, logger: logger}
}

// FindAll returns every student in the tenant, oldest first
func (r *StudentRepository) FindAll(tenantID string) ([]*analytics.Student, error) {
	query := `
		SELECT id, email, created_at
		FROM students
		ORDER BY created_at ASC`

	rows, err := r.db.QueryTimed(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query students for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	var students []*analytics.Student
	for rows.Next() {
		var student analytics.Student
		var createdAt string

		if err := rows.Scan(&student.ID, &student.Email, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan student row: %w", err)
		}

		parsed, err := parseTimestamp(createdAt)
		if err != nil {
			r.logger.Database().Warn("Skipping student with unparseable created_at",
				"tenantId", tenantID, "studentId", student.ID, "value", createdAt)
			continue
		}

		student.TenantID = tenantID
		student.CreatedAt = parsed
		students = append(students, &student)
	}

	return students, rows.Err()
}

// parseTimestamp accepts the timestamp formats SQLite and libsql emit
func parseTimestamp(value string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
