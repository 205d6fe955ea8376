package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/persistence/database"
)

// EventRepository reads the tenant's append-only event stream. Payloads are
// decoded into their typed variants here so scorers never touch raw JSON;
// rows that fail decoding are logged and skipped rather than failing the
// whole refresh.
type EventRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewEventRepository creates an event repository for one tenant database
func NewEventRepository(db *database.DB, logger *logging.ChanneledLogger) *EventRepository {
	return &EventRepository{db: db, logger: logger}
}

// FindByTypes returns events of the given types created at or after since,
// in ascending created_at order.
func (r *EventRepository) FindByTypes(tenantID string, types []analytics.EventType, since time.Time) ([]*analytics.Event, error) {
	if len(types) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(types))
	args := make([]interface{}, 0, len(types)+1)
	for i, t := range types {
		placeholders[i] = "?"
		args = append(args, string(t))
	}
	args = append(args, since.UTC().Format(time.RFC3339))

	query := fmt.Sprintf(`
		SELECT id, student_id, event_type, payload, created_at
		FROM events
		WHERE event_type IN (%s) AND created_at >= ?
		ORDER BY created_at ASC`, strings.Join(placeholders, ","))

	rows, err := r.db.QueryTimed(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	var events []*analytics.Event
	skipped := 0
	for rows.Next() {
		var (
			id, eventType, createdAt string
			studentID                *string
			rawPayload               []byte
		)

		if err := rows.Scan(&id, &studentID, &eventType, &rawPayload, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}

		payload, err := analytics.DecodePayload(analytics.EventType(eventType), rawPayload)
		if err != nil {
			skipped++
			r.logger.Debug().Warn("Skipping undecodable event",
				"tenantId", tenantID, "eventId", id, "eventType", eventType, "error", err.Error())
			continue
		}

		ts, err := parseTimestamp(createdAt)
		if err != nil {
			skipped++
			r.logger.Debug().Warn("Skipping event with unparseable created_at",
				"tenantId", tenantID, "eventId", id, "value", createdAt)
			continue
		}

		event := &analytics.Event{
			ID:        id,
			TenantID:  tenantID,
			Type:      analytics.EventType(eventType),
			Payload:   payload,
			CreatedAt: ts,
		}
		if studentID != nil {
			event.StudentID = *studentID
		}
		events = append(events, event)
	}

	if skipped > 0 {
		r.logger.Database().Warn("Skipped undecodable event rows",
			"tenantId", tenantID, "count", skipped)
	}

	return events, rows.Err()
}
