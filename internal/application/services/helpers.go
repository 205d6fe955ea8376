package services

import (
	"sort"
	"time"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
)

// groupEventsByStudent buckets events by student and sorts each bucket
// chronologically so scorer output never depends on presentation order.
// Events without a student are dropped here; only the popularity and
// feedback scorers consume anonymous events and they group differently.
func groupEventsByStudent(events []*analytics.Event) map[string][]*analytics.Event {
	grouped := make(map[string][]*analytics.Event)
	for _, event := range events {
		if event.StudentID == "" {
			continue
		}
		grouped[event.StudentID] = append(grouped[event.StudentID], event)
	}
	for _, bucket := range grouped {
		sortEventsChronologically(bucket)
	}
	return grouped
}

func sortEventsChronologically(events []*analytics.Event) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.Before(events[j].CreatedAt)
		}
		return events[i].ID < events[j].ID
	})
}

// eventsInWindow returns the events with from <= created_at < to, preserving
// order.
func eventsInWindow(events []*analytics.Event, from, to time.Time) []*analytics.Event {
	var out []*analytics.Event
	for _, event := range events {
		if event.CreatedAt.Before(from) || !event.CreatedAt.Before(to) {
			continue
		}
		out = append(out, event)
	}
	return out
}

// clampScore bounds a score to [0, 100]
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func clampScoreFloat(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
