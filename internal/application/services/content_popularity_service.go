package services

import (
	"sort"
	"time"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/pkg/config"
)

// ContentPopularityService ranks experiences by event volume over a trailing
// daily window. This is the cheapest scorer and runs on the light tier.
type ContentPopularityService struct {
	logger *logging.ChanneledLogger
}

// NewContentPopularityService creates the popularity scorer
func NewContentPopularityService(logger *logging.ChanneledLogger) *ContentPopularityService {
	return &ContentPopularityService{logger: logger}
}

// Compute counts per-experience events and distinct students inside the
// trailing window.
func (s *ContentPopularityService) Compute(tenantID string, students []*analytics.Student, events []*analytics.Event, now time.Time) *analytics.PopularContentResult {
	windowStart := now.Add(-config.PopularContentWindow)

	type counts struct {
		events   int
		students map[string]struct{}
	}
	byExperience := make(map[string]*counts)
	totalEvents := 0

	for _, event := range events {
		if event.CreatedAt.Before(windowStart) || event.CreatedAt.After(now) {
			continue
		}
		experience := event.ExperienceID()
		if experience == "" {
			continue
		}

		c, exists := byExperience[experience]
		if !exists {
			c = &counts{students: make(map[string]struct{})}
			byExperience[experience] = c
		}
		c.events++
		totalEvents++
		if event.StudentID != "" {
			c.students[event.StudentID] = struct{}{}
		}
	}

	if totalEvents == 0 {
		return analytics.EmptyPopularContentResult()
	}

	result := analytics.EmptyPopularContentResult()
	result.TotalEvents = totalEvents
	for experience, c := range byExperience {
		result.Items = append(result.Items, analytics.PopularContentItem{
			Experience:   experience,
			Title:        analytics.ExperienceTitle(experience),
			EventCount:   c.events,
			StudentCount: len(c.students),
		})
	}

	sort.Slice(result.Items, func(i, j int) bool {
		if result.Items[i].EventCount != result.Items[j].EventCount {
			return result.Items[i].EventCount > result.Items[j].EventCount
		}
		return result.Items[i].Experience < result.Items[j].Experience
	})
	if len(result.Items) > config.PopularContentLimit {
		result.Items = result.Items[:config.PopularContentLimit]
	}
	return result
}
