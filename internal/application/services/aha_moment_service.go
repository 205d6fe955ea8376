package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/pkg/config"
)

// AhaMomentService finds the content experiences that correlate with
// engagement spikes, measures time to first breakthrough, and flags students
// who have gone quiet.
type AhaMomentService struct {
	logger *logging.ChanneledLogger
}

// NewAhaMomentService creates the aha-moment detector
func NewAhaMomentService(logger *logging.ChanneledLogger) *AhaMomentService {
	return &AhaMomentService{logger: logger}
}

// Compute runs spike detection, breakthrough timing, and stagnation checks
// over the tenant's qualifying events.
func (s *AhaMomentService) Compute(tenantID string, students []*analytics.Student, events []*analytics.Event, now time.Time) *analytics.AhaMomentResult {
	eventsByStudent := groupEventsByStudent(events)
	if len(eventsByStudent) == 0 {
		return analytics.EmptyAhaMomentResult()
	}

	result := analytics.EmptyAhaMomentResult()
	result.TopExperiences = s.detectSpikes(eventsByStudent)
	result.AverageTimeToFirstWin = s.averageTimeToFirstWin(students, eventsByStudent)
	result.StagnantStudents, result.StagnantCount = s.detectStagnation(eventsByStudent, now)
	return result
}

// detectSpikes compares each student's event volume in the week before their
// first touch of an experience against the week after. Experiences below the
// configured event floor are ignored as noise.
func (s *AhaMomentService) detectSpikes(eventsByStudent map[string][]*analytics.Event) []analytics.ExperienceSpike {
	experienceEventCounts := make(map[string]int)
	firstTouch := make(map[string]map[string]time.Time)

	for studentID, studentEvents := range eventsByStudent {
		for _, event := range studentEvents {
			experience := event.ExperienceID()
			if experience == "" {
				continue
			}
			experienceEventCounts[experience]++
			if firstTouch[experience] == nil {
				firstTouch[experience] = make(map[string]time.Time)
			}
			if _, seen := firstTouch[experience][studentID]; !seen {
				firstTouch[experience][studentID] = event.CreatedAt
			}
		}
	}

	window := time.Duration(config.SpikeWindowDays) * 24 * time.Hour
	var spikes []analytics.ExperienceSpike

	for experience, touches := range firstTouch {
		if experienceEventCounts[experience] < config.ExperienceMinEvents {
			continue
		}

		spikeSum := 0.0
		spikeCount := 0
		for studentID, touchedAt := range touches {
			before := countEventsBetween(eventsByStudent[studentID], touchedAt.Add(-window), touchedAt)
			after := countEventsBetween(eventsByStudent[studentID], touchedAt, touchedAt.Add(window))
			if before < 1 {
				before = 1
			}
			spikePercent := float64(after-before) / float64(before) * 100
			if spikePercent > 0 {
				spikeSum += spikePercent
				spikeCount++
			}
		}
		if spikeCount == 0 {
			continue
		}

		spikes = append(spikes, analytics.ExperienceSpike{
			Experience:          experience,
			Title:               analytics.ExperienceTitle(experience),
			AverageSpikePercent: math.Round(spikeSum/float64(spikeCount)*10) / 10,
			StudentCount:        spikeCount,
		})
	}

	sort.Slice(spikes, func(i, j int) bool {
		if spikes[i].AverageSpikePercent != spikes[j].AverageSpikePercent {
			return spikes[i].AverageSpikePercent > spikes[j].AverageSpikePercent
		}
		return spikes[i].Experience < spikes[j].Experience
	})
	if len(spikes) > config.TopExperiencesLimit {
		spikes = spikes[:config.TopExperiencesLimit]
	}
	return spikes
}

// averageTimeToFirstWin reports the mean hours between account creation and
// first qualifying event, formatted adaptively.
func (s *AhaMomentService) averageTimeToFirstWin(students []*analytics.Student, eventsByStudent map[string][]*analytics.Event) string {
	totalHours := 0.0
	counted := 0
	for _, student := range students {
		studentEvents := eventsByStudent[student.ID]
		if len(studentEvents) == 0 {
			continue
		}
		hours := studentEvents[0].CreatedAt.Sub(student.CreatedAt).Hours()
		if hours < 0 {
			hours = 0
		}
		totalHours += hours
		counted++
	}
	if counted == 0 {
		return "N/A"
	}
	return formatHours(totalHours / float64(counted))
}

func formatHours(hours float64) string {
	switch {
	case hours < 1:
		return fmt.Sprintf("%d min", int(math.Round(hours*60)))
	case hours < 24:
		return fmt.Sprintf("%.1f hours", hours)
	default:
		return fmt.Sprintf("%.1f days", hours/24)
	}
}

// detectStagnation flags students whose latest qualifying event is older
// than the stagnation window. The boundary is strictly greater-than.
func (s *AhaMomentService) detectStagnation(eventsByStudent map[string][]*analytics.Event, now time.Time) ([]analytics.StagnantStudent, int) {
	var stagnant []analytics.StagnantStudent
	for studentID, studentEvents := range eventsByStudent {
		last := studentEvents[len(studentEvents)-1].CreatedAt
		inactiveDays := int(now.Sub(last).Hours() / 24)
		if inactiveDays > config.StagnationDays {
			stagnant = append(stagnant, analytics.StagnantStudent{
				StudentID:             studentID,
				DaysSinceLastActivity: inactiveDays,
			})
		}
	}

	sort.Slice(stagnant, func(i, j int) bool {
		if stagnant[i].DaysSinceLastActivity != stagnant[j].DaysSinceLastActivity {
			return stagnant[i].DaysSinceLastActivity > stagnant[j].DaysSinceLastActivity
		}
		return stagnant[i].StudentID < stagnant[j].StudentID
	})

	total := len(stagnant)
	if len(stagnant) > config.StagnantListLimit {
		stagnant = stagnant[:config.StagnantListLimit]
	}
	return stagnant, total
}

func countEventsBetween(events []*analytics.Event, from, to time.Time) int {
	count := 0
	for _, event := range events {
		if event.CreatedAt.Before(from) || !event.CreatedAt.Before(to) {
			continue
		}
		count++
	}
	return count
}
