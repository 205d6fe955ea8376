// Package services contains the scoring pipeline: one scorer service per
// metric family plus the refresh orchestrator that feeds them and persists
// their results.
package services

import (
	"math"
	"sort"
	"time"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/pkg/config"
)

// CommitmentScoreService computes the per-student completion-likelihood
// heuristic over each student's first onboarding week.
type CommitmentScoreService struct {
	logger *logging.ChanneledLogger
}

// NewCommitmentScoreService creates the commitment scorer
func NewCommitmentScoreService(logger *logging.ChanneledLogger) *CommitmentScoreService {
	return &CommitmentScoreService{logger: logger}
}

// Compute scores every student with at least one qualifying event inside
// their onboarding window. Students with zero qualifying events are excluded
// from all aggregates, never scored as 0.
func (s *CommitmentScoreService) Compute(tenantID string, students []*analytics.Student, events []*analytics.Event, now time.Time) *analytics.CommitmentResult {
	if len(students) == 0 {
		return analytics.EmptyCommitmentResult()
	}

	eventsByStudent := groupEventsByStudent(events)

	type scored struct {
		studentID   string
		score       int
		riskFactors []string
	}

	var records []scored
	for _, student := range students {
		studentEvents := eventsInWindow(
			eventsByStudent[student.ID],
			student.CreatedAt,
			student.CreatedAt.AddDate(0, 0, config.OnboardingWindowDays),
		)
		if len(studentEvents) == 0 {
			continue
		}

		timeScore := firstActivityScore(student.CreatedAt, studentEvents[0].CreatedAt)
		frequencyScore := engagementFrequencyScore(studentEvents)
		explorationScore := explorationBreadthScore(studentEvents)

		total := clampScore(timeScore + frequencyScore + explorationScore)
		records = append(records, scored{
			studentID:   student.ID,
			score:       total,
			riskFactors: commitmentRiskFactors(timeScore, frequencyScore, explorationScore, studentEvents),
		})
	}

	if len(records) == 0 {
		return analytics.EmptyCommitmentResult()
	}

	result := analytics.EmptyCommitmentResult()
	result.TotalStudents = len(records)

	sum := 0
	for _, record := range records {
		sum += record.score
		switch {
		case record.score >= config.ScoreBandHigh:
			result.Distribution.High++
		case record.score >= config.ScoreBandMedium:
			result.Distribution.Medium++
		default:
			result.Distribution.AtRisk++
		}
	}
	result.AverageScore = int(math.Round(float64(sum) / float64(len(records))))

	sort.Slice(records, func(i, j int) bool {
		if records[i].score != records[j].score {
			return records[i].score < records[j].score
		}
		return records[i].studentID < records[j].studentID
	})

	for _, record := range records {
		if record.score >= config.ScoreBandMedium {
			break
		}
		if len(result.AtRiskStudents) >= config.AtRiskListLimit {
			break
		}
		result.AtRiskStudents = append(result.AtRiskStudents, analytics.AtRiskStudent{
			StudentID:   record.studentID,
			Score:       record.score,
			RiskFactors: record.riskFactors,
		})
	}

	return result
}

// firstActivityScore awards up to 40 points for a fast first touch
func firstActivityScore(createdAt, firstEvent time.Time) int {
	elapsed := firstEvent.Sub(createdAt)
	switch {
	case elapsed <= time.Duration(config.FirstActivityFastHours)*time.Hour:
		return 40
	case elapsed <= time.Duration(config.FirstActivityMediumHours)*time.Hour:
		return 30
	case elapsed <= time.Duration(config.FirstActivitySlowHours)*time.Hour:
		return 20
	default:
		return 10
	}
}

// engagementFrequencyScore awards up to 35 points for distinct active days
func engagementFrequencyScore(events []*analytics.Event) int {
	days := make(map[string]struct{})
	for _, event := range events {
		days[event.CreatedAt.UTC().Format("2006-01-02")] = struct{}{}
	}
	switch {
	case len(days) >= 7:
		return 35
	case len(days) >= 5:
		return 25
	case len(days) >= 3:
		return 15
	case len(days) >= 1:
		return 5
	default:
		return 0
	}
}

// explorationBreadthScore awards up to 25 points for distinct experiences
func explorationBreadthScore(events []*analytics.Event) int {
	experiences := make(map[string]struct{})
	for _, event := range events {
		if id := event.ExperienceID(); id != "" {
			experiences[id] = struct{}{}
		}
	}
	switch {
	case len(experiences) >= 5:
		return 25
	case len(experiences) >= 3:
		return 18
	case len(experiences) >= 2:
		return 10
	case len(experiences) == 1:
		return 5
	default:
		return 0
	}
}

func commitmentRiskFactors(timeScore, frequencyScore, explorationScore int, events []*analytics.Event) []string {
	var factors []string
	if timeScore < 20 {
		factors = append(factors, "Slow start after enrollment")
	}
	if frequencyScore < 15 {
		factors = append(factors, "Low engagement frequency")
	}
	if explorationScore < 10 {
		factors = append(factors, "Narrow content exploration")
	}
	if len(events) < config.RiskFactorMinEvents {
		factors = append(factors, "Very few total events")
	}

	maxGap := time.Duration(config.RiskFactorMaxGapHours) * time.Hour
	for i := 1; i < len(events); i++ {
		if events[i].CreatedAt.Sub(events[i-1].CreatedAt) > maxGap {
			factors = append(factors, "Long gap between sessions")
			break
		}
	}
	return factors
}
