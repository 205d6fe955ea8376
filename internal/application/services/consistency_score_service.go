package services

import (
	"math"
	"time"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/pkg/config"
)

// ConsistencyScoreService measures week-over-week engagement stability over
// a fixed trailing window of calendar weeks.
type ConsistencyScoreService struct {
	logger *logging.ChanneledLogger
}

// NewConsistencyScoreService creates the consistency scorer
func NewConsistencyScoreService(logger *logging.ChanneledLogger) *ConsistencyScoreService {
	return &ConsistencyScoreService{logger: logger}
}

// Compute scores every student with at least one qualifying event inside the
// trailing window. The week-over-week trend is reported only when the
// earliest half of the window carries genuine activity; it is never
// fabricated from a missing baseline.
func (s *ConsistencyScoreService) Compute(tenantID string, students []*analytics.Student, events []*analytics.Event, now time.Time) *analytics.ConsistencyResult {
	weeks := config.ConsistencyWeeks
	windowStart := now.AddDate(0, 0, -7*weeks)

	eventsByStudent := groupEventsByStudent(events)

	var (
		scores           []float64
		result           = analytics.EmptyConsistencyResult()
		recentActive     int
		baselineActive   int
		halfwayWeekIndex = weeks / 2
	)

	for _, student := range students {
		studentEvents := eventsInWindow(eventsByStudent[student.ID], windowStart, now)
		if len(studentEvents) == 0 {
			continue
		}

		// Bucket events into chronological week slots within the window.
		weekActive := make([]bool, weeks)
		for _, event := range studentEvents {
			slot := int(event.CreatedAt.Sub(windowStart) / (7 * 24 * time.Hour))
			if slot >= 0 && slot < weeks {
				weekActive[slot] = true
			}
		}

		activeWeeks := 0
		earlyActive := 0
		lateActive := 0
		for slot, active := range weekActive {
			if !active {
				continue
			}
			activeWeeks++
			if slot < halfwayWeekIndex {
				earlyActive++
			} else {
				lateActive++
			}
		}

		weeksActiveFrac := float64(activeWeeks) / float64(weeks)
		pattern := patternConsistency(studentEvents)

		decay := 0.0
		if earlyActive > 0 {
			decay = math.Max(0, float64(earlyActive-lateActive)/float64(earlyActive))
		}

		score := clampScoreFloat(100 * (config.WeeksActiveShare*weeksActiveFrac +
			config.PatternConsistencyShare*pattern +
			config.DecayShare*(1-decay)))

		scores = append(scores, score)
		baselineActive += earlyActive
		recentActive += lateActive

		rounded := int(math.Round(score))
		switch {
		case rounded >= config.ScoreBandHigh:
			result.Distribution.High++
		case rounded >= config.ScoreBandMedium:
			result.Distribution.Medium++
		default:
			result.Distribution.Low++
		}
	}

	if len(scores) == 0 {
		return analytics.EmptyConsistencyResult()
	}

	sum := 0.0
	for _, score := range scores {
		sum += score
	}
	result.AverageScore = int(math.Round(sum / float64(len(scores))))
	result.TotalStudents = len(scores)

	// Trend needs activity in the baseline half of the window to be genuine.
	if baselineActive > 0 {
		trend := (float64(recentActive) - float64(baselineActive)) / float64(baselineActive) * 100
		trend = math.Round(trend*10) / 10
		result.WeekOverWeekTrend = &trend
		result.TrendAvailable = true
	}

	return result
}

// patternConsistency scores whether a student engages on the same days of
// the week and at the same hours. Day spread and hour spread combine with
// configured weights.
func patternConsistency(events []*analytics.Event) float64 {
	uniqueDays := make(map[time.Weekday]struct{})
	var hours []float64
	for _, event := range events {
		ts := event.CreatedAt.UTC()
		uniqueDays[ts.Weekday()] = struct{}{}
		hours = append(hours, float64(ts.Hour()))
	}

	dayConsistency := 1 - float64(len(uniqueDays)-1)/7
	hourConsistency := math.Max(0, 1-hourStdDev(hours)/config.ConsistencyHourStdCap)

	return config.ConsistencyDayWeight*dayConsistency + config.ConsistencyHourWeight*hourConsistency
}

func hourStdDev(hours []float64) float64 {
	if len(hours) < 2 {
		return 0
	}
	mean := 0.0
	for _, h := range hours {
		mean += h
	}
	mean /= float64(len(hours))

	variance := 0.0
	for _, h := range hours {
		variance += (h - mean) * (h - mean)
	}
	variance /= float64(len(hours))
	return math.Sqrt(variance)
}
