package services

import (
	"math"
	"sort"
	"time"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/pkg/config"
)

// FeedbackThemeService aggregates feedback events into per-topic themes with
// response counts and mean ratings.
type FeedbackThemeService struct {
	logger *logging.ChanneledLogger
}

// NewFeedbackThemeService creates the feedback scorer
func NewFeedbackThemeService(logger *logging.ChanneledLogger) *FeedbackThemeService {
	return &FeedbackThemeService{logger: logger}
}

// Compute groups feedback events by topic. Untagged feedback lands in a
// catch-all general theme.
func (s *FeedbackThemeService) Compute(tenantID string, students []*analytics.Student, events []*analytics.Event, now time.Time) *analytics.FeedbackThemesResult {
	type themeStats struct {
		count     int
		ratingSum int
	}

	themes := make(map[string]*themeStats)
	totalResponses := 0
	totalRatingSum := 0

	for _, event := range events {
		payload, ok := event.Payload.(analytics.FeedbackPayload)
		if !ok {
			continue
		}

		topic := payload.Topic
		if topic == "" {
			topic = "general"
		}

		stats, exists := themes[topic]
		if !exists {
			stats = &themeStats{}
			themes[topic] = stats
		}
		stats.count++
		stats.ratingSum += payload.Rating
		totalResponses++
		totalRatingSum += payload.Rating
	}

	if totalResponses == 0 {
		return analytics.EmptyFeedbackThemesResult()
	}

	result := analytics.EmptyFeedbackThemesResult()
	result.TotalResponses = totalResponses
	result.AverageRating = math.Round(float64(totalRatingSum)/float64(totalResponses)*10) / 10

	for topic, stats := range themes {
		result.Themes = append(result.Themes, analytics.FeedbackTheme{
			Topic:         topic,
			Count:         stats.count,
			AverageRating: math.Round(float64(stats.ratingSum)/float64(stats.count)*10) / 10,
		})
	}

	sort.Slice(result.Themes, func(i, j int) bool {
		if result.Themes[i].Count != result.Themes[j].Count {
			return result.Themes[i].Count > result.Themes[j].Count
		}
		return result.Themes[i].Topic < result.Themes[j].Topic
	})
	if len(result.Themes) > config.FeedbackThemesLimit {
		result.Themes = result.Themes[:config.FeedbackThemesLimit]
	}
	return result
}
