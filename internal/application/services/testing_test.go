package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
)

func newTestLogger() *logging.ChanneledLogger {
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToConsole: false,
		OutputToFile:    false,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   map[logging.Channel]slog.Level{},
	})
	if err != nil {
		panic(err)
	}
	return logger
}

var eventSeq int

func activityEvent(studentID string, at time.Time, experienceID string) *analytics.Event {
	eventSeq++
	return &analytics.Event{
		ID:        fmt.Sprintf("evt-%04d", eventSeq),
		TenantID:  "t1",
		StudentID: studentID,
		Type:      analytics.EventTypeActivity,
		Payload:   analytics.ActivityPayload{ExperienceID: experienceID},
		CreatedAt: at,
	}
}

func feedbackEvent(studentID string, at time.Time, topic string, rating int) *analytics.Event {
	eventSeq++
	return &analytics.Event{
		ID:        fmt.Sprintf("evt-%04d", eventSeq),
		TenantID:  "t1",
		StudentID: studentID,
		Type:      analytics.EventTypeFeedback,
		Payload:   analytics.FeedbackPayload{Topic: topic, Rating: rating},
		CreatedAt: at,
	}
}

func student(id string, createdAt time.Time) *analytics.Student {
	return &analytics.Student{ID: id, TenantID: "t1", CreatedAt: createdAt}
}

func reversed(events []*analytics.Event) []*analytics.Event {
	out := make([]*analytics.Event, len(events))
	for i, event := range events {
		out[len(events)-1-i] = event
	}
	return out
}
