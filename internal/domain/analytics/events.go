// Package analytics defines the domain model for the engagement-scoring
// pipeline: students, typed platform events, and the result shapes persisted
// into the metrics cache.
package analytics

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EventType is the closed tag set of platform webhook events.
type EventType string

const (
	EventTypeActivity     EventType = "activity"
	EventTypeEngagement   EventType = "engagement"
	EventTypeEnrollment   EventType = "enrollment"
	EventTypeSubscription EventType = "subscription"
	EventTypeFeedback     EventType = "feedback"
)

// EngagementEventTypes is the subset consumed by the commitment, consistency,
// aha-moment, pathway, and popular-content scorers.
func EngagementEventTypes() []EventType {
	return []EventType{EventTypeActivity, EventTypeEngagement}
}

// ErrUnknownEventType marks a payload whose event_type is outside the closed
// tag set. Rows carrying it are skipped at the persistence boundary.
type ErrUnknownEventType struct {
	Type string
}

func (e *ErrUnknownEventType) Error() string {
	return fmt.Sprintf("unknown event type %q", e.Type)
}

// Payload is the tagged union of per-event-type payload shapes. Each variant
// carries only the fields its scorers read; unrecognized shapes are rejected
// once at decode time so scorers never probe optional fields.
type Payload interface {
	isPayload()
}

// ActivityPayload is carried by activity events (lesson views, video plays).
type ActivityPayload struct {
	ExperienceID    string `json:"experienceId"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

// EngagementPayload is carried by engagement events (comments, quiz attempts).
type EngagementPayload struct {
	ExperienceID string `json:"experienceId"`
	Action       string `json:"action,omitempty"`
}

// EnrollmentPayload is carried by enrollment events.
type EnrollmentPayload struct {
	CourseID string `json:"courseId"`
	Plan     string `json:"plan,omitempty"`
}

// SubscriptionPayload is carried by subscription lifecycle events.
type SubscriptionPayload struct {
	Plan     string `json:"plan"`
	MRRCents int    `json:"mrrCents,omitempty"`
}

// FeedbackPayload is carried by feedback events.
type FeedbackPayload struct {
	ExperienceID string `json:"experienceId,omitempty"`
	Rating       int    `json:"rating"`
	Topic        string `json:"topic,omitempty"`
}

func (ActivityPayload) isPayload()     {}
func (EngagementPayload) isPayload()   {}
func (EnrollmentPayload) isPayload()   {}
func (SubscriptionPayload) isPayload() {}
func (FeedbackPayload) isPayload()     {}

// DecodePayload parses a raw payload document against the variant for its
// event type.
func DecodePayload(eventType EventType, raw []byte) (Payload, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	switch eventType {
	case EventTypeActivity:
		var p ActivityPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("malformed activity payload: %w", err)
		}
		return p, nil
	case EventTypeEngagement:
		var p EngagementPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("malformed engagement payload: %w", err)
		}
		return p, nil
	case EventTypeEnrollment:
		var p EnrollmentPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("malformed enrollment payload: %w", err)
		}
		return p, nil
	case EventTypeSubscription:
		var p SubscriptionPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("malformed subscription payload: %w", err)
		}
		return p, nil
	case EventTypeFeedback:
		var p FeedbackPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("malformed feedback payload: %w", err)
		}
		return p, nil
	}

	return nil, &ErrUnknownEventType{Type: string(eventType)}
}

// Event is one append-only row from a tenant's event stream.
type Event struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	StudentID string    `json:"studentId,omitempty"`
	Type      EventType `json:"eventType"`
	Payload   Payload   `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExperienceID returns the content experience an event touched, or "" for
// event types that carry none.
func (e *Event) ExperienceID() string {
	switch p := e.Payload.(type) {
	case ActivityPayload:
		return p.ExperienceID
	case EngagementPayload:
		return p.ExperienceID
	case FeedbackPayload:
		return p.ExperienceID
	}
	return ""
}

// ExperienceTitle formats a raw experience tag into a human-readable title:
// underscores become spaces, each word is title-cased.
func ExperienceTitle(tag string) string {
	words := strings.Split(strings.ReplaceAll(tag, "_", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
