package analytics

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDecodePayload(t *testing.T) {
	Convey("Each event type decodes into its own payload variant", t, func() {
		payload, err := DecodePayload(EventTypeActivity, []byte(`{"experienceId":"lesson_one","durationSeconds":120}`))
		So(err, ShouldBeNil)
		activity, ok := payload.(ActivityPayload)
		So(ok, ShouldBeTrue)
		So(activity.ExperienceID, ShouldEqual, "lesson_one")
		So(activity.DurationSeconds, ShouldEqual, 120)

		payload, err = DecodePayload(EventTypeFeedback, []byte(`{"rating":4,"topic":"pacing"}`))
		So(err, ShouldBeNil)
		feedback, ok := payload.(FeedbackPayload)
		So(ok, ShouldBeTrue)
		So(feedback.Rating, ShouldEqual, 4)
		So(feedback.Topic, ShouldEqual, "pacing")

		payload, err = DecodePayload(EventTypeSubscription, []byte(`{"plan":"pro","mrrCents":4900}`))
		So(err, ShouldBeNil)
		subscription, ok := payload.(SubscriptionPayload)
		So(ok, ShouldBeTrue)
		So(subscription.MRRCents, ShouldEqual, 4900)
	})

	Convey("An empty payload decodes to the zero-valued variant", t, func() {
		payload, err := DecodePayload(EventTypeEngagement, nil)
		So(err, ShouldBeNil)
		engagement, ok := payload.(EngagementPayload)
		So(ok, ShouldBeTrue)
		So(engagement.ExperienceID, ShouldEqual, "")
	})

	Convey("An unknown event type is rejected", t, func() {
		_, err := DecodePayload(EventType("page_view"), []byte(`{}`))
		So(err, ShouldNotBeNil)
		unknownErr, ok := err.(*ErrUnknownEventType)
		So(ok, ShouldBeTrue)
		So(unknownErr.Type, ShouldEqual, "page_view")
	})

	Convey("Malformed JSON is rejected, not silently zeroed", t, func() {
		_, err := DecodePayload(EventTypeActivity, []byte(`{"experienceId":`))
		So(err, ShouldNotBeNil)
	})
}

func TestEventExperienceID(t *testing.T) {
	Convey("Experience-carrying payloads expose their tag", t, func() {
		event := &Event{Type: EventTypeActivity, Payload: ActivityPayload{ExperienceID: "lesson_one"}}
		So(event.ExperienceID(), ShouldEqual, "lesson_one")

		event = &Event{Type: EventTypeSubscription, Payload: SubscriptionPayload{Plan: "pro"}}
		So(event.ExperienceID(), ShouldEqual, "")
	})
}

func TestExperienceTitle(t *testing.T) {
	Convey("Tags format into human-readable titles", t, func() {
		So(ExperienceTitle("video_basics"), ShouldEqual, "Video Basics")
		So(ExperienceTitle("INTRO"), ShouldEqual, "Intro")
		So(ExperienceTitle("module_3_quiz"), ShouldEqual, "Module 3 Quiz")
		So(ExperienceTitle(""), ShouldEqual, "")
	})
}
