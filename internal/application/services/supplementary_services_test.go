package services

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
)

func TestContentPopularityService(t *testing.T) {
	service := NewContentPopularityService(newTestLogger())
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given events inside and outside the trailing window", t, func() {
		s1 := student("s1", now.AddDate(0, 0, -30))
		events := []*analytics.Event{
			activityEvent("s1", now.Add(-2*time.Hour), "hot_lesson"),
			activityEvent("s2", now.Add(-3*time.Hour), "hot_lesson"),
			activityEvent("s1", now.Add(-5*time.Hour), "other_lesson"),
			activityEvent("s1", now.Add(-30*time.Hour), "stale_lesson"),
		}

		result := service.Compute("t1", []*analytics.Student{s1}, events, now)

		Convey("Only recent events count and ranking is by volume", func() {
			So(result.TotalEvents, ShouldEqual, 3)
			So(len(result.Items), ShouldEqual, 2)
			So(result.Items[0].Experience, ShouldEqual, "hot_lesson")
			So(result.Items[0].EventCount, ShouldEqual, 2)
			So(result.Items[0].StudentCount, ShouldEqual, 2)
			So(result.Items[0].Title, ShouldEqual, "Hot Lesson")
		})
	})

	Convey("Given no recent events", t, func() {
		result := service.Compute("t1", nil, nil, now)

		Convey("The defined empty result is returned", func() {
			So(result.Items, ShouldNotBeNil)
			So(result.Items, ShouldBeEmpty)
			So(result.TotalEvents, ShouldEqual, 0)
		})
	})
}

func TestFeedbackThemeService(t *testing.T) {
	service := NewFeedbackThemeService(newTestLogger())
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given feedback across several topics", t, func() {
		events := []*analytics.Event{
			feedbackEvent("s1", now.Add(-1*time.Hour), "pacing", 4),
			feedbackEvent("s2", now.Add(-2*time.Hour), "pacing", 2),
			feedbackEvent("s3", now.Add(-3*time.Hour), "audio", 5),
			feedbackEvent("s4", now.Add(-4*time.Hour), "", 3),
		}

		result := service.Compute("t1", nil, events, now)

		Convey("Themes are ranked by response count with mean ratings", func() {
			So(result.TotalResponses, ShouldEqual, 4)
			So(result.AverageRating, ShouldEqual, 3.5)
			So(len(result.Themes), ShouldEqual, 3)
			So(result.Themes[0].Topic, ShouldEqual, "pacing")
			So(result.Themes[0].Count, ShouldEqual, 2)
			So(result.Themes[0].AverageRating, ShouldEqual, 3)
		})

		Convey("Untagged feedback falls into the general theme", func() {
			topics := make([]string, 0, len(result.Themes))
			for _, theme := range result.Themes {
				topics = append(topics, theme.Topic)
			}
			So(topics, ShouldContain, "general")
		})
	})

	Convey("Given no feedback events", t, func() {
		result := service.Compute("t1", nil, nil, now)

		Convey("The defined empty result is returned", func() {
			So(result.Themes, ShouldNotBeNil)
			So(result.Themes, ShouldBeEmpty)
			So(result.AverageRating, ShouldEqual, 0)
			So(result.TotalResponses, ShouldEqual, 0)
		})
	})
}
