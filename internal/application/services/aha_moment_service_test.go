package services

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
)

func TestAhaMomentService(t *testing.T) {
	service := NewAhaMomentService(newTestLogger())
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given an experience below the event floor", t, func() {
		s := student("s1", now.AddDate(0, 0, -30))

		// Exactly 4 events on one tag, under the 5-event minimum.
		var events []*analytics.Event
		for i := 0; i < 4; i++ {
			events = append(events, activityEvent("s1",
				now.AddDate(0, 0, -20).Add(time.Duration(i)*time.Hour), "quiet_tag"))
		}

		result := service.Compute("t1", []*analytics.Student{s}, events, now)

		Convey("The experience is excluded from the top list", func() {
			So(result.TopExperiences, ShouldBeEmpty)
		})
	})

	Convey("Given an experience that triggers an engagement spike", t, func() {
		s1 := student("s1", now.AddDate(0, 0, -40))
		s2 := student("s2", now.AddDate(0, 0, -40))
		touch := now.AddDate(0, 0, -20)

		var events []*analytics.Event
		for _, id := range []string{"s1", "s2"} {
			// One event the week before first touch, a burst the week after.
			events = append(events, activityEvent(id, touch.AddDate(0, 0, -3), "warmup"))
			events = append(events, activityEvent(id, touch, "video_basics"))
			for i := 1; i <= 4; i++ {
				events = append(events, activityEvent(id,
					touch.AddDate(0, 0, 1).Add(time.Duration(i)*time.Hour), "video_basics"))
			}
		}

		result := service.Compute("t1", []*analytics.Student{s1, s2}, events, now)

		Convey("The experience ranks with a formatted title and positive spike", func() {
			So(len(result.TopExperiences), ShouldBeGreaterThan, 0)
			top := result.TopExperiences[0]
			So(top.Experience, ShouldEqual, "video_basics")
			So(top.Title, ShouldEqual, "Video Basics")
			So(top.AverageSpikePercent, ShouldBeGreaterThan, 0)
			So(top.StudentCount, ShouldEqual, 2)
		})
	})

	Convey("Given students on either side of the stagnation boundary", t, func() {
		s1 := student("s-stagnant", now.AddDate(0, 0, -60))
		s2 := student("s-recent", now.AddDate(0, 0, -60))
		events := []*analytics.Event{
			activityEvent("s-stagnant", now.AddDate(0, 0, -15), "lesson_one"),
			activityEvent("s-recent", now.AddDate(0, 0, -13), "lesson_one"),
		}

		result := service.Compute("t1", []*analytics.Student{s1, s2}, events, now)

		Convey("Fifteen days idle is stagnant, thirteen is not", func() {
			So(result.StagnantCount, ShouldEqual, 1)
			So(len(result.StagnantStudents), ShouldEqual, 1)
			So(result.StagnantStudents[0].StudentID, ShouldEqual, "s-stagnant")
			So(result.StagnantStudents[0].DaysSinceLastActivity, ShouldEqual, 15)
		})
	})

	Convey("Given a student whose first event came 30 minutes after signup", t, func() {
		s := student("s1", now.AddDate(0, 0, -5))
		events := []*analytics.Event{
			activityEvent("s1", s.CreatedAt.Add(30*time.Minute), "lesson_one"),
		}

		result := service.Compute("t1", []*analytics.Student{s}, events, now)

		Convey("The breakthrough time is formatted in minutes", func() {
			So(result.AverageTimeToFirstWin, ShouldEqual, "30 min")
		})
	})

	Convey("Given no qualifying events at all", t, func() {
		s := student("s1", now.AddDate(0, 0, -5))
		result := service.Compute("t1", []*analytics.Student{s}, nil, now)

		Convey("The defined empty result is returned", func() {
			So(result.TopExperiences, ShouldNotBeNil)
			So(result.TopExperiences, ShouldBeEmpty)
			So(result.AverageTimeToFirstWin, ShouldEqual, "N/A")
			So(result.StagnantCount, ShouldEqual, 0)
			So(result.StagnantStudents, ShouldBeEmpty)
		})
	})
}
