package services

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
)

func TestConsistencyScoreService(t *testing.T) {
	service := NewConsistencyScoreService(newTestLogger())
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	windowStart := now.AddDate(0, 0, -56)

	Convey("Given a student active every week at the same day and hour", t, func() {
		s := student("s1", windowStart.AddDate(0, 0, -30))

		var events []*analytics.Event
		for week := 0; week < 8; week++ {
			events = append(events, activityEvent("s1",
				windowStart.AddDate(0, 0, 7*week).Add(time.Hour), "lesson_one"))
		}

		result := service.Compute("t1", []*analytics.Student{s}, events, now)

		Convey("The stability score is perfect", func() {
			So(result.TotalStudents, ShouldEqual, 1)
			So(result.AverageScore, ShouldEqual, 100)
			So(result.Distribution.High, ShouldEqual, 1)
		})

		Convey("A flat trend is reported because the baseline half has activity", func() {
			So(result.TrendAvailable, ShouldBeTrue)
			So(result.WeekOverWeekTrend, ShouldNotBeNil)
			So(*result.WeekOverWeekTrend, ShouldEqual, 0)
		})
	})

	Convey("Given a student active only in the most recent weeks", t, func() {
		s := student("s1", windowStart)
		events := []*analytics.Event{
			activityEvent("s1", now.AddDate(0, 0, -10), "lesson_one"),
			activityEvent("s1", now.AddDate(0, 0, -3), "lesson_two"),
		}

		result := service.Compute("t1", []*analytics.Student{s}, events, now)

		Convey("No trend is fabricated without a historical baseline", func() {
			So(result.TotalStudents, ShouldEqual, 1)
			So(result.TrendAvailable, ShouldBeFalse)
			So(result.WeekOverWeekTrend, ShouldBeNil)
		})

		Convey("The score stays within bounds", func() {
			So(result.AverageScore, ShouldBeBetweenOrEqual, 0, 100)
		})
	})

	Convey("Given a student whose activity collapsed after the early weeks", t, func() {
		s := student("s1", windowStart)
		var events []*analytics.Event
		for week := 0; week < 4; week++ {
			events = append(events, activityEvent("s1",
				windowStart.AddDate(0, 0, 7*week).Add(2*time.Hour), "lesson_one"))
		}

		result := service.Compute("t1", []*analytics.Student{s}, events, now)

		Convey("The decline shows up as a negative trend", func() {
			So(result.TrendAvailable, ShouldBeTrue)
			So(*result.WeekOverWeekTrend, ShouldEqual, -100)
		})
	})

	Convey("Given no events in the window", t, func() {
		s := student("s1", windowStart)
		old := []*analytics.Event{
			activityEvent("s1", windowStart.AddDate(0, 0, -20), "lesson_one"),
		}

		result := service.Compute("t1", []*analytics.Student{s}, old, now)

		Convey("The defined empty result is returned", func() {
			So(result.TotalStudents, ShouldEqual, 0)
			So(result.AverageScore, ShouldEqual, 0)
			So(result.TrendAvailable, ShouldBeFalse)
		})
	})

	Convey("Distribution buckets always partition the scored students", t, func() {
		students := []*analytics.Student{
			student("s1", windowStart), student("s2", windowStart), student("s3", windowStart),
		}
		events := []*analytics.Event{
			activityEvent("s1", now.AddDate(0, 0, -2), "a"),
			activityEvent("s2", now.AddDate(0, 0, -40), "b"),
			activityEvent("s2", now.AddDate(0, 0, -5), "b"),
		}

		result := service.Compute("t1", students, events, now)
		total := result.Distribution.High + result.Distribution.Medium + result.Distribution.Low
		So(total, ShouldEqual, result.TotalStudents)
		So(result.TotalStudents, ShouldEqual, 2)
	})
}
