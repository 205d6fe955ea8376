package services

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
)

func TestCommitmentScoreService(t *testing.T) {
	service := NewCommitmentScoreService(newTestLogger())
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := t0.AddDate(0, 0, 10)

	Convey("Given a student with a fast start and moderate engagement", t, func() {
		s := student("s1", t0)

		// First event 3h after creation, five events across three calendar
		// days, touching two distinct experiences.
		events := []*analytics.Event{
			activityEvent("s1", t0.Add(3*time.Hour), "lesson_one"),
			activityEvent("s1", t0.AddDate(0, 0, 2).Add(-time.Hour), "lesson_one"),
			activityEvent("s1", t0.AddDate(0, 0, 2).Add(time.Hour), "lesson_two"),
			activityEvent("s1", t0.AddDate(0, 0, 3), "lesson_two"),
			activityEvent("s1", t0.AddDate(0, 0, 3).Add(2*time.Hour), "lesson_one"),
		}

		Convey("The weighted components produce a medium-band score of 65", func() {
			result := service.Compute("t1", []*analytics.Student{s}, events, now)

			So(result.TotalStudents, ShouldEqual, 1)
			So(result.AverageScore, ShouldEqual, 65)
			So(result.Distribution.Medium, ShouldEqual, 1)
			So(result.Distribution.High, ShouldEqual, 0)
			So(result.Distribution.AtRisk, ShouldEqual, 0)
			So(result.AtRiskStudents, ShouldBeEmpty)
		})

		Convey("Event presentation order does not change the result", func() {
			forward := service.Compute("t1", []*analytics.Student{s}, events, now)
			backward := service.Compute("t1", []*analytics.Student{s}, reversed(events), now)
			So(reflect.DeepEqual(forward, backward), ShouldBeTrue)
		})
	})

	Convey("Given a tenant with no students", t, func() {
		result := service.Compute("t1", nil, nil, now)

		Convey("A defined empty result is returned", func() {
			So(result.AverageScore, ShouldEqual, 0)
			So(result.TotalStudents, ShouldEqual, 0)
			So(result.Distribution.High, ShouldEqual, 0)
			So(result.Distribution.Medium, ShouldEqual, 0)
			So(result.Distribution.AtRisk, ShouldEqual, 0)
			So(result.AtRiskStudents, ShouldNotBeNil)
			So(result.AtRiskStudents, ShouldBeEmpty)
		})
	})

	Convey("Given students with and without qualifying events", t, func() {
		active := student("s-active", t0)
		silent := student("s-silent", t0)
		events := []*analytics.Event{
			activityEvent("s-active", t0.Add(2*time.Hour), "lesson_one"),
		}

		result := service.Compute("t1", []*analytics.Student{active, silent}, events, now)

		Convey("Students with zero events are excluded, not scored as 0", func() {
			So(result.TotalStudents, ShouldEqual, 1)
			total := result.Distribution.High + result.Distribution.Medium + result.Distribution.AtRisk
			So(total, ShouldEqual, result.TotalStudents)
		})
	})

	Convey("Given a slow-starting, low-engagement student", t, func() {
		s := student("s-risk", t0)
		events := []*analytics.Event{
			activityEvent("s-risk", t0.AddDate(0, 0, 5), "lesson_one"),
		}

		result := service.Compute("t1", []*analytics.Student{s}, events, now)

		Convey("The student lands in the at-risk band with named risk factors", func() {
			So(result.Distribution.AtRisk, ShouldEqual, 1)
			So(len(result.AtRiskStudents), ShouldEqual, 1)
			So(result.AtRiskStudents[0].StudentID, ShouldEqual, "s-risk")
			So(result.AtRiskStudents[0].Score, ShouldBeBetweenOrEqual, 0, 100)
			So(result.AtRiskStudents[0].RiskFactors, ShouldContain, "Slow start after enrollment")
			So(result.AtRiskStudents[0].RiskFactors, ShouldContain, "Very few total events")
		})
	})

	Convey("Given many low scoring students", t, func() {
		var students []*analytics.Student
		var events []*analytics.Event
		for i := 0; i < 30; i++ {
			s := student(fmt.Sprintf("s-%02d", i), t0)
			students = append(students, s)
			events = append(events, activityEvent(s.ID, t0.AddDate(0, 0, 5), "lesson_one"))
		}

		result := service.Compute("t1", students, events, now)

		Convey("The at-risk list is truncated to the configured limit, ascending by score", func() {
			So(result.TotalStudents, ShouldEqual, 30)
			So(len(result.AtRiskStudents), ShouldEqual, 20)
			for i := 1; i < len(result.AtRiskStudents); i++ {
				So(result.AtRiskStudents[i].Score, ShouldBeGreaterThanOrEqualTo, result.AtRiskStudents[i-1].Score)
			}
		})
	})
}
