package services

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
)

func TestPathwayService(t *testing.T) {
	service := NewPathwayService(newTestLogger())
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	base := now.AddDate(0, 0, -10)

	// Three students complete intro > practice > project, one stops at intro.
	buildEvents := func() ([]*analytics.Student, []*analytics.Event) {
		var students []*analytics.Student
		var events []*analytics.Event
		for i, id := range []string{"s1", "s2", "s3"} {
			students = append(students, student(id, base.AddDate(0, 0, -5)))
			start := base.Add(time.Duration(i) * time.Hour)
			events = append(events,
				activityEvent(id, start, "intro"),
				activityEvent(id, start.Add(time.Hour), "practice"),
				activityEvent(id, start.Add(2*time.Hour), "project"),
			)
		}
		students = append(students, student("s4", base.AddDate(0, 0, -5)))
		events = append(events, activityEvent("s4", base, "intro"))
		return students, events
	}

	Convey("Given students with a dominant three-step pathway", t, func() {
		students, events := buildEvents()
		result := service.Compute("t1", students, events, now)

		Convey("Total students counts everyone with a sequence", func() {
			So(result.TotalStudents, ShouldEqual, 4)
		})

		Convey("The best pathway is ranked first by completion rate", func() {
			So(len(result.TopPathways), ShouldBeGreaterThan, 0)
			top := result.TopPathways[0]
			So(top.Sequence, ShouldResemble, []string{"practice", "project"})
			So(top.CompletionRate, ShouldEqual, 100)
			So(top.StudentCount, ShouldEqual, 3)
			So(len(result.TopPathways), ShouldBeLessThanOrEqualTo, 3)
		})

		Convey("The terminal experience is flagged as a dead end", func() {
			So(len(result.DeadEnds), ShouldEqual, 1)
			So(result.DeadEnds[0].Experience, ShouldEqual, "project")
			So(result.DeadEnds[0].Title, ShouldEqual, "Project")
			So(result.DeadEnds[0].DropOffRate, ShouldEqual, 100)
			So(result.DeadEnds[0].StudentCount, ShouldEqual, 3)
		})

		Convey("The high-continuation pair surfaces as a power combination", func() {
			So(len(result.PowerCombinations), ShouldEqual, 1)
			combo := result.PowerCombinations[0]
			So(combo.Experiences, ShouldResemble, []string{"intro", "practice"})
			So(combo.SuccessRate, ShouldEqual, 100)
			So(combo.Lift, ShouldEqual, 2)
		})
	})

	Convey("Given no events with experience tags", t, func() {
		s := student("s1", base)
		result := service.Compute("t1", []*analytics.Student{s}, nil, now)

		Convey("The defined empty result is returned", func() {
			So(result.TotalStudents, ShouldEqual, 0)
			So(result.TopPathways, ShouldNotBeNil)
			So(result.TopPathways, ShouldBeEmpty)
			So(result.DeadEnds, ShouldBeEmpty)
			So(result.PowerCombinations, ShouldBeEmpty)
		})
	})
}
