package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTierAssignment(t *testing.T) {
	Convey("The default assignment covers every tier", t, func() {
		assignment := DefaultTierAssignment()
		So(assignment.validate(), ShouldBeNil)
		So(assignment.MetricTypes(TierLight), ShouldContain, "popular_content_daily")
		So(assignment.MetricTypes(TierMedium), ShouldContain, "commitment")
		So(assignment.MetricTypes(TierMedium), ShouldContain, "consistency")
		So(assignment.MetricTypes(TierHeavy), ShouldContain, "aha_moments")
		So(assignment.MetricTypes(TierHeavy), ShouldContain, "content_pathways")
		So(assignment.MetricTypes(TierHeavy), ShouldContain, "feedback_themes")
	})

	Convey("A metric type assigned to two tiers is rejected", t, func() {
		assignment := &TierAssignment{
			Light:  []string{"commitment"},
			Medium: []string{"commitment"},
		}
		So(assignment.validate(), ShouldNotBeNil)
	})

	Convey("An empty assignment is rejected", t, func() {
		assignment := &TierAssignment{}
		So(assignment.validate(), ShouldNotBeNil)
	})

	Convey("A missing file falls back to the compiled-in defaults", t, func() {
		assignment, err := LoadTierAssignment(filepath.Join(t.TempDir(), "missing.yaml"))
		So(err, ShouldBeNil)
		So(assignment.MetricTypes(TierMedium), ShouldContain, "commitment")
	})

	Convey("A YAML file overrides the defaults", t, func() {
		path := filepath.Join(t.TempDir(), "tiers.yaml")
		content := "light:\n  - commitment\nmedium:\n  - consistency\nheavy:\n  - aha_moments\n"
		So(os.WriteFile(path, []byte(content), 0644), ShouldBeNil)

		assignment, err := LoadTierAssignment(path)
		So(err, ShouldBeNil)
		So(assignment.MetricTypes(TierLight), ShouldResemble, []string{"commitment"})
		So(assignment.MetricTypes(TierMedium), ShouldResemble, []string{"consistency"})
	})
}

func TestTierDurations(t *testing.T) {
	Convey("Every tier has a TTL longer than its interval", t, func() {
		for _, tier := range Tiers() {
			So(TierTTL(tier), ShouldBeGreaterThan, TierInterval(tier))
		}
	})
}
