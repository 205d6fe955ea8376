package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
	"github.com/CoursePulse/coursepulse-go/internal/domain/repositories"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/performance"
	"github.com/CoursePulse/coursepulse-go/pkg/config"
)

type fakeStudentRepo struct {
	students []*analytics.Student
	err      error
}

func (f *fakeStudentRepo) FindAll(string) ([]*analytics.Student, error) {
	return f.students, f.err
}

type fakeEventRepo struct {
	events []*analytics.Event
}

func (f *fakeEventRepo) FindByTypes(_ string, types []analytics.EventType, _ time.Time) ([]*analytics.Event, error) {
	wanted := make(map[analytics.EventType]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}
	var out []*analytics.Event
	for _, event := range f.events {
		if _, ok := wanted[event.Type]; ok {
			out = append(out, event)
		}
	}
	return out, nil
}

type fakeMetricRepo struct {
	mu   sync.Mutex
	rows map[analytics.MetricType]*analytics.CachedMetric
}

func (f *fakeMetricRepo) Upsert(metric *analytics.CachedMetric) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows == nil {
		f.rows = make(map[analytics.MetricType]*analytics.CachedMetric)
	}
	copied := *metric
	f.rows[metric.MetricType] = &copied
	return nil
}

func (f *fakeMetricRepo) FindByType(_ string, metricType analytics.MetricType) (*analytics.CachedMetric, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[metricType]
	return row, ok, nil
}

func (f *fakeMetricRepo) FindAll(string) ([]*analytics.CachedMetric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*analytics.CachedMetric
	for _, row := range f.rows {
		out = append(out, row)
	}
	return out, nil
}

type fakeTenant struct {
	students *fakeStudentRepo
	events   *fakeEventRepo
	metrics  *fakeMetricRepo
}

func (f *fakeTenant) StudentRepo() repositories.StudentRepository     { return f.students }
func (f *fakeTenant) EventRepo() repositories.EventRepository         { return f.events }
func (f *fakeTenant) MetricRepo() repositories.CachedMetricRepository { return f.metrics }

type fakeDirectory struct {
	tenants map[string]*fakeTenant
}

func (d *fakeDirectory) ActiveTenantIDs() []string {
	ids := make([]string, 0, len(d.tenants))
	for id := range d.tenants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (d *fakeDirectory) Repositories(tenantID string) (TenantRepositories, error) {
	t, ok := d.tenants[tenantID]
	if !ok {
		return nil, errors.New("unknown tenant")
	}
	return t, nil
}

func newFakeTenant(students []*analytics.Student, events []*analytics.Event) *fakeTenant {
	return &fakeTenant{
		students: &fakeStudentRepo{students: students},
		events:   &fakeEventRepo{events: events},
		metrics:  &fakeMetricRepo{},
	}
}

func newRefreshService(directory TenantDirectory) *MetricRefreshService {
	return NewMetricRefreshService(
		directory,
		config.DefaultTierAssignment(),
		newTestLogger(),
		performance.NewTracker(64, nil),
		nil,
	)
}

func TestMetricRefreshService(t *testing.T) {
	now := time.Now().UTC()
	t0 := now.AddDate(0, 0, -5)

	healthyData := func() ([]*analytics.Student, []*analytics.Event) {
		s := student("s1", t0)
		events := []*analytics.Event{
			activityEvent("s1", t0.Add(2*time.Hour), "lesson_one"),
			activityEvent("s1", t0.AddDate(0, 0, 1), "lesson_two"),
			feedbackEvent("s1", t0.AddDate(0, 0, 2), "pacing", 4),
		}
		return []*analytics.Student{s}, events
	}

	Convey("Given one healthy tenant and one failing tenant", t, func() {
		students, events := healthyData()
		good := newFakeTenant(students, events)
		bad := newFakeTenant(nil, nil)
		bad.students.err = errors.New("store timeout")

		directory := &fakeDirectory{tenants: map[string]*fakeTenant{
			"good": good,
			"bad":  bad,
		}}
		service := newRefreshService(directory)

		summary, err := service.RefreshTier(context.Background(), config.TierMedium)

		Convey("The batch completes despite the failure", func() {
			So(err, ShouldBeNil)
			So(summary.TenantsProcessed, ShouldEqual, 1)
			So(summary.TenantsFailed, ShouldEqual, 1)
			So(len(summary.Failures), ShouldEqual, 1)
			So(summary.Failures[0], ShouldContainSubstring, "bad")
		})

		Convey("The healthy tenant's medium-tier rows are written", func() {
			So(summary.MetricsUpserted, ShouldEqual, 2)
			_, found, _ := good.metrics.FindByType("good", analytics.MetricCommitment)
			So(found, ShouldBeTrue)
			_, found, _ = good.metrics.FindByType("good", analytics.MetricConsistency)
			So(found, ShouldBeTrue)
		})

		Convey("The failing tenant's rows are left untouched", func() {
			rows, _ := bad.metrics.FindAll("bad")
			So(rows, ShouldBeEmpty)
		})
	})

	Convey("A written row round-trips the scorer output exactly", t, func() {
		students, events := healthyData()
		good := newFakeTenant(students, events)
		directory := &fakeDirectory{tenants: map[string]*fakeTenant{"good": good}}
		service := newRefreshService(directory)

		_, err := service.RefreshTier(context.Background(), config.TierMedium)
		So(err, ShouldBeNil)

		row, found, _ := good.metrics.FindByType("good", analytics.MetricCommitment)
		So(found, ShouldBeTrue)

		var fromCache analytics.CommitmentResult
		So(json.Unmarshal(row.MetricData, &fromCache), ShouldBeNil)

		var engagement []*analytics.Event
		for _, event := range events {
			if event.Type != analytics.EventTypeFeedback {
				engagement = append(engagement, event)
			}
		}
		direct := NewCommitmentScoreService(newTestLogger()).
			Compute("good", students, engagement, row.CalculatedAt)
		So(fromCache, ShouldResemble, *direct)
	})

	Convey("Rows are stamped with the tier TTL", t, func() {
		students, events := healthyData()
		good := newFakeTenant(students, events)
		directory := &fakeDirectory{tenants: map[string]*fakeTenant{"good": good}}
		service := newRefreshService(directory)

		before := time.Now().UTC()
		_, err := service.RefreshTier(context.Background(), config.TierHeavy)
		So(err, ShouldBeNil)

		row, found, _ := good.metrics.FindByType("good", analytics.MetricFeedbackThemes)
		So(found, ShouldBeTrue)
		So(row.ExpiresAt.Sub(row.CalculatedAt), ShouldEqual, config.TierTTL(config.TierHeavy))
		So(row.CalculatedAt, ShouldHappenOnOrAfter, before)
		So(row.IsStale(row.ExpiresAt.Add(time.Second)), ShouldBeTrue)
	})

	Convey("A second run overwrites rather than duplicates", t, func() {
		students, events := healthyData()
		good := newFakeTenant(students, events)
		directory := &fakeDirectory{tenants: map[string]*fakeTenant{"good": good}}
		service := newRefreshService(directory)

		_, err := service.RefreshTier(context.Background(), config.TierMedium)
		So(err, ShouldBeNil)
		_, err = service.RefreshTier(context.Background(), config.TierMedium)
		So(err, ShouldBeNil)

		rows, _ := good.metrics.FindAll("good")
		So(len(rows), ShouldEqual, 2)
	})
}
