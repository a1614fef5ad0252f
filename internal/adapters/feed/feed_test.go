package feed_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/empiria/internal/adapters/feed"
	"github.com/okian/empiria/internal/domain/model"
	"github.com/okian/empiria/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeSource struct {
	studentLoads atomic.Int32
	outcomeLoads atomic.Int32
	skillLoads   atomic.Int32
	gate         chan struct{}

	mu       sync.Mutex
	students []model.StudentRecord
	failSkills error
}

func (f *fakeSource) ListStudents(context.Context) ([]model.StudentRecord, error) {
	f.studentLoads.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.StudentRecord(nil), f.students...), nil
}

func (f *fakeSource) ListOutcomes(context.Context) ([]model.OutcomeRecord, error) {
	f.outcomeLoads.Add(1)
	return []model.OutcomeRecord{{ID: "s1", CertType: "professional", Placed: "yes"}}, nil
}

func (f *fakeSource) ListSkills(context.Context) ([]model.SkillDemand, error) {
	f.skillLoads.Add(1)
	if f.failSkills != nil {
		return nil, f.failSkills
	}
	return []model.SkillDemand{{"skill": "Python"}}, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCache(t *testing.T) {
	ctx := context.Background()

	Convey("Given a cache with a one minute TTL", t, func() {
		src := &fakeSource{students: []model.StudentRecord{{ID: "s1", Name: "Asha"}}}
		clk := &clock{now: time.Unix(1_700_000_000, 0)}
		c := feed.New(src, feed.WithTTL(time.Minute), feed.WithClock(clk.Now), feed.WithLogger(logger.Nop()))
		So(c.CachedStudents(), ShouldEqual, 0)

		Convey("When the student feed is read twice within the TTL", func() {
			first, err := c.Students(ctx)
			So(err, ShouldBeNil)
			second, err := c.Students(ctx)
			So(err, ShouldBeNil)

			Convey("Then storage is hit once", func() {
				So(src.studentLoads.Load(), ShouldEqual, 1)
				So(second, ShouldResemble, first)
				So(c.CachedStudents(), ShouldEqual, 1)
			})
		})

		Convey("When the TTL expires", func() {
			_, _ = c.Students(ctx)
			clk.Advance(time.Minute)
			_, _ = c.Students(ctx)

			Convey("Then the feed is reloaded", func() {
				So(src.studentLoads.Load(), ShouldEqual, 2)
			})
		})

		Convey("When a feed is invalidated", func() {
			_, _ = c.Outcomes(ctx)
			c.Invalidate(feed.Outcomes)
			_, _ = c.Outcomes(ctx)
			_, _ = c.Students(ctx)

			Convey("Then only that feed reloads", func() {
				So(src.outcomeLoads.Load(), ShouldEqual, 2)
				So(src.studentLoads.Load(), ShouldEqual, 1)
			})
		})

		Convey("When a snapshot is taken", func() {
			snap, err := c.Snapshot(ctx)

			Convey("Then all three feeds are populated", func() {
				So(err, ShouldBeNil)
				So(len(snap.Students), ShouldEqual, 1)
				So(len(snap.Outcomes), ShouldEqual, 1)
				So(len(snap.Skills), ShouldEqual, 1)
			})
		})

		Convey("When one feed fails to load", func() {
			src.failSkills = errors.New("disk gone")
			_, err := c.Snapshot(ctx)

			Convey("Then the snapshot fails with the cause", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "skills")
				So(err.Error(), ShouldContainSubstring, "disk gone")
			})

			Convey("Then the failure is not cached", func() {
				src.failSkills = nil
				skills, err := c.Skills(ctx)
				So(err, ShouldBeNil)
				So(len(skills), ShouldEqual, 1)
			})
		})
	})

	Convey("Given concurrent cold reads", t, func() {
		src := &fakeSource{gate: make(chan struct{}), students: []model.StudentRecord{{ID: "s1"}}}
		c := feed.New(src, feed.WithLogger(logger.Nop()))

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = c.Students(ctx)
			}()
		}
		time.Sleep(20 * time.Millisecond)
		close(src.gate)
		wg.Wait()

		So(src.studentLoads.Load(), ShouldEqual, 1)
	})

	Convey("Given caching disabled", t, func() {
		src := &fakeSource{}
		c := feed.New(src, feed.WithTTL(0), feed.WithLogger(logger.Nop()))
		_, _ = c.Students(ctx)
		_, _ = c.Students(ctx)
		So(src.studentLoads.Load(), ShouldEqual, 2)
	})
}
