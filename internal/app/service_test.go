package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/empiria/internal/adapters/feed"
	eventqueue "github.com/okian/empiria/internal/adapters/mq/queue"
	"github.com/okian/empiria/internal/adapters/repository"
	service "github.com/okian/empiria/internal/app"
	"github.com/okian/empiria/internal/domain/model"
	"github.com/okian/empiria/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func outcome(feedbackID string, o model.OutcomeRecord) model.OutcomeEvent {
	return model.OutcomeEvent{FeedbackID: feedbackID, Outcome: o, ReceivedAt: time.Now()}
}

func eventually(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

// failOnceStore rejects the first outcome append.
type failOnceStore struct {
	*repository.SQLiteStore

	mu     sync.Mutex
	failed bool
}

func (f *failOnceStore) AppendOutcome(ctx context.Context, o model.OutcomeRecord) error {
	f.mu.Lock()
	first := !f.failed
	f.failed = true
	f.mu.Unlock()
	if first {
		return errors.New("database is locked")
	}
	return f.SQLiteStore.AppendOutcome(ctx, o)
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithAdjusterInterval(0))

		Convey("Before Start it rejects outcomes and reports stopped", func() {
			err := svc.Enqueue(ctx, outcome("fb-1", model.OutcomeRecord{}))
			So(errors.Is(err, eventqueue.ErrClosed), ShouldBeTrue)
			So(svc.GetStats(ctx)["started"], ShouldEqual, false)
			So(svc.CachedStudents(), ShouldEqual, 0)
			So(svc.SeenAndRecord(ctx, "fb-1"), ShouldBeTrue)
			So(func() { svc.Unrecord(ctx, "fb-1") }, ShouldNotPanic)
			So(svc.Size(), ShouldEqual, 0)
			So(svc.Stop(ctx), ShouldBeNil)
		})

		Convey("When started", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)

			stats := svc.GetStats(ctx)
			So(stats["started"], ShouldEqual, true)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["students"], ShouldEqual, 0)
			So(svc.Store(), ShouldNotBeNil)

			Convey("Then Stop shuts it down and closes intake", func() {
				So(svc.Stop(ctx), ShouldBeNil)
				So(svc.GetStats(ctx)["started"], ShouldEqual, false)

				err := svc.Enqueue(ctx, outcome("fb-2", model.OutcomeRecord{}))
				So(errors.Is(err, eventqueue.ErrClosed), ShouldBeTrue)
			})
		})
	})
}

func TestService_Feeds(t *testing.T) {
	Convey("Given a started service over an in-memory store", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithAdjusterInterval(0))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		students := []model.StudentRecord{
			{ID: "s1", Name: "Asha", Branch: "cse", Attendance: "90", InternalAvg: "85"},
			{ID: "s2", Name: "Ravi", Branch: "civil", Attendance: "60", InternalAvg: "50"},
		}

		Convey("When students are written to the store", func() {
			_, err := svc.Students(ctx)
			So(err, ShouldBeNil)
			So(svc.Store().ReplaceStudents(ctx, students), ShouldBeNil)

			Convey("Then the cached feed is stale until invalidated", func() {
				got, _ := svc.Students(ctx)
				So(got, ShouldBeEmpty)

				svc.Invalidate(feed.Students)
				got, err := svc.Students(ctx)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, students)
				So(svc.CachedStudents(), ShouldEqual, 2)
			})
		})

		Convey("When an outcome is enqueued", func() {
			_, _ = svc.Outcomes(ctx)
			o := model.OutcomeRecord{ID: "s1", CertType: "professional", Placed: "yes", Salary: "650000", Days: "45"}
			So(svc.Enqueue(ctx, outcome("fb-1", o)), ShouldBeNil)

			Convey("Then the worker appends it and refreshes the outcome feed", func() {
				So(eventually(2*time.Second, func() bool {
					got, err := svc.Outcomes(ctx)
					return err == nil && len(got) == 1
				}), ShouldBeTrue)

				got, _ := svc.Outcomes(ctx)
				So(got[0], ShouldResemble, o)
			})
		})

		Convey("Feedback ids are deduplicated", func() {
			So(svc.SeenAndRecord(ctx, "fb-9"), ShouldBeFalse)
			So(svc.SeenAndRecord(ctx, "fb-9"), ShouldBeTrue)
			So(svc.Size(), ShouldEqual, 1)

			svc.Unrecord(ctx, "fb-9")
			So(svc.SeenAndRecord(ctx, "fb-9"), ShouldBeFalse)
		})
	})
}

func TestService_StopDrains(t *testing.T) {
	Convey("Given a service over a caller-owned store", t, func() {
		ctx := context.Background()
		db, err := repository.OpenDB(repository.MemoryPath)
		So(err, ShouldBeNil)
		defer func() { _ = db.Close() }()
		store := repository.NewSQLiteStore(db)

		svc := service.New(
			service.WithStore(store),
			service.WithWorkerCount(1),
			service.WithAdjusterInterval(0),
		)
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When outcomes are queued right before Stop", func() {
			for _, id := range []string{"a", "b", "c", "d", "e"} {
				So(svc.Enqueue(ctx, outcome(id, model.OutcomeRecord{ID: id, Placed: "no"})), ShouldBeNil)
			}
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then every queued outcome is persisted and the store stays open", func() {
				got, err := store.ListOutcomes(ctx)
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 5)
			})
		})
	})
}

func TestService_FailedAppendAllowsRetry(t *testing.T) {
	Convey("Given a store whose first outcome append fails", t, func() {
		ctx := context.Background()
		db, err := repository.OpenDB(repository.MemoryPath)
		So(err, ShouldBeNil)
		defer func() { _ = db.Close() }()
		store := &failOnceStore{SQLiteStore: repository.NewSQLiteStore(db)}

		svc := service.New(
			service.WithStore(store),
			service.WithWorkerCount(1),
			service.WithAdjusterInterval(0),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		o := model.OutcomeRecord{ID: "s1", CertType: "workshop", Placed: "no"}

		Convey("When an accepted outcome is lost to the failure", func() {
			So(svc.SeenAndRecord(ctx, "fb-1"), ShouldBeFalse)
			So(svc.Enqueue(ctx, outcome("fb-1", o)), ShouldBeNil)

			Convey("Then the feedback id is released and a resend is stored", func() {
				So(eventually(2*time.Second, func() bool {
					return svc.Size() == 0
				}), ShouldBeTrue)

				got, err := store.ListOutcomes(ctx)
				So(err, ShouldBeNil)
				So(got, ShouldBeEmpty)

				So(svc.SeenAndRecord(ctx, "fb-1"), ShouldBeFalse)
				So(svc.Enqueue(ctx, outcome("fb-1", o)), ShouldBeNil)
				So(eventually(2*time.Second, func() bool {
					got, err := store.ListOutcomes(ctx)
					return err == nil && len(got) == 1
				}), ShouldBeTrue)
				So(svc.SeenAndRecord(ctx, "fb-1"), ShouldBeTrue)
			})
		})
	})
}

func TestService_CheckSalaries(t *testing.T) {
	Convey("Given a service with a salary threshold", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithAdjusterInterval(0),
			service.WithSalaryThreshold(500_000),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("With no placed outcomes it is a no-op", func() {
			_, ok := svc.CheckSalaries(ctx)
			So(ok, ShouldBeFalse)
		})

		Convey("With low placed salaries it recommends tuning", func() {
			So(svc.Store().AppendOutcomes(ctx, []model.OutcomeRecord{
				{Placed: "yes", Salary: "300000"},
				{Placed: "YES", Salary: "400000"},
				{Placed: "no", Salary: "900000"},
			}), ShouldBeNil)
			svc.Invalidate(feed.Outcomes)

			stats, ok := svc.CheckSalaries(ctx)
			So(ok, ShouldBeTrue)
			So(stats.Placed, ShouldEqual, 2)
			So(stats.Average, ShouldEqual, 350000.0)
			So(stats.Low, ShouldBeTrue)
		})
	})

	Convey("Given a running adjuster", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithAdjusterInterval(10 * time.Millisecond))
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Then Stop waits for it to exit", func() {
			time.Sleep(30 * time.Millisecond)
			So(svc.Stop(ctx), ShouldBeNil)
		})
	})
}
