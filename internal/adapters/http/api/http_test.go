package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/okian/empiria/internal/adapters/http/api"
	"github.com/okian/empiria/internal/adapters/mq/queue"
	"github.com/okian/empiria/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDeps struct {
	mu         sync.Mutex
	students   []model.StudentRecord
	outcomes   []model.OutcomeRecord
	skills     []model.SkillDemand
	feedErr    error
	enqueueErr error
	enqueued   []model.OutcomeEvent
	seen       map[string]bool
}

func (m *mockDeps) Students(context.Context) ([]model.StudentRecord, error) {
	return m.students, m.feedErr
}

func (m *mockDeps) Outcomes(context.Context) ([]model.OutcomeRecord, error) {
	return m.outcomes, m.feedErr
}

func (m *mockDeps) Skills(context.Context) ([]model.SkillDemand, error) {
	return m.skills, m.feedErr
}

func (m *mockDeps) SeenAndRecord(_ context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDeps) Unrecord(_ context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, id)
}

func (m *mockDeps) Size() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.seen))
}

func (m *mockDeps) Enqueue(_ context.Context, e model.OutcomeEvent) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.enqueued = append(m.enqueued, e)
	return nil
}

func (m *mockDeps) CachedStudents() int { return len(m.students) }

type mockStats struct{}

func (mockStats) GetStats(context.Context) map[string]any {
	return map[string]any{"queue_length": 0}
}

var cohort = []model.StudentRecord{
	{ID: "s1", Name: "Asha", Branch: "cse", Attendance: "90", InternalAvg: "85", CertType: "professional", CertSource: "aws"},
	{ID: "s2", Name: "Ravi", Branch: "civil", Attendance: "60", InternalAvg: "50", CertType: "student_coordinator", CertSource: "telegram"},
	{ID: "s3", Name: "Meera", Branch: "aiml", Attendance: "100", InternalAvg: "100", CertType: "professional", CertSource: "aws"},
}

func newMux(deps *mockDeps, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}, opts...).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	return v
}

func TestReadEndpoints(t *testing.T) {
	Convey("Given a server over a three student feed", t, func() {
		deps := &mockDeps{
			students: cohort,
			skills:   []model.SkillDemand{{"skill": "Python", "demand": "high"}},
		}
		mux := newMux(deps, api.WithEnv("test"))

		Convey("GET /health reports env and cache size", func() {
			w := do(mux, http.MethodGet, "/health", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode[map[string]any](w)
			So(body["status"], ShouldEqual, "ok")
			So(body["env"], ShouldEqual, "test")
			So(body["cached_students"], ShouldEqual, 3.0)
		})

		Convey("GET /healthz serves Prometheus metrics", func() {
			do(mux, http.MethodGet, "/kpi_summary", "")
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "empiria_intelligence_http_requests_total")
		})

		Convey("GET /student_intelligence returns one record per student", func() {
			w := do(mux, http.MethodGet, "/student_intelligence", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			recs := decode[[]model.AnalyticsRecord](w)
			So(len(recs), ShouldEqual, 3)
			So(recs[1].Status, ShouldEqual, model.StatusCritical)
			So(recs[1].CertificateCredibility, ShouldEqual, "FAKE / ZERO VALUE")
			So(w.Body.String(), ShouldContainSubstring, `"daily_recovery_plan"`)
		})

		Convey("GET /kpi_summary aggregates the cohort", func() {
			w := do(mux, http.MethodGet, "/kpi_summary", "")
			So(decode[model.KPISummary](w), ShouldResemble, model.KPISummary{
				TotalStudents: 3, Stable: 2, Critical: 1, HealthScore: 71.07,
			})
		})

		Convey("GET /batch_heatmap uses status names as keys", func() {
			w := do(mux, http.MethodGet, "/batch_heatmap", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"At Risk":0`)
			So(decode[model.Heatmap](w).RiskPercentage, ShouldEqual, 33.33)
		})

		Convey("GET /mentor_queue lists urgent students", func() {
			w := do(mux, http.MethodGet, "/mentor_queue", "")
			queue := decode[[]model.MentorEntry](w)
			So(len(queue), ShouldEqual, 2)
			So(queue[0].Name, ShouldEqual, "Asha")

			Convey("and honors a limit", func() {
				w := do(mux, http.MethodGet, "/mentor_queue?limit=1", "")
				So(len(decode[[]model.MentorEntry](w)), ShouldEqual, 1)
			})

			Convey("and rejects a bad limit", func() {
				w := do(mux, http.MethodGet, "/mentor_queue?limit=0", "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[map[string]string](w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("GET /skill_demand passes the catalog through", func() {
			w := do(mux, http.MethodGet, "/skill_demand", "")
			So(decode[[]map[string]string](w), ShouldResemble, []map[string]string{{"skill": "Python", "demand": "high"}})
		})

		Convey("GET /stats returns provider stats", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "queue_length")
		})

		Convey("Wrong methods are not found", func() {
			So(do(mux, http.MethodPost, "/kpi_summary", "{}").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/assistant", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("CORS preflight is answered", func() {
			w := do(mux, http.MethodOptions, "/assistant", "")
			So(w.Code, ShouldEqual, http.StatusNoContent)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})
	})

	Convey("Given a configured mentor queue cap", t, func() {
		mux := newMux(&mockDeps{students: cohort}, api.WithMentorLimit(1))

		So(len(decode[[]model.MentorEntry](do(mux, http.MethodGet, "/mentor_queue", ""))), ShouldEqual, 1)
		w := do(mux, http.MethodGet, "/mentor_queue?limit=5", "")
		So(w.Code, ShouldEqual, http.StatusBadRequest)
		So(decode[map[string]string](w)["code"], ShouldEqual, "limit_exceeded")
	})

	Convey("Given an empty feed", t, func() {
		mux := newMux(&mockDeps{})

		So(decode[model.KPISummary](do(mux, http.MethodGet, "/kpi_summary", "")).HealthScore, ShouldEqual, 0.0)
		So(decode[model.Heatmap](do(mux, http.MethodGet, "/batch_heatmap", "")).RiskPercentage, ShouldEqual, 0.0)
		So(do(mux, http.MethodGet, "/student_intelligence", "").Body.String(), ShouldStartWith, "[]")
		So(do(mux, http.MethodGet, "/mentor_queue", "").Body.String(), ShouldStartWith, "[]")
	})

	Convey("Given a failing feed", t, func() {
		mux := newMux(&mockDeps{feedErr: errors.New("db locked")})

		for _, path := range []string{"/student_intelligence", "/kpi_summary", "/batch_heatmap", "/mentor_queue", "/skill_demand"} {
			w := do(mux, http.MethodGet, path, "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			body := decode[map[string]string](w)
			So(body["code"], ShouldEqual, "internal_error")
			So(body["message"], ShouldContainSubstring, "db locked")
		}
	})
}

func TestAssistantEndpoint(t *testing.T) {
	Convey("Given the assistant", t, func() {
		mux := newMux(&mockDeps{students: cohort, skills: []model.SkillDemand{{"skill": "SQL"}}})

		Convey("It answers keyword questions", func() {
			w := do(mux, http.MethodPost, "/assistant", `{"question":"Who is at risk?"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[map[string][]string](w)["reply"], ShouldResemble, []string{"Ravi"})

			w = do(mux, http.MethodPost, "/assistant", `{"question":"health"}`)
			So(decode[map[string]string](w)["reply"], ShouldEqual, "Institution Health Score is 71.07")
		})

		Convey("It falls back to help", func() {
			w := do(mux, http.MethodPost, "/assistant", `{}`)
			So(decode[map[string]string](w)["reply"], ShouldEqual, "Ask about: at risk, critical, skills, health")
		})

		Convey("It rejects malformed JSON", func() {
			w := do(mux, http.MethodPost, "/assistant", `{"question":`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestOutcomeFeedback(t *testing.T) {
	Convey("Given the outcome intake", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		Convey("When an outcome with numeric cells is posted", func() {
			w := do(mux, http.MethodPost, "/outcome_feedback",
				`{"feedback_id":"fb-1","id":"s1","cert_type":"professional","placed":"yes","salary":650000,"days":45}`)

			Convey("Then it is accepted and queued verbatim", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(decode[map[string]any](w)["status"], ShouldEqual, "Recorded")
				So(len(deps.enqueued), ShouldEqual, 1)
				So(deps.enqueued[0].Outcome, ShouldResemble, model.OutcomeRecord{
					ID: "s1", CertType: "professional", Placed: "yes", Salary: "650000", Days: "45",
				})
			})

			Convey("Then a resubmission is reported as duplicate", func() {
				w := do(mux, http.MethodPost, "/outcome_feedback", `{"feedback_id":"fb-1","id":"s1"}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[map[string]any](w)["duplicate"], ShouldEqual, true)
				So(len(deps.enqueued), ShouldEqual, 1)
			})
		})

		Convey("When no feedback id is given", func() {
			w := do(mux, http.MethodPost, "/outcome_feedback", `{"id":"s2","placed":null}`)

			Convey("Then one is generated", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				id, _ := decode[map[string]any](w)["feedback_id"].(string)
				So(len(id), ShouldEqual, 36)
				So(deps.enqueued[0].FeedbackID, ShouldEqual, id)
				So(deps.enqueued[0].Outcome.Placed, ShouldEqual, "")
			})
		})

		Convey("When the queue is full", func() {
			deps.enqueueErr = fmt.Errorf("enqueue: %w", queue.ErrFull)
			w := do(mux, http.MethodPost, "/outcome_feedback", `{"feedback_id":"fb-9"}`)

			Convey("Then backpressure is reported and the id released", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decode[map[string]string](w)["code"], ShouldEqual, "backpressure")
				So(deps.Size(), ShouldEqual, 0)
			})
		})

		Convey("When the queue is closed", func() {
			deps.enqueueErr = queue.ErrClosed
			w := do(mux, http.MethodPost, "/outcome_feedback", `{"feedback_id":"fb-9"}`)
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When a cell is an object", func() {
			w := do(mux, http.MethodPost, "/outcome_feedback", `{"salary":{"amount":1}}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(deps.enqueued, ShouldBeEmpty)
		})
	})
}

func TestOpError(t *testing.T) {
	Convey("Given an op error", t, func() {
		cause := errors.New("unexpected EOF")
		err := api.WrapKind("api.post_outcome", api.ErrBadRequest, cause)

		So(err.Error(), ShouldEqual, "api.post_outcome: bad request: unexpected EOF")
		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)

		var opErr *api.OpError
		So(errors.As(err, &opErr), ShouldBeTrue)
		So(opErr.Op, ShouldEqual, "api.post_outcome")

		So(api.NewKind("x", api.ErrBackpressure).Error(), ShouldEqual, "x: backpressure")
	})
}
