package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/empiria/internal/adapters/feed"
	"github.com/okian/empiria/internal/adapters/http/api"
	service "github.com/okian/empiria/internal/app"
	"github.com/okian/empiria/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given the API served by a started service", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(100),
			service.WithAdjusterInterval(0),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		So(svc.Store().ReplaceStudents(ctx, []model.StudentRecord{
			{ID: "s1", Name: "Asha", Branch: "cse", Attendance: "90", InternalAvg: "85", CertType: "professional", CertSource: "aws"},
			{ID: "s2", Name: "Ravi", Branch: "civil", Attendance: "60", InternalAvg: "50", CertType: "student_coordinator", CertSource: "telegram"},
			{ID: "s3", Name: "Meera", Branch: "aiml", Attendance: "100", InternalAvg: "100", CertType: "professional", CertSource: "aws"},
		}), ShouldBeNil)
		So(svc.Store().ReplaceSkills(ctx, []model.SkillDemand{{"skill": "Python", "demand": "high"}}), ShouldBeNil)
		svc.Invalidate()

		mux := http.NewServeMux()
		api.NewServer(svc, svc, api.WithEnv("test")).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		get := func(path string, v any) int {
			resp, err := http.Get(srv.URL + path)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(json.NewDecoder(resp.Body).Decode(v), ShouldBeNil)
			return resp.StatusCode
		}
		post := func(path, body string, v any) int {
			resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(json.NewDecoder(resp.Body).Decode(v), ShouldBeNil)
			return resp.StatusCode
		}

		Convey("When the views are read", func() {
			var summary model.KPISummary
			So(get("/kpi_summary", &summary), ShouldEqual, http.StatusOK)

			var records []model.AnalyticsRecord
			So(get("/student_intelligence", &records), ShouldEqual, http.StatusOK)

			var health map[string]any
			So(get("/health", &health), ShouldEqual, http.StatusOK)

			Convey("Then they reflect the stored feed", func() {
				So(summary.TotalStudents, ShouldEqual, 3)
				So(summary.HealthScore, ShouldEqual, 71.07)
				So(records[0].CSI, ShouldEqual, 80.0)
				So(health["cached_students"], ShouldEqual, 3.0)
			})
		})

		Convey("When outcomes are fed back", func() {
			var ack map[string]any
			body := `{"feedback_id":"fb-1","id":"s1","cert_type":"professional","placed":"yes","salary":650000,"days":30}`
			So(post("/outcome_feedback", body, &ack), ShouldEqual, http.StatusAccepted)
			So(ack["status"], ShouldEqual, "Recorded")
			for _, placed := range []string{"yes", "yes", "no"} {
				So(post("/outcome_feedback", `{"cert_type":"professional","placed":"`+placed+`"}`, &ack), ShouldEqual, http.StatusAccepted)
			}

			Convey("Then a resubmission is a duplicate", func() {
				So(post("/outcome_feedback", body, &ack), ShouldEqual, http.StatusOK)
				So(ack["duplicate"], ShouldEqual, true)
			})

			Convey("Then the learned weight reaches the scores", func() {
				So(eventually(2*time.Second, func() bool {
					got, err := svc.Outcomes(ctx)
					return err == nil && len(got) == 4
				}), ShouldBeTrue)

				var records []model.AnalyticsRecord
				get("/student_intelligence", &records)
				So(records[0].CSI, ShouldEqual, 77.5)

				var stats map[string]any
				get("/stats", &stats)
				So(stats["outcomes"], ShouldEqual, 4.0)
			})
		})

		Convey("When the feed is refreshed in the store", func() {
			So(svc.Store().ReplaceStudents(ctx, nil), ShouldBeNil)
			svc.Invalidate(feed.Students)

			var heatmap model.Heatmap
			So(get("/batch_heatmap", &heatmap), ShouldEqual, http.StatusOK)
			So(heatmap.TotalStudents, ShouldEqual, 0)
			So(heatmap.RiskPercentage, ShouldEqual, 0.0)
		})
	})
}
