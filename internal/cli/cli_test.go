package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/empiria/internal/adapters/repository"
	"github.com/okian/empiria/internal/domain/model"
)

const studentsCSV = "\ufeffid,name,branch,attendance,internal_avg,cert_type,cert_source\n" +
	"s1,Asha,cse,90,85,professional,aws\n" +
	"s2,Ravi,civil,60,50,student_coordinator,telegram\n" +
	"s3,Meera,aiml,100,100,professional,aws\n"

func newTestApp(t *testing.T) (*App, func()) {
	t.Helper()
	db, err := repository.OpenDB(repository.MemoryPath)
	if err != nil {
		t.Fatal(err)
	}
	return &App{Store: repository.NewSQLiteStore(db)}, func() { _ = db.Close() }
}

func execute(app *App, stdin string, args ...string) (string, error) {
	cmd := NewRootCmd(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReadRows(t *testing.T) {
	Convey("Given header-led CSV input", t, func() {
		Convey("Short records leave trailing cells empty", func() {
			rows, err := readRows(strings.NewReader("skill,demand,roles\nPython,high\n"))
			So(err, ShouldBeNil)
			So(rows, ShouldResemble, []row{{"skill": "Python", "demand": "high", "roles": ""}})
		})

		Convey("Headers are matched ignoring case and a BOM", func() {
			students, err := readStudents(strings.NewReader("\ufeffID,Name,Attendance\n s9 ,Zoya,n/a\n"))
			So(err, ShouldBeNil)
			So(students, ShouldResemble, []model.StudentRecord{{ID: "s9", Name: "Zoya", Attendance: "n/a"}})
		})

		Convey("A missing required column is reported", func() {
			_, err := readOutcomes(strings.NewReader("id,salary\n1,100\n"))
			So(errors.Is(err, ErrMissingColumn), ShouldBeTrue)
		})

		Convey("Empty input is reported", func() {
			_, err := readSkills(strings.NewReader(""))
			So(errors.Is(err, ErrEmptyCSV), ShouldBeTrue)
		})
	})
}

func TestImportAndScore(t *testing.T) {
	Convey("Given an empty store", t, func() {
		app, done := newTestApp(t)
		defer done()
		ctx := context.Background()

		Convey("When students are imported from stdin", func() {
			out, err := execute(app, studentsCSV, "import", "students", "-")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "imported 3 students\n")

			Convey("Then score prints one row per student", func() {
				out, err := execute(app, "", "score")
				So(err, ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(out), "\n")
				So(len(lines), ShouldEqual, 4)
				So(lines[0], ShouldStartWith, "ID")
				So(lines[2], ShouldContainSubstring, "43.2")
				So(lines[2], ShouldContainSubstring, "Critical")
			})

			Convey("Then score --json matches the API records", func() {
				out, err := execute(app, "", "score", "--json")
				So(err, ShouldBeNil)
				var recs []model.AnalyticsRecord
				So(json.Unmarshal([]byte(out), &recs), ShouldBeNil)
				So(len(recs), ShouldEqual, 3)
				So(recs[0].CSI, ShouldEqual, 80.0)
			})

			Convey("Then score --id details one student", func() {
				out, err := execute(app, "", "score", "--id", "s2")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "43.2 (Critical)")
				So(out, ShouldContainSubstring, "Wipro, HCL")
			})

			Convey("Then an unknown id is not found", func() {
				_, err := execute(app, "", "score", "--id", "nope")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then kpi summarizes the cohort", func() {
				out, err := execute(app, "", "kpi")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "health score:    71.07")
				So(out, ShouldContainSubstring, "risk percentage: 33.33%")
			})
		})

		Convey("When outcomes are imported from a file", func() {
			path := filepath.Join(t.TempDir(), "outcomes.csv")
			So(os.WriteFile(path, []byte("id,cert_type,placed,salary,days\n1,professional,yes,600000,30\n2,workshop,no,,\n"), 0o600), ShouldBeNil)

			out, err := execute(app, "", "import", "outcomes", path)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "imported 2 outcomes\n")

			got, err := app.Store.ListOutcomes(ctx)
			So(err, ShouldBeNil)
			So(got[1], ShouldResemble, model.OutcomeRecord{ID: "2", CertType: "workshop", Placed: "no"})
		})

		Convey("When the file does not exist", func() {
			_, err := execute(app, "", "import", "skills", "/no/such.csv")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSeed(t *testing.T) {
	Convey("Given an empty store", t, func() {
		app, done := newTestApp(t)
		defer done()
		ctx := context.Background()

		Convey("When seeded", func() {
			out, err := execute(app, "", "seed", "--students", "20", "--outcomes", "40", "--seed", "7")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "seeded 20 students, 40 outcomes, 5 skills\n")

			Convey("Then every feed is populated with scoreable rows", func() {
				counts, err := app.Store.Counts(ctx)
				So(err, ShouldBeNil)
				So(counts, ShouldResemble, repository.Counts{Students: 20, Outcomes: 40, Skills: 5})

				students, _ := app.Store.ListStudents(ctx)
				So(len(students[0].ID), ShouldEqual, 36)

				out, err := execute(app, "", "kpi", "--json")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, `"total_students": 20`)
			})
		})

		Convey("Negative counts are rejected", func() {
			_, err := execute(app, "", "seed", "--students", "-1")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestOpenFromPath(t *testing.T) {
	Convey("Given an App with only a database path", t, func() {
		app := &App{DBPath: filepath.Join(t.TempDir(), "empiria.db")}

		_, err := execute(app, studentsCSV, "import", "students", "-")
		So(err, ShouldBeNil)
		So(app.Store, ShouldBeNil)

		Convey("Then a later run reads the same file", func() {
			out, err := execute(app, "", "kpi")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "students:        3")
		})
	})
}
