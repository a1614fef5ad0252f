package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/empiria/internal/adapters/feed"
	"github.com/okian/empiria/internal/domain/model"
	"github.com/okian/empiria/internal/domain/pipeline"
	"github.com/okian/empiria/internal/domain/scoring"
)

func newScoreCmd(app *App) *cobra.Command {
	var (
		asJSON    bool
		studentID string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Run the full pipeline over the stored feeds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if studentID != "" {
				student, err := app.Store.GetStudent(ctx, studentID)
				if err != nil {
					return err
				}
				outcomes, err := app.Store.ListOutcomes(ctx)
				if err != nil {
					return err
				}
				rec := pipeline.Analyze(student, scoring.LearnWeights(outcomes))
				if asJSON {
					return writeJSON(out, rec)
				}
				return writeRecord(out, rec)
			}

			snap, err := feed.New(app.Store, feed.WithTTL(0)).Snapshot(ctx)
			if err != nil {
				return err
			}
			records := pipeline.AnalyzeAll(snap.Students, snap.Outcomes)
			if asJSON {
				return writeJSON(out, records)
			}
			return writeTable(out, records)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().StringVar(&studentID, "id", "", "Score a single student")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, records []model.AnalyticsRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRANCH\tCSI\tSTATUS\tURGENCY\tDROPOUT\tPLACEMENT")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, r.Branch, num(r.CSI), r.Status, r.RescueUrgency,
			num(r.DropoutProbability), num(r.PlacementProbability))
	}
	return tw.Flush()
}

func writeRecord(w io.Writer, r model.AnalyticsRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	lines := [][2]string{
		{"id", r.ID},
		{"name", r.Name},
		{"branch", r.Branch},
		{"csi", num(r.CSI) + " (" + string(r.Status) + ")"},
		{"reasons", strings.Join(r.Reasons, "; ")},
		{"critical in days", num(r.CriticalInDays)},
		{"days to save", num(r.DaysToSave)},
		{"dropout", num(r.DropoutProbability) + "% " + string(r.RescueUrgency)},
		{"priority", num(r.PriorityScore)},
		{"dominant skill", r.DominantSkill},
		{"weak skills", strings.Join(r.WeakSkills, ", ")},
		{"employability", num(r.EmployabilityScore)},
		{"placement", num(r.PlacementProbability) + "%"},
		{"roadmap", strings.Join(r.Roadmap, " > ")},
		{"daily hours", strconv.Itoa(r.DailyRecoveryPlan.DailyHoursRequired)},
		{"companies", strings.Join(r.CompanyPath.TargetCompanies, ", ")},
		{"expected salary", r.CompanyPath.ExpectedSalary},
		{"certificate", r.CertificateCredibility},
		{"income in", r.IncomeTimeline},
	}
	for _, l := range lines {
		fmt.Fprintf(tw, "%s:\t%s\n", l[0], l[1])
	}
	return tw.Flush()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
