package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/empiria/internal/adapters/feed"
	"github.com/okian/empiria/internal/domain/pipeline"
)

func newKPICmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "kpi",
		Short: "Print the institution KPI summary and heatmap",
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := feed.New(app.Store, feed.WithTTL(0)).Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			summary := pipeline.KPISummary(snap.Students, snap.Outcomes)
			heatmap := pipeline.Heatmap(snap.Students, snap.Outcomes)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{"kpi_summary": summary, "batch_heatmap": heatmap})
			}
			fmt.Fprintf(out, "students:        %d\n", summary.TotalStudents)
			fmt.Fprintf(out, "stable:          %d\n", summary.Stable)
			fmt.Fprintf(out, "at risk:         %d\n", summary.AtRisk)
			fmt.Fprintf(out, "critical:        %d\n", summary.Critical)
			fmt.Fprintf(out, "health score:    %s\n", num(summary.HealthScore))
			fmt.Fprintf(out, "risk percentage: %s%%\n", num(heatmap.RiskPercentage))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
