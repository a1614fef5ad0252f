package cli

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/empiria/internal/loadtest"
)

func newLoadTestCmd() *cobra.Command {
	cfg := loadtest.Config{}

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Post synthetic outcomes to a running server and verify they are stored",
		// Talks to the server over HTTP only.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := loadtest.Run(cmd.Context(), cfg)
			fmt.Fprintf(cmd.OutOrStdout(),
				"submitted %d: accepted %d, duplicate %d, backpressure %d, failed %d (%.0f/s)\n",
				stats.Submitted, stats.Accepted, stats.Duplicate, stats.Backpressure, stats.Failed, stats.Throughput())
			return err
		},
	}

	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:8000", "Base URL of the service")
	cmd.Flags().IntVar(&cfg.NumOutcomes, "outcomes", 1000, "Unique outcomes to submit")
	cmd.Flags().IntVar(&cfg.DuplicatePct, "duplicates", 10, "Percent of submissions resending an earlier feedback id")
	cmd.Flags().IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "Concurrent submitters")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "HTTP request timeout")
	cmd.Flags().DurationVar(&cfg.SettleWait, "settle", 30*time.Second, "How long to wait for stored outcomes")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 1, "Random seed")

	return cmd
}
