package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a feed from a CSV file (\"-\" reads stdin)",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "students FILE",
			Short: "Replace the student feed",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return importFile(cmd, args[0], func(ctx context.Context, r io.Reader) (int, error) {
					students, err := readStudents(r)
					if err != nil {
						return 0, err
					}
					return len(students), app.Store.ReplaceStudents(ctx, students)
				})
			},
		},
		&cobra.Command{
			Use:   "skills FILE",
			Short: "Replace the skills catalog",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return importFile(cmd, args[0], func(ctx context.Context, r io.Reader) (int, error) {
					skills, err := readSkills(r)
					if err != nil {
						return 0, err
					}
					return len(skills), app.Store.ReplaceSkills(ctx, skills)
				})
			},
		},
		&cobra.Command{
			Use:   "outcomes FILE",
			Short: "Append placement outcomes",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return importFile(cmd, args[0], func(ctx context.Context, r io.Reader) (int, error) {
					outcomes, err := readOutcomes(r)
					if err != nil {
						return 0, err
					}
					return len(outcomes), app.Store.AppendOutcomes(ctx, outcomes)
				})
			},
		},
	)
	return cmd
}

func importFile(cmd *cobra.Command, path string, load func(context.Context, io.Reader) (int, error)) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	n, err := load(cmd.Context(), r)
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d %s\n", n, cmd.Name())
	return nil
}
