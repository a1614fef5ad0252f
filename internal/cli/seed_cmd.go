package cli

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/okian/empiria/internal/adapters/repository"
	"github.com/okian/empiria/internal/domain/model"
)

var (
	seedNames    = []string{"Asha", "Ravi", "Meera", "Arjun", "Divya", "Karthik", "Nisha", "Vikram", "Priya", "Rahul"}
	seedBranches = []string{"cse", "aiml", "ece", "mech", "civil", "eee"}
	seedCerts    = []string{"professional", "short_program", "workshop", "conference", "student_coordinator"}
	seedSources  = []string{"aws", "google", "nptel", "coursera", "udemy", "telegram", "freepdf", ""}
	seedSkills   = []model.SkillDemand{
		{"skill": "Python", "demand": "high", "roles": "Backend, Data"},
		{"skill": "DSA", "demand": "high", "roles": "SDE"},
		{"skill": "SQL", "demand": "medium", "roles": "Analyst"},
		{"skill": "ML", "demand": "high", "roles": "ML Engineer"},
		{"skill": "AutoCAD", "demand": "low", "roles": "Site Engineer"},
	}
	// placement odds by certificate type for synthetic outcomes
	seedPlacementOdds = map[string]float64{
		"professional":        0.8,
		"short_program":       0.6,
		"workshop":            0.4,
		"conference":          0.3,
		"student_coordinator": 0.2,
	}
)

type seedOptions struct {
	students int
	outcomes int
	seed     uint64
}

func newSeedCmd(app *App) *cobra.Command {
	opts := seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the feeds with synthetic data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.students < 0 || opts.outcomes < 0 {
				return fmt.Errorf("counts must not be negative")
			}
			if err := seed(cmd.Context(), app.Store, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d students, %d outcomes, %d skills\n",
				opts.students, opts.outcomes, len(seedSkills))
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.students, "students", 50, "Number of students")
	cmd.Flags().IntVar(&opts.outcomes, "outcomes", 100, "Number of appended outcomes")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "Random seed")

	return cmd
}

func seed(ctx context.Context, store repository.Store, opts seedOptions) error {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	pick := func(xs []string) string { return xs[rng.IntN(len(xs))] }

	students := make([]model.StudentRecord, opts.students)
	for i := range students {
		students[i] = model.StudentRecord{
			ID:          uuid.NewString(),
			Name:        pick(seedNames) + " " + strconv.Itoa(i+1),
			Branch:      pick(seedBranches),
			Attendance:  strconv.Itoa(40 + rng.IntN(61)),
			InternalAvg: strconv.Itoa(30 + rng.IntN(71)),
			CertType:    pick(seedCerts),
			CertSource:  pick(seedSources),
		}
	}

	outcomes := make([]model.OutcomeRecord, opts.outcomes)
	for i := range outcomes {
		cert := pick(seedCerts)
		o := model.OutcomeRecord{ID: uuid.NewString(), CertType: cert, Placed: "no", Salary: "0"}
		if rng.Float64() < seedPlacementOdds[cert] {
			o.Placed = "yes"
			o.Salary = strconv.Itoa(250_000 + 10_000*rng.IntN(96))
		}
		o.Days = strconv.Itoa(10 + rng.IntN(171))
		outcomes[i] = o
	}

	if err := store.ReplaceStudents(ctx, students); err != nil {
		return fmt.Errorf("seeding students: %w", err)
	}
	if err := store.AppendOutcomes(ctx, outcomes); err != nil {
		return fmt.Errorf("seeding outcomes: %w", err)
	}
	if err := store.ReplaceSkills(ctx, seedSkills); err != nil {
		return fmt.Errorf("seeding skills: %w", err)
	}
	return nil
}
