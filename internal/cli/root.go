// Package cli implements empiriactl, the admin tool for loading feeds into
// the store and scoring them offline.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/empiria/internal/adapters/repository"
	"github.com/okian/empiria/pkg/logger"
)

// App holds what the commands share. Store is opened from DBPath before a
// command runs unless it is already set.
type App struct {
	DBPath string
	Store  repository.Store

	closer io.Closer
}

// NewRootCmd creates the top-level "empiriactl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "empiriactl",
		Short:         "Load, seed and score the student intelligence feeds",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return app.Close()
		},
	}
	root.PersistentFlags().StringVar(&app.DBPath, "db", app.DBPath, "SQLite database path")

	root.AddCommand(
		newImportCmd(app),
		newSeedCmd(app),
		newScoreCmd(app),
		newKPICmd(app),
		newLoadTestCmd(),
	)
	return root
}

func (a *App) open() error {
	if a.Store != nil {
		return nil
	}
	db, err := repository.OpenDB(a.DBPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", a.DBPath, err)
	}
	a.Store = repository.NewSQLiteStore(db, repository.WithLogger(logger.Named("store")))
	a.closer = db
	return nil
}

// Close releases a store opened from DBPath. A store set by the caller is
// left open.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	a.Store = nil
	return err
}
