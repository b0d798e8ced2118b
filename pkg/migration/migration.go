package migration

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

func newMigrate(sourceDir string, dsn string) *migrate.Migrate {
	source := "file://" + filepath.ToSlash(sourceDir)
	m, err := migrate.New(source, dsn)
	if err != nil {
		panic(err)
	}
	return m
}

// MigrateCommand returns the migrate command with up and down subcommands
func MigrateCommand(dsn string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use: "migrate",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "migrate up all versions",
		Run: func(cmd *cobra.Command, args []string) {
			m := newMigrate("migrations", dsn)
			err := m.Up()
			if err != nil && !errors.Is(err, migrate.ErrNoChange) {
				panic(err)
			}
			fmt.Println("Migrated up successfully")
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "migrate down one version",
		Run: func(cmd *cobra.Command, args []string) {
			m := newMigrate("migrations", dsn)
			err := m.Steps(-1)
			if err != nil && !errors.Is(err, migrate.ErrNoChange) {
				panic(err)
			}
			fmt.Println("Migrated down successfully")
		},
	}

	rootCmd.AddCommand(upCmd, downCmd)
	return rootCmd
}

// MigrateUpForTesting migrates the test database up to the latest version
func MigrateUpForTesting(rootDir string, dsn string) {
	m := newMigrate(filepath.Join(rootDir, "migrations"), dsn)
	err := m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		panic(err)
	}
}
