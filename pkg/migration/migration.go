package migration

import (
	"fmt"
	"path"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

func newMigrate(sourceURL string, dsn string) *migrate.Migrate {
	m, err := migrate.New(sourceURL, "mysql://"+dsn)
	if err != nil {
		panic(err)
	}
	return m
}

// MigrateCommand returns the up/down migration commands for the schema in
// ./migrations
func MigrateCommand(dsn string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use: "migrate",
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "migrate the database schema up",
			Run: func(cmd *cobra.Command, args []string) {
				m := newMigrate("file://migrations", dsn)
				err := m.Up()
				if err != nil && err != migrate.ErrNoChange {
					panic(err)
				}
				fmt.Println("Migrated up successfully")
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "migrate the database schema down",
			Run: func(cmd *cobra.Command, args []string) {
				m := newMigrate("file://migrations", dsn)
				err := m.Down()
				if err != nil && err != migrate.ErrNoChange {
					panic(err)
				}
				fmt.Println("Migrated down successfully")
			},
		},
	)
	return rootCmd
}

// MigrateUpForTesting migrates up using the migrations under rootDir
func MigrateUpForTesting(rootDir string, dsn string) {
	m := newMigrate("file://"+path.Join(rootDir, "migrations"), dsn)
	err := m.Up()
	if err != nil && err != migrate.ErrNoChange {
		panic(err)
	}
}
