package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Black-And-White-Club/pic-perfect/config"
	"github.com/Black-And-White-Club/pic-perfect/db/bundb"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

// moduleMigrator keeps the run order that the migrator map loses.
type moduleMigrator struct {
	name     string
	migrator *migrate.Migrator
}

func main() {
	_ = godotenv.Load()

	var db *bun.DB
	var migrators []moduleMigrator

	cliApp := &cli.App{
		Name:  "bun",
		Usage: "Pic Perfect database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
			db = bun.NewDB(pgdb, pgdialect.New())

			byName := bundb.Migrators(db)
			for _, m := range bundb.OrderedMigrations() {
				migrators = append(migrators, moduleMigrator{name: m.Name, migrator: byName[m.Name]})
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if db != nil {
				return db.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			newMultiModuleDBCommand(&migrators),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func findMigrator(migrators []moduleMigrator, name string) (*migrate.Migrator, error) {
	for _, m := range migrators {
		if m.name == name {
			return m.migrator, nil
		}
	}
	return nil, fmt.Errorf("invalid module name: %s", name)
}

func newMultiModuleDBCommand(migratorsRef *[]moduleMigrator) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					for _, m := range *migratorsRef {
						fmt.Printf("Initializing migrations for module: %s\n", m.name)
						if err := m.migrator.Init(c.Context); err != nil {
							return fmt.Errorf("failed to initialize migrations for module %s: %w", m.name, err)
						}
					}
					return nil
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					for _, m := range *migratorsRef {
						fmt.Printf("Running migrations for module: %s\n", m.name)
						if err := m.migrator.Lock(c.Context); err != nil {
							return err
						}
						group, err := m.migrator.Migrate(c.Context)
						unlockErr := m.migrator.Unlock(c.Context)
						if err != nil {
							return err
						}
						if unlockErr != nil {
							return unlockErr
						}
						if group.IsZero() {
							fmt.Printf("No new migrations to run for module: %s\n", m.name)
						} else {
							fmt.Printf("Migrated module: %s to %s\n", m.name, group)
						}
					}
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					migrators := *migratorsRef
					for i := len(migrators) - 1; i >= 0; i-- {
						m := migrators[i]
						fmt.Printf("Rolling back migrations for module: %s\n", m.name)
						group, err := m.migrator.Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("No groups to roll back for module: %s\n", m.name)
						} else {
							fmt.Printf("Rolled back module: %s to %s\n", m.name, group)
						}
					}
					return nil
				},
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					moduleName := c.Args().First()
					migrator, err := findMigrator(*migratorsRef, moduleName)
					if err != nil {
						return err
					}

					name := strings.Join(c.Args().Tail(), "_")
					mf, err := migrator.CreateGoMigration(c.Context, name)
					if err != nil {
						return err
					}
					fmt.Printf("Created migration for module %s: %s (%s)\n", moduleName, mf.Name, mf.Path)
					return nil
				},
			},
			{
				Name:      "create_sql",
				Usage:     "create up and down SQL migrations",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					moduleName := c.Args().First()
					migrator, err := findMigrator(*migratorsRef, moduleName)
					if err != nil {
						return err
					}

					name := strings.Join(c.Args().Tail(), "_")
					files, err := migrator.CreateSQLMigrations(c.Context, name)
					if err != nil {
						return err
					}

					for _, mf := range files {
						fmt.Printf("Created migration for module %s: %s (%s)\n", moduleName, mf.Name, mf.Path)
					}

					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					for _, m := range *migratorsRef {
						ms, err := m.migrator.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("Migrations for module: %s\n", m.name)
						fmt.Printf("  %s\n", ms)
						fmt.Printf("  Applied: %s\n", ms.Applied())
						fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
					}
					return nil
				},
			},
		},
	}
}
