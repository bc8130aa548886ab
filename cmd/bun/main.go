package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Black-And-White-Club/handicap-bot/app"
	handicapqueue "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/queue"
	handicapmigrations "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/handicap-bot/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name: "bun",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Commands: []*cli.Command{
			newDBCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func withMigrator(c *cli.Context, fn func(m *migrate.Migrator, dsn string) error) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	db := app.OpenDB(cfg.Postgres.DSN)
	defer db.Close()
	return fn(migrate.NewMigrator(db, handicapmigrations.Migrations), cfg.Postgres.DSN)
}

func withPool(ctx context.Context, dsn string, fn func(*pgxpool.Pool) error) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to open pgx pool: %w", err)
	}
	defer pool.Close()
	return fn(pool)
}

func newDBCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator, _ string) error {
						return m.Init(c.Context)
					})
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate handicap tables and the job queue",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator, dsn string) error {
						group, err := m.Migrate(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Println("No new handicap migrations to run")
						} else {
							fmt.Printf("Migrated handicap tables to %s\n", group)
						}
						return withPool(c.Context, dsn, func(pool *pgxpool.Pool) error {
							return handicapqueue.Migrate(c.Context, pool)
						})
					})
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "queue", Usage: "also drop the job queue tables"},
				},
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator, dsn string) error {
						group, err := m.Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Println("No groups to roll back")
						} else {
							fmt.Printf("Rolled back %s\n", group)
						}
						if !c.Bool("queue") {
							return nil
						}
						return withPool(c.Context, dsn, func(pool *pgxpool.Pool) error {
							return handicapqueue.Rollback(c.Context, pool)
						})
					})
				},
			},
			{
				Name:  "create_go",
				Usage: "create Go migration",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator, _ string) error {
						mf, err := m.CreateGoMigration(c.Context, strings.Join(c.Args().Slice(), "_"))
						if err != nil {
							return err
						}
						fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
						return nil
					})
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator, _ string) error {
						ms, err := m.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("Migrations: %s\n", ms)
						fmt.Printf("  Applied: %s\n", ms.Applied())
						fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
						return nil
					})
				},
			},
		},
	}
}
