package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Black-And-White-Club/handicap-bot/app"
	"github.com/Black-And-White-Club/handicap-bot/app/modules/handicap"
	handicapservice "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/application"
	"github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/parsers"
	handicaptime "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/time_utils"
	"github.com/Black-And-White-Club/handicap-bot/app/observability"
	handicapmetrics "github.com/Black-And-White-Club/handicap-bot/app/observability/metrics/handicap"
	"github.com/Black-And-White-Club/handicap-bot/config"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "handicap-bot",
		Usage: "9-hole handicap and Stableford tracker",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file", EnvVars: []string{"CONFIG_PATH"}},
		},
		Commands: []*cli.Command{
			serveCommand(),
			importCommand(),
			recalcCommand(),
			reportCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API and event handlers",
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, stop := app.WithShutdownSignal(c.Context)
			defer stop()

			obs, err := observability.Init(ctx, config.ToObsConfig(cfg))
			if err != nil {
				return fmt.Errorf("failed to initialize observability: %w", err)
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = obs.Shutdown(shutdownCtx)
			}()

			application, err := app.NewApp(ctx, cfg, obs, ctx)
			if err != nil {
				return err
			}
			return application.Run(ctx)
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "record every nine on a scorecard file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "date played, e.g. 2025-12-22 or \"last saturday\""},
			&cli.BoolFlag{Name: "social", Usage: "record the round as not handicap eligible"},
			&cli.StringFlag{Name: "source", Value: "import"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("missing scorecard file", 2)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			parser, err := parsers.NewFactory().GetParser(filepath.Base(path))
			if err != nil {
				return err
			}
			card, err := parser.Parse(data)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}

			return withService(c, func(ctx context.Context, cfg *config.Config, svc *handicapservice.HandicapService) error {
				if raw := c.String("date"); raw != "" {
					loc, err := time.LoadLocation(cfg.Weather.Timezone)
					if err != nil {
						loc = time.UTC
					}
					played, err := handicaptime.NewDateParser(loc, handicaptime.SystemClock{}).Parse(raw)
					if err != nil {
						return err
					}
					card.Date = played
				}

				recorded, err := svc.RecordScorecard(ctx, *card, c.Bool("social"), c.String("source"))
				if err != nil {
					return err
				}
				for _, r := range recorded {
					fmt.Fprintf(c.App.Writer, "%s (%s)\n", r.RoundKey, r.Nine)
					for _, s := range r.Scores {
						fmt.Fprintf(c.App.Writer, "  %-16s gross %2d  points %2d  index %5.1f\n", s.Player, s.Gross, s.Stableford, s.IndexChange.Current.Value)
					}
				}
				return nil
			})
		},
	}
}

func recalcCommand() *cli.Command {
	return &cli.Command{
		Name:      "recalc",
		Usage:     "rebuild a player's stored differentials and index",
		ArgsUsage: "<player>",
		Action: func(c *cli.Context) error {
			player := c.Args().First()
			if player == "" {
				return cli.Exit("missing player", 2)
			}
			return withService(c, func(ctx context.Context, _ *config.Config, svc *handicapservice.HandicapService) error {
				res, err := svc.RecalculatePlayer(ctx, player)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%s: checked %d, updated %d, index %.1f\n",
					res.Player, res.Checked, res.Updated, res.Handicap.Index)
				return nil
			})
		},
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "write a season workbook",
		ArgsUsage: "<year> <out.xlsx>",
		Action: func(c *cli.Context) error {
			year, err := strconv.Atoi(c.Args().Get(0))
			if err != nil {
				return cli.Exit("year must be a number", 2)
			}
			out := c.Args().Get(1)
			if out == "" {
				out = fmt.Sprintf("season-%d.xlsx", year)
			}
			return withService(c, func(ctx context.Context, _ *config.Config, svc *handicapservice.HandicapService) error {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := svc.ExportSeasonReport(ctx, year, f); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "wrote %s\n", out)
				return nil
			})
		},
	}
}

// withService opens the database and runs fn against a service with no
// transport attached.
func withService(c *cli.Context, fn func(ctx context.Context, cfg *config.Config, svc *handicapservice.HandicapService) error) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	obsCfg := config.ToObsConfig(cfg)
	obs := observability.NewNoop()
	obs.Provider.Logger = observability.NewLogger(obsCfg)

	db := app.OpenDB(cfg.Postgres.DSN)
	defer func(db *bun.DB) { _ = db.Close() }(db)

	svc, err := handicap.NewService(cfg, obs, handicapmetrics.NewNoop(), db)
	if err != nil {
		return err
	}
	return fn(c.Context, cfg, svc)
}
