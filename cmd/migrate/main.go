package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/finops/backend/internal/infrastructure/config"
	"github.com/finops/backend/internal/infrastructure/logger"
	"github.com/finops/backend/internal/infrastructure/migration"
	"github.com/finops/backend/migrations"
	_ "github.com/lib/pq"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const (
	fPath     = "path"
	fLogLevel = "log-level"
	fConfirm  = "confirm"
)

func main() {
	app := &cli.App{
		Name:  "migrate",
		Usage: "apply the finops database schema",
		Description: "Without --path the migrations embedded in the binary are used. " +
			"Database settings come from config.toml and FINOPS_DATABASE_* variables.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: fPath, Usage: "migrations directory on disk", EnvVars: []string{"FINOPS_MIGRATIONS_PATH"}},
			&cli.StringFlag{Name: fLogLevel, Value: "info", Usage: "debug, info, warn, error"},
		},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: withMigrator(func(_ *cli.Context, m *migration.Migrator, _ *zap.Logger) error {
					return m.Up()
				}),
			},
			{
				Name:  "down",
				Usage: "roll back every migration",
				Flags: []cli.Flag{&cli.BoolFlag{Name: fConfirm, Usage: "required, drops all finops tables"}},
				Action: withMigrator(func(c *cli.Context, m *migration.Migrator, _ *zap.Logger) error {
					if !c.Bool(fConfirm) {
						return cli.Exit("down removes every table; re-run with --confirm", 1)
					}
					return m.Down()
				}),
			},
			{
				Name:      "step",
				Usage:     "apply n migrations (negative rolls back)",
				ArgsUsage: "<n>",
				Action: withMigrator(func(c *cli.Context, m *migration.Migrator, _ *zap.Logger) error {
					n, err := strconv.Atoi(c.Args().First())
					if err != nil {
						return cli.Exit("step count required: migrate step <n>", 1)
					}
					return m.Steps(n)
				}),
			},
			{
				Name:      "goto",
				Usage:     "migrate to a specific version",
				ArgsUsage: "<version>",
				Action: withMigrator(func(c *cli.Context, m *migration.Migrator, _ *zap.Logger) error {
					v, err := strconv.ParseUint(c.Args().First(), 10, 32)
					if err != nil {
						return cli.Exit("version required: migrate goto <version>", 1)
					}
					return m.GoTo(uint(v))
				}),
			},
			{
				Name:  "version",
				Usage: "show the applied version",
				Action: withMigrator(func(_ *cli.Context, m *migration.Migrator, log *zap.Logger) error {
					v, dirty, err := m.Version()
					if err != nil {
						return err
					}
					log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
					return nil
				}),
			},
			{
				Name:      "force",
				Usage:     "set the version without running migrations (clears a dirty state)",
				ArgsUsage: "<version>",
				Action: withMigrator(func(c *cli.Context, m *migration.Migrator, _ *zap.Logger) error {
					v, err := strconv.Atoi(c.Args().First())
					if err != nil {
						return cli.Exit("version required: migrate force <version>", 1)
					}
					return m.Force(v)
				}),
			},
			{
				Name:      "create",
				Usage:     "write the next migration pair",
				ArgsUsage: "<name> [description]",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return cli.Exit("migration name required: migrate create <name> [description]", 1)
					}
					dir := c.String(fPath)
					if dir == "" {
						dir = "migrations"
					}
					mf, err := migration.CreateMigration(dir, c.Args().Get(0), c.Args().Get(1), time.Now())
					if err != nil {
						return err
					}
					fmt.Println(mf.UpPath)
					fmt.Println(mf.DownPath)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "list available migrations",
				Action: func(c *cli.Context) error {
					var fsys fs.FS = migrations.FS
					if dir := c.String(fPath); dir != "" {
						fsys = os.DirFS(dir)
					}
					entries, err := migration.ListMigrations(fsys)
					if err != nil {
						return err
					}
					for _, e := range entries {
						fmt.Println(e.Name)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type migratorAction func(c *cli.Context, m *migration.Migrator, log *zap.Logger) error

// withMigrator opens the database and the migration source around fn.
func withMigrator(fn migratorAction) cli.ActionFunc {
	return func(c *cli.Context) error {
		log, err := logger.New(&logger.Config{
			Level:      c.String(fLogLevel),
			Format:     "console",
			Output:     "stdout",
			TimeFormat: "2006-01-02 15:04:05",
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer func() { _ = logger.Sync(log) }()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		src := migration.Source{FS: migrations.FS}
		if dir := c.String(fPath); dir != "" {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			src = migration.Source{Dir: abs}
		}

		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(c.Context); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}

		m, err := migration.New(db, src, log)
		if err != nil {
			return err
		}
		defer m.Close()

		log.Info("Migration command started",
			zap.String("command", c.Command.Name),
			zap.Bool("embedded", src.FS != nil),
		)
		return fn(c, m, log)
	}
}
