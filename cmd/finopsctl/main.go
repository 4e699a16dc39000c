package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	appexport "github.com/finops/backend/internal/application/export"
	"github.com/finops/backend/internal/bootstrap"
	"github.com/finops/backend/internal/domain/export"
	"github.com/finops/backend/internal/infrastructure/config"
	"github.com/finops/backend/internal/infrastructure/logger"
	"github.com/finops/backend/internal/infrastructure/persistence"
	"github.com/finops/backend/internal/infrastructure/printing"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const (
	fSQLite    = "sqlite"
	fChromeURL = "chrome-url"
	fLogLevel  = "log-level"
	fFilter    = "filter"
	fSearch    = "search"
	fSortBy    = "sort-by"
	fSortOrder = "sort-order"
	fFormat    = "format"
	fField     = "field"
	fOut       = "out"
	fMaxRows   = "max-rows"
)

func main() {
	app := &cli.App{
		Name:  "finopsctl",
		Usage: "run finops reports and exports from the command line",
		Description: "Reads the database named in config.toml and FINOPS_DATABASE_* variables, " +
			"or a SQLite file given with --sqlite.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: fSQLite, Usage: "path of a SQLite database to read instead of PostgreSQL", EnvVars: []string{"FINOPS_SQLITE_PATH"}},
			&cli.StringFlag{Name: fChromeURL, Usage: "DevTools websocket of a remote Chrome for pdf output", EnvVars: []string{"FINOPS_PRINTING_REMOTE_URL"}},
			&cli.StringFlag{Name: fLogLevel, Value: "warn", Usage: "debug, info, warn, error"},
		},
		Commands: []*cli.Command{
			{
				Name:  "report",
				Usage: "print a grouped summary as JSON",
				Subcommands: []*cli.Command{
					{
						Name:  "clients",
						Usage: "back-office transactions grouped by client",
						Flags: listFlags(),
						Action: withServices(func(c *cli.Context, s *bootstrap.Services, _ *zap.Logger) error {
							params, err := listParams(c)
							if err != nil {
								return err
							}
							summary, err := s.Reports.ClientSummary(c.Context, params)
							if err != nil {
								return err
							}
							return printJSON(c.App.Writer, summary)
						}),
					},
					{
						Name:  "profiles",
						Usage: "profiler transactions grouped by profile",
						Flags: listFlags(),
						Action: withServices(func(c *cli.Context, s *bootstrap.Services, _ *zap.Logger) error {
							params, err := listParams(c)
							if err != nil {
								return err
							}
							summary, err := s.Reports.ProfileSummary(c.Context, params)
							if err != nil {
								return err
							}
							return printJSON(c.App.Writer, summary)
						}),
					},
				},
			},
			{
				Name:      "export",
				Usage:     "write an export file",
				ArgsUsage: "<transactions|profiler-transactions>",
				Flags: append(exportFlags(),
					&cli.StringFlag{Name: fOut, Aliases: []string{"o"}, Usage: "output file, defaults to the generated file name"},
				),
				Action: withServices(func(c *cli.Context, s *bootstrap.Services, log *zap.Logger) error {
					run, _, err := datasetCommands(c.Args().First(), s.Exports)
					if err != nil {
						return err
					}
					req, err := exportRequest(c)
					if err != nil {
						return err
					}
					res, err := run(c.Context, req)
					if err != nil {
						return err
					}
					out := c.String(fOut)
					if out == "" {
						out = res.Filename
					}
					if err := os.WriteFile(out, res.Content, 0o644); err != nil {
						return fmt.Errorf("failed to write %s: %w", out, err)
					}
					log.Info("Export written",
						zap.String("file", out),
						zap.Int64("rows", res.Metadata.TotalRows),
						zap.Int("bytes", len(res.Content)),
					)
					fmt.Fprintln(c.App.Writer, out)
					return nil
				}),
			},
			{
				Name:      "preview",
				Usage:     "estimate an export without building it",
				ArgsUsage: "<transactions|profiler-transactions>",
				Flags:     exportFlags(),
				Action: withServices(func(c *cli.Context, s *bootstrap.Services, _ *zap.Logger) error {
					_, preview, err := datasetCommands(c.Args().First(), s.Exports)
					if err != nil {
						return err
					}
					req, err := exportRequest(c)
					if err != nil {
						return err
					}
					est, err := preview(c.Context, req)
					if err != nil {
						return err
					}
					return printJSON(c.App.Writer, est)
				}),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type servicesAction func(c *cli.Context, s *bootstrap.Services, log *zap.Logger) error

// withServices opens the database and assembles the services around fn.
func withServices(fn servicesAction) cli.ActionFunc {
	return func(c *cli.Context) error {
		log, err := logger.New(&logger.Config{
			Level:      c.String(fLogLevel),
			Format:     "console",
			Output:     "stderr",
			TimeFormat: "2006-01-02 15:04:05",
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer func() { _ = logger.Sync(log) }()

		db, settings, err := openDatabase(c, log)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		maxRows := settings.Export.MaxRows
		if n := c.Int64(fMaxRows); n > 0 {
			maxRows = n
		}
		opts := []appexport.Option{appexport.WithLimits(maxRows, 0)}

		renderer, err := pdfRenderer(c, settings.Printing, log)
		if err != nil {
			return err
		}
		if renderer != nil {
			defer func() { _ = renderer.Close() }()
			opts = append(opts, appexport.WithPDFRenderer(renderer))
		}

		services := bootstrap.NewServices(db.DB, bootstrap.Options{Logger: log, Export: opts})
		return fn(c, services, log)
	}
}

// openDatabase returns the database and the export and printing settings.
// A SQLite database runs with default settings.
func openDatabase(c *cli.Context, log *zap.Logger) (*persistence.Database, *config.Config, error) {
	gormLog := persistence.WithGormLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(c.String(fLogLevel))))
	if path := c.String(fSQLite); path != "" {
		db, err := persistence.OpenSQLite(path, gormLog)
		return db, &config.Config{}, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(c.Context); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, cfg, nil
}

// pdfRenderer starts a Chrome renderer when the command asks for pdf output
// and returns nil otherwise. --chrome-url overrides the configured browser.
func pdfRenderer(c *cli.Context, settings config.PrintingConfig, log *zap.Logger) (printing.PDFRenderer, error) {
	if f, err := export.ParseFormat(c.String(fFormat)); err != nil || f != export.FormatPDF {
		return nil, nil
	}
	if u := c.String(fChromeURL); u != "" {
		settings.RemoteURL = u
	}
	r, err := printing.NewChromedpRenderer(printing.ConfigFromSettings(settings, log))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pdf renderer: %w", err)
	}
	return r, nil
}

type (
	exportFunc  func(context.Context, appexport.Request) (*export.Result, error)
	previewFunc func(context.Context, appexport.Request) (*export.Estimate, error)
)

func datasetCommands(name string, s *appexport.Service) (exportFunc, previewFunc, error) {
	switch name {
	case "transactions":
		return s.ExportTransactions, s.PreviewTransactions, nil
	case "profiler-transactions":
		return s.ExportProfilerTransactions, s.PreviewProfilerTransactions, nil
	default:
		return nil, nil, cli.Exit("dataset required: transactions or profiler-transactions", 1)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
