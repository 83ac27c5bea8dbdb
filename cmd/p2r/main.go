// Command p2r loads delimited files into a Redshift-compatible warehouse by
// staging them in S3 and issuing a COPY.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/urfave/cli/v2"

	p2r "github.com/JorgeNachtigall/pandas2redshift"
	"github.com/JorgeNachtigall/pandas2redshift/internal/config"
	"github.com/JorgeNachtigall/pandas2redshift/internal/history"
	"github.com/JorgeNachtigall/pandas2redshift/internal/logging"
	"github.com/JorgeNachtigall/pandas2redshift/staging"
	"github.com/JorgeNachtigall/pandas2redshift/warehouse"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "p2r",
		Usage:   "Bulk-load delimited files into a Redshift-compatible warehouse via S3 staging",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "load",
				Usage:  "Load a delimited file into a warehouse table",
				Action: runLoad,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Delimited input file with a header line",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "schema",
						Value: "public",
						Usage: "Target schema name",
					},
					&cli.StringFlag{
						Name:     "table",
						Aliases:  []string{"t"},
						Usage:    "Target table name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "delimiter",
						Value: ",",
						Usage: "Input field delimiter (single character)",
					},
					&cli.BoolFlag{
						Name:  "ensure",
						Usage: "Create schema and table if they do not exist",
					},
					&cli.BoolFlag{
						Name:  "truncate",
						Usage: "Truncate the table before loading",
					},
					&cli.StringSliceFlag{
						Name:  "type",
						Usage: "Explicit column type as col=TYPE (repeatable)",
					},
				},
			},
			{
				Name:   "history",
				Usage:  "Show recent load runs",
				Action: showHistory,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "Number of runs to show",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogging(c *cli.Context, cfg *config.Config) error {
	levelName := cfg.LogLevel
	if c.String("log-level") != "" {
		levelName = c.String("log-level")
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}
	logging.SetLevel(level)
	logging.SetFormat(cfg.LogFormat)
	return nil
}

func runLoad(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := setupLogging(c, cfg); err != nil {
		return err
	}

	delim := c.String("delimiter")
	if len([]rune(delim)) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", delim)
	}

	typeSpec, err := parseTypeFlags(c.StringSlice("type"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nInterrupted.")
		cancel()
	}()

	ds, err := readDataset(c.String("file"), []rune(delim)[0])
	if err != nil {
		return err
	}

	conn, err := pgx.Connect(ctx, cfg.Warehouse.DSN())
	if err != nil {
		return fmt.Errorf("connecting to warehouse: %w", err)
	}
	defer conn.Close(context.Background())

	store, err := staging.NewS3Store(ctx, staging.S3Config{
		Bucket:          cfg.Storage.Bucket,
		Region:          cfg.Storage.Region,
		Endpoint:        cfg.Storage.Endpoint,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		SessionToken:    cfg.Storage.SessionToken,
	})
	if err != nil {
		return fmt.Errorf("creating staging store: %w", err)
	}

	req := p2r.LoadRequest{
		Data:   ds,
		Schema: c.String("schema"),
		Table:  c.String("table"),
		DB:     conn,
		Store:  store,
		Credentials: warehouse.Credentials{
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			SessionToken:    cfg.Storage.SessionToken,
			IAMRole:         cfg.Storage.IAMRole,
		},
		KeyPrefix:     cfg.Storage.Prefix,
		EnsureExists:  c.Bool("ensure"),
		TruncateTable: c.Bool("truncate"),
		ColumnTypes:   typeSpec,
		TextWidth:     cfg.Load.TextWidth,
		CopyOptions:   cfg.Load.CopyOptions,
	}

	start := time.Now()
	loadErr := p2r.Insert(ctx, req)
	recordRun(ds.NumRows(), req, start, loadErr)

	if loadErr != nil {
		return loadErr
	}
	fmt.Printf("Loaded %d rows into %s.%s in %s\n",
		ds.NumRows(), req.Schema, req.Table, time.Since(start).Round(time.Millisecond))
	return nil
}

// recordRun journals the outcome; a journal failure only warns.
func recordRun(rows int, req p2r.LoadRequest, start time.Time, loadErr error) {
	store, err := history.Open(history.DefaultPath())
	if err != nil {
		logging.Warn("history journal unavailable: %v", err)
		return
	}
	defer store.Close()

	run := history.Run{
		StartedAt: start,
		Duration:  time.Since(start),
		Schema:    req.Schema,
		Table:     req.Table,
		Rows:      int64(rows),
		Status:    history.StatusSuccess,
	}
	if loadErr != nil {
		run.Status = history.StatusFailed
		run.Error = loadErr.Error()
	}
	if err := store.Record(context.Background(), run); err != nil {
		logging.Warn("recording run: %v", err)
	}
}

func showHistory(c *cli.Context) error {
	store, err := history.Open(history.DefaultPath())
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(context.Background(), c.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No load runs recorded.")
		return nil
	}

	fmt.Printf("%-20s  %-30s  %10s  %10s  %s\n", "STARTED", "TABLE", "ROWS", "DURATION", "STATUS")
	for _, r := range runs {
		status := r.Status
		if r.Error != "" {
			status = fmt.Sprintf("%s (%s)", r.Status, firstLine(r.Error))
		}
		fmt.Printf("%-20s  %-30s  %10d  %10s  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Schema+"."+r.Table, r.Rows, r.Duration.Round(time.Millisecond), status)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// parseTypeFlags turns repeated col=TYPE flags into a type spec map.
func parseTypeFlags(specs []string) (map[string]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(specs))
	for _, s := range specs {
		name, typ, ok := strings.Cut(s, "=")
		if !ok || name == "" || typ == "" {
			return nil, fmt.Errorf("invalid --type %q, expected col=TYPE", s)
		}
		out[name] = typ
	}
	return out, nil
}
