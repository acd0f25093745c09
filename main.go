package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	_ "vesting-audit/docs"
	"vesting-audit/report"
	"vesting-audit/source"
)

type Settings struct {
	PgDsn        string
	SnapshotPath string
	MaxConns     int
	MinConns     int
	Workers      int
	Limit        int
	NoProgress   bool
	ExportPath   string
	Serve        bool
	Bind         string
	InstanceName string
	Prefork      bool
	Debug        bool
	Request      source.RequestSettings
}

func onlyOneOf(flags ...bool) bool {
	res := 0
	for _, v := range flags {
		if v {
			res += 1
		}
	}
	return res <= 1
}

var src source.Source
var settings Settings
var logger = logrus.New()

//	@title			Vesting Audit
//	@version		1.0.0
//	@description	Vesting Audit reads linear vesting schedules from an indexed blockchain and reports released and still locked amounts at the latest finalized block.

func runAudit(ctx context.Context, out io.Writer) error {
	started := time.Now()

	reference_block, err := src.ReferenceBlock(ctx)
	if err != nil {
		return err
	}
	logger.WithField("block", reference_block.String()).Info("pinned reference block")

	entries, err := src.VestingEntries(ctx)
	if err != nil {
		return err
	}
	logger.WithField("accounts", len(entries)).Info("fetched vesting schedules")

	if len(settings.ExportPath) > 0 {
		if err := source.ExportSnapshot(settings.ExportPath, reference_block, entries); err != nil {
			return err
		}
		logger.WithField("path", settings.ExportPath).Info("exported schedule snapshot")
	}

	rep, err := report.Build(entries, reference_block, report.Options{
		Workers:      settings.Workers,
		ShowProgress: !settings.NoProgress,
	})
	if err != nil {
		return err
	}

	report.Render(out, rep, settings.Limit)

	logger.WithFields(logrus.Fields{
		"accounts":       rep.Accounts,
		"fully_released": rep.FullyReleased.Cardinality(),
		"still_locked":   len(rep.PartiallyLocked),
		"elapsed":        time.Since(started).Round(time.Millisecond).String(),
	}).Info("audit complete")
	return nil
}

func main() {
	flag.StringVar(&settings.PgDsn, "pg", "", "PostgreSQL connection string of the chain index")
	flag.StringVar(&settings.SnapshotPath, "snapshot", "", "Path to a schedule snapshot written with -export")
	flag.IntVar(&settings.MaxConns, "maxconns", 16, "PostgreSQL max connections")
	flag.IntVar(&settings.MinConns, "minconns", 0, "PostgreSQL min connections")
	flag.IntVar(&settings.Workers, "workers", 1, "Number of workers folding the report")
	flag.IntVar(&settings.Limit, "limit", 0, "Maximum rows per report section, 0 prints all")
	flag.BoolVar(&settings.NoProgress, "no-progress", false, "Disable the progress bar")
	flag.StringVar(&settings.ExportPath, "export", "", "Export the fetched schedules to a snapshot at this path")
	flag.BoolVar(&settings.Serve, "serve", false, "Serve reports over HTTP instead of printing once")
	flag.StringVar(&settings.Bind, "bind", ":8080", "Bind address")
	flag.StringVar(&settings.InstanceName, "name", "Go", "Instance name to show in Swagger UI")
	flag.BoolVar(&settings.Prefork, "prefork", false, "Prefork workers")
	flag.BoolVar(&settings.Debug, "debug", false, "Run service in debug mode")
	flag.DurationVar(&settings.Request.Timeout, "query-timeout", 30*time.Second, "Query timeout")
	flag.Parse()

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if settings.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	if !onlyOneOf(len(settings.PgDsn) > 0, len(settings.SnapshotPath) > 0) {
		logger.Fatal("-pg and -snapshot are mutually exclusive")
	}

	var err error
	switch {
	case len(settings.PgDsn) > 0:
		src, err = source.NewDbClient(settings.PgDsn, settings.MaxConns, settings.MinConns, settings.Request)
	case len(settings.SnapshotPath) > 0:
		src, err = source.OpenSnapshot(settings.SnapshotPath)
	default:
		logger.Fatal("either -pg or -snapshot is required")
	}
	if err != nil {
		logger.WithError(err).Fatal("failed to open the schedule source")
	}
	defer src.Close()

	if settings.Serve {
		app := setupApp()
		logger.WithField("bind", settings.Bind).Info("starting API server")
		logger.Fatal(app.Listen(settings.Bind))
	}

	// ctx for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig_chan := make(chan os.Signal, 1)
	signal.Notify(sig_chan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig_chan
		logger.Info("received shutdown signal, canceling audit")
		cancel()
	}()

	if err := runAudit(ctx, os.Stdout); err != nil {
		logger.WithError(err).Fatal("audit failed")
	}
}
