package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"engcli/internal/app"
	"engcli/pkg/contracts"
)

// errVersion reports that only the version was requested
var errVersion = errors.New("version requested")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options is the parsed command line
type options struct {
	req app.Request
	// runs > 0 lists that many journaled runs instead of processing
	runs int
}

// run executes one batch, or lists recent runs, and returns the process
// exit code
func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		if errors.Is(err, errVersion) {
			fmt.Fprintln(stderr, contracts.GetFullVersionString())
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.runs > 0 {
		return listRuns(ctx, opts, stdout, stderr)
	}

	res, err := app.Run(ctx, opts.req)
	if err != nil {
		slog.Error("Processing failed", slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "processing failed: %v\n", err)
		return 1
	}

	fmt.Fprintf(stderr, "run %s %s: %d assets, %d history rows, %d forecast records, %d diagnostics\n",
		res.Run.ID, res.Run.Status,
		res.Run.Metrics.AssetsProcessed,
		res.Run.Metrics.HistoryRows,
		res.Run.Metrics.ForecastRecords,
		res.Run.Metrics.Diagnostics)
	return 0
}

// listRuns prints the most recent journaled runs, one per line
func listRuns(ctx context.Context, opts options, stdout, stderr io.Writer) int {
	runs, err := app.History(ctx, opts.req.ConfigFile, opts.req.StorePath, opts.runs)
	if err != nil {
		fmt.Fprintf(stderr, "listing runs failed: %v\n", err)
		return 1
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tMODE\tSTATUS\tASSETS\tHISTORY ROWS\tDIAGNOSTICS\tERROR")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Format(time.DateTime), r.Mode, r.Status,
			r.Metrics.AssetsProcessed, r.Metrics.HistoryRows, r.Metrics.Diagnostics, r.Error)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(stderr, "listing runs failed: %v\n", err)
		return 1
	}
	return 0
}

// parseArgs maps the command line onto run options
func parseArgs(args []string, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("processor", flag.ContinueOnError)
	fs.SetOutput(output)

	db := fs.String("db", "", "database directory holding the history outputs (required)")
	logs := fs.String("logs", "", "zip archive or directory of raw log files (required)")
	events := fs.String("events", "", "engine events workbook")
	concat := fs.Bool("concat", false, "merge with the prior outputs instead of replacing them")
	cfgFile := fs.String("config", "", "YAML configuration file")
	runs := fs.Int("runs", 0, "list the last N journaled runs of -db and exit")
	version := fs.Bool("version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if *version {
		return options{}, errVersion
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *runs < 0 {
		return options{}, errors.New("-runs must be positive")
	}
	if *db == "" || (*logs == "" && *runs == 0) {
		fs.Usage()
		return options{}, errors.New("-db and -logs are required")
	}

	return options{
		req: app.Request{
			StorePath:   *db,
			BundlePath:  *logs,
			EventsPath:  *events,
			Concatenate: *concat,
			ConfigFile:  *cfgFile,
		},
		runs: *runs,
	}, nil
}
