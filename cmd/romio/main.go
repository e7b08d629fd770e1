// Package main is the entry point for the romio application.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/joe/romio/internal/config"
	"github.com/joe/romio/internal/pipeline"
	"github.com/joe/romio/pkg/filesystem"
)

// Process exit codes.
const (
	exitOK       = 0
	exitFailures = 1
	exitSetup    = 2
)

func main() {
	// Parse configuration
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitSetup)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := run(ctx, cfg, os.Stdin, os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

// run executes the selected command and returns the process exit code.
func run(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) int {
	logger, closeLog, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitSetup
	}

	defer closeLog()

	var result pipeline.Result

	switch {
	case cfg.Scan != nil:
		result, err = runScan(ctx, cfg, logger, stdout, stderr)
	case cfg.Copy != nil:
		result, err = runCopy(ctx, cfg, logger, stdin, stderr)
	default:
		err = config.ErrNoCommand
	}

	if err != nil {
		logger.Error().Err(err).Msg("command failed")
		fmt.Fprintf(stderr, "Error: %v\n", err)

		return exitSetup
	}

	if result.HadErrors {
		return exitFailures
	}

	return exitOK
}

func runScan(
	ctx context.Context, cfg *config.Config, logger zerolog.Logger, stdout, stderr io.Writer,
) (pipeline.Result, error) {
	files, err := filesystem.Discover(cfg.Scan.Root, filesystem.NewGlobFilter(cfg.Scan.Pattern))
	if err != nil {
		return pipeline.Result{}, err //nolint:wrapcheck // Already names the root
	}

	items := make([]pipeline.Item, 0, len(files))
	for _, file := range files {
		items = append(items, pipeline.Item{Path: file.Path, Size: file.Size})
	}

	scanner := &pipeline.Scanner{Context: ctx, Options: cfg.ArchiveOptions(logger), Logger: logger}
	result := runPool(cfg, logger, stderr, items, scanner.Scan)

	out := stdout

	if cfg.Scan.Output != "" {
		file, err := os.Create(cfg.Scan.Output)
		if err != nil {
			return result, fmt.Errorf("failed to create report: %w", err)
		}

		defer func() {
			_ = file.Close()
		}()

		out = file
	}

	return result, pipeline.WriteReport(out, scanner.Records()) //nolint:wrapcheck // Already wrapped
}

func runCopy(
	ctx context.Context, cfg *config.Config, logger zerolog.Logger, stdin io.Reader, stderr io.Writer,
) (pipeline.Result, error) {
	input := stdin

	if cfg.Copy.Jobs != config.StdinJobs {
		file, err := os.Open(cfg.Copy.Jobs) // #nosec G304 - job list path comes from the command line
		if err != nil {
			return pipeline.Result{}, fmt.Errorf("failed to open job list: %w", err)
		}

		defer func() {
			_ = file.Close()
		}()

		input = file
	}

	jobs, err := pipeline.ReadJobs(input, cfg.Copy.Overwrite)
	if err != nil {
		return pipeline.Result{}, err //nolint:wrapcheck // Already names the line
	}

	copier := &pipeline.Copier{Context: ctx, Options: cfg.ArchiveOptions(logger), Logger: logger}

	return runPool(cfg, logger, stderr, pipeline.Items(jobs), copier.Work(jobs)), nil
}

// runPool runs work over items, rendering progress from a single goroutine.
func runPool(
	cfg *config.Config, logger zerolog.Logger, stderr io.Writer, items []pipeline.Item, work pipeline.WorkFunc,
) pipeline.Result {
	bridge := pipeline.NewBridge()
	done := make(chan struct{})

	go func() {
		defer close(done)

		bridge.Drain(pipeline.Tee(pipeline.NewTextRenderer(stderr), pipeline.LogListener{Logger: logger}))
	}()

	pool := &pipeline.Pool{Workers: cfg.Workers, Listener: bridge, Logger: logger}
	result := pool.Run(items, work)

	bridge.Close()
	<-done

	return result
}

// newLogger writes to cfg.LogFile when set, otherwise to stderr, in
// console format when stderr is a terminal.
func newLogger(cfg *config.Config, stderr io.Writer) (zerolog.Logger, func(), error) {
	if cfg.LogFile != "" {
		//nolint:gosec // Log path comes from the command line
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), func() {}, fmt.Errorf("failed to open log file: %w", err)
		}

		logger := zerolog.New(file).Level(cfg.Level).With().Timestamp().Logger()

		return logger, func() { _ = file.Close() }, nil
	}

	writer := stderr
	if file, ok := stderr.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		writer = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}
	}

	return zerolog.New(writer).Level(cfg.Level).With().Timestamp().Logger(), func() {}, nil
}
