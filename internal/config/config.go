// Package config handles application configuration and command-line argument parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/alexflint/go-arg"
	"github.com/rs/zerolog"

	"github.com/joe/romio/pkg/archive"
	"github.com/joe/romio/pkg/compression"
	"github.com/joe/romio/pkg/filesystem"
)

// Exported constants.
const (
	// StdinJobs makes the copy command read its job list from stdin.
	StdinJobs = "-"
)

// Exported variables.
var (
	ErrNoCommand      = errors.New("a command is required: scan or copy")
	ErrConflictingUse = errors.New("--force-seven-zip and --force-unrar cannot be combined")
	ErrBadWorkers     = errors.New("workers must not be negative")
)

// ScanCmd checksums every file below Root, looking inside archives.
type ScanCmd struct {
	Root    string `arg:"positional,required" help:"directory to scan"`
	Pattern string `arg:"-p,--pattern" help:"only scan items matching this glob (e.g. '**/*.{zip,7z}')"`
	Output  string `arg:"-o,--output" help:"write the report here instead of stdout"`
}

// CopyCmd builds destination archives or directories from a job list.
type CopyCmd struct {
	Jobs        string `arg:"positional,required" help:"job list file, or - for stdin"`
	Overwrite   bool   `arg:"--overwrite" help:"replace destinations that already exist"`
	Compression string `arg:"-c,--compression" help:"compression for tar destinations (default: from the extension)"`
}

// Config holds the application configuration
type Config struct {
	Scan *ScanCmd `arg:"subcommand:scan" help:"checksum files and archive entries"`
	Copy *CopyCmd `arg:"subcommand:copy" help:"copy entries into new archives or directories"`

	Workers       int    `arg:"-w,--workers" help:"number of concurrent workers (0 = one per CPU)"`
	SevenZip      string `arg:"--seven-zip" help:"path to the 7-Zip executable"`
	Unrar         string `arg:"--unrar" help:"path to the UnRAR executable"`
	ForceSevenZip bool   `arg:"--force-seven-zip" help:"read zip and rar through 7-Zip"`
	ForceUnrar    bool   `arg:"--force-unrar" help:"read rar through UnRAR only"`
	LogLevel      string `arg:"--log-level" default:"warn" help:"trace|debug|info|warn|error"`
	LogFile       string `arg:"--log-file" help:"write logs to this file instead of stderr"`

	// Resolved by PostProcessConfig.
	Level       zerolog.Level          `arg:"-"`
	Compression *compression.Algorithm `arg:"-"`
}

// Description returns the program description for go-arg
func (Config) Description() string {
	return "Checksum and repack ROM sets stored in zip, 7z, rar and tar archives"
}

// Version returns the version string for go-arg
func (Config) Version() string {
	return "romio 1.0.0"
}

// ParseFlags parses command-line flags and returns configuration.
// It exits the process on --help, --version and usage errors.
func ParseFlags() (*Config, error) {
	cfg := &Config{}

	parser := arg.MustParse(cfg)
	if parser.Subcommand() == nil {
		parser.Fail(ErrNoCommand.Error())
	}

	return PostProcessConfig(cfg)
}

// Parse parses args (without the program name) and validates the result.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}

	parser, err := arg.NewParser(arg.Config{Program: "romio"}, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build argument parser: %w", err)
	}

	err = parser.Parse(args)
	if err != nil {
		return nil, err //nolint:wrapcheck // arg.ErrHelp and arg.ErrVersion are compared by callers
	}

	return PostProcessConfig(cfg)
}

// PostProcessConfig applies defaults and validation to a parsed config
func PostProcessConfig(cfg *Config) (*Config, error) {
	if cfg.Scan == nil && cfg.Copy == nil {
		return nil, ErrNoCommand
	}

	if cfg.Workers < 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadWorkers, cfg.Workers)
	}

	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	if cfg.ForceSevenZip && cfg.ForceUnrar {
		return nil, ErrConflictingUse
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = zerolog.WarnLevel.String()
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	cfg.Level = level

	if cfg.Scan != nil {
		err = cfg.validateScan()
	} else {
		err = cfg.validateCopy()
	}

	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// ArchiveOptions builds the archive options shared by every task.
func (cfg *Config) ArchiveOptions(logger zerolog.Logger) archive.Options {
	return archive.Options{
		Tools:         archive.FindTools(archive.Tools{SevenZip: cfg.SevenZip, Unrar: cfg.Unrar}),
		ForceSevenZip: cfg.ForceSevenZip,
		ForceUnrar:    cfg.ForceUnrar,
		Compression:   cfg.Compression,
		Logger:        logger,
	}
}

// ValidateFilePattern validates a glob pattern. Empty means every file.
func ValidateFilePattern(pattern string) error {
	if pattern == "" {
		return nil
	}

	return filesystem.ValidatePattern(pattern) //nolint:wrapcheck // Already names the pattern
}

func (cfg *Config) validateScan() error {
	err := ValidateFilePattern(cfg.Scan.Pattern)
	if err != nil {
		return err
	}

	return validateDirectory("scan root", cfg.Scan.Root)
}

func (cfg *Config) validateCopy() error {
	if cfg.Copy.Compression != "" {
		algorithm, err := compression.ByLabel(cfg.Copy.Compression)
		if err != nil {
			return fmt.Errorf("invalid --compression: %w", err)
		}

		cfg.Compression = algorithm
	}

	if cfg.Copy.Jobs == StdinJobs {
		return nil
	}

	info, err := os.Stat(cfg.Copy.Jobs)
	if os.IsNotExist(err) {
		return fmt.Errorf("job list does not exist: %s", cfg.Copy.Jobs)
	}

	if err != nil {
		return fmt.Errorf("cannot access job list: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("job list is a directory: %s", cfg.Copy.Jobs)
	}

	return nil
}

func validateDirectory(label, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", label, path)
	}

	if err != nil {
		return fmt.Errorf("cannot access %s: %w", label, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory: %s", label, path)
	}

	return nil
}
