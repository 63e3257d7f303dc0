package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/bamsammich/fileops/internal/config"
	"github.com/bamsammich/fileops/internal/engine"
	"github.com/bamsammich/fileops/internal/fileop"
	"github.com/bamsammich/fileops/internal/ioerr"
	"github.com/bamsammich/fileops/internal/ui"
)

var version = "dev"

// Exit codes.
const (
	exitOK      = 0
	exitPartial = 1
	exitFailure = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if n := engine.CleanupTmpFiles(); n > 0 {
		fmt.Fprintf(os.Stderr, "removed %d temporary file(s)\n", n)
	}
	os.Exit(code)
}

// app carries the state shared by every subcommand once flags are parsed.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	fs      afero.Fs
	files   *fileop.Files
	logger  *slog.Logger
	cfg     config.Config
	logFile io.Closer

	lineEnding string

	flags globalFlags
}

type globalFlags struct {
	configPath     string
	logPath        string
	lineEnding     string
	dispatch       string
	bufferSize     sizeFlag
	bwLimit        sizeFlag
	workers        int
	verbose        bool
	quiet          bool
	verify         bool
	atomic         bool
	followSymlinks bool
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, fs: afero.NewOsFs()}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if a.logFile != nil {
		a.logFile.Close()
	}
	if err == nil {
		return exitOK
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	if ioerr.Classify(err) == ioerr.KindPartialFailure {
		return exitPartial
	}
	return exitFailure
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fileops",
		Short:         "Buffered file reads, writes, copies and safe deletes",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, true)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/fileops/config.toml)")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "verbose output")
	pf.BoolVarP(&a.flags.quiet, "quiet", "q", false, "suppress all output except errors")
	pf.StringVar(&a.flags.logPath, "log", "", "write structured JSON log to FILE")
	pf.Var(&a.flags.bufferSize, "buffer-size", "transfer buffer size (e.g. 64K, 1M)")
	pf.Var(&a.flags.bwLimit, "bwlimit", "bandwidth limit per second (e.g. 100M, 1G)")
	pf.IntVarP(&a.flags.workers, "workers", "n", 0, "parallel copies for directory trees (default: NumCPU/2, 2..8)")
	pf.BoolVar(&a.flags.verify, "verify", false, "verify checksums after a tree copy (BLAKE3)")
	pf.BoolVar(&a.flags.atomic, "atomic", false, "write copies under a temporary name and rename into place")
	pf.BoolVarP(&a.flags.followSymlinks, "follow-symlinks", "L", false, "follow symbolic links when walking trees")
	pf.StringVar(&a.flags.dispatch, "dispatch", "inline", "where metadata queries run (inline or offload)")
	pf.StringVar(&a.flags.lineEnding, "line-ending", "lf", "line terminator for written lines (lf or crlf)")

	root.AddCommand(
		a.cpCmd(),
		a.mvCmd(),
		a.catCmd(),
		a.linesCmd(),
		a.writeCmd(),
		a.lsCmd(),
		a.hashCmd(),
		a.rmCmd(),
		a.statCmd(),
		a.mkdirCmd(),
		a.stripAttrsCmd(),
		a.configCmd(),
		docsCmd(),
	)
	return root
}

// setup loads the config file, applies its defaults to flags not given on
// the command line, and builds the logger and Files. The config file is
// skipped when loadConfig is false.
func (a *app) setup(cmd *cobra.Command, loadConfig bool) error {
	if path := a.configPath(); loadConfig && path != "" {
		cfg, err := config.LoadFrom(a.fs, path)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if err := a.applyConfigDefaults(cmd.Flags().Changed); err != nil {
		return err
	}

	logOpts := ui.LogOptions{Console: a.stderr, Verbose: a.flags.verbose, Quiet: a.flags.quiet}
	if a.flags.logPath != "" {
		lf, err := a.fs.Create(a.flags.logPath)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logFile = lf
		logOpts.File = lf
	}
	a.logger = ui.NewLogger(logOpts)

	fcfg, err := a.filesConfig()
	if err != nil {
		return err
	}
	a.files = fileop.New(fcfg)
	a.logger.Debug("configured",
		"buffer_size", fcfg.BufferSize,
		"bwlimit", fcfg.BWLimit,
		"workers", fcfg.Workers,
		"dispatch", fcfg.Dispatch.String(),
		"atomic", fcfg.AtomicCopy,
	)
	return nil
}

// applyConfigDefaults copies config file defaults into flags the user did
// not set explicitly.
func (a *app) applyConfigDefaults(changed func(string) bool) error {
	d := a.cfg.Defaults
	f := &a.flags
	if !changed("buffer-size") && d.BufferSize != nil {
		if err := f.bufferSize.Set(*d.BufferSize); err != nil {
			return fmt.Errorf("config buffer_size: %w", err)
		}
	}
	if !changed("bwlimit") && d.BWLimit != nil {
		if err := f.bwLimit.Set(*d.BWLimit); err != nil {
			return fmt.Errorf("config bwlimit: %w", err)
		}
	}
	if !changed("workers") && d.Workers != nil {
		f.workers = *d.Workers
	}
	if !changed("verify") && d.Verify != nil {
		f.verify = *d.Verify
	}
	if !changed("atomic") && d.Atomic != nil {
		f.atomic = *d.Atomic
	}
	if !changed("follow-symlinks") && d.FollowSymlinks != nil {
		f.followSymlinks = *d.FollowSymlinks
	}
	if !changed("dispatch") && d.Dispatch != nil {
		f.dispatch = *d.Dispatch
	}
	if !changed("line-ending") && d.LineEnding != nil {
		f.lineEnding = *d.LineEnding
	}
	return nil
}

func (a *app) filesConfig() (fileop.Config, error) {
	dispatch, err := fileop.ParseDispatch(a.flags.dispatch)
	if err != nil {
		return fileop.Config{}, fmt.Errorf("invalid --dispatch: %w", err)
	}
	ending, err := parseLineEnding(a.flags.lineEnding)
	if err != nil {
		return fileop.Config{}, err
	}
	a.lineEnding = ending
	if a.flags.workers < 0 {
		return fileop.Config{}, fmt.Errorf("invalid --workers: %d", a.flags.workers)
	}
	return fileop.Config{
		Fs:         a.fs,
		Logger:     a.logger,
		LineEnding: ending,
		BufferSize: int(a.flags.bufferSize.n),
		BWLimit:    a.flags.bwLimit.n,
		Workers:    a.flags.workers,
		Dispatch:   dispatch,
		AtomicCopy: a.flags.atomic,
	}, nil
}

func (a *app) configPath() string {
	if a.flags.configPath != "" {
		return a.flags.configPath
	}
	return config.Path()
}

func parseLineEnding(s string) (string, error) {
	switch s {
	case "lf", "\n", "":
		return "\n", nil
	case "crlf", "\r\n":
		return "\r\n", nil
	default:
		return "", fmt.Errorf("invalid --line-ending %q (use lf or crlf)", s)
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
