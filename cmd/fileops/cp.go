package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/bamsammich/fileops/internal/engine"
	"github.com/bamsammich/fileops/internal/event"
	"github.com/bamsammich/fileops/internal/filter"
	"github.com/bamsammich/fileops/internal/stats"
	"github.com/bamsammich/fileops/internal/ui"
)

func (a *app) cpCmd() *cobra.Command {
	var tf treeFlags
	cmd := &cobra.Command{
		Use:   "cp [flags] <source> <destination>",
		Short: "Copy a file, or a directory tree with -r",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, dst := args[0], args[1]

			if a.files.DirExists(ctx, src) {
				if !tf.recursive {
					return fmt.Errorf("%s is a directory (use -r)", src)
				}
				chain, err := tf.build(a)
				if err != nil {
					return err
				}
				return a.copyTree(ctx, src, dst, chain)
			}

			dst = a.intoDir(ctx, src, dst)
			n, err := a.files.Copy(ctx, src, dst)
			if err != nil {
				return err
			}
			a.logger.Info("copied", "src", src, "dst", dst, "size", stats.FormatBytes(n))
			return nil
		},
	}
	tf.register(cmd)
	return cmd
}

func (a *app) mvCmd() *cobra.Command {
	var rename bool
	cmd := &cobra.Command{
		Use:   "mv [flags] <source> <destination>",
		Short: "Move a file by copying it and deleting the source",
		Long: "Move a file by copying it and deleting the source. The move is not atomic;\n" +
			"use --rename for an atomic rename within one filesystem.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, dst := args[0], a.intoDir(cmd.Context(), args[0], args[1])
			if rename {
				return a.files.Rename(src, dst)
			}
			if err := a.files.Move(ctx, src, dst); err != nil {
				return err
			}
			a.logger.Info("moved", "src", src, "dst", dst)
			return nil
		},
	}
	cmd.Flags().BoolVar(&rename, "rename", false, "rename atomically instead of copy and delete")
	return cmd
}

// intoDir places src inside dst when dst is an existing directory.
func (a *app) intoDir(ctx context.Context, src, dst string) string {
	if a.files.DirExists(ctx, dst) {
		return filepath.Join(dst, filepath.Base(src))
	}
	return dst
}

// copyTree runs a recursive copy with a progress presenter attached.
func (a *app) copyTree(ctx context.Context, src, dst string, chain *filter.Chain) error {
	collector := stats.NewCollector()
	events := make(chan event.Event, 256)

	cfg := a.files.TreeConfig(src, dst)
	cfg.Filter = chain
	cfg.Events = events
	cfg.Stats = collector
	cfg.FollowSymlinks = a.flags.followSymlinks
	cfg.Verify = a.flags.verify

	tty, width := a.terminal()
	presenter := ui.NewPresenter(ui.Config{
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Stats:     collector,
		Width:     width,
		IsTTY:     tty,
		Quiet:     a.flags.quiet,
		Verbose:   a.flags.verbose,
	})

	var wg sync.WaitGroup
	wg.Go(func() {
		if err := presenter.Run(events); err != nil {
			a.logger.Warn("presenter failed", "error", err)
		}
	})

	a.logger.Debug("starting tree copy",
		"src", src,
		"dst", dst,
		"workers", cfg.Workers,
		"verify", cfg.Verify,
		"follow_symlinks", cfg.FollowSymlinks,
	)
	result := engine.CopyTree(ctx, cfg)
	close(events)
	wg.Wait()

	if s := presenter.Summary(); s != "" {
		fmt.Fprintln(a.stderr, s)
	}
	a.logger.Debug("tree copy finished", "stats", result.Stats.String())
	return result.Err
}

// terminal reports whether stderr is a terminal and its width.
func (a *app) terminal() (bool, int) {
	f, ok := a.stderr.(*os.File)
	if !ok || !ui.IsTTY(f.Fd()) {
		return false, 0
	}
	return true, ui.TermWidth(f.Fd())
}
