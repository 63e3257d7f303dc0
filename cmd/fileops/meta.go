package main

import (
	"bufio"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamsammich/fileops/internal/stats"
	"github.com/bamsammich/fileops/internal/walk"
)

// batchError maps per-argument failures to an exit code: partial when some
// arguments succeeded, failure when none did.
func batchError(failed, total int) error {
	switch {
	case failed == 0:
		return nil
	case failed < total:
		return &exitError{code: exitPartial}
	default:
		return &exitError{code: exitFailure}
	}
}

func (a *app) lsCmd() *cobra.Command {
	var (
		tf   treeFlags
		long bool
	)
	cmd := &cobra.Command{
		Use:   "ls [flags] <dir>",
		Short: "List the files under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			root := args[0]
			if !a.files.DirExists(ctx, root) {
				return fmt.Errorf("%s: not a directory", root)
			}
			chain, err := tf.build(a)
			if err != nil {
				return err
			}

			out := bufio.NewWriter(a.stdout)
			defer out.Flush()

			if chain == nil && !long && !a.flags.followSymlinks {
				for path := range a.files.Enumerate(ctx, root, tf.recursive) {
					fmt.Fprintln(out, path)
				}
				return ctx.Err()
			}

			var skipped int
			opts := walk.Options{
				Filter:         chain,
				Logger:         a.logger,
				Recursive:      tf.recursive,
				FollowSymlinks: a.flags.followSymlinks,
				OnSkip: func(path string, err error) {
					skipped++
					a.logger.Warn("skipped", "path", path, "error", err)
				},
			}
			for e := range walk.Walk(ctx, a.files.Fs(), root, opts) {
				if long {
					fmt.Fprintf(out, "%10s  %s  %s\n",
						stats.FormatBytes(e.Info.Size()),
						e.Info.ModTime().Format(time.DateTime),
						e.Path)
					continue
				}
				fmt.Fprintln(out, e.Path)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if skipped > 0 {
				return &exitError{code: exitPartial}
			}
			return nil
		},
	}
	tf.register(cmd)
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show size and modification time")
	return cmd
}

func (a *app) hashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <file>...",
		Short: "Print the BLAKE3 digest of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, path := range args {
				sum, err := a.files.Hash(cmd.Context(), path)
				if err != nil {
					failed++
					a.logger.Error("hash failed", "error", err)
					continue
				}
				fmt.Fprintf(a.stdout, "%s  %s\n", sum, path)
			}
			return batchError(failed, len(args))
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	var ifExists bool
	cmd := &cobra.Command{
		Use:   "rm [flags] <file>...",
		Short: "Delete files; a file that is already gone is not an error",
		Long: "Delete files. A file that is already gone is not an error.\n\n" +
			"With --if-exists only regular files are deleted and each deleted\n" +
			"path is printed.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var failed int
			for _, path := range args {
				if !ifExists {
					if !a.files.TryDelete(path) {
						failed++
					}
					continue
				}
				if a.files.DeleteIfExists(ctx, path) {
					fmt.Fprintln(a.stdout, path)
				} else if a.files.Exists(ctx, path) {
					failed++
				}
			}
			return batchError(failed, len(args))
		},
	}
	cmd.Flags().BoolVar(&ifExists, "if-exists", false, "delete only existing regular files and print them")
	return cmd
}

func (a *app) statCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>...",
		Short: "Print the kind, size and modification time of paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var failed int
			for _, path := range args {
				switch {
				case a.files.Exists(ctx, path):
					size, _ := a.files.GetSize(ctx, path)
					mod, _ := a.files.GetLastModified(ctx, path)
					fmt.Fprintf(a.stdout, "file  %d  %s  %s\n", size, mod.Format(time.RFC3339), path)
				case a.files.DirExists(ctx, path):
					fmt.Fprintf(a.stdout, "dir  -  -  %s\n", path)
				default:
					failed++
					fmt.Fprintf(a.stdout, "missing  -  -  %s\n", path)
				}
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			return batchError(failed, len(args))
		},
	}
}

func (a *app) stripAttrsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strip-attrs <dir>",
		Short: "Clear read-only and archive attributes on every file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.files.DirExists(cmd.Context(), args[0]) {
				return fmt.Errorf("%s: not a directory", args[0])
			}
			if !a.files.RemoveReadOnlyAndArchiveAttributes(cmd.Context(), args[0]) {
				return &exitError{code: exitPartial}
			}
			return nil
		},
	}
}
