package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bamsammich/fileops/internal/fileop"
)

func (a *app) catCmd() *cobra.Command {
	var text bool
	cmd := &cobra.Command{
		Use:   "cat [flags] <file>...",
		Short: "Print files to standard output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			for _, path := range args {
				if text {
					s, err := a.files.ReadText(ctx, path)
					if err != nil {
						return err
					}
					if _, err := io.WriteString(a.stdout, s); err != nil {
						return err
					}
					continue
				}

				sink, err := a.files.ReadToMemory(ctx, path)
				if err != nil {
					return err
				}
				_, err = sink.WriteTo(a.stdout)
				sink.Close()
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "decode as text, dropping any byte order mark")
	return cmd
}

func (a *app) linesCmd() *cobra.Command {
	var (
		set      bool
		count    bool
		foldCase bool
		opts     fileop.SetOptions
	)
	cmd := &cobra.Command{
		Use:   "lines [flags] <file>...",
		Short: "Print the lines of files, or their distinct lines with --set",
		Long: "Print the lines of files. Lines may end in \\n, \\r\\n or \\r.\n\n" +
			"With --set the distinct lines across all files are printed in sorted order.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := bufio.NewWriter(a.stdout)
			defer out.Flush()

			if !set {
				var n int
				for _, path := range args {
					lines, err := a.files.ReadLines(ctx, path)
					if err != nil {
						return err
					}
					n += len(lines)
					if !count {
						for _, l := range lines {
							fmt.Fprintln(out, l)
						}
					}
				}
				if count {
					fmt.Fprintln(out, n)
				}
				return nil
			}

			if foldCase {
				opts.Key = fileop.FoldCase()
			}
			union := fileop.NewLineSet(opts.Key)
			for _, path := range args {
				s, err := a.files.ReadLinesToSet(ctx, path, opts)
				if err != nil {
					return err
				}
				for _, l := range s.Lines() {
					union.Add(l)
				}
			}
			if count {
				fmt.Fprintln(out, union.Len())
				return nil
			}
			for _, l := range union.Lines() {
				fmt.Fprintln(out, l)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&set, "set", false, "print each distinct line once, sorted")
	f.BoolVarP(&count, "count", "c", false, "print only the number of lines")
	f.BoolVar(&opts.Trim, "trim", false, "trim surrounding white space (with --set)")
	f.BoolVar(&opts.IgnoreEmpty, "ignore-empty", false, "drop empty lines (with --set)")
	f.BoolVarP(&foldCase, "fold-case", "i", false, "compare lines case-insensitively (with --set)")
	return cmd
}
