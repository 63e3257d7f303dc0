package main

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) writeCmd() *cobra.Command {
	var (
		appendMode bool
		lines      bool
	)
	cmd := &cobra.Command{
		Use:   "write [flags] <file>",
		Short: "Write standard input to a file",
		Long: "Write standard input to a file, replacing it unless --append is given.\n\n" +
			"With --lines the input is split into lines and rewritten with the\n" +
			"configured --line-ending. With --atomic the file is replaced in one step.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]
			if appendMode && a.flags.atomic {
				return errors.New("--append and --atomic cannot be combined")
			}

			switch {
			case lines:
				in, err := readStdinLines(a.stdin)
				if err != nil {
					return err
				}
				if appendMode {
					return a.files.AppendLines(ctx, path, in)
				}
				if a.flags.atomic {
					return a.files.WriteAtomic(ctx, path, []byte(joinLines(in, a.lineEnding)))
				}
				return a.files.WriteAllLines(ctx, path, in)

			case appendMode:
				data, err := io.ReadAll(a.stdin)
				if err != nil {
					return err
				}
				return a.files.AppendText(ctx, path, string(data))

			case a.flags.atomic:
				data, err := io.ReadAll(a.stdin)
				if err != nil {
					return err
				}
				return a.files.WriteAtomic(ctx, path, data)

			default:
				n, err := a.files.WriteFromStream(ctx, path, a.stdin)
				if err != nil {
					return err
				}
				a.logger.Debug("wrote", "path", path, "bytes", n)
				return nil
			}
		},
	}
	cmd.Flags().BoolVarP(&appendMode, "append", "a", false, "append instead of replacing")
	cmd.Flags().BoolVar(&lines, "lines", false, "normalize line endings")
	return cmd
}

func readStdinLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 64<<20)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

// joinLines terminates every line with ending.
func joinLines(lines []string, ending string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString(ending)
	}
	return b.String()
}

func (a *app) mkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <dir>...",
		Short: "Create directories and any missing parents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			for _, dir := range args {
				if err := a.files.EnsureDir(dir); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
