package fileop

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/bamsammich/fileops/internal/engine"
)

// writeFrom opens path with flag, copies src into it and syncs it to disk.
// The file is always closed; src is neither rewound nor closed.
func (f *Files) writeFrom(ctx context.Context, op, path string, flag int, src io.Reader) (int64, error) {
	file, err := f.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|flag, 0o644)
	if err != nil {
		return 0, f.fail(op, path, err)
	}

	n, err := f.stream.Copy(ctx, file, src)
	if err == nil {
		err = file.Sync()
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, f.fail(op, path, err)
	}
	return n, nil
}

// WriteText creates or truncates path and writes content as UTF-8.
func (f *Files) WriteText(ctx context.Context, path, content string) error {
	_, err := f.writeFrom(ctx, "write text", path, os.O_TRUNC, strings.NewReader(content))
	return err
}

// WriteBytes creates or truncates path and writes data.
func (f *Files) WriteBytes(ctx context.Context, path string, data []byte) error {
	_, err := f.writeFrom(ctx, "write bytes", path, os.O_TRUNC, bytes.NewReader(data))
	return err
}

// WriteAllLines creates or truncates path and writes every line followed by
// the configured line ending, including the last.
func (f *Files) WriteAllLines(ctx context.Context, path string, lines []string) error {
	return f.writeLines(ctx, "write lines", path, os.O_TRUNC, lines)
}

// AppendText appends content to path, creating it if absent.
func (f *Files) AppendText(ctx context.Context, path, content string) error {
	_, err := f.writeFrom(ctx, "append text", path, os.O_APPEND, strings.NewReader(content))
	return err
}

// AppendLines appends lines to path with the same terminator rules as
// WriteAllLines, creating it if absent.
func (f *Files) AppendLines(ctx context.Context, path string, lines []string) error {
	return f.writeLines(ctx, "append lines", path, os.O_APPEND, lines)
}

func (f *Files) writeLines(ctx context.Context, op, path string, flag int, lines []string) error {
	sink := f.sinks.Acquire()
	defer sink.Close()
	for _, l := range lines {
		_, _ = sink.WriteString(l)
		_, _ = sink.WriteString(f.cfg.LineEnding)
	}
	_, err := f.writeFrom(ctx, op, path, flag, sink)
	return err
}

// WriteFromStream creates or truncates path and copies src into it. src is
// read from its current position and is not closed.
func (f *Files) WriteFromStream(ctx context.Context, path string, src io.Reader) (int64, error) {
	return f.writeFrom(ctx, "write from stream", path, os.O_TRUNC, src)
}

// WriteAtomic writes data to a temporary sibling of path and renames it over
// path, so readers see either the old content or the new, never a mix.
func (f *Files) WriteAtomic(ctx context.Context, path string, data []byte) error {
	tmp := engine.TempPath(path)
	engine.RegisterTmp(f.fs, tmp)
	defer func() {
		engine.DeregisterTmp(tmp)
		_ = f.fs.Remove(tmp) // no-op if rename succeeded
	}()

	if _, err := f.writeFrom(ctx, "write atomic", tmp, os.O_TRUNC|os.O_EXCL, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := f.fs.Rename(tmp, path); err != nil {
		return f.fail("write atomic", path, err)
	}
	return nil
}
