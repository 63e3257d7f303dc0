package fileop

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/afero"

	"github.com/bamsammich/fileops/internal/memsink"
)

var errIsDir = errors.New("is a directory")

// open opens path for reading and returns its size, refusing directories.
func (f *Files) open(path string) (afero.File, int64, error) {
	file, err := f.fs.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, err
	}
	if info.IsDir() {
		file.Close()
		return nil, 0, &fs.PathError{Op: "open", Path: path, Err: errIsDir}
	}
	return file, info.Size(), nil
}

// ReadText returns the whole file as text. A leading UTF-8 byte order mark
// is dropped and the remaining bytes are returned unchanged. A leading
// UTF-16 mark (FF FE or FE FF) makes the rest decode as UTF-16 into UTF-8,
// so such bytes do not round-trip through WriteBytes; use ReadBytes for
// binary content.
func (f *Files) ReadText(ctx context.Context, path string) (string, error) {
	file, size, err := f.open(path)
	if err != nil {
		return "", f.fail("read text", path, err)
	}
	defer file.Close()

	var sb strings.Builder
	sb.Grow(int(size))
	if _, err := f.stream.Copy(ctx, &sb, textReader(file)); err != nil {
		return "", f.fail("read text", path, err)
	}
	return sb.String(), nil
}

// TryReadText is ReadText with failures reported as false.
func (f *Files) TryReadText(ctx context.Context, path string) (string, bool) {
	s, err := f.ReadText(ctx, path)
	if err != nil {
		f.warn("read text", path, err)
		return "", false
	}
	return s, true
}

// ReadBytes returns the whole file. The result is sized from the file's
// reported length and grows if the file turns out to be longer.
func (f *Files) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	file, size, err := f.open(path)
	if err != nil {
		return nil, f.fail("read bytes", path, err)
	}
	defer file.Close()

	buf := bytes.NewBuffer(make([]byte, 0, size))
	if _, err := f.stream.Copy(ctx, buf, file); err != nil {
		return nil, f.fail("read bytes", path, err)
	}
	return buf.Bytes(), nil
}

// ReadLines returns the file's lines in order, without terminators.
func (f *Files) ReadLines(ctx context.Context, path string) ([]string, error) {
	var lines []string
	err := f.eachLine(ctx, "read lines", path, func(line string) {
		lines = append(lines, line)
	})
	return lines, err
}

// ReadLinesToSet collects the file's distinct lines.
func (f *Files) ReadLinesToSet(ctx context.Context, path string, opts SetOptions) (*LineSet, error) {
	set := NewLineSet(opts.Key)
	err := f.eachLine(ctx, "read lines", path, func(line string) {
		if v, ok := opts.normalize(line); ok {
			set.Add(v)
		}
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

func (f *Files) eachLine(ctx context.Context, op, path string, fn func(string)) error {
	file, _, err := f.open(path)
	if err != nil {
		return f.fail(op, path, err)
	}
	defer file.Close()

	bufp := f.buffers.Get()
	defer f.buffers.Put(bufp)

	sc := bufio.NewScanner(textReader(file))
	sc.Buffer(*bufp, maxLineLength)
	sc.Split(scanLines)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return f.fail(op, path, err)
		}
		fn(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return f.fail(op, path, err)
	}
	return nil
}

// ReadToMemory streams the file into a pooled sink with its cursor at the
// start. The caller owns the sink and must Close it to return it to the
// pool. On error no sink is returned.
func (f *Files) ReadToMemory(ctx context.Context, path string) (*memsink.Sink, error) {
	file, _, err := f.open(path)
	if err != nil {
		return nil, f.fail("read to memory", path, err)
	}
	defer file.Close()

	sink := f.sinks.Acquire()
	if _, err := f.stream.Copy(ctx, sink, file); err != nil {
		sink.Close()
		return nil, f.fail("read to memory", path, err)
	}
	sink.Rewind()
	return sink, nil
}
