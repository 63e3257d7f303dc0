// Package walk lazily enumerates a directory tree on an afero filesystem.
//
// The walk is single-pass: each range over the returned sequence starts a
// fresh traversal, and breaking out of the loop stops all further I/O.
// Entries that cannot be read are skipped and reported, never fatal.
package walk

import (
	"context"
	"errors"
	"io/fs"
	"iter"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/bamsammich/fileops/internal/filter"
	"github.com/bamsammich/fileops/internal/ioerr"
)

// maxDepth bounds descent where directory identity cannot be established
// (path-keyed filesystems following symlinks).
const maxDepth = 255

var (
	errNotDir  = errors.New("not a directory")
	errTooDeep = errors.New("directory nesting too deep")
)

// Entry is one enumerated filesystem object.
type Entry struct {
	Path    string // path on the walked filesystem (root joined with RelPath)
	RelPath string // path relative to the walk root
	Info    fs.FileInfo
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Info.IsDir() }

// Options controls a walk.
type Options struct {
	// Filter drops entries it does not Match. Excluded directories are not
	// descended into.
	Filter *filter.Chain

	// OnSkip is called for every entry skipped because it could not be read.
	// The error is classified as ioerr.KindPartialFailure.
	OnSkip func(path string, err error)

	Logger *slog.Logger

	// Recursive descends into subdirectories.
	Recursive bool

	// FollowSymlinks yields symlinked files and descends into symlinked
	// directories. Cycles are broken by tracking visited directories.
	// When false, symlinks and other reparse points are skipped.
	FollowSymlinks bool

	// IncludeDirs yields directories (never the root) as well as files.
	IncludeDirs bool
}

// Walk returns a lazy sequence of entries below root, parents before their
// children. Only regular files (and directories with IncludeDirs) are
// yielded. If the root itself cannot be read the sequence is empty and
// OnSkip is called for it.
func Walk(ctx context.Context, fsys afero.Fs, root string, opts Options) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		w := &walker{
			ctx:     ctx,
			fsys:    fsys,
			root:    root,
			opts:    opts,
			visited: make(map[dirKey]struct{}),
		}
		if w.opts.Logger == nil {
			w.opts.Logger = slog.Default()
		}
		w.run(yield)
	}
}

// Files returns a lazy sequence of the file paths below root.
func Files(ctx context.Context, fsys afero.Fs, root string, opts Options) iter.Seq[string] {
	opts.IncludeDirs = false
	return func(yield func(string) bool) {
		for e := range Walk(ctx, fsys, root, opts) {
			if !yield(e.Path) {
				return
			}
		}
	}
}

type walker struct {
	ctx     context.Context
	fsys    afero.Fs
	visited map[dirKey]struct{}
	root    string
	opts    Options
}

func (w *walker) skip(path string, err error) {
	w.opts.Logger.Debug("skipping unreadable entry", "path", path, "error", err)
	if w.opts.OnSkip != nil {
		w.opts.OnSkip(path, ioerr.New(ioerr.KindPartialFailure, "walk", path, err))
	}
}

func (w *walker) run(yield func(Entry) bool) {
	// The root is always resolved, even when it is itself a symlink.
	info, err := w.fsys.Stat(w.root)
	if err != nil {
		w.skip(w.root, err)
		return
	}
	if !info.IsDir() {
		w.skip(w.root, &fs.PathError{Op: "walk", Path: w.root, Err: errNotDir})
		return
	}
	w.markVisited(w.root, info)

	// Explicit stack of directories still to read; each element is a
	// root-relative path. Children are pushed in reverse so the walk
	// proceeds in lexical order.
	stack := []string{"."}
	for len(stack) > 0 {
		if w.ctx.Err() != nil {
			return
		}
		rel := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		dir := filepath.Join(w.root, rel)
		// afero.ReadDir returns lstat-style entries sorted by name.
		infos, err := afero.ReadDir(w.fsys, dir)
		if err != nil {
			w.skip(dir, err)
			continue
		}

		var subdirs []string
		for _, child := range infos {
			if w.ctx.Err() != nil {
				return
			}
			childRel := child.Name()
			if rel != "." {
				childRel = filepath.Join(rel, child.Name())
			}
			childPath := filepath.Join(w.root, childRel)

			entry, descend, ok := w.classify(childPath, childRel, child)
			if !ok {
				continue
			}
			if descend && w.opts.Recursive {
				subdirs = append(subdirs, childRel)
			}
			if entry.Info.IsDir() && !w.opts.IncludeDirs {
				continue
			}
			if !yield(entry) {
				return
			}
		}
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
}

// classify resolves symlinks per policy and applies the filter. ok is false
// when the entry must not be yielded; descend is true for directories that
// should be walked.
func (w *walker) classify(path, rel string, info fs.FileInfo) (entry Entry, descend, ok bool) {
	if info.Mode()&fs.ModeSymlink != 0 || isReparsePoint(info) {
		if !w.opts.FollowSymlinks {
			return Entry{}, false, false
		}
		target, err := w.fsys.Stat(path)
		if err != nil {
			w.skip(path, err)
			return Entry{}, false, false
		}
		info = target
	}

	switch {
	case info.IsDir():
		if !w.opts.Filter.Match(rel, true, 0) {
			return Entry{}, false, false
		}
		if strings.Count(rel, string(filepath.Separator)) >= maxDepth {
			w.skip(path, errTooDeep)
			return Entry{}, false, false
		}
		if !w.markVisited(path, info) {
			w.opts.Logger.Debug("skipping directory cycle", "path", path)
			return Entry{}, false, false
		}
		return Entry{Path: path, RelPath: rel, Info: info}, true, true
	case info.Mode().IsRegular():
		if !w.opts.Filter.Match(rel, false, info.Size()) {
			return Entry{}, false, false
		}
		return Entry{Path: path, RelPath: rel, Info: info}, false, true
	default:
		// Devices, sockets and pipes are never yielded.
		return Entry{}, false, false
	}
}

// markVisited records a directory and reports whether it was new.
func (w *walker) markVisited(path string, info fs.FileInfo) bool {
	key := keyFor(path, info)
	if _, seen := w.visited[key]; seen {
		return false
	}
	w.visited[key] = struct{}{}
	return true
}
