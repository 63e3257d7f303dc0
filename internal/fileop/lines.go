package fileop

import (
	"bytes"
	"io"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// maxLineLength bounds a single line read by ReadLines.
const maxLineLength = 64 << 20

// textReader strips a leading byte order mark. A UTF-16 mark switches to
// UTF-16 decoding; anything else passes through byte for byte.
func textReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(encoding.Nop.NewDecoder()))
}

// scanLines is a bufio.SplitFunc that accepts "\n", "\r\n" and a bare "\r"
// as terminators. A final line without a terminator is still returned.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		switch {
		case i+1 < len(data) && data[i+1] == '\n':
			return i + 2, data[:i], nil
		case i+1 < len(data) || atEOF:
			return i + 1, data[:i], nil
		default:
			// "\r" at the end of the buffer; it may be half of "\r\n".
			return 0, nil, nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// SetOptions controls ReadLinesToSet.
type SetOptions struct {
	// Key maps a line to its identity in the set. Lines with equal keys are
	// duplicates. Nil compares lines exactly.
	Key func(string) string

	// Trim removes leading and trailing white space before insertion.
	Trim bool

	// IgnoreEmpty drops lines that are empty after trimming.
	IgnoreEmpty bool
}

// FoldCase returns a Key that treats lines differing only in case as equal.
// The returned function is not safe for concurrent use.
func FoldCase() func(string) string {
	c := cases.Fold()
	return func(s string) string { return c.String(s) }
}

// LineSet is a set of lines under an equality defined by a key function.
// The first line inserted for a key is the one kept.
type LineSet struct {
	key   func(string) string
	lines map[string]string
}

// NewLineSet creates an empty set. A nil key compares lines exactly.
func NewLineSet(key func(string) string) *LineSet {
	return &LineSet{key: key, lines: make(map[string]string)}
}

func (s *LineSet) keyOf(line string) string {
	if s.key == nil {
		return line
	}
	return s.key(line)
}

// Add inserts line and reports whether it was new.
func (s *LineSet) Add(line string) bool {
	k := s.keyOf(line)
	if _, ok := s.lines[k]; ok {
		return false
	}
	s.lines[k] = line
	return true
}

// Contains reports whether a line equal to line is in the set.
func (s *LineSet) Contains(line string) bool {
	_, ok := s.lines[s.keyOf(line)]
	return ok
}

// Len returns the number of distinct lines.
func (s *LineSet) Len() int { return len(s.lines) }

// Lines returns the kept lines in sorted order.
func (s *LineSet) Lines() []string {
	out := make([]string, 0, len(s.lines))
	for _, l := range s.lines {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}

func (o SetOptions) normalize(line string) (string, bool) {
	if o.Trim {
		line = strings.TrimSpace(line)
	}
	if o.IgnoreEmpty && line == "" {
		return "", false
	}
	return line, true
}
