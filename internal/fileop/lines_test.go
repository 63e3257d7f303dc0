package fileop

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "lf", input: "a\nb\n", want: []string{"a", "b"}},
		{name: "crlf", input: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "bare cr", input: "a\rb\r", want: []string{"a", "b"}},
		{name: "no final terminator", input: "a\nb", want: []string{"a", "b"}},
		{name: "blank lines", input: "\n\r\n\r", want: []string{"", "", ""}},
		{name: "cr then lf line", input: "a\r\n\nb", want: []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := bufio.NewScanner(strings.NewReader(tt.input))
			sc.Buffer(make([]byte, 2), 1024)
			sc.Split(scanLines)
			var got []string
			for sc.Scan() {
				got = append(got, sc.Text())
			}
			require.NoError(t, sc.Err())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineSet(t *testing.T) {
	s := NewLineSet(nil)
	assert.True(t, s.Add("b"))
	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("b"))
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("A"))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"a", "b"}, s.Lines())
}

func TestFoldCase(t *testing.T) {
	s := NewLineSet(FoldCase())
	assert.True(t, s.Add("Straße"))
	assert.False(t, s.Add("STRASSE"))
	assert.True(t, s.Contains("strasse"))
	assert.Equal(t, []string{"Straße"}, s.Lines())
}

func TestSetOptionsNormalize(t *testing.T) {
	line, ok := SetOptions{Trim: true}.normalize("  x \t")
	assert.True(t, ok)
	assert.Equal(t, "x", line)

	_, ok = SetOptions{Trim: true, IgnoreEmpty: true}.normalize("   ")
	assert.False(t, ok)

	line, ok = SetOptions{IgnoreEmpty: true}.normalize("   ")
	assert.True(t, ok, "whitespace is not empty without Trim")
	assert.Equal(t, "   ", line)
}
