package fileop

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/fileops/internal/bufpool"
	"github.com/bamsammich/fileops/internal/ioerr"
)

func TestTextRoundTrip(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for _, text := range []string{"", "a", "hello, world\n", "héllo wörld ✓", strings.Repeat("x", 10000)} {
		require.NoError(t, fx.files.WriteText(ctx, "/t.txt", text))
		got, err := fx.files.ReadText(ctx, "/t.txt")
		require.NoError(t, err)
		assert.Equal(t, text, got)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for _, size := range []int{0, 1, 4095, 4096, 4097, 3*4096 + 11} {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			data := make([]byte, size)
			_, err := rand.Read(data)
			require.NoError(t, err)

			require.NoError(t, fx.files.WriteBytes(ctx, "/b.bin", data))
			got, err := fx.files.ReadBytes(ctx, "/b.bin")
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestReadTextByteOrderMark(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "/utf8.txt", "\xEF\xBB\xBFhello")
	fx.write(t, "/utf16.txt", "\xFF\xFEh\x00i\x00")

	got, err := fx.files.ReadText(context.Background(), "/utf8.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	got, err = fx.files.ReadText(context.Background(), "/utf16.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
}

func TestReadTextDecodesUTF16Prefix(t *testing.T) {
	fx := newFixture(t)
	raw := []byte{0xFE, 0xFF, 0x00, 'o', 0x00, 'k'}
	require.NoError(t, fx.files.WriteBytes(context.Background(), "/be.bin", raw))

	text, err := fx.files.ReadText(context.Background(), "/be.bin")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)

	// ReadBytes is the lossless path.
	got, err := fx.files.ReadBytes(context.Background(), "/be.bin")
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestReadErrors(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.fs.MkdirAll("/dir", 0o755))
	ctx := context.Background()

	_, err := fx.files.ReadText(ctx, "/missing.txt")
	require.ErrorIs(t, err, ioerr.ErrNotFound)
	assert.Contains(t, err.Error(), "read text")
	assert.Contains(t, err.Error(), "/missing.txt")

	_, err = fx.files.ReadBytes(ctx, "/missing.bin")
	require.ErrorIs(t, err, ioerr.ErrNotFound)

	_, err = fx.files.ReadLines(ctx, "/missing.txt")
	require.ErrorIs(t, err, ioerr.ErrNotFound)

	_, err = fx.files.ReadText(ctx, "/dir")
	require.ErrorIs(t, err, ioerr.ErrIOFailure)
	require.ErrorIs(t, err, errIsDir)
}

func TestReadCancelled(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "/a.txt", "content")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fx.files.ReadText(ctx, "/a.txt")
	require.ErrorIs(t, err, ioerr.ErrCancelled)

	_, err = fx.files.ReadLines(ctx, "/a.txt")
	require.ErrorIs(t, err, ioerr.ErrCancelled)
}

func TestTryReadText(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "/a.txt", "present")

	got, ok := fx.files.TryReadText(context.Background(), "/a.txt")
	assert.True(t, ok)
	assert.Equal(t, "present", got)

	got, ok = fx.files.TryReadText(context.Background(), "/nope.txt")
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestLinesScenario(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	lines := []string{"Line 1", "Line 2", "Line 3"}

	require.NoError(t, fx.files.WriteAllLines(ctx, "/lines.txt", lines))
	got, err := fx.files.ReadLines(ctx, "/lines.txt")
	require.NoError(t, err)
	assert.Equal(t, lines, got)

	set, err := fx.files.ReadLinesToSet(ctx, "/lines.txt", SetOptions{Trim: true, IgnoreEmpty: true})
	require.NoError(t, err)
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, lines, set.Lines())
}

func TestLineFidelity(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	tests := [][]string{
		{"only"},
		{""},
		{"", ""},
		{"a", "", "b"},
		{"  padded  ", "\ttabbed"},
		{"ünïcödé", "✓"},
	}
	for _, lines := range tests {
		require.NoError(t, fx.files.WriteAllLines(ctx, "/l.txt", lines))
		got, err := fx.files.ReadLines(ctx, "/l.txt")
		require.NoError(t, err)
		assert.Equal(t, lines, got)
	}

	require.NoError(t, fx.files.WriteAllLines(ctx, "/empty.txt", nil))
	got, err := fx.files.ReadLines(ctx, "/empty.txt")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, fx.read(t, "/empty.txt"))
}

func TestReadLinesTerminators(t *testing.T) {
	// A 4-byte buffer forces "\r\n" to straddle a refill.
	fx := newFixture(t, func(c *Config) { c.Buffers = bufpool.New(4) })
	fx.write(t, "/mixed.txt", "abc\r\ndef\rghi\njkl")

	got, err := fx.files.ReadLines(context.Background(), "/mixed.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "def", "ghi", "jkl"}, got)

	fx.write(t, "/trailing.txt", "a\r")
	got, err = fx.files.ReadLines(context.Background(), "/trailing.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
}

func TestReadLinesToSet(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "/set.txt", "apple\n  Apple \n\nbanana\napple\n   \nBANANA\n")
	ctx := context.Background()

	exact, err := fx.files.ReadLinesToSet(ctx, "/set.txt", SetOptions{})
	require.NoError(t, err)
	assert.Equal(t, 6, exact.Len())
	assert.True(t, exact.Contains(""))
	assert.True(t, exact.Contains("  Apple "))

	trimmed, err := fx.files.ReadLinesToSet(ctx, "/set.txt", SetOptions{Trim: true, IgnoreEmpty: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple", "BANANA", "apple", "banana"}, trimmed.Lines())

	folded, err := fx.files.ReadLinesToSet(ctx, "/set.txt", SetOptions{Key: FoldCase(), Trim: true, IgnoreEmpty: true})
	require.NoError(t, err)
	assert.Equal(t, 2, folded.Len())
	assert.True(t, folded.Contains("APPLE"))
	assert.True(t, folded.Contains("Banana"))
	assert.False(t, folded.Contains(""))
	// The first spelling seen is the one kept.
	assert.Equal(t, []string{"apple", "banana"}, folded.Lines())
}

func TestReadToMemory(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "/m.txt", "in memory")

	sink, err := fx.files.ReadToMemory(context.Background(), "/m.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(1), fx.sinks.Outstanding())

	got, err := io.ReadAll(sink)
	require.NoError(t, err)
	assert.Equal(t, "in memory", string(got))

	require.NoError(t, sink.Close())
	assert.Zero(t, fx.sinks.Outstanding())
}

func TestReadToMemoryReusesCleanSink(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "/long.txt", "a much longer first file")
	fx.write(t, "/short.txt", "short")

	first, err := fx.files.ReadToMemory(context.Background(), "/long.txt")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := fx.files.ReadToMemory(context.Background(), "/short.txt")
	require.NoError(t, err)
	defer second.Close()
	assert.Equal(t, "short", string(second.Bytes()))
}

func TestReadToMemoryFailureReleasesSink(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "/m.txt", "data")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink, err := fx.files.ReadToMemory(ctx, "/m.txt")
	require.ErrorIs(t, err, ioerr.ErrCancelled)
	assert.Nil(t, sink)
	assert.Zero(t, fx.sinks.Outstanding())

	_, err = fx.files.ReadToMemory(context.Background(), "/missing")
	require.ErrorIs(t, err, ioerr.ErrNotFound)
	assert.Zero(t, fx.sinks.Outstanding())
}
