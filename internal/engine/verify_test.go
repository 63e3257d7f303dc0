package engine

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/fileops/internal/event"
	"github.com/bamsammich/fileops/internal/stats"
)

func verifyFixture(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for _, rel := range []string{"a.txt", "sub/b.txt"} {
		data := []byte("content of " + rel)
		require.NoError(t, fsys.MkdirAll("/src/sub", 0o755))
		require.NoError(t, fsys.MkdirAll("/dst/sub", 0o755))
		require.NoError(t, afero.WriteFile(fsys, "/src/"+rel, data, 0o644))
		require.NoError(t, afero.WriteFile(fsys, "/dst/"+rel, data, 0o644))
	}
	return fsys
}

func TestVerify_MatchingFiles(t *testing.T) {
	fsys := verifyFixture(t)
	collector := stats.NewCollector()
	events := make(chan event.Event, 64)

	vr := Verify(context.Background(), VerifyConfig{
		Fs:      fsys,
		SrcRoot: "/src",
		DstRoot: "/dst",
		Files:   []string{"a.txt", "sub/b.txt"},
		Workers: 2,
		Stats:   collector,
		Events:  events,
	})
	close(events)

	assert.Equal(t, int64(2), vr.Verified)
	assert.Equal(t, int64(0), vr.Failed)
	assert.Empty(t, vr.Errors)
	assert.Equal(t, int64(2), collector.Snapshot().FilesVerified)

	var ok int
	for e := range events {
		if e.Type == event.VerifyOK {
			ok++
		}
	}
	assert.Equal(t, 2, ok)
}

func TestVerify_CorruptedFile(t *testing.T) {
	fsys := verifyFixture(t)
	require.NoError(t, afero.WriteFile(fsys, "/dst/a.txt", []byte("corrupted"), 0o644))

	vr := Verify(context.Background(), VerifyConfig{
		Fs:      fsys,
		SrcRoot: "/src",
		DstRoot: "/dst",
		Files:   []string{"a.txt", "sub/b.txt"},
	})

	assert.Equal(t, int64(1), vr.Verified)
	assert.Equal(t, int64(1), vr.Failed)
	require.Len(t, vr.Errors, 1)
	assert.Equal(t, "a.txt", vr.Errors[0].Path)
	assert.NotEqual(t, vr.Errors[0].SrcHash, vr.Errors[0].DstHash)
	assert.NoError(t, vr.Errors[0].Err)
}

func TestVerify_MissingDestination(t *testing.T) {
	fsys := verifyFixture(t)
	require.NoError(t, fsys.Remove("/dst/sub/b.txt"))

	vr := Verify(context.Background(), VerifyConfig{
		Fs:      fsys,
		SrcRoot: "/src",
		DstRoot: "/dst",
		Files:   []string{"a.txt", "sub/b.txt"},
	})

	assert.Equal(t, int64(1), vr.Failed)
	require.Len(t, vr.Errors, 1)
	assert.Equal(t, "error", vr.Errors[0].DstHash)
	assert.Error(t, vr.Errors[0].Err)
}

func TestVerify_Cancelled(t *testing.T) {
	fsys := verifyFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	vr := Verify(ctx, VerifyConfig{Fs: fsys, SrcRoot: "/src", DstRoot: "/dst", Files: []string{"a.txt"}})
	assert.Zero(t, vr.Verified)
	assert.Zero(t, vr.Failed)
}
