package engine

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/spf13/afero"
	"github.com/zeebo/blake3"

	"github.com/bamsammich/fileops/internal/stream"
)

// HashFile computes the BLAKE3 hash of the file at path, returning the
// hex-encoded digest. The file is read through eng, so the hash honors
// cancellation and any bandwidth limit.
func HashFile(ctx context.Context, fsys afero.Fs, eng *stream.Engine, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := eng.Copy(ctx, h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
