package engine

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// globalTmpRegistry tracks in-progress temporary files so an interrupted
// process can remove them before exiting.
var globalTmpRegistry = &tmpRegistry{}

type tmpRegistry struct {
	paths map[string]afero.Fs
	mu    sync.Mutex
}

// TempPath returns a hidden sibling of dst used while dst is written.
func TempPath(dst string) string {
	dir := filepath.Dir(dst)
	base := filepath.Base(dst)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.fileops-tmp", base, uuid.New().String()[:8]))
}

// RegisterTmp adds a temporary file on fsys to the global registry.
func RegisterTmp(fsys afero.Fs, path string) {
	globalTmpRegistry.mu.Lock()
	defer globalTmpRegistry.mu.Unlock()
	if globalTmpRegistry.paths == nil {
		globalTmpRegistry.paths = make(map[string]afero.Fs)
	}
	globalTmpRegistry.paths[path] = fsys
}

// DeregisterTmp removes a temporary file path from the global registry.
func DeregisterTmp(path string) {
	globalTmpRegistry.mu.Lock()
	defer globalTmpRegistry.mu.Unlock()
	delete(globalTmpRegistry.paths, path)
}

// CleanupTmpFiles removes all registered temporary files and returns how
// many were registered.
func CleanupTmpFiles() int {
	globalTmpRegistry.mu.Lock()
	paths := globalTmpRegistry.paths
	globalTmpRegistry.paths = nil
	globalTmpRegistry.mu.Unlock()

	for p, fsys := range paths {
		_ = fsys.Remove(p)
	}
	return len(paths)
}
