// Package platform offloads whole-file copies to the kernel where the OS
// supports it. Callers fall back to a user-space stream copy when CopyFile
// reports ErrUnsupported.
package platform

import (
	"errors"
	"os"
)

// ErrUnsupported means no kernel copy path applies and nothing was written.
var ErrUnsupported = errors.New("kernel copy not supported")

// kernelChunk bounds a single kernel copy call so cancellation is observed
// between chunks.
const kernelChunk = 8 << 20

// CopyMethod identifies which syscall/strategy was used for a copy.
type CopyMethod int

const (
	Stream        CopyMethod = iota // user-space copy through a pooled buffer
	CopyFileRange                   // Linux copy_file_range(2)
	Sendfile                        // Linux sendfile(2)
)

func (m CopyMethod) String() string {
	switch m {
	case Stream:
		return "stream"
	case CopyFileRange:
		return "copy_file_range"
	case Sendfile:
		return "sendfile"
	default:
		return "unknown"
	}
}

// CopyResult reports the outcome of a copy operation.
type CopyResult struct {
	BytesWritten int64
	Method       CopyMethod
}

// Params describes a whole-file copy between two open files. Both files
// must be positioned at offset zero; neither is closed.
type Params struct {
	Src  *os.File
	Dst  *os.File
	Size int64
}
