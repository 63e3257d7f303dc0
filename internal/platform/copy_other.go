//go:build !linux

package platform

import "context"

// CopyFile has no kernel offload outside Linux.
func CopyFile(_ context.Context, _ Params) (CopyResult, error) {
	return CopyResult{}, ErrUnsupported
}
