//go:build linux

package platform

import (
	"context"
	"errors"

	"golang.org/x/sys/unix"
)

// CopyFile tries copy_file_range, then sendfile, falling through on
// unsupported or cross-device errors. Files of unknown (zero) size are left
// to the stream path since procfs-style files report no length.
func CopyFile(ctx context.Context, params Params) (CopyResult, error) {
	if params.Size <= 0 {
		return CopyResult{}, ErrUnsupported
	}
	preallocate(params.Dst, params.Size)

	result, err := copyFileRange(ctx, params)
	if err == nil || !isFallbackErr(err) || result.BytesWritten > 0 {
		return result, err
	}

	result, err = copySendfile(ctx, params)
	if err == nil || !isFallbackErr(err) || result.BytesWritten > 0 {
		return result, err
	}

	return CopyResult{}, ErrUnsupported
}

//nolint:gosec // G115: fd values are small non-negative integers
func copyFileRange(ctx context.Context, params Params) (CopyResult, error) {
	srcFd := int(params.Src.Fd())
	dstFd := int(params.Dst.Fd())

	remaining := params.Size
	var total int64
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return CopyResult{BytesWritten: total, Method: CopyFileRange}, err
		}
		n, err := unix.CopyFileRange(srcFd, nil, dstFd, nil, int(min(remaining, kernelChunk)), 0)
		if err != nil {
			return CopyResult{BytesWritten: total, Method: CopyFileRange}, err
		}
		if n == 0 {
			break // source shrank under us
		}
		remaining -= int64(n)
		total += int64(n)
	}
	return CopyResult{BytesWritten: total, Method: CopyFileRange}, nil
}

//nolint:gosec // G115: fd values are small non-negative integers
func copySendfile(ctx context.Context, params Params) (CopyResult, error) {
	srcFd := int(params.Src.Fd())
	dstFd := int(params.Dst.Fd())

	remaining := params.Size
	var total int64
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return CopyResult{BytesWritten: total, Method: Sendfile}, err
		}
		n, err := unix.Sendfile(dstFd, srcFd, nil, int(min(remaining, kernelChunk)))
		if err != nil {
			return CopyResult{BytesWritten: total, Method: Sendfile}, err
		}
		if n == 0 {
			break
		}
		remaining -= int64(n)
		total += int64(n)
	}
	return CopyResult{BytesWritten: total, Method: Sendfile}, nil
}

// isFallbackErr returns true if err should trigger a fallback to the next copy strategy.
func isFallbackErr(err error) bool {
	return errors.Is(err, unix.ENOSYS) || errors.Is(err, unix.EXDEV) ||
		errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOTSUP) ||
		errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.EBADF)
}
