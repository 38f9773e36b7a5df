package fileops

import (
	"context"
	"fmt"
	"io"

	"github.com/ZoeBambery/cyberduck/internal/vfs"
)

const bufferSize = 256 * 1024

// Copy copies the single file src to dst, supporting cross-filesystem
// operations. A positive offset resumes: reading starts at offset and the
// destination is appended to. It returns the number of bytes written.
// A cancelled copy leaves the partial file in place so it can be resumed.
func Copy(ctx context.Context, srcFS vfs.FileSystem, src string, dstFS vfs.FileSystem, dst string, offset int64, onProgress func(Progress)) (int64, error) {
	srcInfo, err := srcFS.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", src, err)
	}
	if srcInfo.IsDir {
		return 0, fmt.Errorf("copy %s: is a directory", src)
	}
	if offset < 0 || offset > srcInfo.Size {
		offset = 0
	}

	if err := dstFS.MkdirAll(dstFS.Dir(dst), 0755); err != nil {
		return 0, err
	}

	var sf io.ReadCloser
	if offset > 0 {
		sf, err = srcFS.OpenAt(src, offset)
	} else {
		sf, err = srcFS.Open(src)
	}
	if err != nil {
		return 0, err
	}
	defer sf.Close()

	var df io.WriteCloser
	if offset > 0 {
		df, err = dstFS.Append(dst)
	} else {
		df, err = dstFS.Create(dst, srcInfo.Mode)
	}
	if err != nil {
		return 0, err
	}

	n, err := copyStream(ctx, df, sf, srcFS.Base(src), srcInfo.Size, offset, onProgress)
	if cerr := df.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func copyStream(ctx context.Context, df io.Writer, sf io.Reader, name string, total, offset int64, onProgress func(Progress)) (int64, error) {
	// Fast path: io.Copy lets an sftp.File destination use its concurrent
	// ReadFrom. The reader still stops on cancellation.
	if onProgress == nil {
		return io.Copy(df, &ctxReader{ctx: ctx, r: sf})
	}

	var copied int64
	buf := make([]byte, bufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return copied, err
		}

		n, readErr := sf.Read(buf)
		if n > 0 {
			if _, writeErr := df.Write(buf[:n]); writeErr != nil {
				return copied, writeErr
			}
			copied += int64(n)
			onProgress(Progress{
				FileName: name,
				Total:    total,
				Done:     offset + copied,
				Offset:   offset,
			})
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return copied, readErr
		}
	}

	return copied, nil
}

// ctxReader fails reads once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
