// Package storage keeps uploaded profile images. Two backends exist: a local
// directory and an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// BlobStore saves and serves uploaded files by name. Names are flat: they never
// contain a path separator. Open returns common.ErrorNotFound for unknown names.
type BlobStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Close() error
}

// FileName builds the stored name for an upload: the upload time in unix
// milliseconds, a dash and the base name of the client supplied file name.
func FileName(now time.Time, original string) string {
	base := path.Base(strings.ReplaceAll(original, `\`, "/"))
	switch base {
	case "", ".", "..", "/":
		base = "upload"
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), base)
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
