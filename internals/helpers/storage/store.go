// Package storage is the object reference resolver: it uploads submitted files,
// resolves short-lived download links and removes objects, behind one interface
// so the OSS, B2 and in-memory drivers are interchangeable.
package storage

import (
	"context"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"portalku_backend/internals/helpers/apperr"
)

// Logical bucket names. Drivers map them to physical buckets.
const (
	BucketHomework   = "hw-submissions"
	BucketAssignment = "as-submissions"
	BucketProject    = "project-reports"
	BucketNotes      = "notes"
)

type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
	SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
	Remove(ctx context.Context, bucket string, keys ...string) error
}

// SignedLink is what download endpoints hand back to the client.
type SignedLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NormalizeKey strips leading slashes; stored paths sometimes carry one.
func NormalizeKey(key string) string {
	return strings.TrimLeft(strings.TrimSpace(key), "/")
}

func normalizeKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = NormalizeKey(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Resolve signs a stored path. An empty path, or any driver failure, is a StorageError.
func Resolve(ctx context.Context, store ObjectStore, bucket, path string, ttl time.Duration, now time.Time) (SignedLink, error) {
	key := NormalizeKey(path)
	if key == "" {
		return SignedLink{}, apperr.Storage(nil, "no stored object for this record")
	}
	u, err := store.SignedURL(ctx, bucket, key, ttl)
	if err != nil {
		return SignedLink{}, asStorage(err, "failed to create download link")
	}
	return SignedLink{URL: u, ExpiresAt: now.Add(ttl).UTC()}, nil
}

func asStorage(err error, msg string) error {
	if err == nil {
		return nil
	}
	if apperr.Is(err, apperr.KindStorage) {
		return err
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Storage(err, msg)
}

// File is an incoming upload taken from a multipart request.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// FileFromHeader opens a multipart part. The caller closes the returned closer.
func FileFromHeader(fh *multipart.FileHeader) (*File, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &File{Name: fh.Filename, ContentType: ct, Size: fh.Size, Body: f}, f, nil
}
