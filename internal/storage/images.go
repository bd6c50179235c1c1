// Package storage keeps uploaded product images in a gocloud.dev blob bucket
// and serves them back by key.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // registers file://
	_ "gocloud.dev/blob/memblob"  // registers mem://
	"gocloud.dev/gcerrors"

	"github.com/pkordes/boutique/internal/domain"
)

// RefPrefix is the path under which stored images are served.
const RefPrefix = "/uploads/"

const keyPrefix = "img-"

// allowedTypes maps accepted image content types to their file extension.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Stored describes an image after it was written to the bucket.
type Stored struct {
	Key      string
	Ref      string
	BlurHash string
}

// Object is an image read back from the bucket. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
	ModTime     time.Time
}

// ImageStore writes, reads and deletes product images.
type ImageStore struct {
	bucket *blob.Bucket
	logger *slog.Logger
}

// Open opens the bucket at bucketURL (file:// or mem://). Local directories
// named by a file:// URL are created when missing.
func Open(ctx context.Context, bucketURL string, logger *slog.Logger) (*ImageStore, error) {
	if u, err := url.Parse(bucketURL); err == nil && u.Scheme == "file" {
		if err := os.MkdirAll(u.Path, 0o755); err != nil {
			return nil, fmt.Errorf("storage.Open: create %s: %w", u.Path, err)
		}
	}
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("storage.Open: %w", err)
	}
	return New(bucket, logger), nil
}

// New wraps an already opened bucket.
func New(bucket *blob.Bucket, logger *slog.Logger) *ImageStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageStore{bucket: bucket, logger: logger}
}

// Close releases the bucket.
func (s *ImageStore) Close() error {
	return s.bucket.Close()
}

// Save stores img under a fresh key. The content type is sniffed from the
// bytes; anything other than JPEG, PNG, GIF or WebP is a validation error.
// A placeholder hash is computed when the image can be decoded.
func (s *ImageStore) Save(ctx context.Context, img domain.ImageUpload) (Stored, error) {
	if len(img.Data) == 0 {
		return Stored{}, fmt.Errorf("%w: image is empty", domain.ErrValidation)
	}
	contentType := http.DetectContentType(img.Data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return Stored{}, fmt.Errorf("%w: unsupported image type %q", domain.ErrValidation, contentType)
	}

	id, err := gonanoid.New()
	if err != nil {
		return Stored{}, fmt.Errorf("storage.ImageStore.Save: generate key: %w", err)
	}
	key := keyPrefix + id + ext

	opts := &blob.WriterOptions{ContentType: contentType}
	if err := s.bucket.WriteAll(ctx, key, img.Data, opts); err != nil {
		return Stored{}, fmt.Errorf("storage.ImageStore.Save: %w", err)
	}

	hash, err := ComputeBlurHash(bytes.NewReader(img.Data))
	if err != nil {
		s.logger.DebugContext(ctx, "no blurhash for image", "key", key, "error", err)
	}
	return Stored{Key: key, Ref: RefPrefix + key, BlurHash: hash}, nil
}

// Open reads the image stored under key.
// Returns domain.ErrNotFound when there is none.
func (s *ImageStore) Open(ctx context.Context, key string) (Object, error) {
	if !validKey(key) {
		return Object{}, fmt.Errorf("storage.ImageStore.Open: %w", domain.ErrNotFound)
	}
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return Object{}, fmt.Errorf("storage.ImageStore.Open: %w", mapBlobError(err))
	}
	return Object{
		Body:        r,
		ContentType: r.ContentType(),
		Size:        r.Size(),
		ModTime:     r.ModTime(),
	}, nil
}

// Delete removes the image behind ref, a path returned by Save.
// Returns domain.ErrNotFound when ref does not point at a stored image.
func (s *ImageStore) Delete(ctx context.Context, ref string) error {
	key, ok := KeyFromRef(ref)
	if !ok {
		return fmt.Errorf("storage.ImageStore.Delete: %w", domain.ErrNotFound)
	}
	if err := s.bucket.Delete(ctx, key); err != nil {
		return fmt.Errorf("storage.ImageStore.Delete: %w", mapBlobError(err))
	}
	return nil
}

// KeyFromRef extracts the bucket key from a stored image reference.
func KeyFromRef(ref string) (string, bool) {
	key, ok := strings.CutPrefix(ref, RefPrefix)
	if !ok || !validKey(key) {
		return "", false
	}
	return key, true
}

func validKey(key string) bool {
	return strings.HasPrefix(key, keyPrefix) &&
		!strings.ContainsAny(key, `/\`) &&
		!strings.Contains(key, "..")
}

func mapBlobError(err error) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	return err
}
