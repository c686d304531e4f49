// Package storage provides image object storage for the catalog.  Two
// backends exist: the local filesystem served under /uploads, and an
// S3-compatible object store.  Products reference stored images by URL
// only; the storage backend owns the bytes.
package storage

import (
    "context"
    "crypto/rand"
    "encoding/hex"
    "errors"
    "fmt"
    "io"
    "path"
    "strings"
    "time"
)

// ErrUnsupportedMediaType is returned when an upload is not a jpeg, png or
// gif image. Handlers should translate this into an HTTP 400 response.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// ErrPayloadTooLarge is returned when an upload exceeds the backend's
// per-file size cap. Handlers should translate this into an HTTP 400
// response.
var ErrPayloadTooLarge = errors.New("payload too large")

// ImageStorage is the contract shared by the disk and object-store
// backends.  Store validates the media type and size, durably writes the
// bytes and returns a retrievable URL.  Delete is best effort: callers
// log failures and continue, so a product deletion never rolls back
// because an image object could not be removed.  MaxBytes exposes the
// backend's per-file cap for request-time enforcement.
type ImageStorage interface {
    Store(ctx context.Context, r io.Reader, size int64, mimeType, originalName string) (string, error)
    Delete(ctx context.Context, imageURL string) error
    MaxBytes() int64
}

// extByMime maps the accepted image media types to the file extension the
// stored object is given.  Anything absent from this map is rejected.
var extByMime = map[string]string{
    "image/jpeg": ".jpg",
    "image/png":  ".png",
    "image/gif":  ".gif",
}

// checkUpload applies the validation shared by both backends: media type
// whitelist first, then the size cap.
func checkUpload(size, maxBytes int64, mimeType string) error {
    if _, ok := extByMime[normalizeMime(mimeType)]; !ok {
        return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mimeType)
    }
    if size > maxBytes {
        return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrPayloadTooLarge, size, maxBytes)
    }
    return nil
}

// normalizeMime strips any media-type parameters (e.g. "; charset=...")
// and lowercases the remainder.
func normalizeMime(mimeType string) string {
    if i := strings.IndexByte(mimeType, ';'); i >= 0 {
        mimeType = mimeType[:i]
    }
    return strings.ToLower(strings.TrimSpace(mimeType))
}

// objectName builds a collision-resistant storage name from the upload
// time, a random suffix and the extension implied by the media type:
// images-<unix-ms>-<hex>.<ext>.  The original name only contributes its
// extension when the media type is unknown, which checkUpload prevents.
func objectName(mimeType, originalName string) string {
    ext, ok := extByMime[normalizeMime(mimeType)]
    if !ok {
        ext = path.Ext(originalName)
    }
    suffix := make([]byte, 4)
    _, _ = rand.Read(suffix)
    return fmt.Sprintf("images-%d-%s%s", time.Now().UnixMilli(), hex.EncodeToString(suffix), ext)
}
