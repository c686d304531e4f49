package storage

import (
    "context"
    "errors"
    "fmt"
    "io"
    "os"
    "path/filepath"
    "strings"
)

// localMaxBytes caps uploads on the disk backend at 5 MiB.
const localMaxBytes = 5 * 1024 * 1024

// urlPrefix is the public path the router serves the upload directory
// under.  Image URLs produced by this backend are /uploads/<name>.
const urlPrefix = "/uploads/"

// LocalStorage stores image bytes on the local filesystem under a
// directory that the router exposes as static files.
type LocalStorage struct {
    dir string
}

// NewLocalStorage ensures the upload directory exists and returns the
// backend.
func NewLocalStorage(dir string) (*LocalStorage, error) {
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
    }
    return &LocalStorage{dir: dir}, nil
}

// MaxBytes returns the per-file size cap of the disk backend.
func (s *LocalStorage) MaxBytes() int64 { return localMaxBytes }

// Store validates the upload, writes it under a collision-resistant name
// and returns the /uploads URL. The file is written before the URL is
// returned; a failed write leaves no partial file behind.
func (s *LocalStorage) Store(ctx context.Context, r io.Reader, size int64, mimeType, originalName string) (string, error) {
    if err := checkUpload(size, localMaxBytes, mimeType); err != nil {
        return "", err
    }
    name := objectName(mimeType, originalName)
    dst := filepath.Join(s.dir, name)
    f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
    if err != nil {
        return "", fmt.Errorf("create %s: %w", dst, err)
    }
    // Copy at most one byte past the cap so a lying Content-Length cannot
    // smuggle an oversized body onto disk.
    n, err := io.Copy(f, io.LimitReader(r, localMaxBytes+1))
    if cerr := f.Close(); err == nil {
        err = cerr
    }
    if err != nil {
        os.Remove(dst)
        return "", fmt.Errorf("write %s: %w", dst, err)
    }
    if n > localMaxBytes {
        os.Remove(dst)
        return "", fmt.Errorf("%w: body exceeds limit of %d", ErrPayloadTooLarge, int64(localMaxBytes))
    }
    return urlPrefix + name, nil
}

// Delete removes the file behind a /uploads URL. URLs outside the upload
// prefix are rejected so a crafted record cannot unlink arbitrary paths.
// A file that is already gone counts as deleted.
func (s *LocalStorage) Delete(ctx context.Context, imageURL string) error {
    name, ok := strings.CutPrefix(imageURL, urlPrefix)
    if !ok || name == "" || name != filepath.Base(name) {
        return fmt.Errorf("refusing to delete %q: not an upload URL", imageURL)
    }
    if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
        return fmt.Errorf("remove %s: %w", name, err)
    }
    return nil
}
