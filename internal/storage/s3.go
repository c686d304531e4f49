package storage

import (
    "context"
    "fmt"
    "io"
    "net/url"
    "strings"
    "time"

    "github.com/minio/minio-go/v7"
    "github.com/minio/minio-go/v7/pkg/credentials"
)

// s3MaxBytes caps uploads on the object-store backend at 10 MiB.
const s3MaxBytes = 10 * 1024 * 1024

// S3Config carries the connection parameters of the object-store backend.
type S3Config struct {
    Endpoint  string // host:port of the S3/MinIO endpoint
    AccessKey string
    SecretKey string
    Bucket    string
    UseSSL    bool
    PublicURL string // base URL for object links; derived from Endpoint when empty
}

// S3Storage stores image bytes in an S3-compatible bucket via the MinIO
// client. Object URLs are <public base>/<bucket>/<object>.
type S3Storage struct {
    client  *minio.Client
    bucket  string
    baseURL string
}

// NewS3Storage connects to the object store and ensures the bucket
// exists. The bucket check runs with a short timeout so a misconfigured
// endpoint fails at startup instead of on the first upload.
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
    client, err := minio.New(cfg.Endpoint, &minio.Options{
        Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
        Secure: cfg.UseSSL,
    })
    if err != nil {
        return nil, fmt.Errorf("connect object store: %w", err)
    }
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    ok, err := client.BucketExists(ctx, cfg.Bucket)
    if err != nil {
        return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
    }
    if !ok {
        if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
            return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
        }
    }
    base := cfg.PublicURL
    if base == "" {
        scheme := "http"
        if cfg.UseSSL {
            scheme = "https"
        }
        base = scheme + "://" + cfg.Endpoint
    }
    return &S3Storage{
        client:  client,
        bucket:  cfg.Bucket,
        baseURL: strings.TrimRight(base, "/"),
    }, nil
}

// MaxBytes returns the per-file size cap of the object-store backend.
func (s *S3Storage) MaxBytes() int64 { return s3MaxBytes }

// Store validates the upload, writes the object and returns its public
// URL once the put has completed.
func (s *S3Storage) Store(ctx context.Context, r io.Reader, size int64, mimeType, originalName string) (string, error) {
    if err := checkUpload(size, s3MaxBytes, mimeType); err != nil {
        return "", err
    }
    name := objectName(mimeType, originalName)
    _, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
        ContentType: normalizeMime(mimeType),
    })
    if err != nil {
        return "", fmt.Errorf("put object %s: %w", name, err)
    }
    return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, name), nil
}

// Delete removes the object behind a previously returned URL. Removing a
// nonexistent object is a no-op at the S3 level and counts as deleted.
func (s *S3Storage) Delete(ctx context.Context, imageURL string) error {
    name, err := s.objectFromURL(imageURL)
    if err != nil {
        return err
    }
    if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
        return fmt.Errorf("remove object %s: %w", name, err)
    }
    return nil
}

// objectFromURL extracts the object key from a URL of the form
// <base>/<bucket>/<object>. URLs that do not reference this bucket are
// rejected rather than guessed at.
func (s *S3Storage) objectFromURL(imageURL string) (string, error) {
    u, err := url.Parse(imageURL)
    if err != nil {
        return "", fmt.Errorf("parse image URL %q: %w", imageURL, err)
    }
    rest, ok := strings.CutPrefix(strings.TrimPrefix(u.Path, "/"), s.bucket+"/")
    if !ok || rest == "" {
        return "", fmt.Errorf("image URL %q does not reference bucket %s", imageURL, s.bucket)
    }
    return rest, nil
}
