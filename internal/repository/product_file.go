// This file implements the flat-file product store. The whole collection
// lives in one JSON array on disk and every mutation is a read-all,
// mutate, write-all cycle. A mutex serializes those cycles within the
// process; the positional-index identifiers remain unstable across
// processes, which is an accepted limitation of this backend superseded
// by the database store's immutable keys.
package repository

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strconv"
    "sync"

    "github.com/radityasp/umkm-katalog/internal/model"
)

// fileRecord is the on-disk shape of one product. Identifiers and
// creation timestamps are not persisted by this backend: the identifier
// is the record's position in the array. Early collection files carry a
// single `image` field instead of `images`; both shapes are accepted.
type fileRecord struct {
    Name        string   `json:"name"`
    Description string   `json:"description"`
    Contact     string   `json:"contact"`
    Image       string   `json:"image,omitempty"`
    Images      []string `json:"images,omitempty"`
}

// FileStore persists products in a single JSON file.
type FileStore struct {
    path string
    mu   sync.Mutex // guards the read-modify-write cycle
}

// NewFileStore constructs a FileStore for the given collection file. The
// file does not need to exist yet; a missing or empty file reads as an
// empty collection.
func NewFileStore(path string) *FileStore {
    return &FileStore{path: path}
}

// List returns every product in insertion order. Each product's ID is its
// current positional index rendered as a decimal string.
func (s *FileStore) List(ctx context.Context) ([]model.Product, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    recs, err := s.read()
    if err != nil {
        return nil, err
    }
    return toProducts(recs), nil
}

// Create appends the record and rewrites the collection file. The product's
// ID is set to the index it was appended at.
func (s *FileStore) Create(ctx context.Context, p *model.Product) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    recs, err := s.read()
    if err != nil {
        return err
    }
    recs = append(recs, fileRecord{
        Name:        p.Name,
        Description: p.Description,
        Contact:     p.Contact,
        Images:      p.Images,
    })
    if err := s.write(recs); err != nil {
        return err
    }
    p.ID = strconv.Itoa(len(recs) - 1)
    return nil
}

// DeleteByID removes the record at the given positional index and returns
// it. Identifiers that do not parse as an in-range index yield
// ErrProductNotFound, mirroring how a stale index behaves.
func (s *FileStore) DeleteByID(ctx context.Context, id string) (*model.Product, error) {
    idx, err := strconv.Atoi(id)
    if err != nil {
        return nil, ErrProductNotFound
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    recs, err := s.read()
    if err != nil {
        return nil, err
    }
    if idx < 0 || idx >= len(recs) {
        return nil, ErrProductNotFound
    }
    removed := recs[idx]
    recs = append(recs[:idx], recs[idx+1:]...)
    if err := s.write(recs); err != nil {
        return nil, err
    }
    p := recordToProduct(removed, idx)
    return &p, nil
}

// read loads the whole collection. A missing or blank file is an empty
// collection; a corrupt file is a persistence error rather than silent
// data loss.
func (s *FileStore) read() ([]fileRecord, error) {
    data, err := os.ReadFile(s.path)
    if err != nil {
        if errors.Is(err, os.ErrNotExist) {
            return nil, nil
        }
        return nil, fmt.Errorf("%w: read %s: %v", ErrPersistence, s.path, err)
    }
    if len(data) == 0 {
        return nil, nil
    }
    var recs []fileRecord
    if err := json.Unmarshal(data, &recs); err != nil {
        return nil, fmt.Errorf("%w: parse %s: %v", ErrPersistence, s.path, err)
    }
    return recs, nil
}

// write rewrites the collection atomically: marshal to a sibling temp file,
// then rename over the target so readers never observe a half-written array.
func (s *FileStore) write(recs []fileRecord) error {
    if recs == nil {
        recs = []fileRecord{}
    }
    data, err := json.MarshalIndent(recs, "", "  ")
    if err != nil {
        return fmt.Errorf("%w: encode collection: %v", ErrPersistence, err)
    }
    dir := filepath.Dir(s.path)
    tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
    if err != nil {
        return fmt.Errorf("%w: create temp file: %v", ErrPersistence, err)
    }
    tmpName := tmp.Name()
    if _, err := tmp.Write(data); err != nil {
        tmp.Close()
        os.Remove(tmpName)
        return fmt.Errorf("%w: write temp file: %v", ErrPersistence, err)
    }
    if err := tmp.Close(); err != nil {
        os.Remove(tmpName)
        return fmt.Errorf("%w: close temp file: %v", ErrPersistence, err)
    }
    if err := os.Rename(tmpName, s.path); err != nil {
        os.Remove(tmpName)
        return fmt.Errorf("%w: replace %s: %v", ErrPersistence, s.path, err)
    }
    return nil
}

func toProducts(recs []fileRecord) []model.Product {
    out := make([]model.Product, 0, len(recs))
    for i, r := range recs {
        out = append(out, recordToProduct(r, i))
    }
    return out
}

func recordToProduct(r fileRecord, idx int) model.Product {
    p := model.Product{
        ID:          strconv.Itoa(idx),
        Name:        r.Name,
        Description: r.Description,
        Contact:     r.Contact,
        Images:      r.Images,
        LegacyImage: r.Image,
    }
    p.Normalize()
    return p
}
