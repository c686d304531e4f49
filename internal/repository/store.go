package repository

import (
    "context"

    "github.com/radityasp/umkm-katalog/internal/model"
)

// ProductStore is the persistence contract shared by the file backed and
// database backed stores.  Handlers depend on this interface so either
// backend (or a test stub) can be wired at construction time.
//
// List never fails on an empty collection; it returns an empty slice.
// Create must persist durably before returning; on failure the record is
// not created and the error wraps ErrPersistence.  DeleteByID removes
// exactly one record and returns it so the caller can cascade-delete the
// associated images; it returns ErrProductNotFound when the identifier
// does not resolve to a record.
type ProductStore interface {
    List(ctx context.Context) ([]model.Product, error)
    Create(ctx context.Context, p *model.Product) error
    DeleteByID(ctx context.Context, id string) (*model.Product, error)
}
