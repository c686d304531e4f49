// This file implements the database-backed product store. Identifiers are
// immutable auto-increment keys, so concurrent deletes cannot race onto
// the wrong record the way positional indexes can. Image URLs are stored
// as a JSON array column.
package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"
    "strconv"

    "github.com/radityasp/umkm-katalog/internal/model"
)

// MySQLStore manages persistence for products in the `products` table.
type MySQLStore struct {
    db *sql.DB
}

// NewMySQLStore constructs a MySQLStore with the given DB handle.
func NewMySQLStore(db *sql.DB) *MySQLStore {
    return &MySQLStore{db: db}
}

// List returns all products ordered by creation time descending, newest
// first. When no products exist it returns an empty slice and nil error.
func (s *MySQLStore) List(ctx context.Context) ([]model.Product, error) {
    const q = `SELECT id, name, description, contact, images, created_at
               FROM products
               ORDER BY created_at DESC, id DESC`
    rows, err := s.db.QueryContext(ctx, q)
    if err != nil {
        return nil, fmt.Errorf("%w: list products: %v", ErrPersistence, err)
    }
    defer rows.Close()
    result := make([]model.Product, 0)
    for rows.Next() {
        p, err := scanProduct(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, p)
    }
    if err := rows.Err(); err != nil {
        return nil, fmt.Errorf("%w: list products: %v", ErrPersistence, err)
    }
    return result, nil
}

// Create inserts a new product and assigns the generated key and the
// DB-default creation timestamp back to the struct.
func (s *MySQLStore) Create(ctx context.Context, p *model.Product) error {
    imgs, err := json.Marshal(p.Images)
    if err != nil {
        return fmt.Errorf("%w: encode images: %v", ErrPersistence, err)
    }
    const q = `INSERT INTO products (name, description, contact, images) VALUES (?, ?, ?, ?)`
    res, err := s.db.ExecContext(ctx, q, p.Name, p.Description, p.Contact, imgs)
    if err != nil {
        return fmt.Errorf("%w: insert product: %v", ErrPersistence, err)
    }
    id, err := res.LastInsertId()
    if err != nil {
        return fmt.Errorf("%w: read insert id: %v", ErrPersistence, err)
    }
    p.ID = strconv.FormatInt(id, 10)
    // Fetch the inserted row to populate the DB-assigned created_at.
    const sel = `SELECT created_at FROM products WHERE id = ?`
    if err := s.db.QueryRowContext(ctx, sel, id).Scan(&p.CreatedAt); err != nil {
        return fmt.Errorf("%w: reload product %d: %v", ErrPersistence, id, err)
    }
    return nil
}

// DeleteByID removes the product with the given key and returns the
// removed record so the caller can cascade-delete its images. Unparseable
// or unknown identifiers yield ErrProductNotFound.
func (s *MySQLStore) DeleteByID(ctx context.Context, id string) (*model.Product, error) {
    key, err := strconv.ParseUint(id, 10, 64)
    if err != nil {
        return nil, ErrProductNotFound
    }
    const sel = `SELECT id, name, description, contact, images, created_at FROM products WHERE id = ?`
    row := s.db.QueryRowContext(ctx, sel, key)
    p, err := scanProduct(row)
    if err != nil {
        if errors.Is(err, ErrProductNotFound) {
            return nil, ErrProductNotFound
        }
        return nil, err
    }
    const del = `DELETE FROM products WHERE id = ?`
    res, err := s.db.ExecContext(ctx, del, key)
    if err != nil {
        return nil, fmt.Errorf("%w: delete product %d: %v", ErrPersistence, key, err)
    }
    // A concurrent delete may have removed the row between the select and
    // the delete; report it as not found rather than pretending success.
    if n, _ := res.RowsAffected(); n == 0 {
        return nil, ErrProductNotFound
    }
    return &p, nil
}

// rowScanner covers *sql.Row and *sql.Rows so one scan helper serves both.
type rowScanner interface {
    Scan(dest ...any) error
}

func scanProduct(r rowScanner) (model.Product, error) {
    var (
        p       model.Product
        id      uint64
        rawImgs []byte
    )
    err := r.Scan(&id, &p.Name, &p.Description, &p.Contact, &rawImgs, &p.CreatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return model.Product{}, ErrProductNotFound
        }
        return model.Product{}, fmt.Errorf("%w: scan product: %v", ErrPersistence, err)
    }
    p.ID = strconv.FormatUint(id, 10)
    if err := json.Unmarshal(rawImgs, &p.Images); err != nil {
        return model.Product{}, fmt.Errorf("%w: decode images for product %d: %v", ErrPersistence, id, err)
    }
    return p, nil
}
