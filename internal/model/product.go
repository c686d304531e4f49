package model

import "time"

// Product represents one catalog entry.  Unlike the repository-internal
// models elsewhere in this project, the struct carries json tags because
// the list endpoint serializes it directly.
//
// Fields:
//  ID          – store-assigned identifier.  The file backed store uses the
//                record's current positional index, the database store an
//                immutable auto-increment key; the two are not stable across
//                each other.
//  Name        – product name, non-empty.
//  Description – product description, non-empty.
//  Contact     – seller contact (phone/WA), non-empty.
//  Images      – ordered image URLs, between 1 and 5 entries.
//  LegacyImage – the single image URL written by early file-store records.
//                Kept so old collection files still round-trip; Normalize
//                folds it into Images.
//  CreatedAt   – creation timestamp, populated by the database store only.
type Product struct {
    ID          string     `json:"id"`
    Name        string     `json:"name"`
    Description string     `json:"description"`
    Contact     string     `json:"contact"`
    Images      []string   `json:"images"`
    LegacyImage string     `json:"image,omitempty"`
    CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// Normalize migrates the legacy single-image shape into Images.  Records
// written before multi-image support carry only the `image` field; after
// normalization every product exposes at least one entry in Images and the
// legacy field is cleared.
func (p *Product) Normalize() {
    if len(p.Images) == 0 && p.LegacyImage != "" {
        p.Images = []string{p.LegacyImage}
    }
    p.LegacyImage = ""
}

// ImageURLs returns every stored image reference of the product, including
// a legacy single image that has not been normalized yet.  Used by the
// cascading delete so no variant leaves an object behind silently.
func (p *Product) ImageURLs() []string {
    if len(p.Images) > 0 {
        return p.Images
    }
    if p.LegacyImage != "" {
        return []string{p.LegacyImage}
    }
    return nil
}
