// Package repository defines the product store contract and its two
// implementations. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrProductNotFound indicates a delete aimed at an identifier
// with no matching record, while ErrPersistence signals that the durable
// write behind a create or delete failed and the mutation must not be
// considered applied.
package repository

import "errors"

// ErrProductNotFound is returned when no record matches the requested
// identifier, or when the identifier cannot be parsed for the backend in
// use. Handlers should translate this into an HTTP 404 response.
var ErrProductNotFound = errors.New("product not found")

// ErrPersistence wraps failures of the durable write path. Handlers
// should translate this into an HTTP 500 response; the record involved
// was not created or removed.
var ErrPersistence = errors.New("persistence failure")
