// Package queue defines message payloads exchanged over the message broker.
package queue

// OrphanedImageEvent is published when a cascading image delete fails and
// the stored object is left behind as an orphan. It contains enough
// information for an operator (or a later sweep) to locate the object
// without querying the product store, which no longer references it.
type OrphanedImageEvent struct {
    ProductID  string `json:"product_id"`
    ImageURL   string `json:"image_url"`
    Reason     string `json:"reason"`
    OccurredAt string `json:"occurred_at"`
}
