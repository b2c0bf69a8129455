// Package vectorindex defines the vector index contract consumed by the
// knowledge pillar, with embedded (chromem-go) and external (Qdrant)
// backends.
//
// The index stores raw vectors keyed by document ID; embedding happens
// upstream. Hits are returned by descending similarity score.
package vectorindex

import (
	"context"
	"errors"
)

// Sentinel errors for vector index operations.
var (
	// ErrNotConnected is returned when an operation runs before Connect
	// or after Disconnect.
	ErrNotConnected = errors.New("vector index not connected")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid vector index configuration")

	// ErrDimensionMismatch is returned when a vector's length does not
	// match the configured dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Hit is a similarity search result.
type Hit struct {
	// ID is the stored document ID.
	ID string

	// Score is the similarity score, higher is more similar. Cosine
	// similarity, normalized to [0,1] by both backends.
	Score float32
}

// Index is the vector index contract.
//
// Connect is called exactly once by the owning pillar's Initialize and
// Disconnect by its Shutdown; IsConnected must be cheap and non-blocking
// (it reports the last known state and never attempts reconnection).
type Index interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool

	// Store inserts or overwrites the vector and metadata for id.
	Store(ctx context.Context, id string, vector []float32, metadata map[string]string) error

	// Search returns up to limit hits nearest to vector, restricted to
	// entries whose metadata matches every pair in filter (nil filter
	// matches everything).
	Search(ctx context.Context, vector []float32, limit int, filter map[string]string) ([]Hit, error)

	// Delete removes the entry for id. Deleting an absent id is not an
	// error; existence checks belong to the caller.
	Delete(ctx context.Context, id string) error
}
