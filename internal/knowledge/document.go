// Package knowledge implements the knowledge pillar: an in-memory
// document store with semantic retrieval through an embedding provider
// and a vector index.
//
// Documents live in a map owned exclusively by the Store; their
// embeddings are derived artifacts held by the vector index. The two
// are kept in sync by dual-write: the index is written first, and only
// a successful index write commits the document to the map.
package knowledge

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a document id is absent.
	ErrNotFound = errors.New("document not found")

	// ErrNotInitialized is returned when an operation runs before
	// Initialize or after Shutdown.
	ErrNotInitialized = errors.New("knowledge store not initialized")

	// ErrInvalidDocument indicates a document failing validation.
	ErrInvalidDocument = errors.New("invalid document")
)

// Document is a unit of stored knowledge.
type Document struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Domain    string            `json:"domain"`
	Tags      []string          `json:"tags,omitempty"`
	Author    string            `json:"author,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Result is a single retrieval hit.
type Result struct {
	// Document is the full stored document.
	Document Document `json:"document"`

	// Score is the similarity score in [0,1], higher is more relevant.
	Score float32 `json:"score"`

	// Snippet is a short extract of the content around the first query
	// token occurrence.
	Snippet string `json:"snippet"`
}
