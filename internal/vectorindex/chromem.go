package vectorindex

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var chromemTracer = otel.Tracer("dosd.vectorindex.chromem")

// ChromemConfig holds configuration for the embedded chromem-go backend.
type ChromemConfig struct {
	// Path is the directory for persistent storage.
	Path string

	// Collection is the collection name. Default: "dos_knowledge".
	Collection string

	// Compress enables gzip compression for stored data.
	Compress bool

	// VectorSize is the expected embedding dimension.
	VectorSize int
}

// ApplyDefaults sets default values for unset fields.
func (c *ChromemConfig) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "~/.config/dosd/vectorindex"
	}
	if c.Collection == "" {
		c.Collection = "dos_knowledge"
	}
	if c.VectorSize == 0 {
		c.VectorSize = 384
	}
}

// Validate validates the configuration.
func (c *ChromemConfig) Validate() error {
	if c.VectorSize <= 0 {
		return fmt.Errorf("%w: vector size must be positive", ErrInvalidConfig)
	}
	if c.Collection == "" {
		return fmt.Errorf("%w: collection required", ErrInvalidConfig)
	}
	return nil
}

// ChromemIndex implements Index on chromem-go, an embeddable pure-Go
// vector database persisting to gob files. No external service needed.
type ChromemIndex struct {
	config ChromemConfig
	logger *zap.Logger

	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
}

// NewChromemIndex creates an unconnected ChromemIndex.
func NewChromemIndex(config ChromemConfig, logger *zap.Logger) (*ChromemIndex, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ChromemIndex{config: config, logger: logger}, nil
}

// Connect opens the persistent database and the configured collection.
func (x *ChromemIndex) Connect(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.db != nil {
		return nil
	}

	path, err := expandHome(x.config.Path)
	if err != nil {
		return fmt.Errorf("expanding path: %w", err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}

	db, err := chromem.NewPersistentDB(path, x.config.Compress)
	if err != nil {
		return fmt.Errorf("opening chromem DB: %w", err)
	}

	// nil embedding func: vectors always arrive precomputed.
	collection, err := db.GetOrCreateCollection(x.config.Collection, nil, nil)
	if err != nil {
		return fmt.Errorf("opening collection %s: %w", x.config.Collection, err)
	}

	x.db = db
	x.collection = collection

	x.logger.Info("chromem index connected",
		zap.String("path", path),
		zap.String("collection", x.config.Collection),
		zap.Int("vector_size", x.config.VectorSize),
		zap.Int("documents", collection.Count()),
	)
	return nil
}

// Disconnect releases the database handle. Persistence is synchronous on
// write, so there is nothing to flush.
func (x *ChromemIndex) Disconnect(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.db = nil
	x.collection = nil
	return nil
}

// IsConnected reports whether Connect succeeded and Disconnect has not run.
func (x *ChromemIndex) IsConnected() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.db != nil
}

// Store inserts or overwrites the vector for id.
func (x *ChromemIndex) Store(ctx context.Context, id string, vector []float32, metadata map[string]string) error {
	ctx, span := chromemTracer.Start(ctx, "ChromemIndex.Store")
	defer span.End()
	span.SetAttributes(attribute.String("id", id))

	collection, err := x.conn()
	if err != nil {
		return err
	}
	if len(vector) != x.config.VectorSize {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), x.config.VectorSize)
	}

	doc := chromem.Document{
		ID:        id,
		Embedding: vector,
		Metadata:  metadata,
		// chromem requires non-empty content or embedding; content is
		// owned by the knowledge layer, only the ID travels back.
		Content: id,
	}
	if err := collection.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("storing vector %s: %w", id, err)
	}
	return nil
}

// Search returns up to limit hits by descending similarity.
func (x *ChromemIndex) Search(ctx context.Context, vector []float32, limit int, filter map[string]string) ([]Hit, error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemIndex.Search")
	defer span.End()
	span.SetAttributes(attribute.Int("limit", limit))

	collection, err := x.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	if len(vector) != x.config.VectorSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), x.config.VectorSize)
	}

	// chromem requires nResults <= document count.
	count := collection.Count()
	if count == 0 {
		return []Hit{}, nil
	}
	if limit > count {
		limit = count
	}

	results, err := collection.QueryEmbedding(ctx, vector, limit, filter, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{ID: r.ID, Score: clampScore(r.Similarity)}
	}
	span.SetAttributes(attribute.Int("hits", len(hits)))
	return hits, nil
}

// Delete removes the entry for id.
func (x *ChromemIndex) Delete(ctx context.Context, id string) error {
	collection, err := x.conn()
	if err != nil {
		return err
	}
	if err := collection.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("deleting vector %s: %w", id, err)
	}
	return nil
}

func (x *ChromemIndex) conn() (*chromem.Collection, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.collection == nil {
		return nil, ErrNotConnected
	}
	return x.collection, nil
}

// clampScore maps cosine similarity onto [0,1]; antipodal vectors do not
// occur with the embedding models in use, so negatives clamp to zero.
func clampScore(sim float32) float32 {
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// expandHome expands a leading ~ to the user home directory.
func expandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
