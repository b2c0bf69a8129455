package knowledge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/brainsait/dosd/internal/config"
	"github.com/brainsait/dosd/internal/embeddings"
	"github.com/brainsait/dosd/internal/health"
	"github.com/brainsait/dosd/internal/telemetry"
	"github.com/brainsait/dosd/internal/vectorindex"
)

var tracer = otel.Tracer("dosd.knowledge")

// DefaultQueryLimit caps Query results when the caller passes no limit.
const DefaultQueryLimit = 10

// Store is the knowledge pillar. It owns the in-memory document map;
// only the Store mutates it.
type Store struct {
	config   config.KnowledgeConfig
	index    vectorindex.Index
	embedder embeddings.Provider
	metrics  *telemetry.Metrics
	logger   *zap.Logger

	mu          sync.RWMutex
	docs        map[string]Document
	initialized bool
}

// NewStore creates an uninitialized Store. metrics may be nil.
func NewStore(cfg config.KnowledgeConfig, index vectorindex.Index, embedder embeddings.Provider, metrics *telemetry.Metrics, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		config:   cfg,
		index:    index,
		embedder: embedder,
		metrics:  metrics,
		logger:   logger,
		docs:     make(map[string]Document),
	}
}

// Initialize connects the vector index and loads the seed documents
// when configured. A failed connect aborts startup.
func (s *Store) Initialize(ctx context.Context) error {
	if err := s.index.Connect(ctx); err != nil {
		return fmt.Errorf("connecting vector index: %w", err)
	}

	s.mu.Lock()
	s.docs = make(map[string]Document)
	s.initialized = true
	s.mu.Unlock()

	if s.config.SeedDocuments {
		for _, doc := range seedDocuments() {
			if _, err := s.AddDocument(ctx, doc); err != nil {
				return fmt.Errorf("seeding document %q: %w", doc.Title, err)
			}
		}
	}

	s.logger.Info("knowledge store initialized",
		zap.Int("documents", s.Count()),
		zap.Strings("domains", s.config.Domains),
	)
	return nil
}

// Shutdown disconnects the index and clears the document map.
func (s *Store) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.docs = make(map[string]Document)
	s.initialized = false
	s.mu.Unlock()

	s.setDocumentGauge(0)

	if err := s.index.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnecting vector index: %w", err)
	}
	return nil
}

// HealthStatus reports current connectivity. Cheap and non-blocking; it
// never attempts reconnection.
func (s *Store) HealthStatus() health.Status {
	s.mu.RLock()
	initialized := s.initialized
	s.mu.RUnlock()

	if !initialized {
		return health.Unknown
	}
	if !s.index.IsConnected() {
		return health.Critical
	}
	return health.Healthy
}

// AddDocument embeds the content, writes the vector to the index, then
// commits the document to the in-memory map. On index failure the map
// is left unchanged and the document is not durably committed.
func (s *Store) AddDocument(ctx context.Context, doc Document) (Document, error) {
	ctx, span := tracer.Start(ctx, "Store.AddDocument")
	defer span.End()

	if err := s.ready(); err != nil {
		return Document{}, err
	}
	if doc.Content == "" {
		return Document{}, fmt.Errorf("%w: content required", ErrInvalidDocument)
	}
	if doc.Title == "" {
		return Document{}, fmt.Errorf("%w: title required", ErrInvalidDocument)
	}

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	span.SetAttributes(attribute.String("document.id", doc.ID))

	vectors, err := s.embedder.EmbedDocuments(ctx, []string{doc.Content})
	if err != nil {
		return Document{}, fmt.Errorf("embedding document %s: %w", doc.ID, err)
	}
	if len(vectors) == 0 {
		return Document{}, fmt.Errorf("embedding document %s: empty result", doc.ID)
	}

	meta := map[string]string{"domain": doc.Domain}
	if err := s.index.Store(ctx, doc.ID, vectors[0], meta); err != nil {
		return Document{}, fmt.Errorf("indexing document %s: %w", doc.ID, err)
	}

	s.mu.Lock()
	s.docs[doc.ID] = doc
	count := len(s.docs)
	s.mu.Unlock()

	s.setDocumentGauge(float64(count))
	s.logger.Debug("document added",
		zap.String("id", doc.ID),
		zap.String("title", doc.Title),
		zap.String("domain", doc.Domain),
	)
	return doc, nil
}

// Query embeds the text and runs a similarity search, restricted to
// domainFilter when non-empty. Results come back by descending score;
// hits whose id is no longer held locally are dropped, not errors.
func (s *Store) Query(ctx context.Context, text, domainFilter string, limit int) ([]Result, error) {
	ctx, span := tracer.Start(ctx, "Store.Query")
	defer span.End()

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.KnowledgeQueryDuration.Observe(time.Since(start).Seconds())
		}
	}()

	if err := s.ready(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: query text required", ErrInvalidDocument)
	}
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	var filter map[string]string
	if domainFilter != "" {
		filter = map[string]string{"domain": domainFilter}
	}

	hits, err := s.index.Search(ctx, vector, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("searching vector index: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		doc, ok := s.docs[hit.ID]
		if !ok {
			// Index entry with no local document, likely deleted
			// between search and resolve.
			continue
		}
		results = append(results, Result{
			Document: doc,
			Score:    hit.Score,
			Snippet:  extractSnippet(doc.Content, text),
		})
	}
	span.SetAttributes(attribute.Int("results", len(results)))
	return results, nil
}

// UpdateDocument replaces the content of an existing document and
// re-runs the full add path, re-embedding and re-indexing.
func (s *Store) UpdateDocument(ctx context.Context, id, content string) (Document, error) {
	if err := s.ready(); err != nil {
		return Document{}, err
	}

	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	doc.Content = content
	return s.AddDocument(ctx, doc)
}

// DeleteDocument removes the document from the vector index, then from
// the in-memory map.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}

	s.mu.RLock()
	_, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := s.index.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting vector %s: %w", id, err)
	}

	s.mu.Lock()
	delete(s.docs, id)
	count := len(s.docs)
	s.mu.Unlock()

	s.setDocumentGauge(float64(count))
	return nil
}

// GetDocument returns the document for id.
func (s *Store) GetDocument(id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return doc, nil
}

// Documents returns a snapshot of all stored documents.
func (s *Store) Documents() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc)
	}
	return out
}

// Count returns the number of stored documents.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *Store) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (s *Store) setDocumentGauge(n float64) {
	if s.metrics != nil {
		s.metrics.KnowledgeDocuments.Set(n)
	}
}
