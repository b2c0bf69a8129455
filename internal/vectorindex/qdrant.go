package vectorindex

import (
	"context"
	"fmt"
	"sync"

	"github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var qdrantTracer = otel.Tracer("dosd.vectorindex.qdrant")

// maxGRPCMessageSize bounds payloads for large document batches.
const maxGRPCMessageSize = 50 * 1024 * 1024

// QdrantConfig holds configuration for the Qdrant gRPC backend.
type QdrantConfig struct {
	// Host is the Qdrant server hostname or IP address.
	Host string

	// Port is the Qdrant gRPC port (6334, not the 6333 REST port).
	Port int

	// Collection is the collection for all knowledge vectors.
	Collection string

	// VectorSize is the embedding dimension; must match the embedder.
	VectorSize int

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// ApplyDefaults sets default values for unset fields.
func (c *QdrantConfig) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.Collection == "" {
		c.Collection = "dos_knowledge"
	}
	if c.VectorSize == 0 {
		c.VectorSize = 384
	}
}

// Validate validates the configuration.
func (c QdrantConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port %d", ErrInvalidConfig, c.Port)
	}
	if c.VectorSize <= 0 {
		return fmt.Errorf("%w: vector size must be positive", ErrInvalidConfig)
	}
	return nil
}

// QdrantIndex implements Index against a Qdrant server over native gRPC.
type QdrantIndex struct {
	config QdrantConfig
	logger *zap.Logger

	mu     sync.RWMutex
	client *qdrant.Client
}

// NewQdrantIndex creates an unconnected QdrantIndex.
func NewQdrantIndex(config QdrantConfig, logger *zap.Logger) (*QdrantIndex, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &QdrantIndex{config: config, logger: logger}, nil
}

// Connect dials the server and ensures the collection exists.
func (x *QdrantIndex) Connect(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.client != nil {
		return nil
	}

	qcfg := &qdrant.Config{
		Host:   x.config.Host,
		Port:   x.config.Port,
		UseTLS: x.config.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(maxGRPCMessageSize),
				grpc.MaxCallSendMsgSize(maxGRPCMessageSize),
			),
		},
	}
	if !x.config.UseTLS {
		qcfg.GrpcOptions = append(qcfg.GrpcOptions,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
	}

	client, err := qdrant.NewClient(qcfg)
	if err != nil {
		return fmt.Errorf("creating qdrant client: %w", err)
	}

	exists, err := client.CollectionExists(ctx, x.config.Collection)
	if err != nil {
		client.Close()
		return fmt.Errorf("checking collection %s: %w", x.config.Collection, err)
	}
	if !exists {
		err = client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: x.config.Collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(x.config.VectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			client.Close()
			return fmt.Errorf("creating collection %s: %w", x.config.Collection, err)
		}
	}

	x.client = client
	x.logger.Info("qdrant index connected",
		zap.String("host", x.config.Host),
		zap.Int("port", x.config.Port),
		zap.String("collection", x.config.Collection),
	)
	return nil
}

// Disconnect closes the gRPC connection.
func (x *QdrantIndex) Disconnect(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.client == nil {
		return nil
	}
	err := x.client.Close()
	x.client = nil
	return err
}

// IsConnected reports whether Connect succeeded and Disconnect has not run.
func (x *QdrantIndex) IsConnected() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.client != nil
}

// Store upserts the vector and string metadata for id.
func (x *QdrantIndex) Store(ctx context.Context, id string, vector []float32, metadata map[string]string) error {
	ctx, span := qdrantTracer.Start(ctx, "QdrantIndex.Store")
	defer span.End()
	span.SetAttributes(attribute.String("id", id))

	client, err := x.conn()
	if err != nil {
		return err
	}
	if len(vector) != x.config.VectorSize {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), x.config.VectorSize)
	}

	payload := make(map[string]*qdrant.Value, len(metadata))
	for k, v := range metadata {
		payload[k] = qdrant.NewValueString(v)
	}

	_, err = client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: x.config.Collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDUUID(id),
			Vectors: qdrant.NewVectors(vector...),
			Payload: payload,
		}},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upserting vector %s: %w", id, err)
	}
	return nil
}

// Search returns up to limit hits by descending similarity.
func (x *QdrantIndex) Search(ctx context.Context, vector []float32, limit int, filter map[string]string) ([]Hit, error) {
	ctx, span := qdrantTracer.Start(ctx, "QdrantIndex.Search")
	defer span.End()
	span.SetAttributes(attribute.Int("limit", limit))

	client, err := x.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	if len(vector) != x.config.VectorSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), x.config.VectorSize)
	}

	var qf *qdrant.Filter
	if len(filter) > 0 {
		conditions := make([]*qdrant.Condition, 0, len(filter))
		for k, v := range filter {
			conditions = append(conditions, qdrant.NewMatch(k, v))
		}
		qf = &qdrant.Filter{Must: conditions}
	}

	points, err := client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: x.config.Collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		Filter:         qf,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying collection %s: %w", x.config.Collection, err)
	}

	hits := make([]Hit, 0, len(points))
	for _, p := range points {
		id := p.GetId().GetUuid()
		if id == "" {
			continue
		}
		hits = append(hits, Hit{ID: id, Score: clampScore(p.GetScore())})
	}
	span.SetAttributes(attribute.Int("hits", len(hits)))
	return hits, nil
}

// Delete removes the point for id.
func (x *QdrantIndex) Delete(ctx context.Context, id string) error {
	client, err := x.conn()
	if err != nil {
		return err
	}
	_, err = client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: x.config.Collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelector(qdrant.NewIDUUID(id)),
	})
	if err != nil {
		return fmt.Errorf("deleting vector %s: %w", id, err)
	}
	return nil
}

func (x *QdrantIndex) conn() (*qdrant.Client, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.client == nil {
		return nil, ErrNotConnected
	}
	return x.client, nil
}
