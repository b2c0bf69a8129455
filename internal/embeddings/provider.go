// Package embeddings provides embedding generation for the knowledge
// pillar via multiple providers: local ONNX models through FastEmbed,
// a TEI (Text Embeddings Inference) server, or any OpenAI-compatible
// API through langchaingo.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brainsait/dosd/internal/config"
)

var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid embeddings configuration")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Provider is the interface for embedding providers.
type Provider interface {
	// EmbedDocuments generates embeddings for multiple texts.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// Dimension returns the embedding dimension for the current model.
	Dimension() int
	// Close releases resources held by the provider.
	Close() error
}

// detectDimension returns the embedding dimension for a model name,
// falling back to 384 (the bge-small family) when unknown.
func detectDimension(model string) int {
	if dim, ok := fastEmbedModelDimension(model); ok {
		return dim
	}
	switch {
	case strings.Contains(model, "large"):
		return 1024
	case strings.Contains(model, "base"):
		return 768
	case strings.Contains(model, "small"), strings.Contains(model, "mini"), strings.Contains(model, "MiniLM"):
		return 384
	default:
		return 384
	}
}

// New creates an embedding provider based on the configuration.
func New(cfg config.EmbeddingsConfig) (Provider, error) {
	switch cfg.Provider {
	case "fastembed", "":
		return NewFastEmbedProvider(FastEmbedConfig{
			Model:    cfg.Model,
			CacheDir: cfg.CacheDir,
		})
	case "tei":
		return NewTEIProvider(TEIConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	case "openai":
		return NewOpenAIProvider(OpenAIConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey.Value(),
		})
	default:
		return nil, fmt.Errorf("%w: unknown provider %q (supported: fastembed, tei, openai)", ErrInvalidConfig, cfg.Provider)
	}
}
