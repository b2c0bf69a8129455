//go:build cgo

package embeddings

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	fastembed "github.com/anush008/fastembed-go"
)

// FastEmbedConfig holds configuration for the FastEmbed provider.
type FastEmbedConfig struct {
	// Model is the embedding model. Supported: BAAI/bge-small-en-v1.5
	// (default), BAAI/bge-base-en-v1.5,
	// sentence-transformers/all-MiniLM-L6-v2, and friends.
	Model string

	// CacheDir is the directory to cache model files.
	CacheDir string

	// MaxLength is the maximum input sequence length. Defaults to 512.
	MaxLength int
}

// FastEmbedProvider generates embeddings with local ONNX models. No
// network access after the initial model download.
type FastEmbedProvider struct {
	model     *fastembed.FlagEmbedding
	modelName string
	dimension int
	mu        sync.RWMutex
}

var fastEmbedModels = map[string]fastembed.EmbeddingModel{
	"BAAI/bge-small-en-v1.5":                 fastembed.BGESmallENV15,
	"BAAI/bge-small-en":                      fastembed.BGESmallEN,
	"BAAI/bge-base-en-v1.5":                  fastembed.BGEBaseENV15,
	"BAAI/bge-base-en":                       fastembed.BGEBaseEN,
	"BAAI/bge-small-zh-v1.5":                 fastembed.BGESmallZH,
	"sentence-transformers/all-MiniLM-L6-v2": fastembed.AllMiniLML6V2,
}

var fastEmbedDimensions = map[fastembed.EmbeddingModel]int{
	fastembed.BGESmallENV15: 384,
	fastembed.BGESmallEN:    384,
	fastembed.BGEBaseENV15:  768,
	fastembed.BGEBaseEN:     768,
	fastembed.BGESmallZH:    512,
	fastembed.AllMiniLML6V2: 384,
}

// fastEmbedModelDimension returns the dimension for a known model name.
func fastEmbedModelDimension(name string) (int, bool) {
	model, ok := fastEmbedModels[name]
	if !ok {
		model = fastembed.EmbeddingModel(name)
	}
	dim, ok := fastEmbedDimensions[model]
	return dim, ok
}

// NewFastEmbedProvider creates a FastEmbed embedding provider. The model
// is downloaded into CacheDir on first use.
func NewFastEmbedProvider(cfg FastEmbedConfig) (*FastEmbedProvider, error) {
	if cfg.Model == "" {
		cfg.Model = "BAAI/bge-small-en-v1.5"
	}
	model, ok := fastEmbedModels[cfg.Model]
	if !ok {
		model = fastembed.EmbeddingModel(cfg.Model)
		if _, known := fastEmbedDimensions[model]; !known {
			return nil, fmt.Errorf("%w: unsupported model %q", ErrInvalidConfig, cfg.Model)
		}
	}
	dimension := fastEmbedDimensions[model]

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(".", "local_cache")
	}
	maxLength := cfg.MaxLength
	if maxLength == 0 {
		maxLength = 512
	}

	showProgress := false
	flagEmbed, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                model,
		CacheDir:             cacheDir,
		MaxLength:            maxLength,
		ShowDownloadProgress: &showProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing FastEmbed: %w", err)
	}

	return &FastEmbedProvider{
		model:     flagEmbed,
		modelName: cfg.Model,
		dimension: dimension,
	}, nil
}

// EmbedDocuments generates embeddings for multiple texts using the
// "passage: " prefix recommended for BGE models.
func (p *FastEmbedProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	vectors, err := p.model.PassageEmbed(texts, 256)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	return vectors, nil
}

// EmbedQuery generates an embedding for a single query using the
// "query: " prefix recommended for BGE models.
func (p *FastEmbedProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	vector, err := p.model.QueryEmbed(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	return vector, nil
}

// Dimension returns the embedding dimension for the current model.
func (p *FastEmbedProvider) Dimension() int {
	return p.dimension
}

// Close releases the ONNX runtime resources.
func (p *FastEmbedProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.model != nil {
		return p.model.Destroy()
	}
	return nil
}
