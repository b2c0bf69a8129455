//go:build !cgo

package embeddings

import (
	"context"
	"errors"
)

// ErrFastEmbedNotAvailable is returned when the binary was built without
// CGO; use the TEI or OpenAI provider instead.
var ErrFastEmbedNotAvailable = errors.New("fastembed: not available (binary built without CGO support)")

// FastEmbedConfig holds configuration for the FastEmbed provider.
type FastEmbedConfig struct {
	Model     string
	CacheDir  string
	MaxLength int
}

// FastEmbedProvider is a stub for non-CGO builds.
type FastEmbedProvider struct{}

// NewFastEmbedProvider returns an error when CGO is not available.
func NewFastEmbedProvider(_ FastEmbedConfig) (*FastEmbedProvider, error) {
	return nil, ErrFastEmbedNotAvailable
}

func (p *FastEmbedProvider) EmbedDocuments(_ context.Context, _ []string) ([][]float32, error) {
	return nil, ErrFastEmbedNotAvailable
}

func (p *FastEmbedProvider) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	return nil, ErrFastEmbedNotAvailable
}

func (p *FastEmbedProvider) Dimension() int { return 0 }

func (p *FastEmbedProvider) Close() error { return nil }

// fastEmbedModelDimension returns the dimension for a known model name.
// Static table so dimension detection works without CGO.
func fastEmbedModelDimension(name string) (int, bool) {
	dims := map[string]int{
		"BAAI/bge-small-en-v1.5":                 384,
		"BAAI/bge-small-en":                      384,
		"BAAI/bge-base-en-v1.5":                  768,
		"BAAI/bge-base-en":                       768,
		"BAAI/bge-small-zh-v1.5":                 512,
		"sentence-transformers/all-MiniLM-L6-v2": 384,
	}
	dim, ok := dims[name]
	return dim, ok
}
