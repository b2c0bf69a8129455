package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// TEIConfig holds configuration for the TEI provider.
type TEIConfig struct {
	// BaseURL is the TEI server base URL, e.g. http://localhost:8080.
	BaseURL string

	// Model is informational; TEI serves whichever model it was started
	// with. Used only for dimension detection.
	Model string
}

// Validate validates the configuration.
func (c TEIConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	return nil
}

// TEIProvider generates embeddings against a TEI server's /embed endpoint.
type TEIProvider struct {
	config    TEIConfig
	client    *http.Client
	dimension int
}

// NewTEIProvider creates a TEI-backed provider.
func NewTEIProvider(config TEIConfig) (*TEIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &TEIProvider{
		config:    config,
		client:    &http.Client{},
		dimension: detectDimension(config.Model),
	}, nil
}

// teiRequest is the request body for the TEI embed endpoint.
type teiRequest struct {
	Inputs   any  `json:"inputs"`
	Truncate bool `json:"truncate"`
}

// EmbedDocuments generates embeddings for multiple texts.
func (p *TEIProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}
	return p.embed(ctx, texts)
}

// EmbedQuery generates an embedding for a single query.
func (p *TEIProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}
	vectors, err := p.embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrEmbeddingFailed)
	}
	return vectors[0], nil
}

func (p *TEIProvider) embed(ctx context.Context, inputs any) ([][]float32, error) {
	body, err := json.Marshal(teiRequest{Inputs: inputs, Truncate: true})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrEmbeddingFailed, resp.StatusCode, string(respBody))
	}

	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return vectors, nil
}

// Dimension returns the embedding dimension based on the configured model.
func (p *TEIProvider) Dimension() int {
	return p.dimension
}

// Close is a no-op; TEI holds no local resources.
func (p *TEIProvider) Close() error {
	return nil
}
