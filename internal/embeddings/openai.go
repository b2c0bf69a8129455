package embeddings

import (
	"context"
	"fmt"

	lcembeddings "github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIConfig holds configuration for the OpenAI-compatible provider.
type OpenAIConfig struct {
	// BaseURL is the API base URL. Defaults to the OpenAI API; any
	// OpenAI-compatible server works.
	BaseURL string

	// Model is the embedding model, e.g. text-embedding-3-small.
	Model string

	// APIKey is the bearer token. Optional for self-hosted servers.
	APIKey string
}

// Validate validates the configuration.
func (c OpenAIConfig) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// OpenAIProvider generates embeddings through langchaingo's OpenAI client.
type OpenAIProvider struct {
	embedder  *lcembeddings.EmbedderImpl
	dimension int
}

// NewOpenAIProvider creates a provider for an OpenAI-compatible API.
func NewOpenAIProvider(config OpenAIConfig) (*OpenAIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// langchaingo requires a token even for servers that ignore it.
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = "placeholder"
	}

	opts := []openai.Option{
		openai.WithModel(config.Model),
		openai.WithEmbeddingModel(config.Model),
		openai.WithToken(apiKey),
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	embedder, err := lcembeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return &OpenAIProvider{
		embedder:  embedder,
		dimension: openAIModelDimension(config.Model),
	}, nil
}

func openAIModelDimension(model string) int {
	switch model {
	case "text-embedding-3-small", "text-embedding-ada-002":
		return 1536
	case "text-embedding-3-large":
		return 3072
	default:
		return detectDimension(model)
	}
}

// EmbedDocuments generates embeddings for multiple texts.
func (p *OpenAIProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}
	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	return vectors, nil
}

// EmbedQuery generates an embedding for a single query.
func (p *OpenAIProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}
	vector, err := p.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	return vector, nil
}

// Dimension returns the embedding dimension for the configured model.
func (p *OpenAIProvider) Dimension() int {
	return p.dimension
}

// Close is a no-op; the client is stateless over HTTP.
func (p *OpenAIProvider) Close() error {
	return nil
}
