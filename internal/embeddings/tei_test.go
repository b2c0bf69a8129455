package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainsait/dosd/internal/config"
)

func newTEIServer(t *testing.T, dimension int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embed", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req teiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var count int
		switch inputs := req.Inputs.(type) {
		case string:
			count = 1
		case []any:
			count = len(inputs)
		default:
			t.Fatalf("unexpected inputs type %T", req.Inputs)
		}

		vectors := make([][]float32, count)
		for i := range vectors {
			vec := make([]float32, dimension)
			vec[0] = float32(i + 1)
			vectors[i] = vec
		}
		require.NoError(t, json.NewEncoder(w).Encode(vectors))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTEIProvider_EmbedDocuments(t *testing.T) {
	srv := newTEIServer(t, 4)
	p, err := NewTEIProvider(TEIConfig{BaseURL: srv.URL, Model: "BAAI/bge-small-en-v1.5"})
	require.NoError(t, err)

	vectors, err := p.EmbedDocuments(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], 4)
	assert.Equal(t, float32(1), vectors[0][0])
	assert.Equal(t, float32(2), vectors[1][0])
}

func TestTEIProvider_EmbedQuery(t *testing.T) {
	srv := newTEIServer(t, 4)
	p, err := NewTEIProvider(TEIConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	vec, err := p.EmbedQuery(context.Background(), "what is PDPL")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
}

func TestTEIProvider_EmptyInput(t *testing.T) {
	p, err := NewTEIProvider(TEIConfig{BaseURL: "http://localhost:1"})
	require.NoError(t, err)

	_, err = p.EmbedDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = p.EmbedQuery(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestTEIProvider_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, err := NewTEIProvider(TEIConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.EmbedQuery(context.Background(), "query")
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.Contains(t, err.Error(), "503")
}

func TestTEIProvider_MissingBaseURL(t *testing.T) {
	_, err := NewTEIProvider(TEIConfig{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestTEIProvider_Dimension(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{"BAAI/bge-small-en-v1.5", 384},
		{"BAAI/bge-base-en-v1.5", 768},
		{"some-large-model", 1024},
		{"", 384},
	}
	for _, tt := range tests {
		p, err := NewTEIProvider(TEIConfig{BaseURL: "http://localhost:8080", Model: tt.model})
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.Dimension(), "model %q", tt.model)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(config.EmbeddingsConfig{Provider: "cohere"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_TEI(t *testing.T) {
	p, err := New(config.EmbeddingsConfig{
		Provider: "tei",
		BaseURL:  "http://localhost:8080",
		Model:    "BAAI/bge-small-en-v1.5",
	})
	require.NoError(t, err)
	assert.Equal(t, 384, p.Dimension())
	assert.NoError(t, p.Close())
}
