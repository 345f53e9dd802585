// Package embed wraps a Genkit embedder with the guarantees the retrieval
// pipeline depends on: validated input, order-preserving batch embedding,
// and cosine similarity with zero-vector handling.
package embed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/firebase/genkit/go/ai"
)

// Sentinel errors for embedding operations.
// Check with errors.Is().
var (
	// ErrEmptyInput indicates the text to embed is empty or whitespace.
	ErrEmptyInput = errors.New("text cannot be empty")

	// ErrNoEmbedder indicates the provider was constructed without a backend.
	ErrNoEmbedder = errors.New("embedder is nil")
)

// maxBackendBatch is the hard ceiling on documents per backend call.
// Larger caller batches are re-chunked transparently.
const maxBackendBatch = 100

// ModelInfo describes the embedding model behind a Provider.
type ModelInfo struct {
	Provider   string `json:"provider"`
	ModelName  string `json:"model_name"`
	Dimensions int    `json:"vector_dimensions"`
}

// Provider generates vector embeddings through a Genkit embedder.
// The backend is selected once at construction; Provider never branches
// on provider identity per call.
//
// Provider is safe for concurrent use by multiple goroutines.
type Provider struct {
	embedder ai.Embedder
	info     ModelInfo
	logger   *slog.Logger
}

// New creates a Provider for the given embedder and model metadata.
// Returns ErrNoEmbedder if embedder is nil.
func New(embedder ai.Embedder, info ModelInfo, logger *slog.Logger) (*Provider, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: provider %q model %q", ErrNoEmbedder, info.Provider, info.ModelName)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Provider{
		embedder: embedder,
		info:     info,
		logger:   logger,
	}, nil
}

// ModelInfo returns the provider name, model name, and vector dimensionality.
func (p *Provider) ModelInfo() ModelInfo {
	return p.info
}

// Embed generates an embedding for a single text.
// Empty or whitespace-only input returns ErrEmptyInput without calling
// the backend.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	resp, err := p.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{
			{Content: []*ai.Part{ai.NewTextPart(text)}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generating embedding: %w", err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding returned by %s", p.info.ModelName)
	}

	return resp.Embeddings[0].Embedding, nil
}

// EmbedBatch generates embeddings for multiple texts.
// The result preserves input order and length: result[i] is the embedding
// of texts[i]. Batches larger than the backend ceiling are re-chunked into
// sequential calls. An empty input returns an empty slice without touching
// the backend.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += maxBackendBatch {
		end := min(start+maxBackendBatch, len(texts))
		chunk := texts[start:end]

		docs := make([]*ai.Document, len(chunk))
		for i, text := range chunk {
			docs[i] = &ai.Document{Content: []*ai.Part{ai.NewTextPart(text)}}
		}

		resp, err := p.embedder.Embed(ctx, &ai.EmbedRequest{Input: docs})
		if err != nil {
			return nil, fmt.Errorf("generating embeddings for batch [%d:%d]: %w", start, end, err)
		}

		if len(resp.Embeddings) != len(chunk) {
			return nil, fmt.Errorf("backend returned %d embeddings for %d texts", len(resp.Embeddings), len(chunk))
		}

		for _, e := range resp.Embeddings {
			vectors = append(vectors, e.Embedding)
		}

		p.logger.Debug("embedded batch", "processed", end, "total", len(texts))
	}

	return vectors, nil
}

// Cosine computes the cosine similarity of two vectors, in [-1, 1].
// Returns 0 when either vector has zero magnitude or when the lengths
// differ, so callers never see NaN.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
