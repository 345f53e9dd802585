// Package search ranks knowledge documents against query embeddings.
// Similarity is computed application-side, so embeddings from any model
// can coexist in the same store.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/skychat/skychat/internal/corpus"
	"github.com/skychat/skychat/internal/embed"
)

// Embedder turns query text into vectors. Satisfied by *embed.Provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CandidateSource provides documents with embeddings for ranking.
// Satisfied by *corpus.Store.
type CandidateSource interface {
	Candidates(ctx context.Context, filter corpus.CandidateFilter) ([]corpus.Candidate, error)
	EmbeddingByDoc(ctx context.Context, docID int64) (corpus.Embedding, error)
}

// Result is one ranked document.
type Result struct {
	Document   corpus.Document `json:"document"`
	Similarity float64         `json:"similarity"`
	ModelName  string          `json:"model_name"`
}

// Options narrow a search.
type Options struct {
	// TopK is the maximum number of results. <= 0 defaults to 5.
	TopK int

	// Type restricts results to one document category. Empty means all.
	Type corpus.DocType

	// Metadata requires JSONB containment matches on document metadata.
	Metadata map[string]any

	// MinSimilarity drops results scoring below the threshold.
	// The comparison is inclusive: a result exactly at the threshold stays.
	MinSimilarity float64
}

const defaultTopK = 5

// Engine performs similarity search over the knowledge base.
//
// Engine is safe for concurrent use by multiple goroutines.
type Engine struct {
	embedder Embedder
	source   CandidateSource
	weights  Weights
	logger   *slog.Logger
}

// NewEngine creates an Engine. Nil weights fall back to DefaultWeights();
// logger nil = slog.Default().
func NewEngine(embedder Embedder, source CandidateSource, weights Weights, logger *slog.Logger) *Engine {
	if weights == nil {
		weights = DefaultWeights()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{embedder: embedder, source: source, weights: weights, logger: logger}
}

// Search ranks stored documents against a query vector: cosine similarity
// per candidate, threshold filter, stable descending sort, TopK cut.
// Only candidates whose embedding matches the query's dimensionality are
// considered; vectors from a different model never rank.
func (e *Engine) Search(ctx context.Context, queryVec []float32, opts Options) ([]Result, error) {
	if len(queryVec) == 0 {
		return nil, errors.New("query vector is empty")
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	candidates, err := e.source.Candidates(ctx, corpus.CandidateFilter{
		Type:     opts.Type,
		Metadata: opts.Metadata,
		Dims:     len(queryVec),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching candidates: %w", err)
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		sim := embed.Cosine(queryVec, c.Vector)
		if sim >= opts.MinSimilarity {
			results = append(results, Result{
				Document:   c.Document,
				Similarity: sim,
				ModelName:  c.ModelName,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topK {
		results = results[:topK]
	}

	e.logger.Debug("similarity search",
		"candidates", len(candidates), "results", len(results), "top_k", topK)
	return results, nil
}

// SearchText embeds the query text and ranks documents against it.
func (e *Engine) SearchText(ctx context.Context, query string, opts Options) ([]Result, error) {
	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return e.Search(ctx, queryVec, opts)
}

// HybridSearch combines semantic ranking with metadata filtering: only
// documents whose metadata contains every filter key/value are ranked.
func (e *Engine) HybridSearch(ctx context.Context, query string, filters map[string]any, opts Options) ([]Result, error) {
	opts.Metadata = filters
	return e.SearchText(ctx, query, opts)
}

// SearchWithReranking runs a two-stage search: retrieve initialK
// candidates without a similarity threshold, multiply each score by its
// document type weight, re-sort, and return the top TopK. initialK below
// TopK is raised to TopK.
func (e *Engine) SearchWithReranking(ctx context.Context, query string, initialK int, opts Options) ([]Result, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	if initialK < topK {
		initialK = topK
	}

	stage1 := opts
	stage1.TopK = initialK
	stage1.MinSimilarity = 0

	candidates, err := e.SearchText(ctx, query, stage1)
	if err != nil {
		return nil, err
	}

	type scored struct {
		result Result
		score  float64
	}
	reranked := make([]scored, len(candidates))
	for i, r := range candidates {
		reranked[i] = scored{result: r, score: r.Similarity * e.weights.For(r.Document.Type)}
	}
	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].score > reranked[j].score
	})

	if len(reranked) > topK {
		reranked = reranked[:topK]
	}
	results := make([]Result, len(reranked))
	for i, s := range reranked {
		results[i] = s.result
	}
	return results, nil
}

// FindSimilar ranks documents against an existing document's embedding,
// excluding the document itself. A document with no stored embedding
// yields empty results, not an error.
func (e *Engine) FindSimilar(ctx context.Context, docID int64, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	emb, err := e.source.EmbeddingByDoc(ctx, docID)
	if errors.Is(err, corpus.ErrNotFound) {
		return []Result{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading source embedding: %w", err)
	}

	// One extra so the source document can be dropped.
	results, err := e.Search(ctx, emb.Vector, Options{TopK: topK + 1})
	if err != nil {
		return nil, err
	}

	similar := make([]Result, 0, topK)
	for _, r := range results {
		if r.Document.ID == docID {
			continue
		}
		similar = append(similar, r)
		if len(similar) == topK {
			break
		}
	}
	return similar, nil
}
