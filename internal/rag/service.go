// Package rag orchestrates the retrieval-augmented generation pipeline:
// embed the query, rank knowledge documents against it, synthesize a
// grounded answer, and log the exchange for analytics.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/skychat/skychat/internal/embed"
	"github.com/skychat/skychat/internal/search"
	"github.com/skychat/skychat/internal/synth"
)

// ErrEmptyQuery indicates the query text is empty.
var ErrEmptyQuery = errors.New("query cannot be empty")

// Embedder generates the query vector. Satisfied by *embed.Provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	ModelInfo() embed.ModelInfo
}

// Searcher ranks documents against a query vector. Satisfied by
// *search.Engine. Metadata filters ride in through search.Options so
// the service owns the embed stage on every path.
type Searcher interface {
	Search(ctx context.Context, queryVec []float32, opts search.Options) ([]search.Result, error)
}

// Generator synthesizes the answer. Satisfied by *synth.Generator.
type Generator interface {
	Generate(ctx context.Context, query string, docs []search.Result) (synth.Response, error)
}

// QueryLog records and reads pipeline runs. Satisfied by *QueryLogStore.
type QueryLog interface {
	Log(ctx context.Context, entry LogEntry) error
	History(ctx context.Context, sessionID string, limit int) ([]HistoryEntry, error)
	Stats(ctx context.Context) (QueryStats, error)
}

// KnowledgeStats reports knowledge base contents. Satisfied by
// *corpus.Store via a thin adapter in the app layer, or any stats source.
type KnowledgeStats interface {
	Stats(ctx context.Context) (CorpusStats, error)
}

// CorpusStats mirrors the knowledge base counters.
type CorpusStats struct {
	TotalDocuments    int64            `json:"total_documents"`
	DocumentsByType   map[string]int64 `json:"documents_by_type"`
	TotalEmbeddings   int64            `json:"total_embeddings"`
	EmbeddingsByModel map[string]int64 `json:"embeddings_by_model"`
}

// Metrics times each pipeline stage in milliseconds.
type Metrics struct {
	EmbeddingTimeMS    int64 `json:"embedding_time_ms"`
	RetrievalTimeMS    int64 `json:"retrieval_time_ms"`
	LLMTimeMS          int64 `json:"llm_time_ms"`
	TotalTimeMS        int64 `json:"total_time_ms"`
	DocumentsRetrieved int   `json:"documents_retrieved"`
}

// ContextDoc is the caller-facing summary of a retrieved document.
// Content is deliberately omitted; the answer already reflects it.
type ContextDoc struct {
	Title      string         `json:"title"`
	DocType    string         `json:"doc_type"`
	Similarity float64        `json:"similarity"`
	Metadata   map[string]any `json:"metadata"`
}

// Answer is the full result of one pipeline run.
type Answer struct {
	Response       string          `json:"response"`
	ContextDocs    []ContextDoc    `json:"context_documents"`
	Query          string          `json:"query"`
	EmbeddingModel embed.ModelInfo `json:"embedding_model"`
	LLMModel       string          `json:"llm_model"`
	Metrics        Metrics         `json:"metrics"`
	Usage          synth.Usage     `json:"usage"`
	FiltersApplied map[string]any  `json:"filters_applied,omitempty"`
}

// QueryOptions tune one pipeline run. Zero values take the service
// defaults from construction.
type QueryOptions struct {
	TopK          int
	MinSimilarity *float64
	SessionID     string
}

// Service runs the RAG pipeline. All collaborators are injected at
// construction; Service holds no global state.
type Service struct {
	embedder      Embedder
	searcher      Searcher
	generator     Generator
	queryLog      QueryLog // nil disables logging
	stats         KnowledgeStats
	topK          int
	minSimilarity float64
	logger        *slog.Logger
}

// NewService wires the pipeline. queryLog may be nil to disable query
// logging; logger nil = slog.Default().
func NewService(
	embedder Embedder,
	searcher Searcher,
	generator Generator,
	queryLog QueryLog,
	stats KnowledgeStats,
	topK int,
	minSimilarity float64,
	logger *slog.Logger,
) *Service {
	if topK <= 0 {
		topK = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		embedder:      embedder,
		searcher:      searcher,
		generator:     generator,
		queryLog:      queryLog,
		stats:         stats,
		topK:          topK,
		minSimilarity: minSimilarity,
		logger:        logger,
	}
}

// Query runs the full pipeline: embed, retrieve, synthesize. Retrieval
// finding nothing is not an error; generation proceeds with an explicit
// empty context. Query logging is best effort and never fails the call.
func (s *Service) Query(ctx context.Context, queryText string, opts QueryOptions) (Answer, error) {
	if queryText == "" {
		return Answer{}, ErrEmptyQuery
	}
	start := time.Now()
	var metrics Metrics

	embedStart := time.Now()
	queryVec, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return Answer{}, fmt.Errorf("embedding query: %w", err)
	}
	metrics.EmbeddingTimeMS = time.Since(embedStart).Milliseconds()

	topK := opts.TopK
	if topK <= 0 {
		topK = s.topK
	}
	minSim := s.minSimilarity
	if opts.MinSimilarity != nil {
		minSim = *opts.MinSimilarity
	}

	retrievalStart := time.Now()
	docs, err := s.searcher.Search(ctx, queryVec, search.Options{
		TopK:          topK,
		MinSimilarity: minSim,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("retrieving context: %w", err)
	}
	metrics.RetrievalTimeMS = time.Since(retrievalStart).Milliseconds()
	metrics.DocumentsRetrieved = len(docs)

	llmStart := time.Now()
	result, err := s.generator.Generate(ctx, queryText, docs)
	if err != nil {
		return Answer{}, fmt.Errorf("generating response: %w", err)
	}
	metrics.LLMTimeMS = time.Since(llmStart).Milliseconds()
	metrics.TotalTimeMS = time.Since(start).Milliseconds()

	if opts.SessionID != "" && s.queryLog != nil {
		entry := LogEntry{
			SessionID:       opts.SessionID,
			QueryText:       queryText,
			QueryEmbedding:  queryVec,
			RetrievedDocIDs: docIDs(docs),
			Response:        result.Text,
			Metrics:         metrics,
		}
		if err := s.queryLog.Log(ctx, entry); err != nil {
			// Analytics must never fail the answer.
			s.logger.Warn("failed to log query", "session_id", opts.SessionID, "error", err)
		}
	}

	return Answer{
		Response:       result.Text,
		ContextDocs:    contextDocs(docs),
		Query:          queryText,
		EmbeddingModel: s.embedder.ModelInfo(),
		LLMModel:       result.Model,
		Metrics:        metrics,
		Usage:          result.Usage,
	}, nil
}

// QueryWithHybridSearch runs the pipeline with metadata filters applied
// during retrieval. No similarity threshold is applied; the filters
// already narrow the candidate set. Each stage is timed separately,
// same as Query.
func (s *Service) QueryWithHybridSearch(ctx context.Context, queryText string, filters map[string]any, opts QueryOptions) (Answer, error) {
	if queryText == "" {
		return Answer{}, ErrEmptyQuery
	}
	start := time.Now()
	var metrics Metrics

	embedStart := time.Now()
	queryVec, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return Answer{}, fmt.Errorf("embedding query: %w", err)
	}
	metrics.EmbeddingTimeMS = time.Since(embedStart).Milliseconds()

	topK := opts.TopK
	if topK <= 0 {
		topK = s.topK
	}

	retrievalStart := time.Now()
	docs, err := s.searcher.Search(ctx, queryVec, search.Options{
		TopK:     topK,
		Metadata: filters,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("hybrid retrieval: %w", err)
	}
	metrics.RetrievalTimeMS = time.Since(retrievalStart).Milliseconds()
	metrics.DocumentsRetrieved = len(docs)

	llmStart := time.Now()
	result, err := s.generator.Generate(ctx, queryText, docs)
	if err != nil {
		return Answer{}, fmt.Errorf("generating response: %w", err)
	}
	metrics.LLMTimeMS = time.Since(llmStart).Milliseconds()
	metrics.TotalTimeMS = time.Since(start).Milliseconds()

	return Answer{
		Response:       result.Text,
		ContextDocs:    contextDocs(docs),
		Query:          queryText,
		EmbeddingModel: s.embedder.ModelInfo(),
		LLMModel:       result.Model,
		Metrics:        metrics,
		Usage:          result.Usage,
		FiltersApplied: filters,
	}, nil
}

// SessionHistory returns the most recent exchanges of a session, newest
// first. Returns an empty slice when logging is disabled.
func (s *Service) SessionHistory(ctx context.Context, sessionID string, limit int) ([]HistoryEntry, error) {
	if s.queryLog == nil {
		return []HistoryEntry{}, nil
	}
	return s.queryLog.History(ctx, sessionID, limit)
}

// Statistics combines knowledge base contents, query analytics, and
// model identities into one report.
func (s *Service) Statistics(ctx context.Context) (Statistics, error) {
	corpusStats, err := s.stats.Stats(ctx)
	if err != nil {
		return Statistics{}, fmt.Errorf("loading knowledge base stats: %w", err)
	}

	var queryStats QueryStats
	if s.queryLog != nil {
		queryStats, err = s.queryLog.Stats(ctx)
		if err != nil {
			return Statistics{}, fmt.Errorf("loading query stats: %w", err)
		}
	}

	return Statistics{
		KnowledgeBase:  corpusStats,
		Queries:        queryStats,
		EmbeddingModel: s.embedder.ModelInfo(),
	}, nil
}

// Statistics is the combined system report.
type Statistics struct {
	KnowledgeBase  CorpusStats     `json:"knowledge_base"`
	Queries        QueryStats      `json:"queries"`
	EmbeddingModel embed.ModelInfo `json:"embedding_model"`
}

func docIDs(docs []search.Result) []int64 {
	ids := make([]int64, len(docs))
	for i, d := range docs {
		ids[i] = d.Document.ID
	}
	return ids
}

func contextDocs(docs []search.Result) []ContextDoc {
	out := make([]ContextDoc, len(docs))
	for i, d := range docs {
		out[i] = ContextDoc{
			Title:      d.Document.Title,
			DocType:    string(d.Document.Type),
			Similarity: d.Similarity,
			Metadata:   d.Document.Metadata,
		}
	}
	return out
}
