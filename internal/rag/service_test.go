package rag

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skychat/skychat/internal/corpus"
	"github.com/skychat/skychat/internal/embed"
	"github.com/skychat/skychat/internal/log"
	"github.com/skychat/skychat/internal/search"
	"github.com/skychat/skychat/internal/synth"
)

type fakeEmbedder struct {
	vector []float32
	delay  time.Duration
	calls  int
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) ModelInfo() embed.ModelInfo {
	return embed.ModelInfo{Provider: "mock", ModelName: "mock-embedder", Dimensions: 3}
}

type fakeSearcher struct {
	results  []search.Result
	lastOpts search.Options
	err      error
}

func (f *fakeSearcher) Search(ctx context.Context, queryVec []float32, opts search.Options) ([]search.Result, error) {
	f.lastOpts = opts
	return f.results, f.err
}

type fakeGenerator struct {
	lastDocs []search.Result
	response synth.Response
	err      error
}

func (f *fakeGenerator) Generate(ctx context.Context, query string, docs []search.Result) (synth.Response, error) {
	f.lastDocs = docs
	if f.err != nil {
		return synth.Response{}, f.err
	}
	return f.response, nil
}

type fakeQueryLog struct {
	entries []LogEntry
	history []HistoryEntry
	stats   QueryStats
	logErr  error
}

func (f *fakeQueryLog) Log(ctx context.Context, entry LogEntry) error {
	if f.logErr != nil {
		return f.logErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeQueryLog) History(ctx context.Context, sessionID string, limit int) ([]HistoryEntry, error) {
	return f.history, nil
}

func (f *fakeQueryLog) Stats(ctx context.Context) (QueryStats, error) {
	return f.stats, nil
}

type fakeStats struct {
	stats CorpusStats
	err   error
}

func (f *fakeStats) Stats(ctx context.Context) (CorpusStats, error) {
	return f.stats, f.err
}

func hubResult() search.Result {
	return search.Result{
		Document: corpus.Document{
			ID: 7, Type: corpus.TypeHub,
			Title:    "Major Hub: Frankfurt am Main (FRA)",
			Content:  "Frankfurt is a major hub.",
			Metadata: map[string]any{"iata": "FRA"},
		},
		Similarity: 0.91,
	}
}

func newTestService(searcher *fakeSearcher, gen *fakeGenerator, queryLog QueryLog) *Service {
	return NewService(
		&fakeEmbedder{vector: []float32{1, 0, 0}},
		searcher, gen, queryLog,
		&fakeStats{}, 5, 0.3, log.NewNop(),
	)
}

func TestQuery(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{hubResult()}}
	gen := &fakeGenerator{response: synth.Response{
		Text:  "Frankfurt (FRA) is a major hub.",
		Model: "googleai/gemini-2.5-flash",
		Usage: synth.Usage{TotalTokens: 150},
	}}
	queryLog := &fakeQueryLog{}
	s := newTestService(searcher, gen, queryLog)

	answer, err := s.Query(context.Background(), "Tell me about Frankfurt", QueryOptions{SessionID: "session-1"})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}

	if answer.Response != "Frankfurt (FRA) is a major hub." {
		t.Errorf("response = %q", answer.Response)
	}
	if answer.LLMModel != "googleai/gemini-2.5-flash" {
		t.Errorf("llm model = %q", answer.LLMModel)
	}
	if answer.EmbeddingModel.ModelName != "mock-embedder" {
		t.Errorf("embedding model = %+v", answer.EmbeddingModel)
	}
	if answer.Metrics.DocumentsRetrieved != 1 {
		t.Errorf("documents retrieved = %d", answer.Metrics.DocumentsRetrieved)
	}
	if len(answer.ContextDocs) != 1 || answer.ContextDocs[0].Title != "Major Hub: Frankfurt am Main (FRA)" {
		t.Errorf("context docs = %+v", answer.ContextDocs)
	}

	// Service defaults flow into retrieval.
	if searcher.lastOpts.TopK != 5 || searcher.lastOpts.MinSimilarity != 0.3 {
		t.Errorf("search opts = %+v", searcher.lastOpts)
	}

	if len(queryLog.entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(queryLog.entries))
	}
	entry := queryLog.entries[0]
	if entry.SessionID != "session-1" || entry.QueryText != "Tell me about Frankfurt" {
		t.Errorf("log entry = %+v", entry)
	}
	if len(entry.RetrievedDocIDs) != 1 || entry.RetrievedDocIDs[0] != 7 {
		t.Errorf("logged doc ids = %v", entry.RetrievedDocIDs)
	}
}

func TestQueryEmpty(t *testing.T) {
	s := newTestService(&fakeSearcher{}, &fakeGenerator{}, nil)

	_, err := s.Query(context.Background(), "", QueryOptions{})
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("Query(\"\") = %v, want ErrEmptyQuery", err)
	}
}

func TestQueryEmptyRetrievalStillGenerates(t *testing.T) {
	gen := &fakeGenerator{response: synth.Response{Text: "I don't have information about that.", Model: "m"}}
	s := newTestService(&fakeSearcher{}, gen, nil)

	answer, err := s.Query(context.Background(), "obscure question", QueryOptions{})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if answer.Response == "" {
		t.Error("empty response for empty retrieval")
	}
	if gen.lastDocs == nil && answer.Metrics.DocumentsRetrieved != 0 {
		t.Errorf("metrics = %+v", answer.Metrics)
	}
	if len(answer.ContextDocs) != 0 {
		t.Errorf("context docs = %+v", answer.ContextDocs)
	}
}

func TestQueryLogFailureDoesNotFailAnswer(t *testing.T) {
	gen := &fakeGenerator{response: synth.Response{Text: "answer", Model: "m"}}
	queryLog := &fakeQueryLog{logErr: errors.New("analytics db down")}
	s := newTestService(&fakeSearcher{results: []search.Result{hubResult()}}, gen, queryLog)

	answer, err := s.Query(context.Background(), "query", QueryOptions{SessionID: "s"})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if answer.Response != "answer" {
		t.Errorf("response = %q", answer.Response)
	}
}

func TestQueryNoSessionSkipsLog(t *testing.T) {
	gen := &fakeGenerator{response: synth.Response{Text: "answer", Model: "m"}}
	queryLog := &fakeQueryLog{}
	s := newTestService(&fakeSearcher{}, gen, queryLog)

	if _, err := s.Query(context.Background(), "query", QueryOptions{}); err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(queryLog.entries) != 0 {
		t.Errorf("logged %d entries without session, want 0", len(queryLog.entries))
	}
}

func TestQueryGeneratorError(t *testing.T) {
	genErr := errors.New("model overloaded")
	s := newTestService(&fakeSearcher{}, &fakeGenerator{err: genErr}, nil)

	if _, err := s.Query(context.Background(), "query", QueryOptions{}); !errors.Is(err, genErr) {
		t.Fatalf("Query() = %v, want wrapped generator error", err)
	}
}

func TestQueryOptionOverrides(t *testing.T) {
	searcher := &fakeSearcher{}
	gen := &fakeGenerator{response: synth.Response{Text: "a", Model: "m"}}
	s := newTestService(searcher, gen, nil)

	minSim := 0.7
	_, err := s.Query(context.Background(), "query", QueryOptions{TopK: 3, MinSimilarity: &minSim})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if searcher.lastOpts.TopK != 3 || searcher.lastOpts.MinSimilarity != 0.7 {
		t.Errorf("overrides not applied: %+v", searcher.lastOpts)
	}
}

func TestQueryWithHybridSearch(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{hubResult()}}
	gen := &fakeGenerator{response: synth.Response{Text: "answer", Model: "m"}}
	s := newTestService(searcher, gen, nil)

	filters := map[string]any{"iata": "FRA"}
	answer, err := s.QueryWithHybridSearch(context.Background(), "about FRA", filters, QueryOptions{})
	if err != nil {
		t.Fatalf("QueryWithHybridSearch() error: %v", err)
	}

	if searcher.lastOpts.Metadata["iata"] != "FRA" {
		t.Errorf("filters not passed to retrieval: %+v", searcher.lastOpts)
	}
	// No similarity threshold on the filtered path.
	if searcher.lastOpts.MinSimilarity != 0 {
		t.Errorf("min similarity = %v, want 0", searcher.lastOpts.MinSimilarity)
	}
	if answer.FiltersApplied["iata"] != "FRA" {
		t.Errorf("filters not echoed: %v", answer.FiltersApplied)
	}
}

func TestQueryWithHybridSearchTimesEmbedding(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1, 0, 0}, delay: 20 * time.Millisecond}
	searcher := &fakeSearcher{results: []search.Result{hubResult()}}
	gen := &fakeGenerator{response: synth.Response{Text: "answer", Model: "m"}}
	s := NewService(embedder, searcher, gen, nil, &fakeStats{}, 5, 0.3, log.NewNop())

	answer, err := s.QueryWithHybridSearch(context.Background(), "about FRA",
		map[string]any{"iata": "FRA"}, QueryOptions{})
	if err != nil {
		t.Fatalf("QueryWithHybridSearch() error: %v", err)
	}

	if embedder.calls != 1 {
		t.Fatalf("embedder called %d times, want 1", embedder.calls)
	}
	// The embed stage is timed on its own, not folded into retrieval.
	if answer.Metrics.EmbeddingTimeMS < 10 {
		t.Errorf("embedding time = %d ms, want the embed latency recorded", answer.Metrics.EmbeddingTimeMS)
	}
	if answer.Metrics.TotalTimeMS < answer.Metrics.EmbeddingTimeMS {
		t.Errorf("total %d ms < embedding %d ms", answer.Metrics.TotalTimeMS, answer.Metrics.EmbeddingTimeMS)
	}
}

func TestQueryWithHybridSearchEmbedError(t *testing.T) {
	embedErr := errors.New("embedder down")
	s := NewService(&fakeEmbedder{err: embedErr}, &fakeSearcher{}, &fakeGenerator{},
		nil, &fakeStats{}, 5, 0.3, log.NewNop())

	_, err := s.QueryWithHybridSearch(context.Background(), "query", nil, QueryOptions{})
	if !errors.Is(err, embedErr) {
		t.Fatalf("QueryWithHybridSearch() = %v, want wrapped embed error", err)
	}
}

func TestSessionHistoryWithoutLog(t *testing.T) {
	s := newTestService(&fakeSearcher{}, &fakeGenerator{}, nil)

	history, err := s.SessionHistory(context.Background(), "s", 10)
	if err != nil {
		t.Fatalf("SessionHistory() error: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history = %+v, want empty", history)
	}
}

func TestStatistics(t *testing.T) {
	stats := &fakeStats{stats: CorpusStats{
		TotalDocuments:  42,
		DocumentsByType: map[string]int64{"airport": 30, "alliance_info": 6},
	}}
	queryLog := &fakeQueryLog{stats: QueryStats{Total: 10, AvgResponseTimeMS: 812.5}}
	s := NewService(&fakeEmbedder{vector: []float32{1}}, &fakeSearcher{}, &fakeGenerator{}, queryLog, stats, 5, 0.3, log.NewNop())

	got, err := s.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics() error: %v", err)
	}
	if got.KnowledgeBase.TotalDocuments != 42 {
		t.Errorf("knowledge base stats = %+v", got.KnowledgeBase)
	}
	if got.Queries.Total != 10 || got.Queries.AvgResponseTimeMS != 812.5 {
		t.Errorf("query stats = %+v", got.Queries)
	}
	if got.EmbeddingModel.ModelName != "mock-embedder" {
		t.Errorf("embedding model = %+v", got.EmbeddingModel)
	}
}
