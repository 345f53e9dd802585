package corpus

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/skychat/skychat/internal/embed"
	"github.com/skychat/skychat/internal/log"
)

// fakeIndexStore drains a pending queue batch by batch.
type fakeIndexStore struct {
	pending   []Document
	inserted  []Embedding
	insertErr error
}

func (f *fakeIndexStore) PendingDocuments(ctx context.Context, limit int) ([]Document, error) {
	if len(f.pending) == 0 {
		return nil, nil
	}
	n := min(limit, len(f.pending))
	batch := f.pending[:n]
	f.pending = f.pending[n:]
	return batch, nil
}

func (f *fakeIndexStore) InsertEmbedding(ctx context.Context, emb Embedding) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, emb)
	return nil
}

// fakeVectorizer records the texts it embeds.
type fakeVectorizer struct {
	texts    []string
	embedErr error
}

func (f *fakeVectorizer) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	f.texts = append(f.texts, texts...)
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

func (f *fakeVectorizer) ModelInfo() embed.ModelInfo {
	return embed.ModelInfo{Provider: "mock", ModelName: "mock-embedder", Dimensions: 3}
}

func TestEmbedPending(t *testing.T) {
	store := &fakeIndexStore{pending: []Document{
		{ID: 1, Title: "Keflavik International Airport (KEF)", Content: "Keflavik is an airport."},
		{ID: 2, Title: "Route: KEF to LHR", Content: "There is a flight route."},
		{ID: 3, Title: "What is a Hub Airport?", Content: "A hub airport is a connection point."},
	}}
	vec := &fakeVectorizer{}
	ix := NewIndexer(store, vec, 2, log.NewNop())

	indexed, err := ix.EmbedPending(context.Background())
	if err != nil {
		t.Fatalf("EmbedPending() error: %v", err)
	}
	if indexed != 3 {
		t.Errorf("indexed = %d, want 3", indexed)
	}

	if len(store.inserted) != 3 {
		t.Fatalf("stored %d embeddings, want 3", len(store.inserted))
	}
	for i, emb := range store.inserted {
		if emb.DocID != int64(i+1) {
			t.Errorf("embedding %d has doc_id %d, want %d", i, emb.DocID, i+1)
		}
		if emb.ModelName != "mock-embedder" || emb.Dims != 3 {
			t.Errorf("embedding %d metadata = %q/%d", i, emb.ModelName, emb.Dims)
		}
	}

	// Title and content both contribute to the embedded text.
	if !strings.HasPrefix(vec.texts[0], "Keflavik International Airport (KEF)\n\n") {
		t.Errorf("embedded text[0] = %q", vec.texts[0])
	}
}

func TestEmbedPendingEmpty(t *testing.T) {
	ix := NewIndexer(&fakeIndexStore{}, &fakeVectorizer{}, 100, log.NewNop())

	indexed, err := ix.EmbedPending(context.Background())
	if err != nil {
		t.Fatalf("EmbedPending() error: %v", err)
	}
	if indexed != 0 {
		t.Errorf("indexed = %d, want 0", indexed)
	}
}

func TestEmbedPendingEmbedError(t *testing.T) {
	embedErr := errors.New("quota exceeded")
	store := &fakeIndexStore{pending: []Document{{ID: 1, Title: "t", Content: "c"}}}
	ix := NewIndexer(store, &fakeVectorizer{embedErr: embedErr}, 100, log.NewNop())

	indexed, err := ix.EmbedPending(context.Background())
	if !errors.Is(err, embedErr) {
		t.Fatalf("EmbedPending() = %v, want wrapped embed error", err)
	}
	if indexed != 0 {
		t.Errorf("indexed = %d, want 0", indexed)
	}
}
