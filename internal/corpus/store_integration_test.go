package corpus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/skychat/skychat/internal/corpus"
	"github.com/skychat/skychat/internal/log"
	"github.com/skychat/skychat/internal/testutil"
)

func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := corpus.NewStore(db.Pool, db.Pool, log.NewNop())

	t.Run("insert documents returns ids in order", func(t *testing.T) {
		docs := []corpus.Document{
			{Type: corpus.TypeAirport, Title: "A", Content: "first"},
			{Type: corpus.TypeGeneral, Title: "B", Content: "second", Metadata: map[string]any{"topic": "basics"}},
		}

		ids, err := store.InsertDocuments(ctx, docs)
		if err != nil {
			t.Fatalf("InsertDocuments() error: %v", err)
		}
		if len(ids) != 2 {
			t.Fatalf("got %d ids, want 2", len(ids))
		}
		if ids[1] <= ids[0] {
			t.Errorf("ids not in insertion order: %v", ids)
		}
	})

	t.Run("insert batch is atomic", func(t *testing.T) {
		var before int64
		if err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM documents").Scan(&before); err != nil {
			t.Fatalf("counting documents: %v", err)
		}

		// Second document violates the non-empty content constraint.
		_, err := store.InsertDocuments(ctx, []corpus.Document{
			{Type: corpus.TypeAirport, Title: "valid", Content: "content"},
			{Type: corpus.TypeAirport, Title: "invalid", Content: ""},
		})
		if err == nil {
			t.Fatal("expected constraint violation")
		}

		var after int64
		if err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM documents").Scan(&after); err != nil {
			t.Fatalf("counting documents: %v", err)
		}
		if after != before {
			t.Errorf("partial batch persisted: %d -> %d documents", before, after)
		}
	})

	t.Run("embeddings round trip through candidates", func(t *testing.T) {
		ids, err := store.InsertDocuments(ctx, []corpus.Document{
			{Type: corpus.TypeHub, Title: "hub doc", Content: "hub", Metadata: map[string]any{"iata": "FRA"}},
		})
		if err != nil {
			t.Fatalf("InsertDocuments() error: %v", err)
		}
		docID := ids[0]

		err = store.InsertEmbedding(ctx, corpus.Embedding{
			DocID: docID, Vector: []float32{0.1, 0.2, 0.3}, ModelName: "test-model", Dims: 3,
		})
		if err != nil {
			t.Fatalf("InsertEmbedding() error: %v", err)
		}

		candidates, err := store.Candidates(ctx, corpus.CandidateFilter{Type: corpus.TypeHub, Dims: 3})
		if err != nil {
			t.Fatalf("Candidates() error: %v", err)
		}
		if len(candidates) != 1 {
			t.Fatalf("got %d candidates, want 1", len(candidates))
		}
		c := candidates[0]
		if c.Document.ID != docID || c.ModelName != "test-model" {
			t.Errorf("candidate = %+v", c)
		}
		if len(c.Vector) != 3 || c.Vector[2] != 0.3 {
			t.Errorf("vector = %v", c.Vector)
		}
		if c.Document.Metadata["iata"] != "FRA" {
			t.Errorf("metadata = %v", c.Document.Metadata)
		}

		// Dimensionality filter hides the document from other models.
		other, err := store.Candidates(ctx, corpus.CandidateFilter{Type: corpus.TypeHub, Dims: 768})
		if err != nil {
			t.Fatalf("Candidates() error: %v", err)
		}
		if len(other) != 0 {
			t.Errorf("got %d candidates for wrong dims, want 0", len(other))
		}

		emb, err := store.EmbeddingByDoc(ctx, docID)
		if err != nil {
			t.Fatalf("EmbeddingByDoc() error: %v", err)
		}
		if emb.DocID != docID || emb.Dims != 3 {
			t.Errorf("embedding = %+v", emb)
		}
	})

	t.Run("metadata containment filter", func(t *testing.T) {
		ids, err := store.InsertDocuments(ctx, []corpus.Document{
			{Type: corpus.TypeRoute, Title: "kef-lhr", Content: "route", Metadata: map[string]any{"source_iata": "KEF"}},
			{Type: corpus.TypeRoute, Title: "jfk-lax", Content: "route", Metadata: map[string]any{"source_iata": "JFK"}},
		})
		if err != nil {
			t.Fatalf("InsertDocuments() error: %v", err)
		}
		for _, id := range ids {
			err := store.InsertEmbedding(ctx, corpus.Embedding{
				DocID: id, Vector: []float32{1, 0}, ModelName: "test-model", Dims: 2,
			})
			if err != nil {
				t.Fatalf("InsertEmbedding() error: %v", err)
			}
		}

		candidates, err := store.Candidates(ctx, corpus.CandidateFilter{
			Type:     corpus.TypeRoute,
			Metadata: map[string]any{"source_iata": "KEF"},
			Dims:     2,
		})
		if err != nil {
			t.Fatalf("Candidates() error: %v", err)
		}
		if len(candidates) != 1 || candidates[0].Document.Title != "kef-lhr" {
			t.Errorf("candidates = %+v", candidates)
		}
	})

	t.Run("embedding by doc not found", func(t *testing.T) {
		_, err := store.EmbeddingByDoc(ctx, 999999)
		if !errors.Is(err, corpus.ErrNotFound) {
			t.Fatalf("EmbeddingByDoc(missing) = %v, want ErrNotFound", err)
		}
	})

	t.Run("pending documents and stats", func(t *testing.T) {
		ids, err := store.InsertDocuments(ctx, []corpus.Document{
			{Type: corpus.TypeAlliance, Title: "pending doc", Content: "no embedding yet"},
		})
		if err != nil {
			t.Fatalf("InsertDocuments() error: %v", err)
		}

		pending, err := store.PendingDocuments(ctx, 100)
		if err != nil {
			t.Fatalf("PendingDocuments() error: %v", err)
		}
		found := false
		for _, doc := range pending {
			if doc.ID == ids[0] {
				found = true
			}
			if doc.Title == "hub doc" {
				t.Errorf("embedded document listed as pending")
			}
		}
		if !found {
			t.Errorf("unembedded document missing from pending list")
		}

		stats, err := store.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats() error: %v", err)
		}
		if stats.TotalDocuments == 0 || stats.DocumentsByType["alliance_info"] == 0 {
			t.Errorf("stats = %+v", stats)
		}
		if stats.EmbeddingsByModel["test-model"] == 0 {
			t.Errorf("embedding stats = %+v", stats)
		}
	})
}
