package corpus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/skychat/skychat/internal/embed"
)

// Vectorizer generates embeddings for indexing. Satisfied by
// *embed.Provider.
type Vectorizer interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	ModelInfo() embed.ModelInfo
}

// IndexStore is the persistence the indexer reads and writes.
// Satisfied by *Store.
type IndexStore interface {
	PendingDocuments(ctx context.Context, limit int) ([]Document, error)
	InsertEmbedding(ctx context.Context, emb Embedding) error
}

// Indexer embeds documents that have no stored vector yet.
type Indexer struct {
	store      IndexStore
	vectorizer Vectorizer
	batchSize  int
	logger     *slog.Logger
}

// NewIndexer creates an Indexer. batchSize <= 0 defaults to 100;
// logger nil = slog.Default().
func NewIndexer(store IndexStore, vectorizer Vectorizer, batchSize int, logger *slog.Logger) *Indexer {
	if batchSize <= 0 {
		batchSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{store: store, vectorizer: vectorizer, batchSize: batchSize, logger: logger}
}

// EmbedPending embeds all documents without a stored vector, in batches,
// and returns how many were indexed. Documents are embedded as
// title + blank line + content so both fields contribute to retrieval.
func (ix *Indexer) EmbedPending(ctx context.Context) (int, error) {
	info := ix.vectorizer.ModelInfo()
	indexed := 0

	for {
		docs, err := ix.store.PendingDocuments(ctx, ix.batchSize)
		if err != nil {
			return indexed, fmt.Errorf("listing pending documents: %w", err)
		}
		if len(docs) == 0 {
			return indexed, nil
		}

		texts := make([]string, len(docs))
		for i, doc := range docs {
			texts[i] = doc.Title + "\n\n" + doc.Content
		}

		vectors, err := ix.vectorizer.EmbedBatch(ctx, texts)
		if err != nil {
			return indexed, fmt.Errorf("embedding batch: %w", err)
		}
		if len(vectors) != len(docs) {
			return indexed, fmt.Errorf("embedded %d vectors for %d documents", len(vectors), len(docs))
		}

		for i, doc := range docs {
			err := ix.store.InsertEmbedding(ctx, Embedding{
				DocID:     doc.ID,
				Vector:    vectors[i],
				ModelName: info.ModelName,
				Dims:      len(vectors[i]),
			})
			if err != nil {
				return indexed, fmt.Errorf("storing embedding for document %d: %w", doc.ID, err)
			}
			indexed++
		}

		ix.logger.Info("indexed documents", "batch", len(docs), "total", indexed)
	}
}
