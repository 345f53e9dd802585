package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// DBTX is the subset of pgx operations the store needs. Both *pgxpool.Pool
// and pgx.Tx satisfy it. Following Go best practices: interfaces are defined
// by the consumer, not the provider.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists documents and embeddings in PostgreSQL.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	db     DBTX
	pool   *pgxpool.Pool // for transaction support, nil in unit tests
	logger *slog.Logger
}

// NewStore creates a Store.
//
// Parameters:
//   - db: query executor (pool in production, mock in tests)
//   - pool: connection pool for transactions (nil disables transactional
//     batch inserts, acceptable only in tests)
//   - logger: nil = slog.Default()
func NewStore(db DBTX, pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, pool: pool, logger: logger}
}

const insertDocumentSQL = `
INSERT INTO documents (doc_type, title, content, metadata)
VALUES ($1, $2, $3, $4)
RETURNING doc_id`

// InsertDocuments inserts a batch of documents and returns their generated
// ids in input order. The batch is atomic: either every document is
// inserted or none are. Identical documents are not deduplicated; inserting
// the same content twice yields two distinct ids.
func (s *Store) InsertDocuments(ctx context.Context, docs []Document) ([]int64, error) {
	if len(docs) == 0 {
		return []int64{}, nil
	}

	if s.pool != nil {
		return s.insertDocumentsTx(ctx, docs)
	}

	// Non-transactional fallback for tests without a pool.
	ids, err := insertDocuments(ctx, s.db, docs)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("inserted documents", "count", len(ids))
	return ids, nil
}

func (s *Store) insertDocumentsTx(ctx context.Context, docs []Document) (_ []int64, retErr error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if retErr != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Warn("rolling back document insert", "error", rbErr)
			}
		}
	}()

	ids, err := insertDocuments(ctx, tx, docs)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing document insert: %w", err)
	}

	s.logger.Debug("inserted documents", "count", len(ids))
	return ids, nil
}

func insertDocuments(ctx context.Context, db DBTX, docs []Document) ([]int64, error) {
	ids := make([]int64, 0, len(docs))
	for _, doc := range docs {
		metadata := doc.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadataJSON, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("marshaling metadata for %q: %w", doc.Title, err)
		}

		var id int64
		err = db.QueryRow(ctx, insertDocumentSQL,
			string(doc.Type), doc.Title, doc.Content, metadataJSON).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("inserting document %q: %w", doc.Title, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

const insertEmbeddingSQL = `
INSERT INTO embeddings (doc_id, embedding, model_name, dims)
VALUES ($1, $2, $3, $4)`

// InsertEmbedding stores a vector for an existing document.
func (s *Store) InsertEmbedding(ctx context.Context, emb Embedding) error {
	vec := pgvector.NewVector(emb.Vector)
	_, err := s.db.Exec(ctx, insertEmbeddingSQL, emb.DocID, vec, emb.ModelName, emb.Dims)
	if err != nil {
		return fmt.Errorf("inserting embedding for document %d: %w", emb.DocID, err)
	}
	return nil
}

const candidatesSQL = `
SELECT d.doc_id, d.doc_type, d.title, d.content, d.metadata, d.created_at,
       e.embedding, e.model_name
FROM documents d
JOIN embeddings e ON e.doc_id = d.doc_id
WHERE ($1 = '' OR d.doc_type = $1)
  AND ($2::jsonb IS NULL OR d.metadata @> $2::jsonb)
  AND ($3::int = 0 OR e.dims = $3)`

// Candidates fetches documents joined with their embeddings for
// application-side similarity ranking.
//
// SECURITY NOTE (SQL injection prevention): the metadata filter is always
// serialized with json.Marshal and bound as a parameter; the JSONB @>
// operator is safe with bound parameters. Never interpolate filter values
// into the query text.
func (s *Store) Candidates(ctx context.Context, filter CandidateFilter) ([]Candidate, error) {
	var metadataJSON []byte
	if len(filter.Metadata) > 0 {
		var err error
		metadataJSON, err = json.Marshal(filter.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshaling metadata filter: %w", err)
		}
	}

	rows, err := s.db.Query(ctx, candidatesSQL, string(filter.Type), metadataJSON, filter.Dims)
	if err != nil {
		return nil, fmt.Errorf("fetching candidates: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var (
			c            Candidate
			docType      string
			metadataRaw  []byte
			embeddingVec pgvector.Vector
		)
		err := rows.Scan(&c.Document.ID, &docType, &c.Document.Title, &c.Document.Content,
			&metadataRaw, &c.Document.CreatedAt, &embeddingVec, &c.ModelName)
		if err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}

		c.Document.Type = DocType(docType)
		c.Vector = embeddingVec.Slice()

		if err := json.Unmarshal(metadataRaw, &c.Document.Metadata); err != nil {
			s.logger.Warn("failed to parse document metadata", "doc_id", c.Document.ID, "error", err)
			c.Document.Metadata = map[string]any{}
		}

		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidates: %w", err)
	}

	return candidates, nil
}

const embeddingByDocSQL = `
SELECT embedding_id, doc_id, embedding, model_name, dims, created_at
FROM embeddings
WHERE doc_id = $1
ORDER BY created_at DESC
LIMIT 1`

// EmbeddingByDoc returns the most recent stored embedding for a document.
// Returns ErrNotFound if the document has no embedding.
func (s *Store) EmbeddingByDoc(ctx context.Context, docID int64) (Embedding, error) {
	var (
		emb Embedding
		vec pgvector.Vector
	)
	err := s.db.QueryRow(ctx, embeddingByDocSQL, docID).
		Scan(&emb.ID, &emb.DocID, &vec, &emb.ModelName, &emb.Dims, &emb.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Embedding{}, fmt.Errorf("embedding for document %d: %w", docID, ErrNotFound)
	}
	if err != nil {
		return Embedding{}, fmt.Errorf("fetching embedding for document %d: %w", docID, err)
	}

	emb.Vector = vec.Slice()
	return emb, nil
}

const pendingDocumentsSQL = `
SELECT d.doc_id, d.doc_type, d.title, d.content, d.metadata, d.created_at
FROM documents d
LEFT JOIN embeddings e ON e.doc_id = d.doc_id
WHERE e.embedding_id IS NULL
ORDER BY d.doc_id
LIMIT $1`

// PendingDocuments lists documents that do not yet have an embedding,
// oldest first. Used by the offline indexer.
func (s *Store) PendingDocuments(ctx context.Context, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(ctx, pendingDocumentsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching pending documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			doc         Document
			docType     string
			metadataRaw []byte
		)
		err := rows.Scan(&doc.ID, &docType, &doc.Title, &doc.Content, &metadataRaw, &doc.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning pending document: %w", err)
		}
		doc.Type = DocType(docType)
		if err := json.Unmarshal(metadataRaw, &doc.Metadata); err != nil {
			doc.Metadata = map[string]any{}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending documents: %w", err)
	}

	return docs, nil
}

// Stats returns document counts by type and embedding counts by model.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		DocumentsByType:   map[string]int64{},
		EmbeddingsByModel: map[string]int64{},
	}

	rows, err := s.db.Query(ctx, `SELECT doc_type, COUNT(*) FROM documents GROUP BY doc_type`)
	if err != nil {
		return Stats{}, fmt.Errorf("counting documents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var docType string
		var count int64
		if err := rows.Scan(&docType, &count); err != nil {
			return Stats{}, fmt.Errorf("scanning document count: %w", err)
		}
		stats.DocumentsByType[docType] = count
		stats.TotalDocuments += count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterating document counts: %w", err)
	}

	modelRows, err := s.db.Query(ctx, `SELECT model_name, COUNT(*) FROM embeddings GROUP BY model_name`)
	if err != nil {
		return Stats{}, fmt.Errorf("counting embeddings: %w", err)
	}
	defer modelRows.Close()
	for modelRows.Next() {
		var model string
		var count int64
		if err := modelRows.Scan(&model, &count); err != nil {
			return Stats{}, fmt.Errorf("scanning embedding count: %w", err)
		}
		stats.EmbeddingsByModel[model] = count
		stats.TotalEmbeddings += count
	}
	if err := modelRows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterating embedding counts: %w", err)
	}

	return stats, nil
}
