package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// loggedEmbeddingDims caps how much of the query vector is stored.
// Full vectors would bloat the analytics table; a prefix is enough for
// drift analysis.
const loggedEmbeddingDims = 50

// LogDB is the subset of pgx operations the query log needs.
type LogDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LogEntry is one pipeline run to record.
type LogEntry struct {
	SessionID       string
	QueryText       string
	QueryEmbedding  []float32
	RetrievedDocIDs []int64
	Response        string
	Metrics         Metrics
}

// HistoryEntry is one recorded exchange.
type HistoryEntry struct {
	QueryID        uuid.UUID `json:"query_id"`
	Query          string    `json:"query"`
	Response       string    `json:"response"`
	DocIDs         []int64   `json:"doc_ids"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	Timestamp      time.Time `json:"timestamp"`
}

// QueryStats aggregates recorded pipeline runs.
type QueryStats struct {
	Total              int64   `json:"total"`
	AvgResponseTimeMS  float64 `json:"avg_response_time_ms"`
	AvgEmbeddingTimeMS float64 `json:"avg_embedding_time_ms"`
	AvgRetrievalTimeMS float64 `json:"avg_retrieval_time_ms"`
	AvgLLMTimeMS       float64 `json:"avg_llm_time_ms"`
}

// QueryLogStore records pipeline runs for analytics.
type QueryLogStore struct {
	db     LogDB
	logger *slog.Logger
}

// NewQueryLogStore creates a QueryLogStore. Logger nil = slog.Default().
func NewQueryLogStore(db LogDB, logger *slog.Logger) *QueryLogStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryLogStore{db: db, logger: logger}
}

// Log records one exchange. The session row is created on first use.
func (q *QueryLogStore) Log(ctx context.Context, entry LogEntry) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO chat_sessions (session_id) VALUES ($1) ON CONFLICT (session_id) DO NOTHING`,
		entry.SessionID)
	if err != nil {
		return fmt.Errorf("ensuring session %q: %w", entry.SessionID, err)
	}

	embedding := entry.QueryEmbedding
	if len(embedding) > loggedEmbeddingDims {
		embedding = embedding[:loggedEmbeddingDims]
	}
	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("marshaling query embedding: %w", err)
	}

	docIDs := entry.RetrievedDocIDs
	if docIDs == nil {
		docIDs = []int64{}
	}
	docIDsJSON, err := json.Marshal(docIDs)
	if err != nil {
		return fmt.Errorf("marshaling doc ids: %w", err)
	}

	_, err = q.db.Exec(ctx, `
		INSERT INTO rag_queries (
			query_id, session_id, query_text, query_embedding,
			retrieved_doc_ids, llm_response,
			response_time_ms, embedding_time_ms, retrieval_time_ms, llm_time_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.New(), entry.SessionID, entry.QueryText, embeddingJSON,
		docIDsJSON, entry.Response,
		entry.Metrics.TotalTimeMS, entry.Metrics.EmbeddingTimeMS,
		entry.Metrics.RetrievalTimeMS, entry.Metrics.LLMTimeMS)
	if err != nil {
		return fmt.Errorf("inserting query log: %w", err)
	}

	return nil
}

// History returns the most recent exchanges of a session, newest first.
// limit <= 0 defaults to 10.
func (q *QueryLogStore) History(ctx context.Context, sessionID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := q.db.Query(ctx, `
		SELECT query_id, query_text, llm_response, retrieved_doc_ids,
		       response_time_ms, created_at
		FROM rag_queries
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching session history: %w", err)
	}
	defer rows.Close()

	history := make([]HistoryEntry, 0, limit)
	for rows.Next() {
		var (
			entry     HistoryEntry
			docIDsRaw []byte
		)
		err := rows.Scan(&entry.QueryID, &entry.Query, &entry.Response,
			&docIDsRaw, &entry.ResponseTimeMS, &entry.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		if err := json.Unmarshal(docIDsRaw, &entry.DocIDs); err != nil {
			q.logger.Warn("failed to parse logged doc ids", "query_id", entry.QueryID, "error", err)
			entry.DocIDs = []int64{}
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating session history: %w", err)
	}

	return history, nil
}

// Stats aggregates all recorded runs. An empty log yields zero values,
// never SQL nulls.
func (q *QueryLogStore) Stats(ctx context.Context) (QueryStats, error) {
	var stats QueryStats
	err := q.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(response_time_ms), 0),
		       COALESCE(AVG(embedding_time_ms), 0),
		       COALESCE(AVG(retrieval_time_ms), 0),
		       COALESCE(AVG(llm_time_ms), 0)
		FROM rag_queries`).
		Scan(&stats.Total, &stats.AvgResponseTimeMS, &stats.AvgEmbeddingTimeMS,
			&stats.AvgRetrievalTimeMS, &stats.AvgLLMTimeMS)
	if err != nil {
		return QueryStats{}, fmt.Errorf("aggregating query stats: %w", err)
	}
	return stats, nil
}
