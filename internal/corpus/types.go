// Package corpus manages the flight knowledge base: document storage,
// embedding storage, document generation from structured flight data, and
// the offline embedding indexer.
package corpus

import (
	"errors"
	"time"
)

// Sentinel errors for corpus operations. Check with errors.Is().
var (
	// ErrNotFound indicates the requested document or embedding does not exist.
	ErrNotFound = errors.New("not found")
)

// DocType identifies the category of a knowledge document.
type DocType string

// Document categories stored in the knowledge base.
const (
	TypeAirport  DocType = "airport"
	TypeAirline  DocType = "airline_info"
	TypeRoute    DocType = "route_info"
	TypeHub      DocType = "airport_info"
	TypeAlliance DocType = "alliance_info"
	TypeGeneral  DocType = "general_knowledge"
)

// Document is a knowledge base entry generated from flight data or
// curated aviation knowledge.
type Document struct {
	ID        int64
	Type      DocType
	Title     string
	Content   string
	Metadata  map[string]any
	CreatedAt time.Time
}

// Embedding is a stored vector for one document. A document may carry
// embeddings from more than one model; ModelName and Dims identify which.
type Embedding struct {
	ID        int64
	DocID     int64
	Vector    []float32
	ModelName string
	Dims      int
	CreatedAt time.Time
}

// Candidate is a document joined with one of its embeddings, fetched for
// application-side similarity ranking.
type Candidate struct {
	Document  Document
	Vector    []float32
	ModelName string
}

// CandidateFilter narrows the candidate fetch.
// Zero values mean "no restriction" for their field.
type CandidateFilter struct {
	// Type restricts candidates to a single document category.
	Type DocType

	// Metadata requires exact matches on document metadata keys
	// (JSONB containment).
	Metadata map[string]any

	// Dims restricts candidates to embeddings of this dimensionality.
	// Vectors from a different embedding model are not comparable, so
	// searches always set this to the query vector's length.
	Dims int
}

// Stats summarizes knowledge base contents.
type Stats struct {
	TotalDocuments    int64            `json:"total_documents"`
	DocumentsByType   map[string]int64 `json:"documents_by_type"`
	TotalEmbeddings   int64            `json:"total_embeddings"`
	EmbeddingsByModel map[string]int64 `json:"embeddings_by_model"`
}

// BuildStats reports the per-stage document counts of a knowledge base build.
type BuildStats struct {
	Airports  int `json:"airports"`
	Airlines  int `json:"airlines"`
	Routes    int `json:"routes"`
	Hubs      int `json:"hubs"`
	Alliances int `json:"alliances"`
	General   int `json:"general"`
	Total     int `json:"total"`
}
