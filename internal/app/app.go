// Package app provides application initialization and dependency
// injection. Setup builds every component of the pipeline once, wires
// them together explicitly, and returns a container whose Close
// releases everything in reverse order.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skychat/skychat/internal/chat"
	"github.com/skychat/skychat/internal/config"
	"github.com/skychat/skychat/internal/corpus"
	"github.com/skychat/skychat/internal/embed"
	"github.com/skychat/skychat/internal/flightdata"
	"github.com/skychat/skychat/internal/rag"
	"github.com/skychat/skychat/internal/search"
	"github.com/skychat/skychat/internal/synth"
)

// App is the application container. All fields are constructed by Setup
// and remain valid until Close.
type App struct {
	Config *config.Config

	Genkit   *genkit.Genkit
	DBPool   *pgxpool.Pool
	Embedder *embed.Provider

	Store   *corpus.Store
	Builder *corpus.Builder
	Indexer *corpus.Indexer

	Search    *search.Engine
	Generator *synth.Generator
	RAG       *rag.Service
	Flights   *flightdata.Reader
	Router    *chat.Router

	logger    *slog.Logger
	dbCleanup func()
}

// Close releases all resources held by the application.
func (a *App) Close() error {
	a.log().Info("shutting down application")

	if a.dbCleanup != nil {
		a.dbCleanup()
		a.dbCleanup = nil
		a.log().Info("database pool closed")
	}
	return nil
}

func (a *App) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return slog.Default()
}
