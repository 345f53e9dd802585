package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/ollama"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skychat/skychat/db"
	"github.com/skychat/skychat/internal/chat"
	"github.com/skychat/skychat/internal/config"
	"github.com/skychat/skychat/internal/corpus"
	"github.com/skychat/skychat/internal/embed"
	"github.com/skychat/skychat/internal/flightdata"
	"github.com/skychat/skychat/internal/rag"
	"github.com/skychat/skychat/internal/search"
	"github.com/skychat/skychat/internal/synth"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup. Call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, logger: logger}

	// On error, clean up everything already initialized.
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	pool, dbCleanup, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.dbCleanup = dbCleanup
	a.DBPool = pool

	g, err := provideGenkit(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	embedder, err := embed.FromConfig(g, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating embedding provider: %w", err)
	}
	a.Embedder = embedder

	a.Store = corpus.NewStore(pool, pool, logger)
	a.Flights = flightdata.NewReader(pool, logger)
	a.Builder = corpus.NewBuilder(a.Flights, a.Store, logger)
	a.Indexer = corpus.NewIndexer(a.Store, embedder, cfg.BatchSize, logger)

	a.Search = search.NewEngine(embedder, a.Store, search.WeightsFromConfig(cfg.RerankWeights), logger)

	client := synth.NewGenkitClient(g, cfg.FullModelName())
	a.Generator = synth.NewGenerator(client, cfg.Temperature, cfg.MaxTokens, logger)

	queryLog := rag.NewQueryLogStore(pool, logger)
	a.RAG = rag.NewService(embedder, a.Search, a.Generator, queryLog,
		knowledgeStats{store: a.Store}, cfg.TopK, cfg.MinSimilarity, logger)

	a.Router = chat.NewRouter(a.Flights, a.RAG, logger)

	return a, nil
}

// provideGenkit initializes Genkit with the configured AI provider.
// Supports gemini (default), ollama, and openai providers.
func provideGenkit(ctx context.Context, cfg *config.Config) (*genkit.Genkit, error) {
	var g *genkit.Genkit

	switch cfg.Provider {
	case config.ProviderOllama:
		ollamaPlugin := &ollama.Ollama{ServerAddress: cfg.OllamaHost}
		g = genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))
		if g == nil {
			return nil, errors.New("initializing genkit with ollama provider")
		}
		// Ollama requires explicit model registration (no auto-discovery)
		ollamaPlugin.DefineModel(g, ollama.ModelDefinition{
			Name: cfg.ModelName,
			Type: "chat",
		}, nil)
		ollamaPlugin.DefineEmbedder(g, cfg.OllamaHost, cfg.EmbedderModel, nil)
		slog.Info("initialized Genkit with ollama provider",
			"model", cfg.ModelName, "host", cfg.OllamaHost)

	case config.ProviderOpenAI:
		g = genkit.Init(ctx, genkit.WithPlugins(&openai.OpenAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with openai provider")
		}
		slog.Info("initialized Genkit with openai provider", "model", cfg.ModelName)

	default: // "gemini"
		g = genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with gemini provider")
		}
		slog.Info("initialized Genkit with gemini provider", "model", cfg.ModelName)
	}

	return g, nil
}

// provideDBPool creates a PostgreSQL connection pool and runs migrations.
// Pool is configured with sensible defaults for connection management.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, func(), error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pinging database: %w", err)
	}

	cleanup := func() {
		pool.Close()
	}

	return pool, cleanup, nil
}

// knowledgeStats adapts the corpus store's counters to the shape the
// pipeline reports.
type knowledgeStats struct {
	store *corpus.Store
}

func (k knowledgeStats) Stats(ctx context.Context) (rag.CorpusStats, error) {
	s, err := k.store.Stats(ctx)
	if err != nil {
		return rag.CorpusStats{}, err
	}
	return rag.CorpusStats{
		TotalDocuments:    s.TotalDocuments,
		DocumentsByType:   s.DocumentsByType,
		TotalEmbeddings:   s.TotalEmbeddings,
		EmbeddingsByModel: s.EmbeddingsByModel,
	}, nil
}
