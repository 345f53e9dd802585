package embed

import (
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/ollama"

	"github.com/skychat/skychat/internal/config"
)

// FromConfig builds a Provider for the configured AI provider.
// Each Genkit plugin registers embedders differently:
//   - gemini: GoogleAIEmbedder(g, modelName)
//   - ollama: registered at Genkit init, keyed by server address
//   - openai: auto-registered at Init(), looked up by model name
//
// The backend is resolved exactly once here; callers hold a Provider bound
// to a single embedder for its lifetime.
func FromConfig(g *genkit.Genkit, cfg *config.Config, logger *slog.Logger) (*Provider, error) {
	var embedder ai.Embedder

	switch cfg.Provider {
	case config.ProviderOllama:
		embedder = ollama.Embedder(g, cfg.OllamaHost)
	case config.ProviderOpenAI:
		embedder = genkit.LookupEmbedder(g, api.NewName("openai", cfg.EmbedderModel))
	default: // gemini
		embedder = googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	}

	return New(embedder, ModelInfo{
		Provider:   cfg.Provider,
		ModelName:  cfg.EmbedderModel,
		Dimensions: cfg.EmbedderDims,
	}, logger)
}
