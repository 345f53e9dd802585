// Package cmd contains the skychat command line interface: knowledge
// base construction, one-shot questions, similarity search, and
// pipeline statistics.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/skychat/skychat/internal/app"
	"github.com/skychat/skychat/internal/config"
	applog "github.com/skychat/skychat/internal/log"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "0.1.0"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

// Execute is the main entry point for the skychat CLI. It handles flag
// parsing, initialization, and command routing, leaving main.go as a
// minimal entry point.
func Execute() error {
	// Handle special flags before full initialization so version and
	// help work even when the configuration is invalid.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			printVersionInfo()
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		}
	}
	if len(os.Args) < 2 {
		printHelp()
		return nil
	}

	logger := initLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if err := checkRequiredEnv(cfg); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing application", "error", err)
		}
	}()

	switch os.Args[1] {
	case "setup":
		return runSetup(ctx, a, os.Args[2:])
	case "ask":
		return runAsk(ctx, a, os.Args[2:])
	case "search":
		return runSearch(ctx, a, os.Args[2:])
	case "stats":
		return runStats(ctx, a)
	case "history":
		return runHistory(ctx, a, os.Args[2:])
	default:
		printHelp()
		return fmt.Errorf("unknown command %q", os.Args[1])
	}
}

// initLogger initializes the structured logger. DEBUG (any value)
// enables debug level. Logs go to stderr so stdout stays clean for
// command output.
func initLogger() *slog.Logger {
	cfg := applog.Config{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	return applog.New(cfg)
}

// checkRequiredEnv verifies the API key for the selected provider.
// Ollama runs locally and needs none.
func checkRequiredEnv(cfg *config.Config) error {
	var envVar string
	switch cfg.Provider {
	case config.ProviderOllama:
		return nil
	case config.ProviderOpenAI:
		envVar = "OPENAI_API_KEY"
	default:
		envVar = "GEMINI_API_KEY"
	}

	if os.Getenv(envVar) == "" {
		fmt.Fprintf(os.Stderr, "Error: %s environment variable not set\n\n", envVar)
		fmt.Fprintf(os.Stderr, "skychat requires an API key for the %q provider:\n", cfg.Provider)
		fmt.Fprintf(os.Stderr, "  export %s=your-api-key\n", envVar)
		return fmt.Errorf("%s not set", envVar)
	}
	return nil
}

func printVersionInfo() {
	fmt.Printf("skychat v%s\n", AppVersion)
	fmt.Printf("Build: %s\n", BuildTime)
	fmt.Printf("Commit: %s\n", GitCommit)
}

func printHelp() {
	fmt.Println("skychat - flight data question answering")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  skychat setup                 Build the knowledge base and embed documents")
	fmt.Println("  skychat ask <question>        Answer a question")
	fmt.Println("    --mode classic|rag|hybrid   Routing mode (default hybrid)")
	fmt.Println("    --session <id>              Log the query under a session")
	fmt.Println("  skychat search <query>        Similarity search over the knowledge base")
	fmt.Println("    --top-k <n>                 Number of results")
	fmt.Println("    --type <doc-type>           Restrict to one document type")
	fmt.Println("    --rerank                    Apply document type reranking")
	fmt.Println("  skychat stats                 Show knowledge base and query statistics")
	fmt.Println("  skychat history <session>     Show logged queries for a session")
	fmt.Println("  skychat version               Show version information")
	fmt.Println("  skychat help                  Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  GEMINI_API_KEY     API key for the gemini provider (default)")
	fmt.Println("  OPENAI_API_KEY     API key for the openai provider")
	fmt.Println("  DATABASE_URL       Overrides the postgres_* configuration")
	fmt.Println("  DEBUG              Enable debug logging")
}
