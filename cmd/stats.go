package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/skychat/skychat/internal/app"
)

// runStats prints knowledge base and query statistics as JSON.
func runStats(ctx context.Context, a *app.App) error {
	stats, err := a.RAG.Statistics(ctx)
	if err != nil {
		return fmt.Errorf("collecting statistics: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stats); err != nil {
		return fmt.Errorf("encoding statistics: %w", err)
	}
	return nil
}

// runHistory prints the logged queries of one session, newest first.
func runHistory(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	limit := fs.Int("limit", 10, "maximum entries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("history requires a session id")
	}

	entries, err := a.RAG.SessionHistory(ctx, fs.Arg(0), *limit)
	if err != nil {
		return fmt.Errorf("loading session history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No logged queries for this session.")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  (%d ms)\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.ResponseTimeMS)
		fmt.Printf("  Q: %s\n", e.Query)
		fmt.Printf("  A: %s\n", e.Response)
	}
	return nil
}
