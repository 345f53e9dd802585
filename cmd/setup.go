package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/skychat/skychat/internal/app"
	"github.com/skychat/skychat/internal/corpus"
)

// runSetup builds the knowledge base from the flight tables and embeds
// every document that has no stored vector.
func runSetup(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	skipEmbed := fs.Bool("skip-embed", false, "build documents only, do not embed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := a.Config
	limits := corpus.BuildLimits{
		Airports:           cfg.AirportLimit,
		Airlines:           cfg.AirlineLimit,
		Routes:             cfg.RouteLimit,
		RouteMinAirlines:   cfg.RouteMinAirlines,
		HubMinDestinations: cfg.HubMinDestinations,
	}

	stats, err := a.Builder.BuildComplete(ctx, limits)
	if err != nil {
		return fmt.Errorf("building knowledge base: %w", err)
	}

	fmt.Println("Knowledge base built:")
	fmt.Printf("  airports:  %d\n", stats.Airports)
	fmt.Printf("  airlines:  %d\n", stats.Airlines)
	fmt.Printf("  routes:    %d\n", stats.Routes)
	fmt.Printf("  hubs:      %d\n", stats.Hubs)
	fmt.Printf("  alliances: %d\n", stats.Alliances)
	fmt.Printf("  general:   %d\n", stats.General)
	fmt.Printf("  total:     %d\n", stats.Total)

	if *skipEmbed {
		return nil
	}

	indexed, err := a.Indexer.EmbedPending(ctx)
	if err != nil {
		return fmt.Errorf("embedding documents: %w", err)
	}
	fmt.Printf("Embedded %d documents with %s\n", indexed, a.Embedder.ModelInfo().ModelName)
	return nil
}
