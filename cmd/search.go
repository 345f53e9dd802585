package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/skychat/skychat/internal/app"
	"github.com/skychat/skychat/internal/corpus"
	"github.com/skychat/skychat/internal/search"
)

// runSearch ranks knowledge documents against a query without running
// the language model. Useful for inspecting what retrieval would feed
// into an answer.
func runSearch(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	topK := fs.Int("top-k", a.Config.TopK, "number of results")
	docType := fs.String("type", "", "restrict to one document type")
	rerank := fs.Bool("rerank", false, "apply document type reranking")
	if err := fs.Parse(args); err != nil {
		return err
	}

	query := strings.Join(fs.Args(), " ")
	if query == "" {
		return fmt.Errorf("search requires a query")
	}

	opts := search.Options{
		TopK:          *topK,
		Type:          corpus.DocType(*docType),
		MinSimilarity: a.Config.MinSimilarity,
	}

	var (
		results []search.Result
		err     error
	)
	if *rerank {
		results, err = a.Search.SearchWithReranking(ctx, query, a.Config.RerankInitialK, opts)
	} else {
		results, err = a.Search.SearchText(ctx, query, opts)
	}
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matching documents.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%d. [%.2f] %s (%s)\n", i+1, r.Similarity, r.Document.Title, r.Document.Type)
	}
	return nil
}
