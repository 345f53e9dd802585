package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strings"

	"github.com/skychat/skychat/internal/app"
	"github.com/skychat/skychat/internal/chat"
)

// runAsk answers one question and prints the reply. Structured replies
// print their rows; RAG replies print the synthesized answer plus its
// sources.
func runAsk(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	mode := fs.String("mode", string(chat.ModeHybrid), "routing mode: classic, rag, or hybrid")
	session := fs.String("session", "", "session id for query logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	question := strings.Join(fs.Args(), " ")
	if question == "" {
		return fmt.Errorf("ask requires a question")
	}

	reply, err := a.Router.Respond(ctx, question, chat.Mode(*mode), *session)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	fmt.Println(reply.Message)
	if reply.Suggestion != "" {
		fmt.Println(reply.Suggestion)
	}

	if reply.Data != nil {
		data, err := json.MarshalIndent(reply.Data, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding reply data: %w", err)
		}
		fmt.Println(string(data))
	}

	if reply.RAG != nil && len(reply.RAG.ContextDocs) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, doc := range reply.RAG.ContextDocs {
			fmt.Printf("  %.2f  %s\n", doc.Similarity, doc.Title)
		}
	}
	return nil
}
