// Package synth turns retrieved context documents and a user query into
// a grounded natural language answer.
package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/skychat/skychat/internal/search"
)

// ErrGeneration wraps model backend failures so callers never depend on
// provider-specific error types.
var ErrGeneration = errors.New("response generation failed")

// systemPrompt grounds the model in the retrieved documents and asks it
// to admit when the context is insufficient.
const systemPrompt = `You are SkyChat, an intelligent flight information assistant powered by RAG (Retrieval-Augmented Generation).

Your role is to:
1. Answer questions about airports, airlines, routes, and flight information
2. Use the provided context documents to give accurate, detailed answers
3. Cite your sources when possible (mention document titles)
4. Be conversational and helpful
5. If the context doesn't contain relevant information, say so clearly
6. Provide structured data (routes, airport codes, etc.) when appropriate

Always prioritize accuracy over speculation. If you're unsure, acknowledge it.`

// Request carries one generation call.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Usage is token accounting reported by the backend. Backends that do
// not report usage leave all counts zero.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ModelClient executes a generation request against one model backend.
// Satisfied by *GenkitClient.
type ModelClient interface {
	Generate(ctx context.Context, req Request) (string, Usage, error)
	ModelName() string
}

// Response is a synthesized answer with its provenance.
type Response struct {
	Text        string          `json:"response"`
	Model       string          `json:"model"`
	ContextDocs []search.Result `json:"context_docs"`
	Usage       Usage           `json:"usage"`
}

// Generator builds grounded prompts and synthesizes answers.
type Generator struct {
	client      ModelClient
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

// NewGenerator creates a Generator. Logger nil = slog.Default().
func NewGenerator(client ModelClient, temperature float32, maxTokens int, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, temperature: temperature, maxTokens: maxTokens, logger: logger}
}

// Generate synthesizes an answer for the query grounded in the context
// documents. An empty document list still generates; the prompt then
// carries an explicit no-context placeholder so the model knows to say
// the knowledge base had nothing relevant.
func (g *Generator) Generate(ctx context.Context, query string, docs []search.Result) (Response, error) {
	req := Request{
		System:      systemPrompt,
		Prompt:      userMessage(query, docs),
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	text, usage, err := g.client.Generate(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	g.logger.Debug("generated response",
		"model", g.client.ModelName(),
		"context_docs", len(docs),
		"total_tokens", usage.TotalTokens)

	return Response{
		Text:        text,
		Model:       g.client.ModelName(),
		ContextDocs: docs,
		Usage:       usage,
	}, nil
}

// Simple synthesizes an answer without retrieved context.
func (g *Generator) Simple(ctx context.Context, prompt string) (string, error) {
	resp, err := g.Generate(ctx, prompt, nil)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func userMessage(query string, docs []search.Result) string {
	return fmt.Sprintf(`Context Documents:
%s

User Query: %s

Please provide a helpful, accurate response based on the context above. Include relevant details like airport codes, airline names, and route information when applicable.`,
		formatContext(docs), query)
}

// formatContext renders retrieved documents with their raw similarity so
// the model can weigh sources by relevance.
func formatContext(docs []search.Result) string {
	if len(docs) == 0 {
		return "No relevant context documents found."
	}

	var b strings.Builder
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "\nDocument %d: %s\nType: %s\nRelevance: %.2f\nContent: %s\n---",
			i+1, doc.Document.Title, doc.Document.Type, doc.Similarity, doc.Document.Content)
	}
	return b.String()
}
