package synth

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// GenkitClient executes generation requests through a Genkit model.
// The model is resolved by name once per call; Genkit caches lookups.
type GenkitClient struct {
	g         *genkit.Genkit
	modelName string
}

// NewGenkitClient creates a client bound to one fully qualified model
// name, e.g. "googleai/gemini-2.5-flash" or "ollama/llama3.2".
func NewGenkitClient(g *genkit.Genkit, modelName string) *GenkitClient {
	return &GenkitClient{g: g, modelName: modelName}
}

// ModelName returns the fully qualified model name.
func (c *GenkitClient) ModelName() string {
	return c.modelName
}

// Generate runs one model call and returns the response text with token
// usage. Usage counts are zero when the backend does not report them.
func (c *GenkitClient) Generate(ctx context.Context, req Request) (string, Usage, error) {
	resp, err := genkit.Generate(ctx, c.g,
		ai.WithModelName(c.modelName),
		ai.WithSystem(req.System),
		ai.WithPrompt(req.Prompt),
		ai.WithConfig(map[string]any{
			"temperature":     req.Temperature,
			"maxOutputTokens": req.MaxTokens,
		}),
	)
	if err != nil {
		return "", Usage{}, fmt.Errorf("generating with %s: %w", c.modelName, err)
	}

	var usage Usage
	if resp.Usage != nil {
		usage = Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return resp.Text(), usage, nil
}
