// internal/service/narrative/gemini.go

package narrative

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	domain "ecodash/internal/domain/narrative"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiBackend generates narratives with the Gemini API
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a new Gemini backend. An empty API key yields an
// unavailable backend rather than an error.
func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	if model == "" {
		model = defaultGeminiModel
	}
	if apiKey == "" {
		return &GeminiBackend{model: model}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &GeminiBackend{client: client, model: model}, nil
}

// Name returns the backend name
func (g *GeminiBackend) Name() string {
	return "gemini"
}

// Available reports whether a client was created
func (g *GeminiBackend) Available() bool {
	return g.client != nil
}

// Complete sends prompt as a single-turn request
func (g *GeminiBackend) Complete(ctx context.Context, prompt string) (string, error) {
	if !g.Available() {
		return "", domain.ErrBackendUnavailable
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	if result == nil {
		return "", fmt.Errorf("gemini: empty response")
	}

	return result.Text(), nil
}
