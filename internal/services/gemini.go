package services

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"alfredoptarigan/resume-ats/internal/config"
)

var (
	errEmptyResponse     = errors.New("no text content in response")
	errTruncatedResponse = errors.New("response truncated")
)

const msgMissingAPIKey = "API key not found. Please check your environment variables."

// ModelClient sends one prompt and returns the whole response text.
type ModelClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

type geminiService struct {
	client          *genai.Client
	modelName       string
	maxOutputTokens int32
}

// NewGeminiService returns a configuration error when no API key is set.
func NewGeminiService(ctx context.Context, cfg config.GeminiConfig) (ModelClient, error) {
	if cfg.APIKey == "" {
		return nil, newConfigurationError("configure", msgMissingAPIKey)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:          client,
		modelName:       cfg.Model,
		maxOutputTokens: cfg.MaxOutputTokens,
	}, nil
}

func (g *geminiService) Model() string {
	return g.modelName
}

// Generate implements ModelClient. The response text is returned as is; a
// candidate that stopped for any reason other than STOP is an error.
func (g *geminiService) Generate(ctx context.Context, prompt string) (string, error) {
	var genConfig *genai.GenerateContentConfig
	if g.maxOutputTokens > 0 {
		genConfig = &genai.GenerateContentConfig{MaxOutputTokens: g.maxOutputTokens}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), genConfig)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", g.modelName, err)
	}

	if resp == nil {
		return "", fmt.Errorf("gemini %s: nil response", g.modelName)
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		switch reason := resp.Candidates[0].FinishReason; reason {
		case "", genai.FinishReasonUnspecified, genai.FinishReasonStop:
		default:
			return "", fmt.Errorf("gemini %s: %w (%s)", g.modelName, errTruncatedResponse, reason)
		}
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini %s: %w", g.modelName, errEmptyResponse)
	}

	return text, nil
}
