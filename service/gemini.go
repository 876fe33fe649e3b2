package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is the model used for proposal generation.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiGenerator calls Gemini in JSON response mode. The platform client is
// shared; a user supplied key gets a short lived client of its own.
type GeminiGenerator struct {
	platform    *genai.Client
	platformKey string
	model       string
	logger      *zap.Logger
}

// NewGeminiGenerator creates a generator around the platform client
func NewGeminiGenerator(platform *genai.Client, platformKey, model string, logger *zap.Logger) *GeminiGenerator {
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiGenerator{
		platform:    platform,
		platformKey: platformKey,
		model:       model,
		logger:      logger,
	}
}

// GenerateJSON sends prompt once and returns the concatenated text parts.
func (g *GeminiGenerator) GenerateJSON(ctx context.Context, apiKey, prompt string) (string, error) {
	if apiKey == "" {
		return "", errors.New("no API key configured for generation")
	}

	client := g.platform
	if client == nil || apiKey != g.platformKey {
		userClient, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
		if err != nil {
			return "", fmt.Errorf("failed to create Gemini client: %w", err)
		}
		defer userClient.Close()
		client = userClient
	}

	model := client.GenerativeModel(g.model)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("Gemini blocked prompt: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("Gemini returned no candidates")
	}

	var text strings.Builder
	for i, candidate := range resp.Candidates {
		if candidate.FinishReason != genai.FinishReasonStop && candidate.FinishReason != genai.FinishReasonUnspecified {
			g.logger.Warn("candidate finished early",
				zap.Int("candidate", i),
				zap.String("finish_reason", candidate.FinishReason.String()),
			)
		}
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
		// Only the first candidate carries the answer.
		break
	}

	if text.Len() == 0 {
		return "", errors.New("Gemini returned empty content")
	}
	return text.String(), nil
}
