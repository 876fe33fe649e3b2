package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"proposalforge-backend/metrics"
	"proposalforge-backend/models"
	"proposalforge-backend/pricing"

	"go.uber.org/zap"
)

// DefaultTone is used when the caller does not pick a tone.
const DefaultTone = "Professional"

// TextGenerator is the external text generation capability: prompt in, JSON
// text out. Implementations must not retry.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, apiKey, prompt string) (string, error)
}

// GenerationEngine turns raw meeting notes into a proposal body and line items.
type GenerationEngine struct {
	generator TextGenerator
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// GenerationOption is a functional option for GenerationEngine
type GenerationOption func(*GenerationEngine)

// GenerationWithGenerator sets the text generator
func GenerationWithGenerator(g TextGenerator) GenerationOption {
	return func(e *GenerationEngine) {
		e.generator = g
	}
}

// GenerationWithLogger sets the logger
func GenerationWithLogger(logger *zap.Logger) GenerationOption {
	return func(e *GenerationEngine) {
		e.logger = logger
	}
}

// GenerationWithMetrics sets the metrics collectors
func GenerationWithMetrics(m *metrics.Metrics) GenerationOption {
	return func(e *GenerationEngine) {
		e.metrics = m
	}
}

// NewGenerationEngine creates a new generation engine
func NewGenerationEngine(opts ...GenerationOption) *GenerationEngine {
	e := &GenerationEngine{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerateRequest represents a request to generate a proposal
type GenerateRequest struct {
	RawNotes    string
	Tone        string
	AverageRate float64
}

// GenerateResult is the canonical output of a generation
type GenerateResult struct {
	Markdown    string            `json:"markdown"`
	LineItems   []models.LineItem `json:"lineItems"`
	TotalAmount float64           `json:"totalAmount"`
}

// ValidateGenerateRequest checks the request before any quota is charged.
func ValidateGenerateRequest(req GenerateRequest) error {
	if strings.TrimSpace(req.RawNotes) == "" {
		return NewValidationError("rawNotes", "rawNotes are required.")
	}
	return nil
}

// Generate makes exactly one call to the generator with cred. A response that
// does not match the canonical schema is an upstream error, never an empty
// result.
func (e *GenerationEngine) Generate(ctx context.Context, req GenerateRequest, cred Credential) (*GenerateResult, error) {
	if err := ValidateGenerateRequest(req); err != nil {
		e.metrics.ObserveGeneration(string(cred.Source), "validation_error", 0)
		return nil, err
	}
	if e.generator == nil {
		return nil, errors.New("text generator not set")
	}

	start := time.Now()
	text, err := e.generator.GenerateJSON(ctx, cred.APIKey, BuildPrompt(req))
	elapsed := time.Since(start)
	if err != nil {
		e.logger.Error("generation call failed",
			zap.Stringer("credential", cred),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		e.metrics.ObserveGeneration(string(cred.Source), "upstream_error", elapsed)
		return nil, NewUpstreamError(err)
	}

	result, err := ParseGeneration(text)
	if err != nil {
		e.logger.Error("generation output rejected",
			zap.Stringer("credential", cred),
			zap.Int("response_bytes", len(text)),
			zap.Error(err),
		)
		e.metrics.ObserveGeneration(string(cred.Source), "upstream_error", elapsed)
		return nil, NewUpstreamError(err)
	}

	e.metrics.ObserveGeneration(string(cred.Source), "success", elapsed)
	e.logger.Info("proposal generated",
		zap.Stringer("credential", cred),
		zap.Int("line_items", len(result.LineItems)),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

// BuildPrompt embeds the tone and the raw notes verbatim in the instruction.
func BuildPrompt(req GenerateRequest) string {
	tone := strings.TrimSpace(req.Tone)
	if tone == "" {
		tone = DefaultTone
	}

	var b strings.Builder
	b.WriteString("You are a professional business consultant. Take the following raw notes and format them into a structured business proposal. Follow these rules strictly:\n")
	fmt.Fprintf(&b, "1. Use %s tone.\n", tone)
	b.WriteString("2. Generate a structured JSON response containing exactly TWO keys: \"markdown\" and \"lineItems\".\n")
	b.WriteString("3. The \"markdown\" key should contain the proposal string formatted in valid Markdown with sections: Executive Summary, Detailed Scope, and Technical Stack. Do not include pricing in the markdown.\n")
	b.WriteString("4. The \"lineItems\" key should contain an array of objects, where each object has \"description\" (string), \"quantity\" (number), and \"unit_price\" (number). Extract any measurable costs or features from the notes. If none exist, provide a sensible default line item for the service described.\n")
	if req.AverageRate > 0 {
		fmt.Fprintf(&b, "5. The consultant's average hourly rate is %s. Use it as guidance when pricing hourly work.\n",
			pricing.FormatMoney(req.AverageRate))
	}
	b.WriteString("\nRaw Notes:\n")
	b.WriteString(req.RawNotes)
	return b.String()
}

var codeFencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// ParseGeneration validates text against the canonical {markdown, lineItems}
// schema. A surrounding markdown code fence is tolerated. Missing or non-array
// lineItems become an empty set; anything else malformed is an error.
func ParseGeneration(text string) (*GenerateResult, error) {
	trimmed := strings.TrimSpace(text)
	if m := codeFencePattern.FindStringSubmatch(trimmed); m != nil {
		trimmed = m[1]
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	if raw == nil {
		return nil, errors.New("response is not a JSON object")
	}

	result := &GenerateResult{LineItems: []models.LineItem{}}

	if md, ok := raw["markdown"]; ok && !isJSONNull(md) {
		var markdown string
		if err := json.Unmarshal(md, &markdown); err != nil {
			return nil, fmt.Errorf("markdown is not a string: %w", err)
		}
		result.Markdown = strings.TrimSpace(markdown)
	}

	if items, ok := raw["lineItems"]; ok && bytes.HasPrefix(bytes.TrimSpace(items), []byte("[")) {
		var generated []generatedItem
		if err := json.Unmarshal(items, &generated); err != nil {
			return nil, fmt.Errorf("malformed lineItems: %w", err)
		}
		for _, item := range generated {
			result.LineItems = append(result.LineItems, models.LineItem{
				Description: strings.TrimSpace(item.Description),
				Quantity:    float64(item.Quantity),
				UnitPrice:   float64(item.UnitPrice),
			})
		}
	}

	result.TotalAmount = pricing.ComputeTotal(result.LineItems)
	return result, nil
}

type generatedItem struct {
	Description string     `json:"description"`
	Quantity    flexNumber `json:"quantity"`
	UnitPrice   flexNumber `json:"unit_price"`
}

// flexNumber accepts a JSON number or a numeric string.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	if isJSONNull(b) {
		*n = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = flexNumber(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$")), 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	*n = flexNumber(f)
	return nil
}

func isJSONNull(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}
