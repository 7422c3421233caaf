package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/quickcommerce/insights/internal/insighterrors"
)

// Default generation settings.
const (
	DefaultGenerationModel       = "llama-3.1-8b-instant"
	DefaultGenerationTemperature = 0.3
)

// CompletionClient sends a single-user-message chat completion and returns the first choice's content.
type CompletionClient interface {
	CompleteChat(ctx context.Context, model, prompt string, temperature float64) (string, error)
}

// AnswerGenerator turns a question and retrieved feedback into an analyst-style answer.
type AnswerGenerator struct {
	client      CompletionClient
	model       string
	temperature float64
	logger      *slog.Logger
}

// AnswerGeneratorParams configures AnswerGenerator. Empty Model and nil Temperature select the defaults.
type AnswerGeneratorParams struct {
	Client      CompletionClient
	Model       string
	Temperature *float64
	Logger      *slog.Logger
}

// NewAnswerGenerator creates an AnswerGenerator.
func NewAnswerGenerator(p AnswerGeneratorParams) *AnswerGenerator {
	model := p.Model
	if model == "" {
		model = DefaultGenerationModel
	}

	temperature := DefaultGenerationTemperature
	if p.Temperature != nil {
		temperature = *p.Temperature
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &AnswerGenerator{client: p.Client, model: model, temperature: temperature, logger: logger}
}

// Model returns the completion model name.
func (g *AnswerGenerator) Model() string { return g.model }

// BuildPrompt renders the analyst prompt. Passages are listed in the order given, one per line.
func BuildPrompt(query string, passages []string) string {
	var b strings.Builder

	b.WriteString("You are a business analyst for a quick-commerce company.\n")
	b.WriteString("Based on the following customer feedback, answer the question concisely.\n\n")
	b.WriteString("Question:\n")
	b.WriteString(query)
	b.WriteString("\n\nCustomer Feedback:\n")

	for _, p := range passages {
		b.WriteString("- ")
		b.WriteString(p)
		b.WriteString("\n")
	}

	b.WriteString("\nAnswer with root causes and actionable insights.\n")

	return b.String()
}

// Generate asks the completion model to answer query from passages. It makes exactly one call and
// returns the trimmed answer, or a GenerationError; it never returns an empty answer without an error.
func (g *AnswerGenerator) Generate(ctx context.Context, query string, passages []string) (string, error) {
	start := time.Now()

	content, err := g.client.CompleteChat(ctx, g.model, BuildPrompt(query, passages), g.temperature)
	if err != nil {
		g.logger.Warn("answer generation failed", "model", g.model, "error", err,
			"duration_ms", time.Since(start).Milliseconds())

		return "", insighterrors.NewGenerationError(g.model, "chat completion failed", err)
	}

	answer := strings.TrimSpace(content)
	if answer == "" {
		g.logger.Warn("answer generation returned empty content", "model", g.model)

		return "", insighterrors.NewGenerationError(g.model, "empty completion", nil)
	}

	g.logger.Debug("answer generated", "model", g.model, "passages", len(passages),
		"duration_ms", time.Since(start).Milliseconds())

	return answer, nil
}
