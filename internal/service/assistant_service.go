package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/quickcommerce/insights/internal/insighterrors"
	"github.com/quickcommerce/insights/internal/models"
	"github.com/quickcommerce/insights/internal/observability"
)

// Assistant topK bounds.
const (
	DefaultAssistantTopK = 5
	MaxAssistantTopK     = 20
)

// ErrEmptyQuestion is returned by Ask for a blank question.
var ErrEmptyQuestion = insighterrors.NewValidationError("question", "question is required and must be non-empty")

// FeedbackRetriever ranks feedback for a query.
type FeedbackRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedFeedback, error)
}

// AnswerWriter writes an answer grounded on passages.
type AnswerWriter interface {
	Generate(ctx context.Context, query string, passages []string) (string, error)
}

// AssistantService answers business questions from customer feedback: retrieve, then generate.
type AssistantService struct {
	retriever FeedbackRetriever
	generator AnswerWriter
	metrics   observability.AssistantMetrics
}

// NewAssistantService creates an AssistantService. metrics may be nil.
func NewAssistantService(retriever FeedbackRetriever, generator AnswerWriter, metrics observability.AssistantMetrics) *AssistantService {
	return &AssistantService{retriever: retriever, generator: generator, metrics: metrics}
}

// ClampTopK applies the assistant default (5) for non-positive values and caps at 20.
func ClampTopK(topK int) int {
	if topK <= 0 {
		return DefaultAssistantTopK
	}

	return min(topK, MaxAssistantTopK)
}

// Retrieve returns the feedback that Ask would ground an answer on.
func (s *AssistantService) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedFeedback, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, insighterrors.NewValidationError("query", "query is required and must be non-empty")
	}

	return s.retrieve(ctx, query, ClampTopK(topK))
}

// Ask retrieves the topK most relevant feedback items for question and asks the generator for an answer.
// A generation failure is returned as a GenerationError together with no answer.
func (s *AssistantService) Ask(ctx context.Context, question string, topK int) (models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.Answer{}, ErrEmptyQuestion
	}

	feedback, err := s.retrieve(ctx, question, ClampTopK(topK))
	if err != nil {
		return models.Answer{}, err
	}

	start := time.Now()
	text, err := s.generator.Generate(ctx, question, models.Texts(feedback))

	if s.metrics != nil {
		status := observability.GenerationSuccess
		if err != nil {
			status = observability.GenerationFailed
		}

		s.metrics.RecordGeneration(ctx, status, time.Since(start))
	}

	if err != nil {
		if !errors.Is(err, insighterrors.ErrGeneration) {
			err = insighterrors.NewGenerationError("", "generate answer", err)
		}

		return models.Answer{}, err
	}

	return models.Answer{Question: question, Text: text, Feedback: feedback}, nil
}

func (s *AssistantService) retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedFeedback, error) {
	start := time.Now()
	feedback, err := s.retriever.Retrieve(ctx, query, topK)

	if s.metrics != nil {
		s.metrics.RecordRetrieval(ctx, time.Since(start))
	}

	if err != nil {
		return nil, err
	}

	return feedback, nil
}
