// Package bootstrap assembles the feedback assistant from configuration. It is shared by the
// HTTP API and the terminal assistant.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quickcommerce/insights/internal/config"
	"github.com/quickcommerce/insights/internal/feedback"
	"github.com/quickcommerce/insights/internal/index"
	"github.com/quickcommerce/insights/internal/observability"
	"github.com/quickcommerce/insights/internal/openai"
	"github.com/quickcommerce/insights/internal/service"
)

const indexBuildTimeout = 10 * time.Minute

// BuildAssistant loads the feedback corpus, embeds it and wires retrieval and generation.
// It returns (nil, 0, nil) when the embedding or generation API key is missing.
func BuildAssistant(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*service.AssistantService, int, error) {
	if cfg.EmbeddingAPIKey == "" || cfg.GenerationAPIKey == "" {
		slog.Warn("assistant disabled: EMBEDDING_API_KEY (or OPENAI_API_KEY) and GROQ_API_KEY are required")

		return nil, 0, nil
	}

	corpus, err := feedback.LoadCorpus(cfg.FeedbackPath, cfg.FeedbackColumn)
	if err != nil {
		return nil, 0, err
	}

	encoder := openai.NewClient(cfg.EmbeddingAPIKey,
		openai.WithModel(cfg.EmbeddingModel),
		openai.WithDimensions(cfg.EmbeddingDimensions),
		openai.WithBaseURL(cfg.EmbeddingBaseURL),
	)

	buildCtx, cancel := context.WithTimeout(ctx, indexBuildTimeout)
	defer cancel()

	idx, err := index.Build(buildCtx, encoder, encoder.Model(), corpus, index.BuildOptions{BatchSize: cfg.EmbeddingBatchSize})
	if err != nil {
		return nil, 0, fmt.Errorf("build feedback index: %w", err)
	}

	var (
		queryCache       *service.QueryCache
		cacheMetrics     observability.CacheMetrics
		assistantMetrics observability.AssistantMetrics
	)

	if cfg.QueryCacheSize > 0 {
		queryCache, err = service.NewQueryCache(cfg.QueryCacheSize)
		if err != nil {
			return nil, 0, fmt.Errorf("create query cache: %w", err)
		}
	}

	if metrics != nil {
		cacheMetrics = metrics.Cache
		assistantMetrics = metrics.Assistant
	}

	retriever, err := service.NewRetriever(service.RetrieverParams{
		Index:        idx,
		Encoder:      encoder,
		QueryCache:   queryCache,
		CacheMetrics: cacheMetrics,
		Logger:       slog.Default(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("create retriever: %w", err)
	}

	completions := openai.NewClient(cfg.GenerationAPIKey,
		openai.WithBaseURL(cfg.GenerationBaseURL),
		openai.WithMaxRetries(0),
	)

	temperature := cfg.GenerationTemperature
	generator := service.NewAnswerGenerator(service.AnswerGeneratorParams{
		Client:      completions,
		Model:       cfg.GenerationModel,
		Temperature: &temperature,
		Logger:      slog.Default(),
	})

	slog.Info("assistant enabled",
		"embedding_model", string(encoder.Model()),
		"generation_model", generator.Model(),
		"feedback_entries", idx.Len(),
	)

	return service.NewAssistantService(retriever, generator, assistantMetrics), idx.Len(), nil
}
