package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AssistantMetrics records retrieval, generation and delay-prediction metrics.
type AssistantMetrics interface {
	RecordRetrieval(ctx context.Context, duration time.Duration)
	RecordGeneration(ctx context.Context, status string, duration time.Duration)
	RecordDelayPrediction(ctx context.Context, level string)
}

type assistantMetrics struct {
	retrievalDuration  metric.Float64Histogram
	generations        metric.Int64Counter
	generationDuration metric.Float64Histogram
	delayPredictions   metric.Int64Counter
}

// NewAssistantMetrics creates AssistantMetrics. Returns (nil, nil) when meter is nil (metrics disabled).
func NewAssistantMetrics(meter metric.Meter) (AssistantMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	retrievalDuration, err := meter.Float64Histogram(
		MetricNameRetrievalDuration,
		metric.WithDescription("Feedback retrieval duration including query embedding (seconds)"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create retrieval duration histogram: %w", err)
	}

	generations, err := meter.Int64Counter(
		MetricNameGenerations,
		metric.WithDescription("Total answer generations by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("create generations counter: %w", err)
	}

	generationDuration, err := meter.Float64Histogram(
		MetricNameGenerationDuration,
		metric.WithDescription("Answer generation duration (seconds)"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create generation duration histogram: %w", err)
	}

	delayPredictions, err := meter.Int64Counter(
		MetricNameDelayPredictions,
		metric.WithDescription("Total delivery delay risk predictions by risk level"),
	)
	if err != nil {
		return nil, fmt.Errorf("create delay predictions counter: %w", err)
	}

	return &assistantMetrics{
		retrievalDuration:  retrievalDuration,
		generations:        generations,
		generationDuration: generationDuration,
		delayPredictions:   delayPredictions,
	}, nil
}

func (a *assistantMetrics) RecordRetrieval(ctx context.Context, duration time.Duration) {
	a.retrievalDuration.Record(ctx, duration.Seconds())
}

func (a *assistantMetrics) RecordGeneration(ctx context.Context, status string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(AttrStatus, NormalizeLabel(status, AllowedGenerationStatuses)))
	a.generations.Add(ctx, 1, attrs)
	a.generationDuration.Record(ctx, duration.Seconds(), attrs)
}

func (a *assistantMetrics) RecordDelayPrediction(ctx context.Context, level string) {
	a.delayPredictions.Add(ctx, 1,
		metric.WithAttributes(attribute.String(AttrLevel, NormalizeLabel(level, AllowedRiskLevels))))
}
