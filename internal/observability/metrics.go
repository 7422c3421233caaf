package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics groups every metric family of the insights API. A nil *Metrics means metrics are disabled.
type Metrics struct {
	HTTP      HTTPMetrics
	Assistant AssistantMetrics
	Cache     CacheMetrics
}

// NewMetrics creates all metric families on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	httpMetrics, err := NewHTTPMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("http metrics: %w", err)
	}

	assistantMetrics, err := NewAssistantMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("assistant metrics: %w", err)
	}

	cacheMetrics, err := NewCacheMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("cache metrics: %w", err)
	}

	return &Metrics{HTTP: httpMetrics, Assistant: assistantMetrics, Cache: cacheMetrics}, nil
}
