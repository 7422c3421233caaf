// Package observability provides structured-logging helpers and OpenTelemetry metrics for the insights API.
package observability

// Metric names (Prometheus / OpenTelemetry).
const (
	MetricNameHTTPRequests        = "insights_http_requests_total"
	MetricNameHTTPRequestDuration = "insights_http_request_duration_seconds"
	MetricNameRequestBodyTooLarge = "insights_http_request_body_too_large_total"
	MetricNameRetrievalDuration   = "insights_retrieval_duration_seconds"
	MetricNameGenerations         = "insights_generation_total"
	MetricNameGenerationDuration  = "insights_generation_duration_seconds"
	MetricNameCacheHits           = "insights_cache_hits_total"
	MetricNameCacheMisses         = "insights_cache_misses_total"
	MetricNameDelayPredictions    = "insights_delay_predictions_total"
)

// Attribute keys.
const (
	AttrMethod      = "method"
	AttrRoute       = "route"
	AttrStatusClass = "status_class"
	AttrStatus      = "status"
	AttrCache       = "cache"
	AttrLevel       = "level"
)

// Generation outcome statuses.
const (
	GenerationSuccess = "success"
	GenerationFailed  = "failed"
)

// AllowedGenerationStatuses for insights_generation_total and insights_generation_duration_seconds.
var AllowedGenerationStatuses = map[string]bool{
	GenerationSuccess: true,
	GenerationFailed:  true,
}

// AllowedCacheNames bounds the cache label.
var AllowedCacheNames = map[string]bool{
	"query_embedding": true,
}

// AllowedRiskLevels bounds the level label of insights_delay_predictions_total.
var AllowedRiskLevels = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
}

// NormalizeLabel returns value if it is in allowed, otherwise "other".
func NormalizeLabel(value string, allowed map[string]bool) string {
	if allowed[value] {
		return value
	}

	return "other"
}
