package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/quickcommerce/insights/internal/embeddings"
	"github.com/quickcommerce/insights/internal/index"
	"github.com/quickcommerce/insights/internal/insighterrors"
	"github.com/quickcommerce/insights/internal/models"
	"github.com/quickcommerce/insights/internal/observability"
	"github.com/quickcommerce/insights/pkg/cache"
)

const queryEmbeddingCacheName = "query_embedding"

// QueryKey identifies a cached query embedding. The model is part of the key so a cache shared
// across encoders never returns a vector from another embedding space.
type QueryKey struct {
	Model embeddings.ModelID
	Query string
}

// QueryCache holds normalized query embeddings.
type QueryCache = cache.LoaderCache[QueryKey, []float32]

// NewQueryCache creates a QueryCache with room for size queries.
func NewQueryCache(size int) (*QueryCache, error) {
	return cache.New[QueryKey, []float32](size, func(k QueryKey) string {
		return string(k.Model) + "\x00" + k.Query
	})
}

// Retriever ranks indexed feedback by cosine similarity to a query.
type Retriever struct {
	index        *index.Index
	encoder      embeddings.Encoder
	queryCache   *QueryCache
	cacheMetrics observability.CacheMetrics
	logger       *slog.Logger
}

// RetrieverParams configures Retriever. QueryCache and CacheMetrics may be nil (no caching).
type RetrieverParams struct {
	Index        *index.Index
	Encoder      embeddings.Encoder
	QueryCache   *QueryCache
	CacheMetrics observability.CacheMetrics
	Logger       *slog.Logger
}

// NewRetriever creates a Retriever. The encoder must produce vectors in the same embedding space the
// index was built with.
func NewRetriever(p RetrieverParams) (*Retriever, error) {
	if got, want := p.Encoder.Model(), p.Index.Model(); got != want {
		return nil, insighterrors.NewEmbeddingError(string(want),
			fmt.Sprintf("query encoder reports model %q", got), insighterrors.ErrModelMismatch)
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Retriever{
		index:        p.Index,
		encoder:      p.Encoder,
		queryCache:   p.QueryCache,
		cacheMetrics: p.CacheMetrics,
		logger:       logger,
	}, nil
}

// Retrieve returns up to topK feedback items most similar to query, best first.
// topK <= 0, a blank query or an empty index yield an empty result without calling the encoder.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedFeedback, error) {
	query = strings.TrimSpace(query)
	if topK <= 0 || query == "" || r.index.Len() == 0 {
		return []models.RetrievedFeedback{}, nil
	}

	if got, want := r.encoder.Model(), r.index.Model(); got != want {
		return nil, insighterrors.NewEmbeddingError(string(want),
			fmt.Sprintf("query encoder reports model %q", got), insighterrors.ErrModelMismatch)
	}

	start := time.Now()

	var (
		vec []float32
		err error
	)

	if r.queryCache != nil {
		vec, err = r.queryEmbeddingCached(ctx, query)
	} else {
		vec, err = r.encodeQuery(ctx, query)
	}

	if err != nil {
		r.logger.Error("retrieve: query embedding failed", "error", err, "model", string(r.index.Model()))

		return nil, err
	}

	if dim := r.index.Dimensions(); dim > 0 && len(vec) != dim {
		return nil, insighterrors.NewEmbeddingError(string(r.index.Model()),
			fmt.Sprintf("query vector has %d dimensions, index has %d", len(vec), dim), nil)
	}

	matches := r.index.Nearest(vec, topK)

	out := make([]models.RetrievedFeedback, len(matches))
	for i, m := range matches {
		out[i] = models.RetrievedFeedback{Position: m.Position, Text: m.Text, Score: m.Score}
	}

	attrs := []any{"top_k", topK, "returned", len(out), "duration_ms", time.Since(start).Milliseconds()}
	if r.queryCache != nil {
		attrs = append(attrs, "query_cache_entries", r.queryCache.Len())
	}

	r.logger.Debug("retrieve: ranked feedback", attrs...)

	return out, nil
}

// RetrieveTexts is Retrieve reduced to the feedback texts in rank order.
func (r *Retriever) RetrieveTexts(ctx context.Context, query string, topK int) ([]string, error) {
	results, err := r.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	return models.Texts(results), nil
}

// encodeQuery returns the unit-length embedding of query.
func (r *Retriever) encodeQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := r.encoder.Encode(ctx, []string{query})
	if err != nil {
		return nil, insighterrors.NewEmbeddingError(string(r.index.Model()), "encode query", err)
	}

	if len(vectors) != 1 {
		return nil, insighterrors.NewEmbeddingError(string(r.index.Model()),
			fmt.Sprintf("encoder returned %d vectors for 1 query", len(vectors)), nil)
	}

	vec := slices.Clone(vectors[0])
	embeddings.NormalizeL2(vec)

	return vec, nil
}

func (r *Retriever) queryEmbeddingCached(ctx context.Context, query string) ([]float32, error) {
	key := QueryKey{Model: r.index.Model(), Query: query}

	vec, hit, err := r.queryCache.Get(ctx, key, func(ctx context.Context, k QueryKey) ([]float32, error) {
		return r.encodeQuery(ctx, k.Query)
	})
	if err != nil {
		//nolint:wrapcheck // already an EmbeddingError
		return nil, err
	}

	if r.cacheMetrics != nil {
		if hit {
			r.cacheMetrics.RecordHit(ctx, queryEmbeddingCacheName)
		} else {
			r.cacheMetrics.RecordMiss(ctx, queryEmbeddingCacheName)
		}
	}

	return vec, nil
}
