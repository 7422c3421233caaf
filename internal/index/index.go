// Package index holds the in-memory embedding index built once over the feedback corpus.
package index

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/quickcommerce/insights/internal/embeddings"
	"github.com/quickcommerce/insights/internal/insighterrors"
)

// DefaultBatchSize is the number of texts sent to the encoder per call.
const DefaultBatchSize = 64

// Entry is one feedback item and its embedding. Position is the item's index in the loaded corpus.
// Vector is unit length when Encoded, and all zeros for a blank text that was never sent to the encoder.
type Entry struct {
	Position int
	Text     string
	Vector   []float32
	Encoded  bool
}

// Index is an immutable set of entries encoded with a single embedding model.
// It is safe for concurrent reads.
type Index struct {
	model   embeddings.ModelID
	dim     int
	entries []Entry
}

// BuildOptions tunes Build.
type BuildOptions struct {
	BatchSize int
	Logger    *slog.Logger
}

// Build encodes every corpus item with encoder and returns the index. The encoder must report
// model, otherwise the build fails with an EmbeddingError wrapping ErrModelMismatch.
// Blank texts are not sent to the encoder; they get a zero vector and Nearest ranks them after
// every encoded entry.
func Build(
	ctx context.Context, encoder embeddings.Encoder, model embeddings.ModelID, corpus []string, opts BuildOptions,
) (*Index, error) {
	if got := encoder.Model(); got != model {
		return nil, insighterrors.NewEmbeddingError(string(model),
			fmt.Sprintf("encoder reports model %q", got), insighterrors.ErrModelMismatch)
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()

	idx := &Index{model: model, entries: make([]Entry, len(corpus))}

	var pending []int

	for i, text := range corpus {
		idx.entries[i] = Entry{Position: i, Text: text}
		if strings.TrimSpace(text) != "" {
			pending = append(pending, i)
		}
	}

	for lo := 0; lo < len(pending); lo += batchSize {
		hi := min(lo+batchSize, len(pending))
		batch := pending[lo:hi]

		texts := make([]string, len(batch))
		for j, pos := range batch {
			texts[j] = corpus[pos]
		}

		vectors, err := encoder.Encode(ctx, texts)
		if err != nil {
			return nil, insighterrors.NewEmbeddingError(string(model),
				fmt.Sprintf("encode batch %d-%d", batch[0], batch[len(batch)-1]), err)
		}

		if len(vectors) != len(texts) {
			return nil, insighterrors.NewEmbeddingError(string(model),
				fmt.Sprintf("encoder returned %d vectors for %d texts", len(vectors), len(texts)), nil)
		}

		for j, vec := range vectors {
			if err := idx.checkDim(len(vec)); err != nil {
				return nil, err
			}

			embeddings.NormalizeL2(vec)
			idx.entries[batch[j]].Vector = vec
			idx.entries[batch[j]].Encoded = true
		}
	}

	for i := range idx.entries {
		if idx.entries[i].Vector == nil {
			idx.entries[i].Vector = make([]float32, idx.dim)
		}
	}

	logger.Info("embedding index built",
		"model", string(model),
		"entries", len(idx.entries),
		"encoded", len(pending),
		"dimensions", idx.dim,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return idx, nil
}

func (idx *Index) checkDim(n int) error {
	if n == 0 {
		return insighterrors.NewEmbeddingError(string(idx.model), "encoder returned an empty vector", nil)
	}

	if idx.dim == 0 {
		idx.dim = n

		return nil
	}

	if n != idx.dim {
		return insighterrors.NewEmbeddingError(string(idx.model),
			fmt.Sprintf("inconsistent vector dimension: got %d, want %d", n, idx.dim), nil)
	}

	return nil
}

// Model returns the embedding model the index was built with.
func (idx *Index) Model() embeddings.ModelID { return idx.model }

// Dimensions returns the vector length, or 0 for an index with no encoded entries.
func (idx *Index) Dimensions() int { return idx.dim }

// Len returns the number of entries.
func (idx *Index) Len() int { return len(idx.entries) }

// Match is an entry scored against a query.
type Match struct {
	Position int
	Text     string
	Score    float64
}

// Nearest scores every entry against query by dot product and returns the best k, ordered by
// descending score with ties broken by ascending position. Blank entries come after all encoded
// ones whatever their score, so a negative cosine never loses to an empty row. query must already
// be unit length for scores to be cosine similarities. k <= 0 or an empty index yields an empty slice.
func (idx *Index) Nearest(query []float32, k int) []Match {
	if k <= 0 || len(idx.entries) == 0 {
		return []Match{}
	}

	type scored struct {
		Match
		encoded bool
	}

	ranked := make([]scored, len(idx.entries))
	for i, e := range idx.entries {
		ranked[i] = scored{
			Match:   Match{Position: e.Position, Text: e.Text, Score: embeddings.Dot(query, e.Vector)},
			encoded: e.Encoded,
		}
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		if a.encoded != b.encoded {
			if a.encoded {
				return -1
			}

			return 1
		}

		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}

		return cmp.Compare(a.Position, b.Position)
	})

	out := make([]Match, min(k, len(ranked)))
	for i := range out {
		out[i] = ranked[i].Match
	}

	return out
}
