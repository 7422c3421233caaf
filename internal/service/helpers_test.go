package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/quickcommerce/insights/internal/embeddings"
)

// keywordEncoder is a bag-of-words encoder over a fixed vocabulary. Plural "-ies"/"-s" forms
// fold onto the singular so "deliveries" matches "delivery".
type keywordEncoder struct {
	model embeddings.ModelID
	vocab map[string]int
	calls atomic.Int64
	err   error
}

func newKeywordEncoder(model embeddings.ModelID, words ...string) *keywordEncoder {
	vocab := make(map[string]int, len(words))
	for i, w := range words {
		vocab[w] = i
	}

	return &keywordEncoder{model: model, vocab: vocab}
}

var feedbackVocabulary = []string{
	"delivery", "late", "great", "service", "app", "crashed", "checkout", "loved", "discount",
	"customer", "unhappy", "again", "rude", "driver",
}

func (k *keywordEncoder) Model() embeddings.ModelID { return k.model }

func (k *keywordEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	k.calls.Add(1)

	if k.err != nil {
		return nil, k.err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(k.vocab))

		for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool { return !unicode.IsLetter(r) }) {
			if dim, ok := k.vocab[stem(tok)]; ok {
				vec[dim]++
			}
		}

		out[i] = vec
	}

	return out, nil
}

func stem(tok string) string {
	switch {
	case strings.HasSuffix(tok, "ies"):
		return strings.TrimSuffix(tok, "ies") + "y"
	case strings.HasSuffix(tok, "s") && len(tok) > 3:
		return strings.TrimSuffix(tok, "s")
	default:
		return tok
	}
}

type fakeCompletionClient struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (f *fakeCompletionClient) CompleteChat(_ context.Context, _, prompt string, _ float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, prompt)

	return f.reply, f.err
}

type fakeCacheMetrics struct {
	hits, misses atomic.Int64
}

func (f *fakeCacheMetrics) RecordHit(context.Context, string)  { f.hits.Add(1) }
func (f *fakeCacheMetrics) RecordMiss(context.Context, string) { f.misses.Add(1) }

type fakeAssistantMetrics struct {
	mu          sync.Mutex
	retrievals  int
	generations []string
	levels      []string
}

func (f *fakeAssistantMetrics) RecordRetrieval(context.Context, time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retrievals++
}

func (f *fakeAssistantMetrics) RecordGeneration(_ context.Context, status string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generations = append(f.generations, status)
}

func (f *fakeAssistantMetrics) RecordDelayPrediction(_ context.Context, level string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.levels = append(f.levels, level)
}
