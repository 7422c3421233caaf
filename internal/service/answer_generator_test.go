package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcommerce/insights/internal/insighterrors"
	"github.com/quickcommerce/insights/internal/openai"
)

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("Why are customers unhappy?", []string{"Delivery was late", "Late delivery again"})

	want := "You are a business analyst for a quick-commerce company.\n" +
		"Based on the following customer feedback, answer the question concisely.\n\n" +
		"Question:\nWhy are customers unhappy?\n\n" +
		"Customer Feedback:\n- Delivery was late\n- Late delivery again\n\n" +
		"Answer with root causes and actionable insights.\n"

	assert.Equal(t, want, got)
}

func TestAnswerGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	passages := []string{"Delivery was late", "Late delivery again"}

	t.Run("returns trimmed answer and sends passages", func(t *testing.T) {
		client := &fakeCompletionClient{reply: "\n  Root cause: late deliveries.  \n"}
		gen := NewAnswerGenerator(AnswerGeneratorParams{Client: client})

		got, err := gen.Generate(ctx, "Why are customers unhappy?", passages)
		require.NoError(t, err)
		assert.Equal(t, "Root cause: late deliveries.", got)

		require.Len(t, client.prompts, 1)
		assert.Contains(t, client.prompts[0], "- Delivery was late\n- Late delivery again\n")
		assert.Equal(t, DefaultGenerationModel, gen.Model())
	})

	t.Run("api failure is a generation error", func(t *testing.T) {
		boom := errors.New("429 too many requests")
		gen := NewAnswerGenerator(AnswerGeneratorParams{Client: &fakeCompletionClient{err: boom}, Model: "m"})

		got, err := gen.Generate(ctx, "q", passages)
		assert.Empty(t, got)
		assert.ErrorIs(t, err, insighterrors.ErrGeneration)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("blank content is a generation error", func(t *testing.T) {
		gen := NewAnswerGenerator(AnswerGeneratorParams{Client: &fakeCompletionClient{reply: "   "}})

		_, err := gen.Generate(ctx, "q", passages)
		assert.ErrorIs(t, err, insighterrors.ErrGeneration)
	})
}

func TestAnswerGenerator_WithOpenAIClient(t *testing.T) {
	ctx := context.Background()

	t.Run("answer references late delivery", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), "Late delivery again")
			assert.Contains(t, string(body), "llama-3.1-8b-instant")

			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"llama-3.1-8b-instant",
				"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant",
				"content":"Customers are unhappy mainly because of late delivery. Add riders at peak hours."}}]}`)
		}))
		defer srv.Close()

		gen := NewAnswerGenerator(AnswerGeneratorParams{
			Client: openai.NewClient("k", openai.WithBaseURL(srv.URL+"/v1"), openai.WithMaxRetries(0)),
		})

		got, err := gen.Generate(ctx, "Why are customers unhappy?", []string{"Delivery was late", "Late delivery again"})
		require.NoError(t, err)
		assert.NotEmpty(t, got)
		assert.Contains(t, strings.ToLower(got), "late delivery")
	})

	t.Run("server error raises instead of returning", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":{"message":"upstream failure","type":"server_error"}}`)
		}))
		defer srv.Close()

		gen := NewAnswerGenerator(AnswerGeneratorParams{
			Client: openai.NewClient("k", openai.WithBaseURL(srv.URL+"/v1"), openai.WithMaxRetries(0)),
		})

		got, err := gen.Generate(ctx, "Why are customers unhappy?", []string{"Delivery was late"})
		assert.Empty(t, got)
		assert.ErrorIs(t, err, insighterrors.ErrGeneration)
	})
}
