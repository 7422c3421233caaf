// Package openai provides a thin wrapper around the official OpenAI Go SDK for embeddings and
// chat completions. Any OpenAI-compatible endpoint (e.g. Groq) can be targeted via WithBaseURL.
package openai

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/quickcommerce/insights/internal/embeddings"
)

var (
	// ErrEmptyInput is returned when Encode is called with a blank text.
	ErrEmptyInput = errors.New("openai: input text is empty")
	// ErrEmbeddingCount is returned when the response holds a different number of vectors than inputs.
	ErrEmbeddingCount = errors.New("openai: unexpected number of embeddings in response")
	// ErrDimensionMismatch is returned when the response embedding length does not match configured dimensions.
	ErrDimensionMismatch = errors.New("openai: embedding dimension mismatch")
	// ErrNoChoices is returned when a chat completion response has no choices.
	ErrNoChoices = errors.New("openai: no choices in completion response")
)

const defaultEmbeddingModel = "text-embedding-3-small"

// Client calls an OpenAI-compatible API via the official SDK.
type Client struct {
	sdk        openaisdk.Client
	model      string
	dimensions int
	baseURL    string
	maxRetries *int
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithModel sets the embedding model name. Empty keeps the default (text-embedding-3-small).
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithDimensions requests a specific embedding dimension. 0 uses the model's native size.
func WithDimensions(dim int) ClientOption {
	return func(c *Client) {
		c.dimensions = dim
	}
}

// WithBaseURL points the client at an OpenAI-compatible endpoint. Empty keeps the SDK default.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithMaxRetries overrides the SDK's automatic retry count. 0 disables retries.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = &n
	}
}

// NewClient creates a client using the official SDK.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{model: defaultEmbeddingModel}

	for _, opt := range opts {
		opt(client)
	}

	sdkOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if client.baseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(client.baseURL))
	}

	if client.maxRetries != nil {
		sdkOpts = append(sdkOpts, option.WithMaxRetries(*client.maxRetries))
	}

	client.sdk = openaisdk.NewClient(sdkOpts...)

	return client
}

// Model returns the embedding space identity: the model name, suffixed with the requested
// dimensions when they are pinned (e.g. "text-embedding-3-small@512").
func (c *Client) Model() embeddings.ModelID {
	if c.dimensions > 0 {
		return embeddings.ModelID(c.model + "@" + strconv.Itoa(c.dimensions))
	}

	return embeddings.ModelID(c.model)
}

// Encode returns one embedding per input text in a single batched request, in input order.
func (c *Client) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("%w (index %d)", ErrEmptyInput, i)
		}
	}

	params := openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: openaisdk.EmbeddingModel(c.model),
	}
	if c.dimensions > 0 {
		params.Dimensions = param.NewOpt(int64(c.dimensions))
	}

	resp, err := c.sdk.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrEmbeddingCount, len(resp.Data), len(texts))
	}

	// The API tags each vector with its input index; do not rely on response order.
	data := slices.Clone(resp.Data)
	slices.SortFunc(data, func(a, b openaisdk.Embedding) int {
		return int(a.Index - b.Index)
	})

	out := make([][]float32, len(data))
	for i := range data {
		emb := data[i].Embedding
		if c.dimensions > 0 && len(emb) != c.dimensions {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(emb), c.dimensions)
		}

		vec := make([]float32, len(emb))
		for j := range emb {
			vec[j] = float32(emb[j])
		}

		out[i] = vec
	}

	return out, nil
}

// CompleteChat sends prompt as a single user message and returns the content of the first choice.
// It returns ErrNoChoices when the response has none.
func (c *Client) CompleteChat(ctx context.Context, model, prompt string, temperature float64) (string, error) {
	completion, err := c.sdk.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
		Temperature: param.NewOpt(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", ErrNoChoices
	}

	return completion.Choices[0].Message.Content, nil
}

// Ensure Client implements embeddings.Encoder.
var _ embeddings.Encoder = (*Client)(nil)
