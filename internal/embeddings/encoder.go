// Package embeddings defines the text encoder contract shared by index construction and query encoding.
package embeddings

import "context"

// ModelID identifies the embedding space a vector belongs to (provider model name plus dimensions).
// Vectors are only comparable when their ModelIDs are equal.
type ModelID string

// Encoder turns texts into embedding vectors.
type Encoder interface {
	// Model returns the identity of the embedding space this encoder produces.
	Model() ModelID

	// Encode returns one vector per input text, in input order.
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}
