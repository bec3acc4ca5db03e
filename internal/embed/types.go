// Package embed computes dense vector embeddings for chunk text. The
// service treats an embedder as a pure function text → float32[D] with a
// fixed dimension; implementations must be deterministic so that index
// rebuilds reproduce the vectors the store already holds.
package embed

import "context"

// DefaultDimensions matches the all-MiniLM-L6-v2 class of sentence
// embedding models the service is tuned for.
const DefaultDimensions = 384

// Embedder generates embeddings for text.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension D.
	Dimensions() int

	// ModelName identifies the underlying model.
	ModelName() string
}
