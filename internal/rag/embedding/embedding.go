package embedding

import (
	"context"
	"errors"
)

var (
	ErrNoProvider    = errors.New("embedding: no provider available")
	ErrQuotaExceeded = errors.New("embedding: provider quota exceeded")
	ErrEmptyResponse = errors.New("embedding: provider returned no vectors")
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider is one backend in the embedding priority chain.
type Provider interface {
	Embedder
	Name() string
	Available(ctx context.Context) bool
	Dimensions() int
}
