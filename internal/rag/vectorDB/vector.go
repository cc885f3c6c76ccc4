package vectorDB

import (
	"context"
	"errors"

	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
)

var (
	ErrNoBackend       = errors.New("vector store: no backend available")
	ErrEmptyCollection = errors.New("vector store: collection is empty")
)

// Backend is one storage engine in the fallback chain.
type Backend interface {
	Name() string
	Available(ctx context.Context) bool
	// Durable reports whether points outlive the process.
	Durable() bool
	EnsureCollection(ctx context.Context, collection string, dim int) error
	Upsert(ctx context.Context, collection string, points []commonModels.EmbeddedPoint) error
	Search(ctx context.Context, collection string, vector []float32, k int, filters commonModels.Filters) ([]commonModels.RetrievedSnippet, error)
	Count(ctx context.Context, collection string) (int, error)
	// Dimensions is 0 when the backend does not know the collection's size.
	Dimensions(ctx context.Context, collection string) (int, error)
}

// Store is what ingestion and the orchestrator depend on. Search never fails;
// an unavailable index yields an empty result.
type Store interface {
	EnsureCollection(ctx context.Context, collection string, dim int) error
	Upsert(ctx context.Context, collection string, points []commonModels.EmbeddedPoint) error
	Search(ctx context.Context, collection string, vector []float32, k int, filters commonModels.Filters) []commonModels.RetrievedSnippet
	Info(ctx context.Context, collection string) (commonModels.CollectionInfo, error)
}
