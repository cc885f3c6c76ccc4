package vectorDB

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/akolanti/PersonaRAG/internal/metrics"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
)

// Router walks a prioritized chain of backends. The last backend is the
// in-process fallback and receives a mirror of every upsert.
type Router struct {
	chain    []Backend
	fallback Backend
	logger   *logger_i.Logger
}

// NewRouter builds the chain in search order followed by the in-process fallback.
func NewRouter(fallback Backend, chain ...Backend) *Router {
	var usable []Backend
	for _, b := range chain {
		if b != nil {
			usable = append(usable, b)
		}
	}
	return &Router{chain: usable, fallback: fallback, logger: logger_i.NewLogger("vector_store")}
}

func (r *Router) backends() []Backend {
	all := append([]Backend{}, r.chain...)
	if r.fallback != nil {
		all = append(all, r.fallback)
	}
	return all
}

func (r *Router) EnsureCollection(ctx context.Context, collection string, dim int) error {
	var errs []error
	for _, b := range r.backends() {
		if !b.Available(ctx) {
			continue
		}
		if err := b.EnsureCollection(ctx, collection, dim); err != nil {
			r.logger.WithTrace(ctx).Warn("ensure collection failed", "backend", b.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Upsert writes the first available durable backend and mirrors into the
// in-process fallback. A durable write failure is returned.
func (r *Router) Upsert(ctx context.Context, collection string, points []commonModels.EmbeddedPoint) error {
	if len(points) == 0 {
		return nil
	}
	log := r.logger.WithTrace(ctx)

	var durableErr error
	wrote := false
	for _, b := range r.chain {
		if !b.Durable() || !b.Available(ctx) {
			continue
		}
		if err := b.Upsert(ctx, collection, points); err != nil {
			log.Error("durable upsert failed", "backend", b.Name(), "error", err)
			metrics.VectorBackendFallback(b.Name(), "upsert")
			durableErr = fmt.Errorf("%s upsert: %w", b.Name(), err)
		} else {
			wrote = true
		}
		break
	}

	if r.fallback != nil {
		if err := r.fallback.Upsert(ctx, collection, points); err != nil {
			log.Warn("in-process mirror upsert failed", "error", err)
			if !wrote && durableErr == nil {
				return err
			}
		}
	} else if !wrote && durableErr == nil {
		return ErrNoBackend
	}
	return durableErr
}

// Search asks each backend in order and falls through on any error. Filters
// are re-applied to whatever a backend returns so semantics do not depend on
// which backend answered.
func (r *Router) Search(ctx context.Context, collection string, vector []float32, k int, filters commonModels.Filters) []commonModels.RetrievedSnippet {
	if k <= 0 {
		k = config.DefaultTopK
	}
	fetch := k
	if !filters.IsEmpty() {
		fetch = max(k*config.FilterOverFetchFactor, config.MinFilterOverFetch)
	}
	log := r.logger.WithTrace(ctx)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	for _, b := range r.backends() {
		if err := ctx.Err(); err != nil {
			log.Warn("search cancelled", "error", err)
			return []commonModels.RetrievedSnippet{}
		}
		if !b.Available(ctx) {
			log.Debug("vector backend unavailable", "backend", b.Name())
			continue
		}
		hits, err := b.Search(ctx, collection, vector, fetch, filters)
		if err != nil {
			log.Warn("vector backend search failed, falling through", "backend", b.Name(), "error", err)
			metrics.VectorBackendFallback(b.Name(), "search")
			continue
		}
		log.Debug("vector search served", "backend", b.Name(), "hits", len(hits))
		return applyFilters(hits, filters, k)
	}

	log.Warn("no vector backend answered, continuing without context")
	return []commonModels.RetrievedSnippet{}
}

func (r *Router) Info(ctx context.Context, collection string) (commonModels.CollectionInfo, error) {
	for _, b := range r.backends() {
		if !b.Available(ctx) {
			continue
		}
		n, err := b.Count(ctx, collection)
		if err != nil {
			continue
		}
		return commonModels.CollectionInfo{
			Name:       collection,
			Points:     n,
			Dimensions: r.dimensions(ctx, collection, b),
			Backend:    b.Name(),
		}, nil
	}
	return commonModels.CollectionInfo{}, ErrNoBackend
}

// dimensions prefers the answering backend and otherwise takes the first
// backend that knows the collection's vector size.
func (r *Router) dimensions(ctx context.Context, collection string, first Backend) int {
	if dim, err := first.Dimensions(ctx, collection); err == nil && dim > 0 {
		return dim
	}
	for _, b := range r.backends() {
		if b == first || !b.Available(ctx) {
			continue
		}
		if dim, err := b.Dimensions(ctx, collection); err == nil && dim > 0 {
			return dim
		}
	}
	return 0
}

func applyFilters(hits []commonModels.RetrievedSnippet, filters commonModels.Filters, k int) []commonModels.RetrievedSnippet {
	out := make([]commonModels.RetrievedSnippet, 0, min(len(hits), k))
	for _, h := range hits {
		if !filters.Matches(h.Payload) {
			continue
		}
		out = append(out, h)
		if len(out) == k {
			break
		}
	}
	return out
}
