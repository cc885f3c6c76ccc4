package embedding

import (
	"context"
	"fmt"

	"github.com/akolanti/PersonaRAG/internal/metrics"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
)

// Router delegates to the first available provider of a static priority list.
// A failing call is returned to the caller; it is never replayed on the next tier.
type Router struct {
	providers []Provider
	logger    *logger_i.Logger
}

func NewRouter(providers ...Provider) *Router {
	var usable []Provider
	for _, p := range providers {
		if p != nil {
			usable = append(usable, p)
		}
	}
	return &Router{providers: usable, logger: logger_i.NewLogger("embedding_router")}
}

func (r *Router) Select(ctx context.Context) (Provider, error) {
	for _, p := range r.providers {
		if p.Available(ctx) {
			return p, nil
		}
		r.logger.WithTrace(ctx).Debug("embedding provider unavailable", "provider", p.Name())
	}
	return nil, ErrNoProvider
}

func (r *Router) Embed(ctx context.Context, text string) ([]float32, error) {
	p, err := r.Select(ctx)
	if err != nil {
		return nil, err
	}
	metrics.ProviderSelected("embedding", p.Name())
	vec, err := p.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding provider %s: %w", p.Name(), err)
	}
	return vec, nil
}

func (r *Router) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	p, err := r.Select(ctx)
	if err != nil {
		return nil, err
	}
	metrics.ProviderSelected("embedding", p.Name())
	vectors, err := p.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding provider %s: %w", p.Name(), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding provider %s: got %d vectors for %d texts: %w", p.Name(), len(vectors), len(texts), ErrEmptyResponse)
	}
	return vectors, nil
}

// Names lists the configured chain in priority order.
func (r *Router) Names() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return names
}
