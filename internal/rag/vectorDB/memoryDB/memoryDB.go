package memoryDB

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
)

type collection struct {
	dim    int
	points map[string]commonModels.EmbeddedPoint
}

// Store is the last-resort in-process index. Writes are serialized and reads
// run concurrently. Scores are synthetic: 1/(rank+1) after cosine ordering.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

func New() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) Name() string                     { return "memory" }
func (s *Store) Available(_ context.Context) bool { return true }
func (s *Store) Durable() bool                    { return false }

func (s *Store) EnsureCollection(_ context.Context, name string, dim int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		s.collections[name] = &collection{dim: dim, points: make(map[string]commonModels.EmbeddedPoint)}
	}
	return nil
}

// Upsert rejects the whole batch when any vector disagrees with the
// collection's dimension; nothing is written in that case.
func (s *Store) Upsert(_ context.Context, name string, points []commonModels.EmbeddedPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	dim := 0
	if ok {
		dim = c.dim
	}
	for _, p := range points {
		if dim == 0 {
			dim = len(p.Vector)
		}
		if len(p.Vector) != dim {
			return fmt.Errorf("point %s has dimension %d, collection expects %d", p.ID, len(p.Vector), dim)
		}
	}

	if !ok {
		c = &collection{points: make(map[string]commonModels.EmbeddedPoint)}
		s.collections[name] = c
	}
	c.dim = dim
	for _, p := range points {
		vec := make([]float32, len(p.Vector))
		copy(vec, p.Vector)
		p.Vector = vec
		c.points[p.ID] = p
	}
	return nil
}

func (s *Store) Search(_ context.Context, name string, vector []float32, k int, filters commonModels.Filters) ([]commonModels.RetrievedSnippet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok || len(c.points) == 0 {
		return []commonModels.RetrievedSnippet{}, nil
	}

	type scored struct {
		point commonModels.EmbeddedPoint
		sim   float64
	}
	candidates := make([]scored, 0, len(c.points))
	for _, p := range c.points {
		if !filters.Matches(p.Payload) {
			continue
		}
		candidates = append(candidates, scored{point: p, sim: cosine(vector, p.Vector)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].sim == candidates[j].sim {
			return candidates[i].point.ID < candidates[j].point.ID
		}
		return candidates[i].sim > candidates[j].sim
	})

	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}
	out := make([]commonModels.RetrievedSnippet, len(candidates))
	for rank, cand := range candidates {
		out[rank] = commonModels.RetrievedSnippet{
			ID:      cand.point.ID,
			Score:   float32(1 / float64(rank+1)),
			Payload: cand.point.Payload,
		}
	}
	return out, nil
}

func (s *Store) Count(_ context.Context, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return 0, nil
	}
	return len(c.points), nil
}

func (s *Store) Dimensions(_ context.Context, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[name]; ok {
		return c.dim, nil
	}
	return 0, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
