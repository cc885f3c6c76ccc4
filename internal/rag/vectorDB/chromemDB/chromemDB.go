package chromemDB

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
	"github.com/philippgille/chromem-go"
)

var errNoEmbedding = errors.New("chromem: embeddings must be computed before upsert")

// Index is the local nearest-neighbour index persisted to disk by chromem-go.
type Index struct {
	db     *chromem.DB
	logger *logger_i.Logger

	// chromem keeps no per-collection vector size, so it is remembered
	// from EnsureCollection and Upsert.
	mu   sync.RWMutex
	dims map[string]int
}

// NewPersistent opens (or creates) the index under path.
func NewPersistent(path string, compress bool) (*Index, error) {
	db, err := chromem.NewPersistentDB(path, compress)
	if err != nil {
		return nil, fmt.Errorf("failed to open local index at %s: %w", path, err)
	}
	return &Index{db: db, logger: logger_i.NewLogger("chromem_index"), dims: map[string]int{}}, nil
}

// NewInMemory keeps the index in memory only. It still acts as the primary
// write target of the chain.
func NewInMemory() *Index {
	return &Index{db: chromem.NewDB(), logger: logger_i.NewLogger("chromem_index"), dims: map[string]int{}}
}

func (i *Index) Name() string                     { return "local" }
func (i *Index) Available(_ context.Context) bool { return i != nil && i.db != nil }
func (i *Index) Durable() bool                    { return true }

func (i *Index) collection(name string) (*chromem.Collection, error) {
	return i.db.GetOrCreateCollection(name, nil, refuseEmbedding)
}

func refuseEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, errNoEmbedding
}

func (i *Index) EnsureCollection(_ context.Context, name string, dim int) error {
	if _, err := i.collection(name); err != nil {
		return err
	}
	i.rememberDim(name, dim)
	return nil
}

func (i *Index) rememberDim(name string, dim int) {
	if dim <= 0 {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.dims[name] == 0 {
		i.dims[name] = dim
	}
}

func (i *Index) Dimensions(_ context.Context, name string) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.dims[name], nil
}

func (i *Index) Upsert(ctx context.Context, name string, points []commonModels.EmbeddedPoint) error {
	c, err := i.collection(name)
	if err != nil {
		return err
	}
	docs := make([]chromem.Document, 0, len(points))
	for _, p := range points {
		if len(p.Vector) == 0 {
			return fmt.Errorf("point %s: %w", p.ID, errNoEmbedding)
		}
		vec := make([]float32, len(p.Vector))
		copy(vec, p.Vector)
		docs = append(docs, chromem.Document{
			ID:        p.ID,
			Content:   p.Payload.Body(),
			Metadata:  toMetadata(p.Payload),
			Embedding: vec,
		})
	}
	if err := c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return err
	}
	if len(points) > 0 {
		i.rememberDim(name, len(points[0].Vector))
	}
	i.logger.WithTrace(ctx).Debug("upserted into local index", "collection", name, "points", len(docs))
	return nil
}

// Search returns ErrEmptyCollection for a missing or empty collection so the
// router can fall through to the next backend.
func (i *Index) Search(ctx context.Context, name string, vector []float32, k int, filters commonModels.Filters) ([]commonModels.RetrievedSnippet, error) {
	c := i.db.GetCollection(name, refuseEmbedding)
	if c == nil || c.Count() == 0 {
		return nil, vectorDB.ErrEmptyCollection
	}

	var where map[string]string
	if filters.Tradition != "" {
		where = map[string]string{"tradition": filters.Tradition}
	}
	n := min(k, c.Count())
	if n <= 0 {
		return []commonModels.RetrievedSnippet{}, nil
	}
	results, err := c.QueryEmbedding(ctx, vector, n, where, nil)
	if err != nil {
		return nil, err
	}

	out := make([]commonModels.RetrievedSnippet, 0, len(results))
	for _, r := range results {
		out = append(out, commonModels.RetrievedSnippet{
			ID:      r.ID,
			Score:   r.Similarity,
			Payload: fromMetadata(r.Metadata, r.Content),
		})
	}
	return out, nil
}

func (i *Index) Count(_ context.Context, name string) (int, error) {
	c := i.db.GetCollection(name, refuseEmbedding)
	if c == nil {
		return 0, nil
	}
	return c.Count(), nil
}

func toMetadata(p commonModels.Payload) map[string]string {
	return map[string]string{
		"source_title": p.SourceTitle,
		"book":         p.Book,
		"tradition":    p.Tradition,
		"deity_groups": strings.Join(p.DeityGroups, ","),
		"category":     p.Category,
		"translator":   p.Translator,
		"language":     p.Language,
		"chapter":      p.Chapter,
		"verse":        p.Verse,
		"chunk_type":   string(p.ChunkType),
		"chunk_index":  strconv.Itoa(p.ChunkIndex),
		"total_chunks": strconv.Itoa(p.TotalChunks),
	}
}

func fromMetadata(m map[string]string, content string) commonModels.Payload {
	index, _ := strconv.Atoi(m["chunk_index"])
	total, _ := strconv.Atoi(m["total_chunks"])
	var groups []string
	if g := m["deity_groups"]; g != "" {
		groups = strings.Split(g, ",")
	}
	return commonModels.Payload{
		SourceTitle: m["source_title"],
		Book:        m["book"],
		Tradition:   m["tradition"],
		DeityGroups: groups,
		Category:    m["category"],
		Translator:  m["translator"],
		Language:    m["language"],
		Chapter:     m["chapter"],
		Verse:       m["verse"],
		Text:        commonModels.PreviewText(content, config.PayloadTextPreview),
		FullText:    content,
		ChunkType:   commonModels.ChunkType(m["chunk_type"]),
		ChunkIndex:  index,
		TotalChunks: total,
	}
}
