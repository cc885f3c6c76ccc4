package vectorDB_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB/chromemDB"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB/memoryDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coll = "test_chunks"

// failingBackend simulates a configured remote service that is unreachable.
type failingBackend struct {
	searchCalls int
}

func (f *failingBackend) Name() string                     { return "remote" }
func (f *failingBackend) Available(_ context.Context) bool { return true }
func (f *failingBackend) Durable() bool                    { return true }
func (f *failingBackend) EnsureCollection(context.Context, string, int) error {
	return errors.New("dial tcp: connection refused")
}
func (f *failingBackend) Upsert(context.Context, string, []commonModels.EmbeddedPoint) error {
	return errors.New("dial tcp: connection refused")
}
func (f *failingBackend) Search(context.Context, string, []float32, int, commonModels.Filters) ([]commonModels.RetrievedSnippet, error) {
	f.searchCalls++
	return nil, errors.New("dial tcp: connection refused")
}
func (f *failingBackend) Count(context.Context, string) (int, error) {
	return 0, errors.New("dial tcp: connection refused")
}
func (f *failingBackend) Dimensions(context.Context, string) (int, error) {
	return 0, errors.New("dial tcp: connection refused")
}

func point(id string, vec []float32, book, tradition string, groups ...string) commonModels.EmbeddedPoint {
	return commonModels.EmbeddedPoint{
		ID:     id,
		Vector: vec,
		Payload: commonModels.Payload{
			SourceTitle: book,
			Book:        book,
			Tradition:   tradition,
			DeityGroups: groups,
			FullText:    "text of " + id,
		},
	}
}

func seed() []commonModels.EmbeddedPoint {
	return []commonModels.EmbeddedPoint{
		point("a", []float32{1, 0, 0}, "Bhagavad Gita", "hindu", "krishna", "vishnu"),
		point("b", []float32{0.9, 0.1, 0}, "Ramayana", "hindu", "rama", "hanuman"),
		point("c", []float32{0, 1, 0}, "Bible", "christian", "jesus", "mary"),
	}
}

func TestRouter_RemoteFailureFallsThroughToMemory(t *testing.T) {
	ctx := context.Background()
	remote := &failingBackend{}
	mem := memoryDB.New()
	r := vectorDB.NewRouter(mem, remote)

	err := r.Upsert(ctx, coll, seed())
	require.Error(t, err, "durable write failure must be surfaced")

	hits := r.Search(ctx, coll, []float32{1, 0, 0}, 2, commonModels.Filters{})
	assert.Equal(t, 1, remote.searchCalls)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestRouter_SearchNeverFailsWithoutBackends(t *testing.T) {
	r := vectorDB.NewRouter(nil, &failingBackend{})
	hits := r.Search(context.Background(), coll, []float32{1, 0, 0}, 3, commonModels.Filters{Tradition: "hindu"})
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestRouter_FiltersAreAppliedWhicheverBackendAnswers(t *testing.T) {
	ctx := context.Background()
	filters := commonModels.Filters{Tradition: "hindu", DeityGroup: "krishna", Books: []string{"Bhagavad Gita", "Mahabharata"}}

	local := chromemDB.NewInMemory()
	viaLocal := vectorDB.NewRouter(memoryDB.New(), local)
	require.NoError(t, viaLocal.Upsert(ctx, coll, seed()))

	viaMemory := vectorDB.NewRouter(memoryDB.New())
	require.NoError(t, viaMemory.Upsert(ctx, coll, seed()))

	for name, r := range map[string]*vectorDB.Router{"local": viaLocal, "memory": viaMemory} {
		hits := r.Search(ctx, coll, []float32{1, 0, 0}, 5, filters)
		require.Len(t, hits, 1, name)
		assert.Equal(t, "a", hits[0].ID, name)
	}
}

func TestRouter_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	local := chromemDB.NewInMemory()
	mem := memoryDB.New()
	r := vectorDB.NewRouter(mem, local)

	require.NoError(t, r.Upsert(ctx, coll, seed()))
	require.NoError(t, r.Upsert(ctx, coll, seed()))

	info, err := r.Info(ctx, coll)
	require.NoError(t, err)
	assert.Equal(t, 3, info.Points)
	assert.Equal(t, 3, info.Dimensions)
	assert.Equal(t, "local", info.Backend)

	n, err := mem.Count(ctx, coll)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRouter_EmptyLocalIndexFallsThrough(t *testing.T) {
	ctx := context.Background()
	local := chromemDB.NewInMemory()
	mem := memoryDB.New()
	require.NoError(t, mem.Upsert(ctx, coll, seed()))

	r := vectorDB.NewRouter(mem, local)
	hits := r.Search(ctx, coll, []float32{0, 1, 0}, 1, commonModels.Filters{})
	require.Len(t, hits, 1)
	assert.Equal(t, "c", hits[0].ID)
}

func TestMemory_SyntheticScoresStrictlyDecrease(t *testing.T) {
	ctx := context.Background()
	mem := memoryDB.New()
	var points []commonModels.EmbeddedPoint
	for i := 0; i < 6; i++ {
		points = append(points, point(fmt.Sprintf("p%d", i), []float32{1, float32(i), 0}, "Bible", "christian"))
	}
	require.NoError(t, mem.Upsert(ctx, coll, points))

	hits, err := mem.Search(ctx, coll, []float32{1, 0, 0}, 6, commonModels.Filters{})
	require.NoError(t, err)
	require.Len(t, hits, 6)
	assert.Equal(t, "p0", hits[0].ID)
	for i := 1; i < len(hits); i++ {
		assert.Less(t, hits[i].Score, hits[i-1].Score)
	}
}

func TestMemory_RejectsDimensionMismatch(t *testing.T) {
	mem := memoryDB.New()
	ctx := context.Background()
	require.NoError(t, mem.Upsert(ctx, coll, []commonModels.EmbeddedPoint{point("a", []float32{1, 0}, "Bible", "christian")}))
	assert.Error(t, mem.Upsert(ctx, coll, []commonModels.EmbeddedPoint{point("b", []float32{1, 0, 0}, "Bible", "christian")}))
}

func TestRouter_InfoTakesDimensionFromAnyBackend(t *testing.T) {
	ctx := context.Background()
	local := chromemDB.NewInMemory()
	mem := memoryDB.New()
	require.NoError(t, mem.Upsert(ctx, coll, seed()))

	// the local index holds nothing for this collection and has never seen its vectors
	r := vectorDB.NewRouter(mem, local)
	info, err := r.Info(ctx, coll)
	require.NoError(t, err)
	assert.Equal(t, "local", info.Backend)
	assert.Zero(t, info.Points)
	assert.Equal(t, 3, info.Dimensions)
}
