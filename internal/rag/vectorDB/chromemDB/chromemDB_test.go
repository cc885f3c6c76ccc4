package chromemDB

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_UpsertSearchRoundTrip(t *testing.T) {
	ctx := context.Background()
	idx := NewInMemory()
	payload := commonModels.Payload{
		SourceTitle: "Bhagavad Gita",
		Book:        "Bhagavad Gita",
		Tradition:   "hindu",
		DeityGroups: []string{"krishna", "vishnu"},
		Chapter:     "2",
		Verse:       "47",
		FullText:    "You have a right to perform your prescribed duty.",
		ChunkType:   commonModels.ChunkVerse,
		ChunkIndex:  3,
		TotalChunks: 9,
	}
	points := []commonModels.EmbeddedPoint{
		{ID: "p1", Vector: []float32{1, 0, 0}, Payload: payload},
		{ID: "p2", Vector: []float32{0, 1, 0}, Payload: commonModels.Payload{SourceTitle: "Psalms", Tradition: "christian", FullText: "The Lord is my shepherd."}},
	}
	require.NoError(t, idx.EnsureCollection(ctx, "c", 3))
	require.NoError(t, idx.Upsert(ctx, "c", points))
	require.NoError(t, idx.Upsert(ctx, "c", points[:1]))

	n, err := idx.Count(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	hits, err := idx.Search(ctx, "c", []float32{1, 0, 0}, 2, commonModels.Filters{})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "p1", hits[0].ID)
	assert.Equal(t, payload.DeityGroups, hits[0].Payload.DeityGroups)
	assert.Equal(t, "47", hits[0].Payload.Verse)
	assert.Equal(t, 3, hits[0].Payload.ChunkIndex)
	assert.Equal(t, payload.FullText, hits[0].Payload.Body())

	hits, err = idx.Search(ctx, "c", []float32{1, 0, 0}, 1, commonModels.Filters{Tradition: "christian"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p2", hits[0].ID)
}

func TestIndex_EmptyCollectionFallsThrough(t *testing.T) {
	idx := NewInMemory()
	_, err := idx.Search(context.Background(), "nothing", []float32{1, 0}, 3, commonModels.Filters{})
	assert.True(t, errors.Is(err, vectorDB.ErrEmptyCollection))
}

func TestIndex_RejectsPointsWithoutVectors(t *testing.T) {
	idx := NewInMemory()
	err := idx.Upsert(context.Background(), "c", []commonModels.EmbeddedPoint{{ID: "x"}})
	assert.ErrorIs(t, err, errNoEmbedding)
}
