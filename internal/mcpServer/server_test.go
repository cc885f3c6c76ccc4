package mcpServer

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/akolanti/PersonaRAG/internal/rag/persona"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB/memoryDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	err error
}

func (s stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, s.err
}

func (s stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, s.err
}

func seededServer(t *testing.T, emb stubEmbedder) *Server {
	t.Helper()
	ctx := context.Background()
	policy, err := persona.Load("")
	require.NoError(t, err)

	store := vectorDB.NewRouter(memoryDB.New())
	require.NoError(t, store.Upsert(ctx, "scripture", []commonModels.EmbeddedPoint{
		{ID: "a", Vector: []float32{1, 0}, Payload: commonModels.Payload{
			SourceTitle: "Bhagavad Gita", Book: "Bhagavad Gita", Tradition: "hindu", DeityGroups: []string{"krishna"},
			Chapter: "2", Verse: "47", FullText: "You have a right to perform your prescribed duty.",
		}},
		{ID: "b", Vector: []float32{0.9, 0.1}, Payload: commonModels.Payload{
			SourceTitle: "Gospel of Matthew", Book: "Gospel of Matthew", Tradition: "christian", DeityGroups: []string{"jesus"},
			FullText: "Blessed are the peacemakers.",
		}},
	}))
	return New(emb, store, policy, "scripture")
}

func TestHandleSearch_GuestSeesEverything(t *testing.T) {
	s := seededServer(t, stubEmbedder{})

	_, out, err := s.handleSearch(context.Background(), nil, SearchInput{Query: "duty"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, "a", out.Snippets[0].ID)
	assert.Equal(t, "You have a right to perform your prescribed duty.", out.Snippets[0].Text)
}

func TestHandleSearch_TraditionScopesResults(t *testing.T) {
	s := seededServer(t, stubEmbedder{})

	_, out, err := s.handleSearch(context.Background(), nil, SearchInput{Query: "peace", Tradition: "christian"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "Gospel of Matthew", out.Snippets[0].SourceTitle)
}

func TestHandleSearch_TraditionIsNormalized(t *testing.T) {
	s := seededServer(t, stubEmbedder{})

	_, out, err := s.handleSearch(context.Background(), nil, SearchInput{Query: "peace", Tradition: "ALL"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)

	_, out, err = s.handleSearch(context.Background(), nil, SearchInput{Query: "peace", Tradition: "  Christian "})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "Gospel of Matthew", out.Snippets[0].SourceTitle)

	_, _, err = s.handleSearch(context.Background(), nil, SearchInput{Query: "duty", Persona: "krishna", Tradition: "HINDU"})
	assert.NoError(t, err)
}

func TestHandleSearch_PersonaOutsideTradition(t *testing.T) {
	s := seededServer(t, stubEmbedder{})

	_, _, err := s.handleSearch(context.Background(), nil, SearchInput{Query: "duty", Persona: "krishna", Tradition: "christian"})
	assert.ErrorIs(t, err, persona.ErrNotPermitted)
}

func TestHandleSearch_Errors(t *testing.T) {
	s := seededServer(t, stubEmbedder{err: errors.New("quota")})

	_, _, err := s.handleSearch(context.Background(), nil, SearchInput{Query: "  "})
	assert.Error(t, err)

	_, _, err = s.handleSearch(context.Background(), nil, SearchInput{Query: "duty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestHandleListPersonas(t *testing.T) {
	s := seededServer(t, stubEmbedder{})

	_, out, err := s.handleListPersonas(context.Background(), nil, ListPersonasInput{Tradition: "hindu"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Personas)
	for _, p := range out.Personas {
		assert.Equal(t, "hindu", p.Tradition)
		assert.NotNil(t, p.Books)
	}
	assert.NotNil(t, s.Handler())
}
