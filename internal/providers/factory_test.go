package providers

import (
	"context"
	"testing"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settings(values map[string]string) config.Settings {
	return config.FromLookup(func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	})
}

func TestBuild_NothingConfigured(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	set := Build(ctx, settings(map[string]string{"LOCAL_INDEX_PATH": t.TempDir()}))

	assert.Equal(t, []string{"hash"}, set.Embedder.Names())
	assert.Empty(t, set.Generator.Names())
	assert.Equal(t, "demo", set.Generator.Select().Name())
	assert.Nil(t, set.Moderator)
	assert.Equal(t, config.DefaultCollectionName, set.Collection)
}

func TestBuild_OrderFollowsConfig(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	set := Build(ctx, settings(map[string]string{
		"LOCAL_INDEX_PATH":     t.TempDir(),
		"GENERATION_PROVIDERS": "anthropic,openrouter,unknown",
		"EMBEDDING_PROVIDERS":  "openai,hash",
		"ANTHROPIC_API_KEY":    "sk-ant-test",
		"OPENROUTER_API_KEY":   "sk-or-test",
		"OPENAI_API_KEY":       "sk-test",
		"MODERATION_ENABLED":   "false",
	}))

	assert.Equal(t, []string{"anthropic", "openrouter"}, set.Generator.Names())
	assert.Equal(t, "anthropic", set.Generator.Select().Name())
	assert.Equal(t, []string{"openai", "hash"}, set.Embedder.Names())
	assert.Nil(t, set.Moderator)
}

func TestGeneration_SkipsProvidersWithoutCredentials(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := Generation(ctx, config.ProviderConfig{
		GenerationOrder: []string{"huggingface", "openrouter", "openai", "anthropic", "gemini", "ollama"},
		OpenAIAPIKey:    "sk-test",
	})

	assert.Equal(t, []string{"openai"}, r.Names())
	assert.Equal(t, "openai", r.Select().Name())
}

func TestVectorStore_FallsBackToMemory(t *testing.T) {
	ctx := context.Background()
	store := VectorStore(ctx, config.StoreConfig{})

	require.NoError(t, store.Upsert(ctx, "c", []commonModels.EmbeddedPoint{{
		ID:      "6f1c1f3e-8a8e-5d7e-9b61-0a1f2b3c4d5e",
		Vector:  []float32{1, 0},
		Payload: commonModels.Payload{SourceTitle: "Gita", Book: "Bhagavad Gita"},
	}}))
	hits := store.Search(ctx, "c", []float32{1, 0}, 3, commonModels.Filters{})
	require.Len(t, hits, 1)
	assert.Equal(t, "Gita", hits[0].Payload.SourceTitle)
}
