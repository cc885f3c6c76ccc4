package providers

import (
	"context"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/rag/embedding"
	"github.com/akolanti/PersonaRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/PersonaRAG/internal/rag/embedding/hashEmbedding"
	"github.com/akolanti/PersonaRAG/internal/rag/embedding/ollamaEmbedding"
	"github.com/akolanti/PersonaRAG/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/PersonaRAG/internal/rag/llm"
	"github.com/akolanti/PersonaRAG/internal/rag/llm/anthropicLLM"
	"github.com/akolanti/PersonaRAG/internal/rag/llm/gemini"
	"github.com/akolanti/PersonaRAG/internal/rag/llm/huggingface"
	"github.com/akolanti/PersonaRAG/internal/rag/llm/ollamaLLM"
	"github.com/akolanti/PersonaRAG/internal/rag/llm/openaiLLM"
	"github.com/akolanti/PersonaRAG/internal/rag/moderation"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB/chromemDB"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
)

// Set is every external dependency the chat and ingestion paths need, built
// once from Settings. Clients are released when the build context ends.
type Set struct {
	Embedder   *embedding.Router
	Generator  *llm.Router
	Store      *vectorDB.Router
	Moderator  moderation.Moderator
	Collection string
}

func Build(ctx context.Context, s config.Settings) Set {
	return Set{
		Embedder:   Embedding(ctx, s.Providers),
		Generator:  Generation(ctx, s.Providers),
		Store:      VectorStore(ctx, s.Store),
		Moderator:  moderation.NewOpenAI(s.Providers.ModerationEnabled, s.Providers.OpenAIAPIKey, ""),
		Collection: s.Store.Collection,
	}
}

// Embedding builds the embedding chain in the configured order. Unknown names
// are skipped.
func Embedding(ctx context.Context, cfg config.ProviderConfig) *embedding.Router {
	logger := logger_i.NewLogger("providers")
	var chain []embedding.Provider
	for _, name := range cfg.EmbeddingOrder {
		var p embedding.Provider
		switch name {
		case "ollama":
			if cfg.OllamaEnabled {
				p = ollamaEmbedding.New(cfg.OllamaURL, cfg.OllamaEmbeddingModel, cfg.VectorDimension)
			}
		case "google":
			p = googleEmbedding.New(ctx, cfg.GoogleAPIKey, cfg.GoogleEmbeddingModel, cfg.VectorDimension)
		case "openai":
			p = openaiEmbedding.New(cfg.OpenAIAPIKey, "", cfg.OpenAIEmbeddingModel, cfg.VectorDimension)
		case "hash":
			p = hashEmbedding.New(cfg.VectorDimension)
		default:
			logger.Warn("unknown embedding provider in order", "provider", name)
		}
		if p != nil {
			chain = append(chain, p)
		}
	}
	r := embedding.NewRouter(chain...)
	logger.Info("embedding chain", "providers", r.Names())
	return r
}

// Generation builds the generation chain in the configured order. Providers
// without credentials are left out; the router answers from the demo provider
// when none remain.
func Generation(ctx context.Context, cfg config.ProviderConfig) *llm.Router {
	logger := logger_i.NewLogger("providers")
	var chain []llm.Provider
	for _, name := range cfg.GenerationOrder {
		var p llm.Provider
		switch name {
		case "huggingface":
			p = huggingface.New(cfg.HuggingFaceAPIKey, cfg.HuggingFaceBaseURL, cfg.HuggingFaceModel)
		case "openrouter":
			p = openaiLLM.NewOpenRouter(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.OpenRouterModel)
		case "openai":
			p = openaiLLM.New(cfg.OpenAIAPIKey, "", cfg.OpenAIModel)
		case "anthropic":
			p = anthropicLLM.New(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL, cfg.AnthropicModel)
		case "gemini":
			p = gemini.GetGeminiClient(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
		case "ollama":
			p = ollamaLLM.New(cfg.OllamaEnabled, cfg.OllamaURL, cfg.OllamaModel)
		default:
			logger.Warn("unknown generation provider in order", "provider", name)
		}
		if p == nil || !p.Configured() {
			continue
		}
		chain = append(chain, p)
	}
	r := llm.NewRouter(llm.DefaultRetry(cfg), chain...)
	logger.Info("generation chain", "providers", r.Names(), "selected", r.Select().Name())
	return r
}

// VectorStore builds local, then remote, then the in-process fallback.
func VectorStore(ctx context.Context, cfg config.StoreConfig) *vectorDB.Router {
	logger := logger_i.NewLogger("providers")
	var chain []vectorDB.Backend

	if cfg.LocalIndexPath != "" {
		local, err := chromemDB.NewPersistent(cfg.LocalIndexPath, cfg.LocalIndexCompress)
		if err != nil {
			logger.Error("local index unavailable", "error", err)
		} else {
			chain = append(chain, local)
		}
	}
	if remote := qdrantDB.GetQdrantClient(ctx, cfg); remote != nil {
		chain = append(chain, remote)
	}
	return vectorDB.NewRouter(memoryDB.New(), chain...)
}
