package ollamaEmbedding

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/PersonaRAG/internal/customHttpClient"
	"github.com/akolanti/PersonaRAG/internal/rag/embedding"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

const (
	probeTimeout = 2 * time.Second
	probeTTL     = 30 * time.Second
)

type client struct {
	embedder  embeddings.Embedder
	serverURL string
	dimension int
	logger    *logger_i.Logger

	mu        sync.Mutex
	lastProbe time.Time
	reachable bool
}

// New wires a local Ollama model. It returns nil when construction fails.
func New(serverURL, model string, dimension int) embedding.Provider {
	logger := logger_i.NewLogger("ollama_embedding")
	llm, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(model),
		ollama.WithHTTPClient(customHttpClient.Client()),
	)
	if err != nil {
		logger.Error("Error initializing ollama", "error", err)
		return nil
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		logger.Error("Error creating ollama embedder", "error", err)
		return nil
	}
	return &client{
		embedder:  embedder,
		serverURL: strings.TrimRight(serverURL, "/"),
		dimension: dimension,
		logger:    logger,
	}
}

func (c *client) Name() string    { return "ollama" }
func (c *client) Dimensions() int { return c.dimension }

// Available probes the server at most once per probeTTL.
func (c *client) Available(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.lastProbe.IsZero() && time.Since(c.lastProbe) < probeTTL {
		return c.reachable
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.serverURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := customHttpClient.Client().Do(req)
	c.lastProbe = time.Now()
	c.reachable = err == nil && resp.StatusCode == http.StatusOK
	if resp != nil {
		_ = resp.Body.Close()
	}
	if !c.reachable {
		c.logger.Debug("ollama server unreachable", "url", c.serverURL, "error", err)
	}
	return c.reachable
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	return c.embedder.EmbedQuery(ctx, text)
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.embedder.EmbedDocuments(ctx, texts)
}
