package googleEmbedding

import (
	"context"
	"fmt"

	"github.com/akolanti/PersonaRAG/internal/rag/embedding"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
	"google.golang.org/genai"
)

const taskType = "RETRIEVAL_DOCUMENT"

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *logger_i.Logger
}

// New returns nil when no api key is configured or the client cannot be built.
// The client is released when ctx is cancelled.
func New(ctx context.Context, apiKey string, model string, dimension int) embedding.Provider {
	logger := logger_i.NewLogger("google_embedding")
	if apiKey == "" {
		return nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil || c == nil {
		logger.Error("Error creating Google Embedding client", "error", err)
		return nil
	}
	emb := &client{genAi: c, model: model, dimension: int32(dimension), logger: logger}
	logger.Info("Google Embedding client created", "model", model)
	go closeClient(ctx, emb)
	return emb
}

func closeClient(ctx context.Context, c *client) {
	<-ctx.Done()
	c.logger.Info("Closing Google Embedding client")
}

func (c *client) Name() string { return "google" }

func (c *client) Available(_ context.Context) bool { return c.genAi != nil }

func (c *client) Dimensions() int { return int(c.dimension) }

func (c *client) Embed(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.doCall(ctx, genai.Text(query))
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, chunks []string) ([][]float32, error) {
	return c.doCall(ctx, getContent(chunks))
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) ([][]float32, error) {
	log := c.logger.WithTrace(ctx)
	result, err := c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{OutputDimensionality: &c.dimension, TaskType: taskType})
	if err != nil {
		if isQuotaError(err) {
			log.Warn("Google embedding quota exhausted", "error", err)
			return nil, fmt.Errorf("%w: %v", embedding.ErrQuotaExceeded, err)
		}
		log.Error("Error getting Embeddings from Google", "error", err)
		return nil, err
	}
	if result == nil || len(result.Embeddings) == 0 {
		return nil, embedding.ErrEmptyResponse
	}

	vectors := make([][]float32, 0, len(result.Embeddings))
	for _, e := range result.Embeddings {
		if e == nil {
			return nil, embedding.ErrEmptyResponse
		}
		vectors = append(vectors, e.Values)
	}
	return vectors, nil
}
