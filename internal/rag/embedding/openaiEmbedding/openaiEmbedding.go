package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/PersonaRAG/internal/customHttpClient"
	"github.com/akolanti/PersonaRAG/internal/rag/embedding"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type client struct {
	api       openai.Client
	model     string
	dimension int
	logger    *logger_i.Logger
}

// New returns nil when no api key is configured. baseURL may be empty.
func New(apiKey, baseURL, model string, dimension int) embedding.Provider {
	if apiKey == "" {
		return nil
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(customHttpClient.Client()),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &client{
		api:       openai.NewClient(opts...),
		model:     model,
		dimension: dimension,
		logger:    logger_i.NewLogger("openai_embedding"),
	}
}

func (c *client) Name() string                     { return "openai" }
func (c *client) Available(_ context.Context) bool { return true }
func (c *client) Dimensions() int                  { return c.dimension }

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(c.model),
	}
	if c.dimension > 0 {
		params.Dimensions = openai.Int(int64(c.dimension))
	}

	resp, err := c.api.Embeddings.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			c.logger.WithTrace(ctx).Warn("OpenAI embedding quota exhausted", "error", err)
			return nil, fmt.Errorf("%w: %v", embedding.ErrQuotaExceeded, err)
		}
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, embedding.ErrEmptyResponse
	}

	out := make([][]float32, len(texts))
	for i, d := range resp.Data {
		idx := int(d.Index)
		if idx < 0 || idx >= len(out) {
			idx = i
		}
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[idx] = vec
	}
	return out, nil
}
