package anthropicLLM

import (
	"context"
	"errors"
	"strings"

	"github.com/akolanti/PersonaRAG/internal/customHttpClient"
	"github.com/akolanti/PersonaRAG/internal/rag/llm"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// statusOverloaded is the messages API status for a saturated model.
const statusOverloaded = 529

type client struct {
	api   anthropic.Client
	model string
	key   string
}

func New(apiKey, baseURL, model string) llm.Provider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(customHttpClient.Client()),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &client{api: anthropic.NewClient(opts...), model: model, key: apiKey}
}

func (c *client) Name() string     { return "anthropic" }
func (c *client) Configured() bool { return c.key != "" }

func (c *client) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	system, turns := req.System()
	messages := make([]anthropic.MessageParam, 0, len(turns))
	for _, m := range turns {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == llm.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	model := c.model
	if req.Model != "" {
		model = req.Model
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(req.MaxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(req.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == statusOverloaded {
			return llm.Completion{}, &llm.LoadingError{Provider: c.Name()}
		}
		return llm.Completion{}, err
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return llm.Completion{}, llm.ErrEmptyResponse
	}
	return llm.NewCompletion(c.Name(), sb.String()), nil
}
