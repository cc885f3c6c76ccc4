package openaiLLM

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/PersonaRAG/internal/customHttpClient"
	"github.com/akolanti/PersonaRAG/internal/rag/llm"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// client speaks the chat completions protocol. OpenRouter is the same client
// pointed at a different base URL.
type client struct {
	api   openai.Client
	name  string
	model string
	key   string
}

func New(apiKey, baseURL, model string) llm.Provider {
	return newClient("openai", apiKey, baseURL, model)
}

func NewOpenRouter(apiKey, baseURL, model string) llm.Provider {
	return newClient("openrouter", apiKey, baseURL, model,
		option.WithHeader("HTTP-Referer", "https://github.com/akolanti/PersonaRAG"),
		option.WithHeader("X-Title", "PersonaRAG"),
	)
}

func newClient(name, apiKey, baseURL, model string, extra ...option.RequestOption) *client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(customHttpClient.Client()),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	opts = append(opts, extra...)
	return &client{api: openai.NewClient(opts...), name: name, model: model, key: apiKey}
}

func (c *client) Name() string     { return c.name }
func (c *client) Configured() bool { return c.key != "" }

func (c *client) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case llm.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case llm.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	model := c.model
	if req.Model != "" {
		model = req.Model
	}
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
			return llm.Completion{}, &llm.LoadingError{Provider: c.name}
		}
		return llm.Completion{}, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return llm.Completion{}, llm.ErrEmptyResponse
	}
	return llm.NewCompletion(c.name, resp.Choices[0].Message.Content), nil
}
