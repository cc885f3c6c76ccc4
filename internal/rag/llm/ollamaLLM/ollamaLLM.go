package ollamaLLM

import (
	"context"

	"github.com/akolanti/PersonaRAG/internal/customHttpClient"
	"github.com/akolanti/PersonaRAG/internal/rag/llm"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

type client struct {
	model *ollama.LLM
}

// New returns nil when the local server is disabled or the client cannot be
// built.
func New(enabled bool, serverURL, model string) llm.Provider {
	if !enabled {
		return nil
	}
	logger := logger_i.NewLogger("llm_ollama")
	m, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(model),
		ollama.WithHTTPClient(customHttpClient.Client()),
	)
	if err != nil {
		logger.Error("Error initializing ollama", "error", err)
		return nil
	}
	return &client{model: m}
}

func (c *client) Name() string     { return "ollama" }
func (c *client) Configured() bool { return c.model != nil }

func (c *client) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	messages := make([]llms.MessageContent, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, llms.TextParts(messageType(m.Role), m.Content))
	}

	opts := []llms.CallOption{
		llms.WithTemperature(req.Temperature),
		llms.WithMaxTokens(req.MaxTokens),
	}
	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
	}
	resp, err := c.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return llm.Completion{}, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return llm.Completion{}, llm.ErrEmptyResponse
	}
	return llm.NewCompletion(c.Name(), resp.Choices[0].Content), nil
}

func messageType(role llm.Role) llms.ChatMessageType {
	switch role {
	case llm.RoleSystem:
		return llms.ChatMessageTypeSystem
	case llm.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
