package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/akolanti/PersonaRAG/internal/rag/llm"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

// GetGeminiClient returns nil without an api key. The client is released when
// ctx is cancelled.
func GetGeminiClient(ctx context.Context, apiKey string, modelName string) llm.Provider {
	logger := logger_i.NewLogger("llm_gemini")
	if apiKey == "" {
		return nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil || c == nil {
		logger.Error("Error creating Gemini client:", "error", err)
		return nil
	}
	g := &llmClient{client: c, modelName: modelName, logger: logger}
	logger.Info("Gemini client created", "model", modelName)
	go closeClient(ctx, g)
	return g
}

func closeClient(ctx context.Context, g *llmClient) {
	<-ctx.Done()
	g.logger.Info("Closing Gemini client")
}

func (c *llmClient) Name() string     { return "gemini" }
func (c *llmClient) Configured() bool { return c.client != nil }

func (c *llmClient) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	system, turns := req.System()
	contents := make([]*genai.Content, 0, len(turns))
	for _, m := range turns {
		role := genai.Role(genai.RoleUser)
		if m.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	contentConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if system != "" {
		contentConfig.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	model := c.modelName
	if req.Model != "" {
		model = req.Model
	}
	result, err := c.client.Models.GenerateContent(ctx, model, contents, contentConfig)
	if err != nil {
		if isOverloaded(err) {
			return llm.Completion{}, &llm.LoadingError{Provider: c.Name()}
		}
		return llm.Completion{}, err
	}
	text := result.Text()
	if text == "" {
		return llm.Completion{}, llm.ErrEmptyResponse
	}
	return llm.NewCompletion(c.Name(), text), nil
}

// isOverloaded treats a temporarily unavailable model like a cold one.
func isOverloaded(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusServiceUnavailable {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNAVAILABLE") || strings.Contains(msg, "overloaded")
}
