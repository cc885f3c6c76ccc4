package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/akolanti/PersonaRAG/internal/customHttpClient"
	"github.com/akolanti/PersonaRAG/internal/rag/llm"
	"github.com/tidwall/gjson"
)

const maxBodyBytes = 4 << 20

// client targets the hosted inference router's OpenAI-compatible chat route.
type client struct {
	http    *http.Client
	baseURL string
	model   string
	key     string
}

func New(apiKey, baseURL, model string) llm.Provider {
	return &client{
		http:    customHttpClient.Client(),
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		key:     apiKey,
	}
}

func (c *client) Name() string     { return "huggingface" }
func (c *client) Configured() bool { return c.key != "" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

func (c *client) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	model := c.model
	if req.Model != "" {
		model = req.Model
	}
	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return llm.Completion{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return llm.Completion{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.key)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return llm.Completion{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return llm.Completion{}, fmt.Errorf("reading response: %w", err)
	}
	return c.parse(resp.StatusCode, body)
}

// parse normalises the body. An error field wins over the status code, and a
// loading error carries the backend's own wait estimate.
func (c *client) parse(status int, body []byte) (llm.Completion, error) {
	if !gjson.ValidBytes(body) {
		if status >= 300 {
			return llm.Completion{}, &llm.ProviderError{Provider: c.Name(), Status: status, Message: strings.TrimSpace(string(body))}
		}
		return llm.Completion{}, fmt.Errorf("%s: malformed response body", c.Name())
	}

	doc := gjson.ParseBytes(body)
	if e := doc.Get("error"); e.Exists() && e.Type != gjson.Null {
		msg := e.String()
		if e.IsObject() {
			msg = e.Get("message").String()
		}
		if strings.Contains(strings.ToLower(msg), "loading") {
			return llm.Completion{}, &llm.LoadingError{
				Provider:      c.Name(),
				EstimatedWait: time.Duration(doc.Get("estimated_time").Float() * float64(time.Second)),
			}
		}
		return llm.Completion{}, &llm.ProviderError{Provider: c.Name(), Status: status, Message: msg}
	}
	if status >= 300 {
		return llm.Completion{}, &llm.ProviderError{Provider: c.Name(), Status: status, Message: http.StatusText(status)}
	}

	text := doc.Get("choices.0.message.content").String()
	if text == "" {
		// text-generation task shape
		text = doc.Get("0.generated_text").String()
	}
	if text == "" {
		return llm.Completion{}, llm.ErrEmptyResponse
	}
	return llm.NewCompletion(c.Name(), text), nil
}
