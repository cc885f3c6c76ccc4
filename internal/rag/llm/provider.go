package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is the provider-agnostic completion request. An empty Model means
// the provider default.
type Request struct {
	Messages    []Message
	Model       string
	Temperature float64
	MaxTokens   int
}

// System returns the concatenated system messages and the remaining turns,
// for backends that take the system prompt out of band.
func (r Request) System() (string, []Message) {
	var system []string
	rest := make([]Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}

type Choice struct {
	Message Message `json:"message"`
}

// Completion is the canonical response shape every adapter normalises into.
type Completion struct {
	Choices  []Choice `json:"choices"`
	Provider string   `json:"provider"`
	Demo     bool     `json:"demo"`
}

func (c Completion) Text() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content
}

func NewCompletion(provider, text string) Completion {
	return Completion{
		Provider: provider,
		Choices:  []Choice{{Message: Message{Role: RoleAssistant, Content: text}}},
	}
}

type Provider interface {
	Name() string
	// Configured reports whether credentials for the backend are present.
	Configured() bool
	Complete(ctx context.Context, req Request) (Completion, error)
}

// Generator is what the classifier and the orchestrator depend on.
type Generator interface {
	Complete(ctx context.Context, req Request) (Completion, error)
}

var (
	ErrModelLoading  = errors.New("llm: model is warming up")
	ErrEmptyResponse = errors.New("llm: provider returned no content")
)

// LoadingError is returned by adapters when the backend reports a cold model.
type LoadingError struct {
	Provider      string
	EstimatedWait time.Duration
}

func (e *LoadingError) Error() string {
	return fmt.Sprintf("%s: model loading (estimated %s)", e.Provider, e.EstimatedWait)
}

func (e *LoadingError) Unwrap() error { return ErrModelLoading }

type WarmupTimeoutError struct {
	Provider string
	Attempts int
}

func (e *WarmupTimeoutError) Error() string {
	return fmt.Sprintf("%s: model still warming up after %d attempts", e.Provider, e.Attempts)
}

type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation via %s failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ProviderError carries the error field a backend put in its response body.
// It wins over the HTTP status.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s returned error (status %d): %s", e.Provider, e.Status, e.Message)
}
