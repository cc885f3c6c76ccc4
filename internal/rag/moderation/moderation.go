package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/PersonaRAG/internal/customHttpClient"
	"github.com/akolanti/PersonaRAG/internal/metrics"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"
)

const FlaggedReply = "Your message was flagged by moderation and cannot be processed."

type Verdict struct {
	Flagged    bool
	Categories []string
}

type Moderator interface {
	Check(ctx context.Context, text string) (Verdict, error)
}

type openAIModerator struct {
	api    openai.Client
	logger *logger_i.Logger
}

// NewOpenAI returns nil when moderation is disabled or no key is configured.
func NewOpenAI(enabled bool, apiKey, baseURL string) Moderator {
	if !enabled || apiKey == "" {
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
	return &openAIModerator{api: openai.NewClient(opts...), logger: logger_i.NewLogger("moderation")}
}

func (m *openAIModerator) Check(ctx context.Context, text string) (Verdict, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("moderation", time.Since(start)) }()

	resp, err := m.api.Moderations.New(ctx, openai.ModerationNewParams{
		Input: openai.ModerationNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.ModerationModelOmniModerationLatest,
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("moderation request: %w", err)
	}
	if len(resp.Results) == 0 {
		return Verdict{}, nil
	}

	result := resp.Results[0]
	v := Verdict{Flagged: result.Flagged}
	gjson.Parse(result.Categories.RawJSON()).ForEach(func(key, value gjson.Result) bool {
		if value.Bool() {
			v.Categories = append(v.Categories, key.String())
		}
		return true
	})
	if v.Flagged {
		m.logger.WithTrace(ctx).Info("message flagged", "categories", v.Categories)
	}
	return v, nil
}
