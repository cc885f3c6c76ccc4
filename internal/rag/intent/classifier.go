package intent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
	"github.com/akolanti/PersonaRAG/internal/metrics"
	"github.com/akolanti/PersonaRAG/internal/rag/llm"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
	"github.com/tidwall/gjson"
)

type Mode string

const (
	ModeLLM     Mode = "llm"
	ModeKeyword Mode = "keyword"
)

const (
	classifierSystemPrompt = "You are a classification system. Reply ONLY with JSON."
	classifierTemperature  = 0.3
	classifierMaxTokens    = 150
)

var (
	errInvalidJSON   = errors.New("classifier reply is not JSON")
	errUnknownIntent = errors.New("classifier reply names an unknown intent")
	errDemoReply     = errors.New("demo completion cannot classify")
)

// Classifier decides the intent of an utterance and whether scripture
// retrieval is needed. It never fails; the keyword cascade is the floor.
type Classifier struct {
	generator llm.Generator
	mode      Mode
	logger    *logger_i.Logger
}

func NewClassifier(generator llm.Generator, mode string) *Classifier {
	m := ModeLLM
	if generator == nil || Mode(strings.ToLower(strings.TrimSpace(mode))) == ModeKeyword {
		m = ModeKeyword
	}
	return &Classifier{generator: generator, mode: m, logger: logger_i.NewLogger("intent_classifier")}
}

func (c *Classifier) Mode() Mode { return c.mode }

func (c *Classifier) Classify(ctx context.Context, utterance string) chatModel.IntentClassification {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("intent", time.Since(start)) }()

	var result chatModel.IntentClassification
	if c.mode == ModeLLM {
		var err error
		result, err = c.classifyWithModel(ctx, utterance)
		if err != nil {
			c.logger.WithTrace(ctx).Warn("model classification failed, using keywords", "error", err)
			result = KeywordClassify(utterance)
		}
	} else {
		result = KeywordClassify(utterance)
	}

	metrics.IntentClassified(string(result.Intent), result.Fallback)
	c.logger.WithTrace(ctx).Debug("intent classified",
		"intent", result.Intent, "retrieval", result.UseRetrieval, "confidence", result.Confidence, "fallback", result.Fallback)
	return result
}

func (c *Classifier) classifyWithModel(ctx context.Context, utterance string) (chatModel.IntentClassification, error) {
	completion, err := c.generator.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: classifierSystemPrompt},
			{Role: llm.RoleUser, Content: classificationPrompt(utterance)},
		},
		Temperature: classifierTemperature,
		MaxTokens:   classifierMaxTokens,
	})
	if err != nil {
		return chatModel.IntentClassification{}, err
	}
	if completion.Demo {
		return chatModel.IntentClassification{}, errDemoReply
	}
	return ParseReply(completion.Text())
}

// ParseReply reads the model's JSON answer, tolerating markdown code fences.
func ParseReply(raw string) (chatModel.IntentClassification, error) {
	content := stripFences(raw)
	if !gjson.Valid(content) || !gjson.Parse(content).IsObject() {
		return chatModel.IntentClassification{}, fmt.Errorf("%w: %q", errInvalidJSON, preview(content))
	}

	intent, ok := chatModel.ParseIntent(gjson.Get(content, "intent").String())
	if !ok {
		return chatModel.IntentClassification{}, errUnknownIntent
	}

	useRetrieval := NeedsRetrieval(intent)
	if v := gjson.Get(content, "use_scripture_rag"); v.Exists() {
		useRetrieval = v.Bool()
	}

	return chatModel.IntentClassification{
		Intent:       intent,
		UseRetrieval: useRetrieval,
		Confidence:   chatModel.ParseConfidence(gjson.Get(content, "confidence").String()),
	}, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func preview(s string) string {
	if len(s) > 80 {
		return s[:80]
	}
	return s
}

func classificationPrompt(utterance string) string {
	return fmt.Sprintf(`Classify this user message into ONE category and decide if we need sacred scripture references.

USER MESSAGE: %q

CATEGORIES:
1. EMOTION_SUPPORT - User expressing feelings (sad, anxious, confused, lonely, worried, stressed, happy, grateful)
2. SPIRITUAL_QUESTION - Asking about spiritual concepts, teachings, or religious texts
3. KNOWLEDGE_FACT - Asking for facts, stories, or information about deities/mythology
4. NORMAL_CHAT - Casual conversation (greetings, weather, time, jokes, general chat)
5. TECH_OTHER - Technical questions or completely off-topic

RULES:
- If user expresses ANY emotion -> EMOTION_SUPPORT (even if asking spiritual question)
- If asking about scripture/teachings -> SPIRITUAL_QUESTION
- If asking who/what/story -> KNOWLEDGE_FACT
- If casual/greeting -> NORMAL_CHAT
- If technical/off-topic -> TECH_OTHER

SCRIPTURE RAG NEEDED:
- EMOTION_SUPPORT -> true (one relevant teaching)
- SPIRITUAL_QUESTION -> true (detailed references)
- KNOWLEDGE_FACT -> true (factual information)
- NORMAL_CHAT -> false (no scripture needed)
- TECH_OTHER -> false (no scripture needed)

Reply ONLY with valid JSON (no markdown, no explanation):
{"intent":"CATEGORY_NAME","use_scripture_rag":true/false,"confidence":"high/medium/low"}`, utterance)
}
