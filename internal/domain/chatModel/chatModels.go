package chatModel

import (
	"context"
	"strings"
	"time"
)

type Intent string

const (
	IntentEmotionSupport    Intent = "EMOTION_SUPPORT"
	IntentSpiritualQuestion Intent = "SPIRITUAL_QUESTION"
	IntentKnowledgeFact     Intent = "KNOWLEDGE_FACT"
	IntentNormalChat        Intent = "NORMAL_CHAT"
	IntentTechOther         Intent = "TECH_OTHER"
)

var Intents = []Intent{IntentEmotionSupport, IntentSpiritualQuestion, IntentKnowledgeFact, IntentNormalChat, IntentTechOther}

// ParseIntent accepts the canonical names case-insensitively.
func ParseIntent(s string) (Intent, bool) {
	candidate := Intent(strings.ToUpper(strings.TrimSpace(s)))
	for _, i := range Intents {
		if i == candidate {
			return i, true
		}
	}
	return "", false
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

func ParseConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceLow:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

type IntentClassification struct {
	Intent       Intent     `json:"intent"`
	UseRetrieval bool       `json:"use_scripture_rag"`
	Confidence   Confidence `json:"confidence"`
	Fallback     bool       `json:"fallback"`
}

type User struct {
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Tradition string `json:"tradition"`
}

const GuestTradition = "all"

// NormalizeTradition lowercases and trims a tradition; blank means guest.
func NormalizeTradition(tradition string) string {
	t := strings.ToLower(strings.TrimSpace(tradition))
	if t == "" {
		return GuestTradition
	}
	return t
}

func (u User) IsGuest() bool {
	return u.Tradition == "" || u.Tradition == GuestTradition
}

type Source struct {
	SourceTitle string `json:"source_title"`
	SnippetID   string `json:"snippet_id"`
}

type ReferenceSource struct {
	Book          string `json:"book"`
	Chapter       string `json:"chapter,omitempty"`
	Verse         string `json:"verse,omitempty"`
	FullReference string `json:"fullReference"`
}

type Reference struct {
	Quote       string          `json:"quote"`
	Source      ReferenceSource `json:"source"`
	Meaning     string          `json:"meaning,omitempty"`
	Application string          `json:"application,omitempty"`
	Summary     string          `json:"summary,omitempty"`
}

type CitationCheck struct {
	Valid         bool   `json:"valid"`
	Reason        string `json:"reason,omitempty"`
	CitationCount int    `json:"citationCount"`
}

type AudioStatus string

const (
	AudioNone    AudioStatus = "none"
	AudioPending AudioStatus = "pending"
	AudioSuccess AudioStatus = "success"
	AudioFailed  AudioStatus = "failed"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one persisted message of a conversation.
type Turn struct {
	Role      Role      `json:"role"`
	Persona   string    `json:"persona,omitempty"`
	Content   string    `json:"content"`
	Sources   []Source  `json:"sources,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ConversationStore interface {
	Exists(ctx context.Context, conversationID string) bool
	Init(ctx context.Context, conversationID string) error
	Append(ctx context.Context, conversationID string, turns ...Turn) error
	History(ctx context.Context, conversationID string, n int) ([]Turn, error)
}

type userKey struct{}

// WithUser attaches the caller identity resolved from request headers.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the caller identity, or a guest when none was attached.
func UserFrom(ctx context.Context) User {
	if u, ok := ctx.Value(userKey{}).(User); ok {
		return u
	}
	return User{Tradition: GuestTradition}
}
