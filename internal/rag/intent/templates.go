package intent

import "github.com/akolanti/PersonaRAG/internal/domain/chatModel"

// Template shapes the reply for one intent.
type Template struct {
	Structure        string  `json:"structure"`
	Style            string  `json:"style"`
	MaxLength        int     `json:"maxLength"`
	IncludeReference bool    `json:"includeReference"`
	ReferenceCount   int     `json:"referenceCount"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"maxTokens"`
	// ForbidScripture marks casual chat, where quoting texts is out of place.
	ForbidScripture bool `json:"forbidScripture"`
	// Redirect marks off-topic requests that get a polite redirection.
	Redirect bool `json:"redirect"`
}

var templates = map[chatModel.Intent]Template{
	chatModel.IntentEmotionSupport: {
		Structure:        "empathy + advice + one_reference + closing_line",
		Style:            "warm, caring, simple language",
		MaxLength:        400,
		IncludeReference: true,
		ReferenceCount:   1,
		Temperature:      0.7,
		MaxTokens:        350,
	},
	chatModel.IntentSpiritualQuestion: {
		Structure:        "explanation + detailed_references + application",
		Style:            "wise, clear, educational",
		MaxLength:        600,
		IncludeReference: true,
		ReferenceCount:   2,
		Temperature:      0.6,
		MaxTokens:        400,
	},
	chatModel.IntentKnowledgeFact: {
		Structure:        "factual_answer + context + one_reference",
		Style:            "informative, clear, engaging",
		MaxLength:        500,
		IncludeReference: true,
		ReferenceCount:   1,
		Temperature:      0.7,
		MaxTokens:        350,
	},
	chatModel.IntentNormalChat: {
		Structure:       "friendly_response",
		Style:           "casual, warm, brief",
		MaxLength:       150,
		Temperature:     0.8,
		MaxTokens:       100,
		ForbidScripture: true,
	},
	chatModel.IntentTechOther: {
		Structure:   "polite_redirect",
		Style:       "helpful, redirecting",
		MaxLength:   200,
		Temperature: 0.7,
		MaxTokens:   150,
		Redirect:    true,
	},
}

// TemplateFor returns the reply template; unknown intents get the spiritual one.
func TemplateFor(intent chatModel.Intent) Template {
	if t, ok := templates[intent]; ok {
		return t
	}
	return templates[chatModel.IntentSpiritualQuestion]
}
