package intent

import (
	"regexp"
	"strings"

	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
)

var (
	emotionKeywords = []string{
		"feel", "feeling", "sad", "happy", "depressed", "anxious", "worried",
		"afraid", "scared", "angry", "hurt", "pain", "suffering", "lonely",
		"confused", "lost", "stressed", "overwhelmed", "grateful", "blessed",
	}
	spiritualKeywords = []string{
		"dharma", "karma", "moksha", "gita", "bible", "quran", "scripture",
		"teaching", "verse", "chapter", "says about", "according to",
	}
	knowledgeKeywords = []string{
		"who is", "what is", "tell me about", "story of", "explain",
		"history of", "meaning of",
	}
	casualKeywords = []string{
		"hello", "hi", "hey", "good morning", "good evening", "how are you",
		"weather", "time", "date", "joke", "thanks", "thank you",
	}
)

// casual phrases are matched on word boundaries so "hi" does not fire on "this".
var casualPattern = wordPattern(casualKeywords)

func wordPattern(phrases []string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// KeywordClassify is the deterministic cascade used when the model is
// unavailable or untrusted. It is total: every input gets an intent.
func KeywordClassify(utterance string) chatModel.IntentClassification {
	text := strings.ToLower(utterance)

	result := func(intent chatModel.Intent, confidence chatModel.Confidence) chatModel.IntentClassification {
		return chatModel.IntentClassification{
			Intent:       intent,
			UseRetrieval: NeedsRetrieval(intent),
			Confidence:   confidence,
			Fallback:     true,
		}
	}

	switch {
	case containsAny(text, emotionKeywords):
		return result(chatModel.IntentEmotionSupport, chatModel.ConfidenceMedium)
	case casualPattern.MatchString(text):
		return result(chatModel.IntentNormalChat, chatModel.ConfidenceMedium)
	case containsAny(text, spiritualKeywords):
		return result(chatModel.IntentSpiritualQuestion, chatModel.ConfidenceMedium)
	case containsAny(text, knowledgeKeywords):
		return result(chatModel.IntentKnowledgeFact, chatModel.ConfidenceMedium)
	default:
		return result(chatModel.IntentSpiritualQuestion, chatModel.ConfidenceLow)
	}
}

// NeedsRetrieval is the scripture policy per intent.
func NeedsRetrieval(intent chatModel.Intent) bool {
	switch intent {
	case chatModel.IntentNormalChat, chatModel.IntentTechOther:
		return false
	default:
		return true
	}
}
