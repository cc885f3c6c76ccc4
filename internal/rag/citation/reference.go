package citation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/akolanti/PersonaRAG/internal/rag/llm"
	"github.com/tidwall/gjson"
)

const (
	defaultBook       = "Sacred Text"
	sentenceQuoteMax  = 300
	fallbackQuoteHead = 200
)

var (
	sentenceEnd = regexp.MustCompile(`[.!?]\s`)

	sourcePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Chapter\s+(\d+),?\s+Verse\s+(\d+)`),
		regexp.MustCompile(`(\d+):(\d+)`),
		regexp.MustCompile(`(\d+)\.(\d+)`),
	}
)

// BuildReference turns the top snippet into a quotable reference. It returns
// nil when nothing was retrieved.
func BuildReference(snippets []commonModels.RetrievedSnippet) *chatModel.Reference {
	if len(snippets) == 0 {
		return nil
	}
	top := snippets[0].Payload
	title := top.SourceTitle
	if title == "" {
		title = top.Book
	}
	source := ParseSource(title, top.Body())
	if source.Chapter == "" && top.Chapter != "" {
		source.Chapter = top.Chapter
		source.Verse = top.Verse
		source.FullReference = fullReference(source)
	}
	return &chatModel.Reference{
		Quote:  Quote(top.Body()),
		Source: source,
	}
}

// Quote is the first sentence when it ends early enough, else a clipped head.
func Quote(text string) string {
	if loc := sentenceEnd.FindStringIndex(text); loc != nil && loc[0] > 0 && loc[0] < sentenceQuoteMax {
		return strings.TrimSpace(text[:loc[0]+1])
	}
	if r := []rune(text); len(r) > fallbackQuoteHead {
		return strings.TrimSpace(string(r[:fallbackQuoteHead])) + "..."
	}
	return strings.TrimSpace(text)
}

// ParseSource reads a chapter and verse from the title, then from the text.
func ParseSource(title, text string) chatModel.ReferenceSource {
	if title == "" {
		title = defaultBook
	}
	src := chatModel.ReferenceSource{Book: title, FullReference: title}

	for _, p := range sourcePatterns {
		if m := p.FindStringSubmatch(title); m != nil {
			src.Chapter, src.Verse = m[1], m[2]
			break
		}
	}
	if src.Chapter == "" {
		if m := sourcePatterns[0].FindStringSubmatch(text); m != nil {
			src.Chapter, src.Verse = m[1], m[2]
		}
	}
	src.FullReference = fullReference(src)
	return src
}

func fullReference(src chatModel.ReferenceSource) string {
	if src.Chapter != "" && src.Verse != "" {
		return fmt.Sprintf("%s, Chapter %s, Verse %s", src.Book, src.Chapter, src.Verse)
	}
	return src.Book
}

// Format renders the inline marker a reply should carry for ref.
func Format(ref chatModel.Reference) string {
	if ref.Source.Chapter != "" && ref.Source.Verse != "" {
		return fmt.Sprintf("(Source: %s, Chapter %s, Verse %s)", ref.Source.Book, ref.Source.Chapter, ref.Source.Verse)
	}
	return fmt.Sprintf("(Source: %s)", ref.Source.Book)
}

const enhanceSystemPrompt = "You are a helpful assistant that explains sacred texts. Always respond with valid JSON."

// Enhance asks the model for meaning, application and summary of ref. A
// failed call or a malformed reply leaves ref unchanged and is reported.
func Enhance(ctx context.Context, gen llm.Generator, ref *chatModel.Reference, question, answer string) error {
	if ref == nil || gen == nil {
		return nil
	}
	completion, err := gen.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: enhanceSystemPrompt},
			{Role: llm.RoleUser, Content: enhancePrompt(*ref, question, answer)},
		},
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		return fmt.Errorf("enhancing reference: %w", err)
	}
	if completion.Demo {
		return nil
	}

	content := strings.TrimSpace(completion.Text())
	content = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(content, "```json", ""), "```", ""))
	if !gjson.Valid(content) {
		return fmt.Errorf("enhancing reference: reply is not JSON")
	}
	parsed := gjson.Parse(content)
	ref.Meaning = parsed.Get("meaning").String()
	ref.Application = parsed.Get("application").String()
	ref.Summary = parsed.Get("summary").String()
	return nil
}

func enhancePrompt(ref chatModel.Reference, question, answer string) string {
	return fmt.Sprintf(`You are explaining a sacred text reference. Provide three things:

SACRED TEXT:
"%s"
- Source: %s

USER QUESTION: %s

YOUR MAIN RESPONSE: %s

Now provide:

1. MEANING: Explain what this sacred text means in simple, clear language (2-3 sentences)

2. APPLICATION: Explain how this specifically applies to the user's question about "%s" (2-3 sentences)

3. SUMMARY: A brief one-sentence summary connecting the reference to the conversation

Format your response as JSON:
{
  "meaning": "...",
  "application": "...",
  "summary": "..."
}`, ref.Quote, ref.Source.FullReference, question, answer, question)
}
