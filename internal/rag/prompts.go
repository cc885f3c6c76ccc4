package rag

import (
	"fmt"
	"strings"

	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/akolanti/PersonaRAG/internal/rag/intent"
	"github.com/akolanti/PersonaRAG/internal/rag/llm"
	"github.com/akolanti/PersonaRAG/internal/rag/persona"
)

const noContext = "(No retrieved context available)"

// personaSystemPrompt carries the hard constraints every reply must respect.
// Casual chat drops the scripture and citation sections.
func personaSystemPrompt(per persona.Persona, user chatModel.User, tmpl intent.Template) string {
	tone := persona.ToneFor(user.Age)
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, speaking directly to a seeker.\n\n", per.Name)
	b.WriteString("IDENTITY & PERSONALITY:\n")
	if per.Description != "" {
		b.WriteString(per.Description + "\n")
	}
	if per.Style != "" {
		b.WriteString(per.Style + "\n")
	}
	if len(per.Traits) > 0 {
		fmt.Fprintf(&b, "Known for: %s\n", strings.Join(per.Traits, ", "))
	}

	if !tmpl.ForbidScripture && len(per.Books) > 0 {
		fmt.Fprintf(&b, `
SACRED TEXT CONSTRAINT (CRITICAL):
You may ONLY quote, reference, and base factual claims on these specific texts: %s.
You must NEVER reference texts from other religious traditions as factual sources.
If asked about other traditions, you may speak respectfully about them in general terms, but do not claim authority over their texts.
`, strings.Join(per.Books, ", "))
	}

	b.WriteString(`
RESPECT & UNITY CONSTRAINT (CRITICAL):
You must NEVER:
- Criticize, mock, or belittle other deities, religious figures, or spiritual traditions
- Claim superiority over other deities or religions
- Rank or compare yourself to others in a competitive way
- Engage in religious debates or arguments
If asked to compare or rank deities or religions, emphasise unity and respect for all paths and gently return to your own teachings.
`)

	if user.Name != "" || user.Age > 0 || !user.IsGuest() {
		b.WriteString("\nUSER CONTEXT:\n")
		if user.Name != "" {
			fmt.Fprintf(&b, "Name: %s\n", user.Name)
		}
		if user.Age > 0 {
			fmt.Fprintf(&b, "Age: %d\n", user.Age)
		}
		if !user.IsGuest() {
			fmt.Fprintf(&b, "Tradition: %s\n", user.Tradition)
		}
	}

	fmt.Fprintf(&b, "\nAGE-APPROPRIATE TONE:\n%s\nLanguage Complexity: %s\n", tone.Guidance, tone.Complexity)
	if safety := persona.SafetyBlock(user.Age); safety != "" {
		b.WriteString("\n" + safety + "\n")
	}

	if !tmpl.ForbidScripture {
		fmt.Fprintf(&b, `
CITATION REQUIREMENT:
Whenever you make a factual or doctrinal claim, include a proper citation in this format:
%s
`, per.CitationFormat)
	}

	b.WriteString(`
SAFETY:
- Never give medical, legal, or financial advice
- Use "I", "My", "Me": you ARE this persona, not someone describing them`)
	return b.String()
}

// contextBlock renders retrieved snippets for the model, or the instruction
// to speak generally when nothing was found.
func contextBlock(per persona.Persona, snippets []commonModels.RetrievedSnippet) string {
	if len(snippets) == 0 {
		return fmt.Sprintf("%s\nNo specific scripture is available. Speak from general wisdom as %s and say plainly that you are speaking generally, without citing any text.", noContext, per.Name)
	}
	var b strings.Builder
	b.WriteString("SACRED TEXTS AVAILABLE TO YOU (your own teachings):\n")
	for _, s := range snippets {
		title := s.Payload.SourceTitle
		if title == "" {
			title = "Unknown"
		}
		fmt.Fprintf(&b, "---BEGIN SNIPPET---\n%s\n---END SNIPPET---\n(Source: %s)\n\n", s.Payload.Body(), title)
	}
	b.WriteString("When quoting, include the exact book title, the chapter or section, and the verse number when there is one.")
	return b.String()
}

func userPrompt(tmpl intent.Template, cls chatModel.Intent, per persona.Persona, utterance string, hasContext bool) string {
	switch cls {
	case chatModel.IntentEmotionSupport:
		reference := ""
		if hasContext {
			reference = fmt.Sprintf("[The passage you drew on, cited as %s, with a brief explanation in simple words]\n\n", per.CitationFormat)
		}
		return fmt.Sprintf(`User is feeling: %q

Respond in this format:

[Empathy paragraph - 2-4 short sentences showing you understand]

[Advice paragraph - 2-4 short sentences with simple, practical wisdom]

%s[One encouraging line]

Use simple English. Be like a caring friend. Keep it under %d characters.`, utterance, reference, tmpl.MaxLength)

	case chatModel.IntentKnowledgeFact:
		return fmt.Sprintf(`Question: %q

Share the answer in a warm, engaging way, like telling a story. Use simple language. Keep it brief (3-4 sentences, under %d characters).`, utterance, tmpl.MaxLength)

	case chatModel.IntentNormalChat:
		return fmt.Sprintf(`%q

Respond like a normal friend. NO scripture, NO religious quotes, NO citations. Just 1-3 sentences. Be friendly and helpful.`, utterance)

	case chatModel.IntentTechOther:
		return fmt.Sprintf(`%q

This seems outside your area of wisdom. Politely say you are here for spiritual guidance and life wisdom, staying in character as %s. Keep it brief (2 sentences).`, utterance, per.Name)

	default:
		references := ""
		if hasContext {
			references = fmt.Sprintf("\n[Cite up to %d passages, each as %s]\n", tmpl.ReferenceCount, per.CitationFormat)
		}
		return fmt.Sprintf(`Question: %q

Respond in simple, clear language:

[Explanation - answer the question in 2-3 short sentences]
%s
[Optional: one sentence about how it applies to their life]

Use everyday words. Keep it under %d characters.`, utterance, references, tmpl.MaxLength)
	}
}

// singleStageMessages assembles the persona prompt, the context, the recent
// conversation and the question.
func singleStageMessages(system, contextText string, history []chatModel.Turn, user string) []llm.Message {
	msgs := []llm.Message{{Role: llm.RoleSystem, Content: system}}
	if contextText != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: contextText})
	}
	for _, t := range history {
		role := llm.RoleUser
		if t.Role == chatModel.RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Content})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: user})
}

const (
	thinkerSystem      = "You are a knowledgeable religious scholar focused on accuracy."
	thinkerTemperature = 0.3
	thinkerMaxTokens   = 400
	speakerTemperature = 0.7
	speakerMaxTokens   = 300
)

func thinkerPrompt(per persona.Persona, contextText, utterance string) string {
	return fmt.Sprintf(`You are %s, a knowledgeable guide. Using ONLY the context below, answer the question accurately and respectfully.

CONTEXT FROM SACRED TEXTS:
%s

USER QUESTION: %s

INSTRUCTIONS:
- Answer based ONLY on the provided context
- Be accurate and clear, and keep every citation marker you use
- Don't worry about conversational style yet
- If context doesn't contain the answer, say so honestly

YOUR ANSWER:`, per.Name, contextText, utterance)
}

func speakerPrompt(per persona.Persona, draft, utterance string) string {
	style := per.Style
	if style == "" {
		style = "wise and compassionate"
	}
	return fmt.Sprintf(`You are %s, speaking with warmth and wisdom. Rewrite the following answer to sound like a warm, human conversation.

ORIGINAL ANSWER:
%s

INSTRUCTIONS:
- Keep the meaning 100%% the same and do not add new facts
- Keep every (Source: ...) citation exactly as written
- Use %s's speaking style: %s
- Keep it concise (2-3 sentences max)

USER'S QUESTION WAS: %s

YOUR WARM, CONVERSATIONAL RESPONSE:`, per.Name, draft, per.Name, style, utterance)
}
