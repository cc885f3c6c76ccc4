package citation

import (
	"context"
	"strings"
	"testing"

	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/akolanti/PersonaRAG/internal/rag/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	got := Extract("The Gita teaches duty. (Source: Bhagavad Gita, 2.47) Always act righteously.")
	require.Len(t, got, 1)
	assert.Equal(t, "Bhagavad Gita", got[0].Source)
	assert.Equal(t, "2.47", got[0].Details)

	assert.Len(t, Extract("First point (Source: Text A, 1.1) and second (Source: Text B, 2.2)."), 2)
	assert.Empty(t, Extract("no markers here"))
}

func TestValidate(t *testing.T) {
	mahabharata := []chatModel.Source{{SourceTitle: "Mahabharata", SnippetID: "mh-1"}}

	tests := []struct {
		name    string
		text    string
		sources []chatModel.Source
		valid   bool
		reason  string
	}{
		{"grounded citation", "The story is found in Mahabharata. (Source: Mahabharata, chapter 10)", mahabharata, true, ""},
		{"ungrounded citation", "As per Gita. (Source: Bhagavad Gita, 2.47)", mahabharata, false, "Bhagavad Gita"},
		{"sources but no markers", "Just a plain reply with no citations.", mahabharata, false, "no citations"},
		{"marker without sources", "... (Source: Ghost Text)", nil, false, "Ghost Text"},
		{"nothing either way", "Hello friend.", nil, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.text, tt.sources)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.reason != "" {
				assert.Contains(t, got.Reason, tt.reason)
			}
		})
	}
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "You have a right to act.", Quote("You have a right to act. Not to the fruits."))

	long := strings.Repeat("a", 320) + ". tail"
	q := Quote(long)
	assert.True(t, strings.HasSuffix(q, "..."))
	assert.Len(t, q, 203)

	assert.Equal(t, "short", Quote("  short  "))
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		title, text    string
		chapter, verse string
		full           string
	}{
		{"Bhagavad Gita 4:39", "", "4", "39", "Bhagavad Gita 4:39, Chapter 4, Verse 39"},
		{"Gita", "as said in chapter 2, verse 47 here", "2", "47", "Gita, Chapter 2, Verse 47"},
		{"Dhammapada 1.5", "", "1", "5", "Dhammapada 1.5, Chapter 1, Verse 5"},
		{"", "no locator", "", "", "Sacred Text"},
	}
	for _, tt := range tests {
		src := ParseSource(tt.title, tt.text)
		assert.Equal(t, tt.chapter, src.Chapter, tt.title)
		assert.Equal(t, tt.verse, src.Verse, tt.title)
		assert.Equal(t, tt.full, src.FullReference, tt.title)
	}
}

func TestBuildReferenceAndFormat(t *testing.T) {
	assert.Nil(t, BuildReference(nil))

	ref := BuildReference([]commonModels.RetrievedSnippet{{
		ID: "p1",
		Payload: commonModels.Payload{
			SourceTitle: "Bhagavad Gita",
			Chapter:     "2",
			Verse:       "47",
			FullText:    "You have a right to perform your prescribed duty. But not to the fruits.",
		},
	}})
	require.NotNil(t, ref)
	assert.Equal(t, "You have a right to perform your prescribed duty.", ref.Quote)
	assert.Equal(t, "(Source: Bhagavad Gita, Chapter 2, Verse 47)", Format(*ref))

	assert.Equal(t, "(Source: Ramayana)", Format(chatModel.Reference{Source: chatModel.ReferenceSource{Book: "Ramayana"}}))
}

type stubGenerator struct {
	completion llm.Completion
	err        error
}

func (s stubGenerator) Complete(context.Context, llm.Request) (llm.Completion, error) {
	return s.completion, s.err
}

func TestEnhance(t *testing.T) {
	ref := &chatModel.Reference{Quote: "q", Source: chatModel.ReferenceSource{Book: "Gita", FullReference: "Gita"}}
	gen := stubGenerator{completion: llm.NewCompletion("openai", "```json\n{\"meaning\":\"m\",\"application\":\"a\",\"summary\":\"s\"}\n```")}

	require.NoError(t, Enhance(context.Background(), gen, ref, "question", "answer"))
	assert.Equal(t, "m", ref.Meaning)
	assert.Equal(t, "a", ref.Application)
	assert.Equal(t, "s", ref.Summary)

	untouched := &chatModel.Reference{Quote: "q"}
	err := Enhance(context.Background(), stubGenerator{completion: llm.NewCompletion("openai", "not json")}, untouched, "q", "a")
	assert.Error(t, err)
	assert.Empty(t, untouched.Meaning)
}
