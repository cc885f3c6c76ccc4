package rag_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/akolanti/PersonaRAG/internal/domain/jobModel"
	"github.com/akolanti/PersonaRAG/internal/rag"
	"github.com/akolanti/PersonaRAG/internal/rag/ingest"
	"github.com/akolanti/PersonaRAG/internal/rag/llm"
	"github.com/akolanti/PersonaRAG/internal/rag/moderation"
	"github.com/akolanti/PersonaRAG/internal/rag/persona"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB/memoryDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dutyVerse = "You have a right to perform your prescribed duty, but you are not entitled to the fruits of action."

var spiritual = chatModel.IntentClassification{
	Intent:       chatModel.IntentSpiritualQuestion,
	UseRetrieval: true,
	Confidence:   chatModel.ConfidenceHigh,
}

func policy(t *testing.T) *persona.Policy {
	t.Helper()
	p, err := persona.Load("")
	require.NoError(t, err)
	return p
}

func traceCtx() context.Context {
	return config.WithTraceID(context.Background(), "test-trace")
}

func gitaSnippet() commonModels.RetrievedSnippet {
	return commonModels.RetrievedSnippet{
		ID:    "3b0c7a4e-6d35-5d8e-8a51-9f1c2e0d4b7a",
		Score: 0.92,
		Payload: commonModels.Payload{
			SourceTitle: "Bhagavad Gita",
			Book:        "Bhagavad Gita",
			Tradition:   "hindu",
			DeityGroups: []string{"krishna", "vishnu"},
			Chapter:     "2",
			Verse:       "47",
			FullText:    dutyVerse + " Never consider yourself the cause of the results of your activities.",
		},
	}
}

func TestRespond_DirectMatchEndToEnd(t *testing.T) {
	ctx := traceCtx()
	store := vectorDB.NewRouter(memoryDB.New())
	snippet := gitaSnippet()
	require.NoError(t, store.Upsert(ctx, config.DefaultCollectionName, []commonModels.EmbeddedPoint{
		{ID: snippet.ID, Vector: []float32{1, 0, 0}, Payload: snippet.Payload},
		{ID: "9a7d1c55-2f0b-5b1e-b1a4-77e0c3d2f811", Vector: []float32{0, 1, 0}, Payload: commonModels.Payload{
			SourceTitle: "Ramayana", Book: "Ramayana", Tradition: "hindu", DeityGroups: []string{"rama"}, Text: "Rama kept his word.",
		}},
	}))

	gen := &MockGenerator{}
	s := rag.NewService(rag.Deps{
		Embedder:   &MockEmbedder{},
		Store:      store,
		Generator:  gen,
		Classifier: &MockClassifier{Result: spiritual},
		Policy:     policy(t),
	}, rag.Options{})

	out, err := s.Respond(ctx, rag.ChatInput{
		Persona:   "krishna",
		Utterance: `"` + dutyVerse + `"`,
		User:      chatModel.User{Name: "Asha", Age: 30, Tradition: "hindu"},
	})
	require.NoError(t, err)

	assert.True(t, out.DirectMatch)
	assert.Equal(t, snippet.Payload.FullText, out.Text)
	assert.Equal(t, []chatModel.Source{{SourceTitle: "Bhagavad Gita", SnippetID: snippet.ID}}, out.Sources)
	require.NotNil(t, out.Reference)
	assert.Equal(t, "Bhagavad Gita, Chapter 2, Verse 47", out.Reference.Source.FullReference)
	assert.Empty(t, gen.requests, "a direct match must not call the model")
	assert.Equal(t, chatModel.AudioNone, out.AudioStatus)
	assert.Equal(t, "Krishna", out.Persona)
}

func TestRespond_PersonaOutsideTradition(t *testing.T) {
	store := &MockStore{}
	s := rag.NewService(rag.Deps{
		Embedder:   &MockEmbedder{},
		Store:      store,
		Generator:  &MockGenerator{},
		Classifier: &MockClassifier{Result: spiritual},
		Policy:     policy(t),
	}, rag.Options{})

	_, err := s.Respond(traceCtx(), rag.ChatInput{
		Persona:   "krishna",
		Utterance: "What is dharma?",
		User:      chatModel.User{Tradition: "christian"},
	})

	require.ErrorIs(t, err, persona.ErrNotPermitted)
	var denied *persona.NotPermittedError
	require.True(t, errors.As(err, &denied))
	require.NotEmpty(t, denied.Alternatives)
	for _, alt := range denied.Alternatives {
		assert.Equal(t, "christian", alt.Tradition)
	}
	assert.Zero(t, store.searches)
}

func TestRespond_GuestSearchesUnfiltered(t *testing.T) {
	store := &MockStore{}
	s := rag.NewService(rag.Deps{
		Embedder:   &MockEmbedder{},
		Store:      store,
		Generator:  &MockGenerator{},
		Classifier: &MockClassifier{Result: spiritual},
		Policy:     policy(t),
	}, rag.Options{})

	out, err := s.Respond(traceCtx(), rag.ChatInput{
		Persona:   "shiva",
		Utterance: "How do I find stillness?",
		User:      chatModel.User{Tradition: chatModel.GuestTradition},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, store.searches)
	assert.True(t, store.lastFilters.IsEmpty())
	assert.Equal(t, "mocked llm response", out.Text)
	assert.Empty(t, out.Sources)
}

func TestRespond_FiltersScopeToPersona(t *testing.T) {
	store := &MockStore{}
	s := rag.NewService(rag.Deps{
		Embedder:   &MockEmbedder{},
		Store:      store,
		Generator:  &MockGenerator{},
		Classifier: &MockClassifier{Result: spiritual},
		Policy:     policy(t),
	}, rag.Options{})

	_, err := s.Respond(traceCtx(), rag.ChatInput{
		Persona:   "krishna",
		Utterance: "What is detachment?",
		User:      chatModel.User{Tradition: "hindu"},
	})
	require.NoError(t, err)

	assert.Equal(t, "hindu", store.lastFilters.Tradition)
	assert.Equal(t, "krishna", store.lastFilters.DeityGroup)
	assert.Contains(t, store.lastFilters.Books, "Bhagavad Gita")
}

func TestRespond_GeneratedReplyCarriesSourcesAndCitationCheck(t *testing.T) {
	store := &MockStore{
		OnSearch: func(context.Context, string, []float32, int, commonModels.Filters) []commonModels.RetrievedSnippet {
			return []commonModels.RetrievedSnippet{gitaSnippet()}
		},
	}
	gen := &MockGenerator{
		OnComplete: func(_ context.Context, req llm.Request) (llm.Completion, error) {
			return llm.NewCompletion("mock", "  Act without clinging to results (Source: Bhagavad Gita, Chapter 2, Verse 47).  "), nil
		},
	}
	s := rag.NewService(rag.Deps{
		Embedder:   &MockEmbedder{},
		Store:      store,
		Generator:  gen,
		Classifier: &MockClassifier{Result: spiritual},
		Policy:     policy(t),
	}, rag.Options{})

	out, err := s.Respond(traceCtx(), rag.ChatInput{
		Persona:   "krishna",
		Utterance: "How should I act at work?",
		User:      chatModel.User{Tradition: "hindu", Age: 35},
	})
	require.NoError(t, err)

	assert.False(t, out.DirectMatch)
	assert.Equal(t, "Act without clinging to results (Source: Bhagavad Gita, Chapter 2, Verse 47).", out.Text)
	assert.Equal(t, []chatModel.Source{{SourceTitle: "Bhagavad Gita", SnippetID: gitaSnippet().ID}}, out.Sources)
	assert.True(t, out.CitationCheck.Valid)
	assert.Equal(t, 1, out.CitationCheck.CitationCount)
	require.NotNil(t, out.Reference)
	assert.Equal(t, "Bhagavad Gita", out.Reference.Source.Book)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.Equal(t, 0.6, req.Temperature)
	assert.Equal(t, 400, req.MaxTokens)
	system, _ := req.System()
	assert.Contains(t, system, "You are Krishna")
	assert.Contains(t, system, "---BEGIN SNIPPET---")
}

func TestRespond_GenerationFailure(t *testing.T) {
	s := rag.NewService(rag.Deps{
		Embedder: &MockEmbedder{},
		Store:    &MockStore{},
		Generator: &MockGenerator{OnComplete: func(context.Context, llm.Request) (llm.Completion, error) {
			return llm.Completion{}, errors.New("provider down")
		}},
		Classifier: &MockClassifier{Result: spiritual},
		Policy:     policy(t),
	}, rag.Options{})

	_, err := s.Respond(traceCtx(), rag.ChatInput{Persona: "krishna", Utterance: "What is karma?"})

	var genErr *llm.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, err.Error(), "provider down")
}

func TestRespond_EmbeddingFailureAnswersWithoutContext(t *testing.T) {
	store := &MockStore{}
	gen := &MockGenerator{}
	s := rag.NewService(rag.Deps{
		Embedder: &MockEmbedder{OnEmbed: func(context.Context, string) ([]float32, error) {
			return nil, errors.New("api limit")
		}},
		Store:      store,
		Generator:  gen,
		Classifier: &MockClassifier{Result: spiritual},
		Policy:     policy(t),
	}, rag.Options{})

	out, err := s.Respond(traceCtx(), rag.ChatInput{Persona: "krishna", Utterance: "What is karma?"})
	require.NoError(t, err)

	assert.Zero(t, store.searches)
	assert.Empty(t, out.Sources)
	require.Len(t, gen.requests, 1)
	system, _ := gen.requests[0].System()
	assert.Contains(t, system, "(No retrieved context available)")
}

func TestRespond_CasualChatSkipsRetrieval(t *testing.T) {
	store := &MockStore{}
	gen := &MockGenerator{OnComplete: func(context.Context, llm.Request) (llm.Completion, error) {
		return llm.NewCompletion("mock", "Hello, friend!"), nil
	}}
	s := rag.NewService(rag.Deps{
		Embedder:  &MockEmbedder{},
		Store:     store,
		Generator: gen,
		Classifier: &MockClassifier{Result: chatModel.IntentClassification{
			Intent: chatModel.IntentNormalChat, Confidence: chatModel.ConfidenceHigh,
		}},
		Policy: policy(t),
	}, rag.Options{})

	out, err := s.Respond(traceCtx(), rag.ChatInput{Persona: "krishna", Utterance: "hi"})
	require.NoError(t, err)

	assert.Zero(t, store.searches)
	assert.Nil(t, out.Reference)
	assert.True(t, out.CitationCheck.Valid)
	require.Len(t, gen.requests, 1)
	system, _ := gen.requests[0].System()
	assert.NotContains(t, system, "CITATION REQUIREMENT")
	assert.Equal(t, 0.8, gen.requests[0].Temperature)
}

func TestRespond_FlaggedByModeration(t *testing.T) {
	gen := &MockGenerator{}
	s := rag.NewService(rag.Deps{
		Embedder:   &MockEmbedder{},
		Store:      &MockStore{},
		Generator:  gen,
		Classifier: &MockClassifier{Result: spiritual},
		Policy:     policy(t),
		Moderator: &MockModerator{OnCheck: func(context.Context, string) (moderation.Verdict, error) {
			return moderation.Verdict{Flagged: true, Categories: []string{"violence"}}, nil
		}},
	}, rag.Options{})

	out, err := s.Respond(traceCtx(), rag.ChatInput{Persona: "krishna", Utterance: "something hateful"})
	require.NoError(t, err)

	assert.True(t, out.Flagged)
	assert.Equal(t, moderation.FlaggedReply, out.Text)
	assert.Equal(t, chatModel.AudioFailed, out.AudioStatus)
	assert.Empty(t, gen.requests)
}

func TestRespond_ModerationErrorIsNotFatal(t *testing.T) {
	s := rag.NewService(rag.Deps{
		Embedder:   &MockEmbedder{},
		Store:      &MockStore{},
		Generator:  &MockGenerator{},
		Classifier: &MockClassifier{Result: spiritual},
		Policy:     policy(t),
		Moderator: &MockModerator{OnCheck: func(context.Context, string) (moderation.Verdict, error) {
			return moderation.Verdict{}, errors.New("timeout")
		}},
	}, rag.Options{})

	out, err := s.Respond(traceCtx(), rag.ChatInput{Persona: "krishna", Utterance: "What is peace?"})
	require.NoError(t, err)
	assert.False(t, out.Flagged)
	assert.Equal(t, "mocked llm response", out.Text)
}

func TestRespond_TwoStageFallsBackToDraft(t *testing.T) {
	store := &MockStore{
		OnSearch: func(context.Context, string, []float32, int, commonModels.Filters) []commonModels.RetrievedSnippet {
			sn := gitaSnippet()
			sn.Payload.FullText = "Perform action with equanimity."
			return []commonModels.RetrievedSnippet{sn}
		},
	}
	calls := 0
	gen := &MockGenerator{OnComplete: func(_ context.Context, req llm.Request) (llm.Completion, error) {
		calls++
		if calls == 1 {
			return llm.NewCompletion("mock", "Draft answer (Source: Bhagavad Gita)"), nil
		}
		return llm.Completion{}, errors.New("rate limited")
	}}
	s := rag.NewService(rag.Deps{
		Embedder:   &MockEmbedder{},
		Store:      store,
		Generator:  gen,
		Classifier: &MockClassifier{Result: spiritual},
		Policy:     policy(t),
	}, rag.Options{TwoStage: true})

	out, err := s.Respond(traceCtx(), rag.ChatInput{Persona: "krishna", Utterance: "How do I stay calm when I fail?"})
	require.NoError(t, err)

	assert.Equal(t, "Draft answer (Source: Bhagavad Gita)", out.Text)
	require.Len(t, gen.requests, 2)
	assert.Equal(t, 0.3, gen.requests[0].Temperature)
	assert.Equal(t, 400, gen.requests[0].MaxTokens)
	assert.Equal(t, 0.7, gen.requests[1].Temperature)
	assert.Equal(t, 300, gen.requests[1].MaxTokens)
}

func TestRespond_TwoStageNeedsRetrievedContext(t *testing.T) {
	store := &MockStore{}
	gen := &MockGenerator{}
	s := rag.NewService(rag.Deps{
		Embedder:   &MockEmbedder{},
		Store:      store,
		Generator:  gen,
		Classifier: &MockClassifier{Result: spiritual},
		Policy:     policy(t),
	}, rag.Options{TwoStage: true})

	out, err := s.Respond(traceCtx(), rag.ChatInput{Persona: "krishna", Utterance: "What happens after death?"})
	require.NoError(t, err)

	assert.Equal(t, 1, store.searches)
	assert.Equal(t, "mocked llm response", out.Text)
	require.Len(t, gen.requests, 1)
	system, _ := gen.requests[0].System()
	assert.NotContains(t, system, "knowledgeable religious scholar")
	assert.Contains(t, system, "(No retrieved context available)")
}

func TestRespond_UserPromptUsesPersonaCitationFormat(t *testing.T) {
	intents := map[string]chatModel.IntentClassification{
		"emotion": {Intent: chatModel.IntentEmotionSupport, UseRetrieval: true, Confidence: chatModel.ConfidenceHigh},
		"spiritual": spiritual,
	}
	for name, cls := range intents {
		t.Run(name, func(t *testing.T) {
			gen := &MockGenerator{}
			s := rag.NewService(rag.Deps{
				Embedder: &MockEmbedder{},
				Store: &MockStore{OnSearch: func(context.Context, string, []float32, int, commonModels.Filters) []commonModels.RetrievedSnippet {
					return []commonModels.RetrievedSnippet{gitaSnippet()}
				}},
				Generator:  gen,
				Classifier: &MockClassifier{Result: cls},
				Policy:     policy(t),
			}, rag.Options{})

			_, err := s.Respond(traceCtx(), rag.ChatInput{Persona: "krishna", Utterance: "I feel lost and anxious about my exams"})
			require.NoError(t, err)

			require.Len(t, gen.requests, 1)
			msgs := gen.requests[0].Messages
			question := msgs[len(msgs)-1].Content
			assert.Contains(t, question, "(Source: {Book}, Chapter {X}, Verse {Y})")
			assert.NotContains(t, question, "[Book name]")
		})
	}
}

func TestRespond_PersistsConversation(t *testing.T) {
	conversations := NewMockConversationStore()
	gen := &MockGenerator{}
	s := rag.NewService(rag.Deps{
		Embedder:      &MockEmbedder{},
		Store:         &MockStore{},
		Generator:     gen,
		Classifier:    &MockClassifier{Result: spiritual},
		Policy:        policy(t),
		Conversations: conversations,
	}, rag.Options{})
	ctx := traceCtx()

	_, err := s.Respond(ctx, rag.ChatInput{ConversationID: "conv-1", Persona: "krishna", Utterance: "First question"})
	require.NoError(t, err)
	_, err = s.Respond(ctx, rag.ChatInput{ConversationID: "conv-1", Persona: "krishna", Utterance: "Second question"})
	require.NoError(t, err)

	turns, err := conversations.History(ctx, "conv-1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, chatModel.RoleUser, turns[0].Role)
	assert.Equal(t, "First question", turns[0].Content)
	assert.Equal(t, chatModel.RoleAssistant, turns[1].Role)
	assert.Equal(t, "krishna", turns[1].Persona)

	// the second request sees the first exchange as history
	second := gen.requests[1]
	var contents []string
	for _, m := range second.Messages {
		contents = append(contents, m.Content)
	}
	assert.Contains(t, contents, "First question")
}

func TestRespond_EmptyUtterance(t *testing.T) {
	s := rag.NewService(rag.Deps{Policy: policy(t), Generator: &MockGenerator{}}, rag.Options{})
	_, err := s.Respond(traceCtx(), rag.ChatInput{Persona: "krishna"})
	assert.ErrorIs(t, err, rag.ErrEmptyUtterance)
}

func TestIngestDocument_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		ingester       ingest.Ingester
		expectedStatus jobModel.JobStatus
		expectedTotal  int
	}{
		{
			name: "Ingestion_Success",
			ingester: &MockIngester{OnIngestDocument: func(_ context.Context, doc commonModels.Document, body string, _ int) (ingest.Result, error) {
				return ingest.Result{Title: doc.Title, Total: 3, Upserted: 3, ResumeFrom: 3}, nil
			}},
			expectedStatus: jobModel.JobStatusComplete,
			expectedTotal:  3,
		},
		{
			name: "Ingestion_Failure",
			ingester: &MockIngester{OnIngestDocument: func(context.Context, commonModels.Document, string, int) (ingest.Result, error) {
				return ingest.Result{}, errors.New("disk full")
			}},
			expectedStatus: jobModel.JobStatusError,
		},
		{
			name:           "No_Pipeline",
			expectedStatus: jobModel.JobStatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := rag.NewService(rag.Deps{
				Generator: &MockGenerator{},
				Policy:    policy(t),
				Ingester:  tt.ingester,
			}, rag.Options{})

			job := jobModel.Job{
				Id:      "ingest-job-1",
				JobType: jobModel.JobTypeIngestText,
				JobPayload: jobModel.JobPayload{
					Title: "Bhagavad Gita",
					Text:  "Chapter 1\n\nThe field of dharma.",
				},
			}
			result := s.IngestDocument(traceCtx(), job)

			assert.Equal(t, tt.expectedStatus, result.Status)
			assert.Equal(t, tt.expectedTotal, result.JobPayload.ChunksTotal)
			if tt.expectedStatus == jobModel.JobStatusError {
				assert.NotZero(t, result.Error.Code)
			} else {
				assert.True(t, strings.EqualFold(result.JobPayload.Title, "Bhagavad Gita"))
			}
		})
	}
}
