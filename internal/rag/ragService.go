package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/akolanti/PersonaRAG/internal/domain/jobModel"
	"github.com/akolanti/PersonaRAG/internal/metrics"
	"github.com/akolanti/PersonaRAG/internal/rag/citation"
	"github.com/akolanti/PersonaRAG/internal/rag/embedding"
	"github.com/akolanti/PersonaRAG/internal/rag/ingest"
	"github.com/akolanti/PersonaRAG/internal/rag/intent"
	"github.com/akolanti/PersonaRAG/internal/rag/llm"
	"github.com/akolanti/PersonaRAG/internal/rag/moderation"
	"github.com/akolanti/PersonaRAG/internal/rag/persona"
	"github.com/akolanti/PersonaRAG/internal/rag/speech"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
)

var ErrEmptyUtterance = errors.New("text required")

// Service is the only thing handlers and workers see. The concrete service
// keeps its providers private so tests can swap any of them for mocks.
type Service interface {
	Respond(ctx context.Context, in ChatInput) (ChatOutput, error)
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
}

type IntentClassifier interface {
	Classify(ctx context.Context, utterance string) chatModel.IntentClassification
}

type ChatInput struct {
	ConversationID string
	Persona        string
	Utterance      string
	User           chatModel.User
	Audio          bool
}

type ChatOutput struct {
	Text          string
	Persona       string
	Sources       []chatModel.Source
	AudioURL      *string
	AudioStatus   chatModel.AudioStatus
	Timestamp     time.Time
	Intent        chatModel.IntentClassification
	Reference     *chatModel.Reference
	CitationCheck chatModel.CitationCheck
	DirectMatch   bool
	Flagged       bool
}

type Options struct {
	Collection        string
	TopK              int
	TwoStage          bool
	EnhanceReferences bool
}

func OptionsFrom(store config.StoreConfig, retrieval config.RetrievalConfig) Options {
	return Options{
		Collection:        store.Collection,
		TopK:              retrieval.TopK,
		TwoStage:          retrieval.TwoStage,
		EnhanceReferences: retrieval.EnhanceReferences,
	}
}

// Deps are the collaborators of the chat pipeline. Moderator, Speech,
// Conversations and Ingester may be nil.
type Deps struct {
	Embedder      embedding.Embedder
	Store         vectorDB.Store
	Generator     llm.Generator
	Classifier    IntentClassifier
	Policy        *persona.Policy
	Moderator     moderation.Moderator
	Speech        speech.Synthesizer
	Conversations chatModel.ConversationStore
	Ingester      ingest.Ingester
}

type service struct {
	deps   Deps
	opts   Options
	logger *logger_i.Logger
}

func NewService(deps Deps, opts Options) Service {
	if opts.Collection == "" {
		opts.Collection = config.DefaultCollectionName
	}
	if opts.TopK <= 0 {
		opts.TopK = config.DefaultTopK
	}
	if deps.Classifier == nil {
		deps.Classifier = intent.NewClassifier(deps.Generator, string(intent.ModeLLM))
	}
	return &service{deps: deps, opts: opts, logger: logger_i.NewLogger("rag_service")}
}

func (s *service) Respond(ctx context.Context, in ChatInput) (ChatOutput, error) {
	start := time.Now()
	log := s.logger.WithTrace(ctx).With("persona", in.Persona)
	status := "error"
	defer func() { metrics.CaptureJobMetrics("chat_"+status, time.Since(start)) }()

	if strings.TrimSpace(in.Utterance) == "" {
		return ChatOutput{}, ErrEmptyUtterance
	}

	per, err := s.deps.Policy.Permit(in.User, in.Persona)
	if err != nil {
		log.Info("persona rejected", "tradition", in.User.Tradition, "error", err)
		status = "rejected"
		return ChatOutput{}, err
	}
	out := ChatOutput{Persona: per.Name, Sources: []chatModel.Source{}, AudioStatus: chatModel.AudioNone}

	if s.executeModerationStep(ctx, log, in.Utterance) {
		out.Text = moderation.FlaggedReply
		out.Flagged = true
		out.AudioStatus = chatModel.AudioFailed
		out.Timestamp = time.Now().UTC()
		status = "flagged"
		return out, nil
	}

	out.Intent = s.deps.Classifier.Classify(ctx, in.Utterance)
	tmpl := intent.TemplateFor(out.Intent.Intent)

	var snippets []commonModels.RetrievedSnippet
	if out.Intent.UseRetrieval {
		snippets = s.executeRetrievalStep(ctx, log, in.Utterance, s.deps.Policy.Filters(in.User, per))
	}

	if match, ok := DirectMatch(in.Utterance, snippets); ok {
		log.Debug("direct match short-circuits generation", "snippet", match.ID)
		out.Text = match.Payload.Body()
		out.Sources = []chatModel.Source{sourceOf(match)}
		out.DirectMatch = true
		out.Reference = citation.BuildReference([]commonModels.RetrievedSnippet{match})
	} else {
		history := s.history(ctx, log, in.ConversationID)
		text, err := s.executeGenerationStep(ctx, log, per, in, tmpl, out.Intent.Intent, snippets, history)
		if err != nil {
			return ChatOutput{}, err
		}
		out.Text = text
		for _, sn := range snippets {
			out.Sources = append(out.Sources, sourceOf(sn))
		}
		if tmpl.IncludeReference {
			out.Reference = s.executeReferenceStep(ctx, log, snippets, in.Utterance, text)
		}
	}

	out.CitationCheck = s.executeCitationStep(log, out.Text, out.Sources, tmpl)
	out.AudioURL, out.AudioStatus = speech.Render(ctx, s.deps.Speech, in.Audio, out.Text, in.Persona)
	out.Timestamp = time.Now().UTC()

	s.appendConversation(ctx, log, in, out)
	status = "ok"
	return out, nil
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	if s.deps.Ingester == nil {
		return s.jobError(job, errors.New("no ingestion pipeline configured"), "INGESTION_FAILURE", false)
	}
	j := ingest.ProcessDocumentIngestion(ctx, job, s.deps.Ingester)
	if j.Status == jobModel.JobStatusError {
		s.logger.WithTrace(ctx).Error("INGESTION_FAILURE", "jobId", j.Id, "error", j.Error.Message)
	}
	return j
}

func sourceOf(s commonModels.RetrievedSnippet) chatModel.Source {
	return chatModel.Source{SourceTitle: s.Payload.SourceTitle, SnippetID: s.ID}
}

func (s *service) generate(ctx context.Context, messages []llm.Message, temperature float64, maxTokens int) (string, error) {
	completion, err := s.deps.Generator.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		var genErr *llm.GenerationError
		var warmErr *llm.WarmupTimeoutError
		if errors.As(err, &genErr) || errors.As(err, &warmErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", &llm.GenerationError{Provider: "router", Err: err}
	}
	return strings.TrimSpace(completion.Text()), nil
}

func (s *service) history(ctx context.Context, log *logger_i.Logger, conversationID string) []chatModel.Turn {
	if conversationID == "" || s.deps.Conversations == nil {
		return nil
	}
	turns, err := s.deps.Conversations.History(ctx, conversationID, config.ConversationHistoryTurns)
	if err != nil {
		log.Warn("conversation history unavailable", "conversationId", conversationID, "error", err)
		return nil
	}
	return turns
}

func (s *service) appendConversation(ctx context.Context, log *logger_i.Logger, in ChatInput, out ChatOutput) {
	if in.ConversationID == "" || s.deps.Conversations == nil {
		return
	}
	store := s.deps.Conversations
	if !store.Exists(ctx, in.ConversationID) {
		if err := store.Init(ctx, in.ConversationID); err != nil {
			log.Warn("conversation init failed", "conversationId", in.ConversationID, "error", err)
			return
		}
	}
	err := store.Append(ctx, in.ConversationID,
		chatModel.Turn{Role: chatModel.RoleUser, Content: in.Utterance, Timestamp: out.Timestamp},
		chatModel.Turn{Role: chatModel.RoleAssistant, Persona: in.Persona, Content: out.Text, Sources: out.Sources, Timestamp: out.Timestamp},
	)
	if err != nil {
		log.Warn("conversation persist failed", "conversationId", in.ConversationID, "error", fmt.Errorf("append: %w", err))
	}
}
