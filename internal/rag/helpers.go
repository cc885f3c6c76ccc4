package rag

import (
	"context"
	"net/http"
	"time"

	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/akolanti/PersonaRAG/internal/domain/jobModel"
	"github.com/akolanti/PersonaRAG/internal/metrics"
	"github.com/akolanti/PersonaRAG/internal/rag/citation"
	"github.com/akolanti/PersonaRAG/internal/rag/intent"
	"github.com/akolanti/PersonaRAG/internal/rag/llm"
	"github.com/akolanti/PersonaRAG/internal/rag/persona"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
)

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	return job
}

// executeModerationStep reports whether the utterance was flagged. A failing
// moderation call lets the request through.
func (s *service) executeModerationStep(ctx context.Context, log *logger_i.Logger, utterance string) bool {
	if s.deps.Moderator == nil {
		return false
	}
	log.Debug("Respond", "step", "moderation")
	verdict, err := s.deps.Moderator.Check(ctx, utterance)
	if err != nil {
		log.Warn("moderation unavailable, continuing", "error", err)
		return false
	}
	return verdict.Flagged
}

// executeRetrievalStep never fails: an embedding error or an empty index both
// mean answering without context.
func (s *service) executeRetrievalStep(ctx context.Context, log *logger_i.Logger, utterance string, filters commonModels.Filters) []commonModels.RetrievedSnippet {
	log.Debug("Respond", "step", "embedding")
	start := time.Now()
	vector, err := s.deps.Embedder.Embed(ctx, utterance)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		log.Warn("query embedding failed, continuing without context", "error", err)
		return nil
	}

	log.Debug("Respond", "step", "vector_search", "filtered", !filters.IsEmpty())
	hits := s.deps.Store.Search(ctx, s.opts.Collection, vector, s.opts.TopK, filters)
	log.Debug("retrieved snippets", "count", len(hits))
	return hits
}

func (s *service) executeGenerationStep(ctx context.Context, log *logger_i.Logger, per persona.Persona, in ChatInput,
	tmpl intent.Template, cls chatModel.Intent, snippets []commonModels.RetrievedSnippet, history []chatModel.Turn) (string, error) {

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	system := personaSystemPrompt(per, in.User, tmpl)
	var contextText string
	if !tmpl.ForbidScripture && !tmpl.Redirect {
		contextText = contextBlock(per, snippets)
	}
	question := userPrompt(tmpl, cls, per, in.Utterance, len(snippets) > 0)

	if s.opts.TwoStage && len(snippets) > 0 && contextText != "" {
		log.Debug("Respond", "step", "generation", "stages", 2)
		return s.twoStage(ctx, log, per, system, contextText, in.Utterance)
	}

	log.Debug("Respond", "step", "generation", "stages", 1)
	return s.generate(ctx, singleStageMessages(system, contextText, history, question), tmpl.Temperature, tmpl.MaxTokens)
}

// twoStage drafts strictly from context, then rewrites the draft for warmth.
// A failed rewrite returns the draft.
func (s *service) twoStage(ctx context.Context, log *logger_i.Logger, per persona.Persona, system, contextText, utterance string) (string, error) {
	draft, err := s.generate(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: thinkerSystem},
		{Role: llm.RoleUser, Content: thinkerPrompt(per, contextText, utterance)},
	}, thinkerTemperature, thinkerMaxTokens)
	if err != nil {
		return "", err
	}

	polished, err := s.generate(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: speakerPrompt(per, draft, utterance)},
	}, speakerTemperature, speakerMaxTokens)
	if err != nil || polished == "" {
		log.Warn("tone pass failed, returning draft", "error", err)
		return draft, nil
	}
	return polished, nil
}

func (s *service) executeReferenceStep(ctx context.Context, log *logger_i.Logger, snippets []commonModels.RetrievedSnippet, question, answer string) *chatModel.Reference {
	ref := citation.BuildReference(snippets)
	if ref == nil || !s.opts.EnhanceReferences {
		return ref
	}
	log.Debug("Respond", "step", "reference")
	if err := citation.Enhance(ctx, s.deps.Generator, ref, question, answer); err != nil {
		log.Warn("reference enhancement skipped", "error", err)
	}
	return ref
}

// executeCitationStep is advisory. Casual and redirect replies carry no
// sources and are checked the same way.
func (s *service) executeCitationStep(log *logger_i.Logger, text string, sources []chatModel.Source, tmpl intent.Template) chatModel.CitationCheck {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("citation", time.Since(start)) }()

	check := citation.Validate(text, sources)
	metrics.CitationValidated(check.Valid)
	if !check.Valid {
		log.Warn("citation check failed", "reason", check.Reason, "structure", tmpl.Structure)
	}
	return check
}
