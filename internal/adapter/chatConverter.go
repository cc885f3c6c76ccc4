package adapter

import (
	"github.com/akolanti/PersonaRAG/internal/api"
	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
	"github.com/akolanti/PersonaRAG/internal/rag"
	"github.com/akolanti/PersonaRAG/internal/rag/persona"
)

func ToChatResponse(out rag.ChatOutput) api.ChatResponse {
	sources := out.Sources
	if sources == nil {
		sources = []chatModel.Source{}
	}
	return api.ChatResponse{Reply: api.Reply{
		Text:              out.Text,
		Persona:           out.Persona,
		ReferencedSources: sources,
		AudioURL:          out.AudioURL,
		AudioStatus:       out.AudioStatus,
		Timestamp:         out.Timestamp,
		Intent:            out.Intent,
		Reference:         out.Reference,
		CitationCheck:     out.CitationCheck,
		DirectMatch:       out.DirectMatch,
	}}
}

func ToChatInput(req api.ChatRequest, user chatModel.User) rag.ChatInput {
	return rag.ChatInput{
		ConversationID: req.ConversationID,
		Persona:        req.Persona,
		Utterance:      req.Text,
		User:           user,
		Audio:          req.Audio,
	}
}

func ToPersonaSummaries(personas []persona.Persona) []api.PersonaSummary {
	out := make([]api.PersonaSummary, 0, len(personas))
	for _, p := range personas {
		books := p.Books
		if books == nil {
			books = []string{}
		}
		out = append(out, api.PersonaSummary{
			ID:          p.ID,
			Name:        p.Name,
			Tradition:   p.Tradition,
			Description: p.Description,
			Gender:      p.Gender,
			Books:       books,
		})
	}
	return out
}

func ToTraditionSummaries(traditions []persona.Tradition) []api.TraditionSummary {
	out := make([]api.TraditionSummary, 0, len(traditions))
	for _, t := range traditions {
		out = append(out, api.TraditionSummary{ID: t.ID, Name: t.Name, Books: t.Books, Personas: len(t.Personas)})
	}
	return out
}

// ToNotPermitted is the 403 body listing the personas the caller may use.
func ToNotPermitted(err *persona.NotPermittedError) api.ErrorResponse {
	return api.ErrorResponse{
		Error:            "persona_not_permitted",
		Message:          err.Error(),
		AvailableDeities: ToPersonaSummaries(err.Alternatives),
	}
}
