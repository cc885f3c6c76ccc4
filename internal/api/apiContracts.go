package api

import (
	"time"

	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
)

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

// responses---------------------

type ChatResponse struct {
	Reply Reply `json:"reply"`
}

type Reply struct {
	Text              string                         `json:"text" example:"Perform your duty without attachment to results (Source: Bhagavad Gita, Chapter 2, Verse 47)."`
	Persona           string                         `json:"persona" example:"Krishna"`
	ReferencedSources []chatModel.Source             `json:"referencedSources"`
	AudioURL          *string                        `json:"audioUrl"`
	AudioStatus       chatModel.AudioStatus          `json:"audioStatus" example:"none"`
	Timestamp         time.Time                      `json:"timestamp"`
	Intent            chatModel.IntentClassification `json:"intent"`
	Reference         *chatModel.Reference           `json:"reference,omitempty"`
	CitationCheck     chatModel.CitationCheck        `json:"citationCheck"`
	DirectMatch       bool                           `json:"directMatch,omitempty"`
}

type ErrorResponse struct {
	Error            string           `json:"error" example:"persona_not_permitted"`
	Message          string           `json:"message,omitempty" example:"persona \"krishna\" is not available for tradition \"christian\""`
	AvailableDeities []PersonaSummary `json:"availableDeities,omitempty"`
}

type PersonaSummary struct {
	ID          string   `json:"id" example:"krishna"`
	Name        string   `json:"name" example:"Krishna"`
	Tradition   string   `json:"tradition" example:"hindu"`
	Description string   `json:"description"`
	Gender      string   `json:"gender,omitempty"`
	Books       []string `json:"books"`
}

type PersonasResponse struct {
	Personas []PersonaSummary `json:"personas"`
}

type TraditionSummary struct {
	ID       string   `json:"id" example:"hindu"`
	Name     string   `json:"name" example:"Hinduism"`
	Books    []string `json:"books,omitempty"`
	Personas int      `json:"personas"`
}

type TraditionsResponse struct {
	Traditions []TraditionSummary `json:"traditions"`
}

type HealthResponse struct {
	Status     string   `json:"status" example:"ok"`
	Collection string   `json:"collection"`
	Points     int      `json:"points"`
	Backend    string   `json:"backend,omitempty"`
	Generation []string `json:"generationProviders"`
	Embedding  []string `json:"embeddingProviders"`
}

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type IngestionResult struct {
	Title          string `json:"title"`
	ChunkType      string `json:"chunk_type,omitempty"`
	ChunksTotal    int    `json:"chunks_total"`
	ChunksUpserted int    `json:"chunks_upserted"`
	ResumeFrom     int    `json:"resume_from"`
	QuotaExceeded  bool   `json:"quota_exceeded,omitempty"`
}

type Result struct {
	Status    string           `json:"status"`
	Step      string           `json:"step,omitempty"`
	Ingestion *IngestionResult `json:"ingestion,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

// requests---------------------

type ChatRequest struct {
	ConversationID string `json:"conversationId,omitempty"`
	Persona        string `json:"persona" validate:"required" example:"krishna"`
	Text           string `json:"text" validate:"required" example:"How do I deal with failure?"`
	Audio          bool   `json:"audio,omitempty"`
}

type IngestTextRequest struct {
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`
	Text     string `json:"text" validate:"required"`
	StartAt  int    `json:"start_at,omitempty"`
}
