package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/akolanti/PersonaRAG/internal/adapter"
	"github.com/akolanti/PersonaRAG/internal/api"
	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
	"github.com/akolanti/PersonaRAG/internal/rag"
	"github.com/akolanti/PersonaRAG/internal/rag/persona"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
)

// ChatDependencies is everything the synchronous chat endpoints need.
type ChatDependencies struct {
	Rag        rag.Service
	Policy     *persona.Policy
	Store      vectorDB.Store
	Collection string
	Embedding  []string
	Generation []string
}

var (
	chatDeps *ChatDependencies
	chatOnce sync.Once
	logCH    = logger_i.NewLogger("ChatHandler")
)

func InitChatHandler(deps ChatDependencies) {
	chatOnce.Do(func() {
		chatDeps = &deps
		logCH.Info("Starting chat handler", "generation", deps.Generation, "embedding", deps.Embedding)
	})
}

// ChatHandler godoc
// @Summary      Talk to a persona
// @Description  Runs the full pipeline synchronously: intent, retrieval, generation and citation check.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-User-Tradition  header    string           false  "Caller tradition, missing or 'all' means guest"
// @Param        X-User-Age        header    int              false  "Caller age"
// @Param        X-User-Name       header    string           false  "Caller name"
// @Param        request           body      api.ChatRequest  true   "Persona, text and optional conversation id"
// @Success      200               {object}  api.ChatResponse
// @Failure      400               {object}  api.ErrorResponse  "Missing text or persona"
// @Failure      403               {object}  api.ErrorResponse  "Persona outside the caller's tradition"
// @Failure      500               {object}  api.ErrorResponse  "Generation failed"
// @Router       /api/chat [post]
func ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logCH.Warn("Invalid Context by request", "remote", r.RemoteAddr)
		return
	}
	log := logCH.WithTrace(r.Context())

	var req api.ChatRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Error("Couldn't close the chat request body", "error", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Bad chat request", "error", err)
		writeJsonResponse(w, http.StatusBadRequest, api.ErrorResponse{Error: "bad_request", Message: "body must be a JSON chat request"})
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" || strings.TrimSpace(req.Persona) == "" {
		writeJsonResponse(w, http.StatusBadRequest, api.ErrorResponse{Error: "bad_request", Message: "text and persona are required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.ChatRequestTimeout)
	defer cancel()

	out, err := chatDeps.Rag.Respond(ctx, adapter.ToChatInput(req, chatModel.UserFrom(r.Context())))
	if err != nil {
		writeChatError(w, log, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToChatResponse(out))
}

func writeChatError(w http.ResponseWriter, log *logger_i.Logger, err error) {
	var denied *persona.NotPermittedError
	switch {
	case errors.As(err, &denied):
		writeJsonResponse(w, http.StatusForbidden, adapter.ToNotPermitted(denied))
	case errors.Is(err, rag.ErrEmptyUtterance):
		writeJsonResponse(w, http.StatusBadRequest, api.ErrorResponse{Error: "bad_request", Message: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		log.Error("chat request timed out", "error", err)
		writeJsonResponse(w, http.StatusGatewayTimeout, api.ErrorResponse{Error: "timeout", Message: "the model did not answer in time"})
	default:
		log.Error("chat request failed", "error", err)
		writeJsonResponse(w, http.StatusInternalServerError, api.ErrorResponse{Error: "generation_failed", Message: "could not generate a reply"})
	}
}

// PersonasHandler godoc
// @Summary      List personas
// @Tags         Catalog
// @Produce      json
// @Param        tradition  query     string  false  "Restrict to one tradition"
// @Success      200        {object}  api.PersonasResponse
// @Router       /api/personas [get]
func PersonasHandler(w http.ResponseWriter, r *http.Request) {
	tradition := r.URL.Query().Get("tradition")
	writeJsonResponse(w, http.StatusOK, api.PersonasResponse{
		Personas: adapter.ToPersonaSummaries(chatDeps.Policy.Personas(tradition)),
	})
}

// TraditionsHandler godoc
// @Summary      List traditions
// @Tags         Catalog
// @Produce      json
// @Success      200  {object}  api.TraditionsResponse
// @Router       /api/traditions [get]
func TraditionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.TraditionsResponse{
		Traditions: adapter.ToTraditionSummaries(chatDeps.Policy.Traditions()),
	})
}

// HealthHandler godoc
// @Summary      Liveness and index status
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	res := api.HealthResponse{
		Status:     "ok",
		Collection: chatDeps.Collection,
		Generation: chatDeps.Generation,
		Embedding:  chatDeps.Embedding,
	}
	if chatDeps.Store != nil {
		info, err := chatDeps.Store.Info(r.Context(), chatDeps.Collection)
		if err != nil {
			logCH.WithTrace(r.Context()).Warn("index info unavailable", "error", err)
			res.Status = "degraded"
		} else {
			res.Points, res.Backend = info.Points, info.Backend
		}
	}
	writeJsonResponse(w, http.StatusOK, res)
}
