package mcpServer

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
	"github.com/akolanti/PersonaRAG/internal/rag/embedding"
	"github.com/akolanti/PersonaRAG/internal/rag/persona"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	Version      = "1.0.0"
	defaultLimit = 5
	maxLimit     = 20
)

// Server exposes corpus search and the persona catalog as MCP tools, scoped by
// the same religion policy as the chat endpoint.
type Server struct {
	embedder   embedding.Embedder
	store      vectorDB.Store
	policy     *persona.Policy
	collection string
	server     *mcp.Server
	logger     *logger_i.Logger
}

func New(embedder embedding.Embedder, store vectorDB.Store, policy *persona.Policy, collection string) *Server {
	s := &Server{
		embedder:   embedder,
		store:      store,
		policy:     policy,
		collection: collection,
		server:     mcp.NewServer(&mcp.Implementation{Name: "personarag", Version: Version}, nil),
		logger:     logger_i.NewLogger("MCP"),
	}
	s.registerTools()
	return s
}

// Handler serves the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.server }, nil)
}

type SearchInput struct {
	Query     string `json:"query" jsonschema:"what to look for in the scripture corpus"`
	Persona   string `json:"persona,omitempty" jsonschema:"restrict results to this persona's books"`
	Tradition string `json:"tradition,omitempty" jsonschema:"caller tradition, empty or 'all' for unrestricted"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of snippets (default 5, max 20)"`
}

type SearchOutput struct {
	Snippets []SnippetOutput `json:"snippets"`
	Count    int             `json:"count"`
}

type SnippetOutput struct {
	ID          string  `json:"id"`
	SourceTitle string  `json:"source_title"`
	Book        string  `json:"book"`
	Chapter     string  `json:"chapter,omitempty"`
	Verse       string  `json:"verse,omitempty"`
	Score       float32 `json:"score"`
	Text        string  `json:"text"`
}

type ListPersonasInput struct {
	Tradition string `json:"tradition,omitempty" jsonschema:"only personas of this tradition"`
}

type PersonaOutput struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Tradition   string   `json:"tradition"`
	Description string   `json:"description"`
	Books       []string `json:"books"`
}

type ListPersonasOutput struct {
	Personas []PersonaOutput `json:"personas"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_scripture",
		Description: "Semantic search over the ingested scripture corpus",
	}, s.handleSearch)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_personas",
		Description: "List the personas available for a tradition",
	}, s.handleListPersonas)
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, SearchOutput{}, fmt.Errorf("query is required")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	user := chatModel.User{Tradition: chatModel.NormalizeTradition(input.Tradition)}
	filters := s.policy.Filters(user, persona.Persona{})
	if input.Persona != "" {
		per, err := s.policy.Permit(user, input.Persona)
		if err != nil {
			return nil, SearchOutput{}, err
		}
		filters = s.policy.Filters(user, per)
	} else if !user.IsGuest() {
		filters.Tradition = user.Tradition
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("embedding query: %w", err)
	}
	hits := s.store.Search(ctx, s.collection, vector, limit, filters)
	s.logger.WithTrace(ctx).Debug("search_scripture", "hits", len(hits), "persona", input.Persona)

	out := SearchOutput{Snippets: make([]SnippetOutput, len(hits)), Count: len(hits)}
	for i, h := range hits {
		out.Snippets[i] = SnippetOutput{
			ID:          h.ID,
			SourceTitle: h.Payload.SourceTitle,
			Book:        h.Payload.Book,
			Chapter:     h.Payload.Chapter,
			Verse:       h.Payload.Verse,
			Score:       h.Score,
			Text:        h.Payload.Body(),
		}
	}
	return nil, out, nil
}

func (s *Server) handleListPersonas(_ context.Context, _ *mcp.CallToolRequest, input ListPersonasInput) (*mcp.CallToolResult, ListPersonasOutput, error) {
	personas := s.policy.Personas(input.Tradition)
	out := ListPersonasOutput{Personas: make([]PersonaOutput, len(personas))}
	for i, p := range personas {
		out.Personas[i] = PersonaOutput{ID: p.ID, Name: p.Name, Tradition: p.Tradition, Description: p.Description, Books: append([]string{}, p.Books...)}
	}
	return nil, out, nil
}
