package rag_test

import (
	"context"
	"sync"

	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/akolanti/PersonaRAG/internal/rag/ingest"
	"github.com/akolanti/PersonaRAG/internal/rag/llm"
	"github.com/akolanti/PersonaRAG/internal/rag/moderation"
)

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnEmbed      func(ctx context.Context, text string) ([]float32, error)
	OnEmbedBatch func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbed != nil {
		return m.OnEmbed(ctx, text)
	}
	return []float32{1, 0, 0}, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnEmbedBatch != nil {
		return m.OnEmbedBatch(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

// MockStore implements vectorDB.Store
type MockStore struct {
	OnSearch    func(ctx context.Context, collection string, vector []float32, k int, filters commonModels.Filters) []commonModels.RetrievedSnippet
	searches    int
	lastFilters commonModels.Filters
}

func (m *MockStore) EnsureCollection(context.Context, string, int) error { return nil }

func (m *MockStore) Upsert(context.Context, string, []commonModels.EmbeddedPoint) error { return nil }

func (m *MockStore) Search(ctx context.Context, collection string, vector []float32, k int, filters commonModels.Filters) []commonModels.RetrievedSnippet {
	m.searches++
	m.lastFilters = filters
	if m.OnSearch != nil {
		return m.OnSearch(ctx, collection, vector, k, filters)
	}
	return []commonModels.RetrievedSnippet{}
}

func (m *MockStore) Info(_ context.Context, collection string) (commonModels.CollectionInfo, error) {
	return commonModels.CollectionInfo{Name: collection, Backend: "mock"}, nil
}

// MockGenerator implements llm.Generator
type MockGenerator struct {
	OnComplete func(ctx context.Context, req llm.Request) (llm.Completion, error)
	requests   []llm.Request
}

func (m *MockGenerator) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	m.requests = append(m.requests, req)
	if m.OnComplete != nil {
		return m.OnComplete(ctx, req)
	}
	return llm.NewCompletion("mock", "mocked llm response"), nil
}

// MockClassifier implements rag.IntentClassifier
type MockClassifier struct {
	Result chatModel.IntentClassification
}

func (m *MockClassifier) Classify(context.Context, string) chatModel.IntentClassification {
	return m.Result
}

type MockModerator struct {
	OnCheck func(ctx context.Context, text string) (moderation.Verdict, error)
}

func (m *MockModerator) Check(ctx context.Context, text string) (moderation.Verdict, error) {
	if m.OnCheck != nil {
		return m.OnCheck(ctx, text)
	}
	return moderation.Verdict{}, nil
}

// MockConversationStore implements chatModel.ConversationStore
type MockConversationStore struct {
	mu    sync.Mutex
	turns map[string][]chatModel.Turn
}

func NewMockConversationStore() *MockConversationStore {
	return &MockConversationStore{turns: map[string][]chatModel.Turn{}}
}

func (m *MockConversationStore) Exists(_ context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.turns[id]
	return ok
}

func (m *MockConversationStore) Init(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[id] = []chatModel.Turn{}
	return nil
}

func (m *MockConversationStore) Append(_ context.Context, id string, turns ...chatModel.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[id] = append(m.turns[id], turns...)
	return nil
}

func (m *MockConversationStore) History(_ context.Context, id string, n int) ([]chatModel.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.turns[id]
	if len(t) > n {
		t = t[len(t)-n:]
	}
	return append([]chatModel.Turn(nil), t...), nil
}

// MockIngester implements ingest.Ingester
type MockIngester struct {
	OnIngestDocument func(ctx context.Context, doc commonModels.Document, body string, startAt int) (ingest.Result, error)
}

func (m *MockIngester) IngestFile(ctx context.Context, path, category string, startAt int) (ingest.Result, error) {
	return ingest.Result{Title: path}, nil
}

func (m *MockIngester) IngestDocument(ctx context.Context, doc commonModels.Document, body string, startAt int) (ingest.Result, error) {
	if m.OnIngestDocument != nil {
		return m.OnIngestDocument(ctx, doc, body, startAt)
	}
	return ingest.Result{Title: doc.Title}, nil
}
