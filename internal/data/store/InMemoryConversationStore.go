package store

import (
	"context"
	"sync"

	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
)

type InMemoryConversationStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]chatModel.Turn
}

func InitInMemoryConversationStore() *InMemoryConversationStore {
	return &InMemoryConversationStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]chatModel.Turn),
	}
}

func (store *InMemoryConversationStore) Exists(ctx context.Context, conversationID string) bool {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	_, ok := store.chatMap[conversationID]
	return ok
}

func (store *InMemoryConversationStore) Init(ctx context.Context, conversationID string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[conversationID] = make([]chatModel.Turn, 0)
	return nil
}

func (store *InMemoryConversationStore) Append(ctx context.Context, conversationID string, turns ...chatModel.Turn) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[conversationID] = append(store.chatMap[conversationID], turns...)
	return nil
}

func (store *InMemoryConversationStore) History(ctx context.Context, conversationID string, n int) ([]chatModel.Turn, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	all := store.chatMap[conversationID]
	if n <= 0 {
		return []chatModel.Turn{}, nil
	}
	if n < len(all) {
		all = all[len(all)-n:]
	}
	out := make([]chatModel.Turn, len(all))
	copy(out, all)
	return out, nil
}
