package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/data/redisStore"
	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
)

// A conversation is a marker key plus a list of JSON turns. Both share the
// same sliding TTL.
const conversationKeyPrefix = "conversation:"

type RedisConversationStore struct {
	store  *redisStore.Store
	ttl    time.Duration
	logger *logger_i.Logger
}

func NewConversationStore(ctx context.Context, cfg config.RedisConfig) chatModel.ConversationStore {
	if rs := redisStore.GetRedisStore(ctx, cfg, config.RedisConversationStore); rs != nil {
		return NewRedisConversationStore(rs)
	}
	inMemLogger.Warn("redis unavailable, conversations are kept in memory")
	return InitInMemoryConversationStore()
}

func NewRedisConversationStore(store *redisStore.Store) *RedisConversationStore {
	return &RedisConversationStore{
		store:  store,
		ttl:    config.RedisConversationStoreTTL,
		logger: logger_i.NewLogger("ConversationStore"),
	}
}

func markerKey(id string) string { return conversationKeyPrefix + id }
func turnsKey(id string) string  { return conversationKeyPrefix + id + ":turns" }

func (s *RedisConversationStore) Exists(ctx context.Context, conversationID string) bool {
	found, err := s.store.Exists(ctx, markerKey(conversationID))
	if err != nil {
		s.logger.WithTrace(ctx).Error("Failed to check if conversation exists", "conversationId", conversationID, "error", err)
		return false
	}
	return found
}

func (s *RedisConversationStore) Init(ctx context.Context, conversationID string) error {
	s.logger.WithTrace(ctx).Debug("Initializing new conversation", "conversationId", conversationID)
	if err := s.store.Del(ctx, turnsKey(conversationID)); err != nil && !s.store.IsNil(err) {
		return err
	}
	return s.store.Set(ctx, markerKey(conversationID), time.Now().UTC().Format(time.RFC3339), s.ttl)
}

func (s *RedisConversationStore) Append(ctx context.Context, conversationID string, turns ...chatModel.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshalling turn: %w", err)
		}
		values = append(values, data)
	}
	if err := s.store.ListAppend(ctx, turnsKey(conversationID), s.ttl, values...); err != nil {
		return err
	}
	return s.store.Touch(ctx, markerKey(conversationID), s.ttl)
}

// History returns up to n most recent turns, oldest first. Turns that no
// longer decode are skipped.
func (s *RedisConversationStore) History(ctx context.Context, conversationID string, n int) ([]chatModel.Turn, error) {
	raw, err := s.store.ListTail(ctx, turnsKey(conversationID), n)
	if err != nil {
		return nil, err
	}
	turns := make([]chatModel.Turn, 0, len(raw))
	for _, r := range raw {
		var t chatModel.Turn
		if err := json.Unmarshal([]byte(r), &t); err != nil {
			s.logger.WithTrace(ctx).Warn("skipping undecodable turn", "conversationId", conversationID, "error", err)
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}
