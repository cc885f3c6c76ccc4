package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/domain/jobModel"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem Store")

type storedJob struct {
	job     jobModel.Job
	expires time.Time
}

// InMemoryJobStore stands in for Redis when it is offline. Jobs expire after
// the same TTL Redis would apply; expired entries are dropped on the next write.
type InMemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]storedJob
	ttl  time.Duration
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return InitInMemoryJobStoreWithTTL(config.RedisJobStoreTTL)
}

func InitInMemoryJobStoreWithTTL(ttl time.Duration) *InMemoryJobStore {
	return &InMemoryJobStore{jobs: make(map[string]storedJob), ttl: ttl}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	now := time.Now()
	store.mu.Lock()
	defer store.mu.Unlock()
	for id, s := range store.jobs {
		if now.After(s.expires) {
			delete(store.jobs, id)
		}
	}
	store.jobs[job.Id] = storedJob{job: job, expires: now.Add(store.ttl)}
	inMemLogger.WithTrace(ctx).Debug("Saved job to store", "jobId", job.Id, "status", job.Status)
	return nil
}

func (store *InMemoryJobStore) GetJob(_ context.Context, jobId string) (jobModel.Job, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	s, found := store.jobs[jobId]
	if !found || time.Now().After(s.expires) {
		return jobModel.Job{}, false
	}
	return s.job, true
}

func (store *InMemoryJobStore) DeleteJob(_ context.Context, jobID string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.jobs, jobID)
}
