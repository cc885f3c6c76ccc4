package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/data/redisStore"
	"github.com/akolanti/PersonaRAG/internal/data/store"
	"github.com/akolanti/PersonaRAG/internal/domain/jobModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redisStore.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redisStore.NewTestStore(client)
}

func TestRedisJobStore_Lifecycle(t *testing.T) {
	mr, internalStore := newRedis(t)
	jobStore := store.NewRedisJobStore(internalStore)

	ctx := config.WithTraceID(context.Background(), "test-trace")
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:      jobID,
		JobType: jobModel.JobTypeIngestFile,
		Status:  jobModel.JobStatusRunning,
		JobPayload: jobModel.JobPayload{
			FileName:    "gita.txt",
			ChunksTotal: 12,
		},
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := jobStore.SaveJob(ctx, testJob); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}
		if retrievedJob.JobPayload.FileName != testJob.JobPayload.FileName {
			t.Errorf("Data mismatch! Got %s, want %s", retrievedJob.JobPayload.FileName, testJob.JobPayload.FileName)
		}
		if retrievedJob.JobPayload.ChunksTotal != 12 {
			t.Errorf("ChunksTotal got %d, want 12", retrievedJob.JobPayload.ChunksTotal)
		}
	})

	t.Run("Jobs expire", func(t *testing.T) {
		if ttl := mr.TTL("job:" + jobID); ttl != config.RedisJobStoreTTL {
			t.Errorf("TTL got %s, want %s", ttl, config.RedisJobStoreTTL)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		if _, found := jobStore.GetJob(ctx, "ghost-id"); found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Corrupt payload is not found", func(t *testing.T) {
		if err := mr.Set("job:broken", "{not json"); err != nil {
			t.Fatal(err)
		}
		if _, found := jobStore.GetJob(ctx, "broken"); found {
			t.Error("Expected found=false for undecodable job")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)
		if mr.Exists("job:" + jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestRedisJobStore_Race(t *testing.T) {
	_, internalStore := newRedis(t)
	jobStore := store.NewRedisJobStore(internalStore)

	ctx := config.WithTraceID(context.Background(), "race-trace")
	job := jobModel.Job{Id: "race-job"}

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
	wg.Wait()

	if _, found := jobStore.GetJob(ctx, "race-job"); !found {
		t.Error("race-job missing after concurrent saves")
	}
}

func TestInMemoryJobStore(t *testing.T) {
	ctx := context.Background()
	s := store.InitInMemoryJobStore()

	if err := s.SaveJob(ctx, jobModel.Job{Id: "a", Status: jobModel.JobStatusQueued}); err != nil {
		t.Fatal(err)
	}
	got, ok := s.GetJob(ctx, "a")
	if !ok || got.Status != jobModel.JobStatusQueued {
		t.Fatalf("got %+v, %v", got, ok)
	}
	s.DeleteJob(ctx, "a")
	if _, ok := s.GetJob(ctx, "a"); ok {
		t.Error("job still present after delete")
	}
}

func TestInMemoryJobStore_Expires(t *testing.T) {
	ctx := context.Background()
	s := store.InitInMemoryJobStoreWithTTL(20 * time.Millisecond)

	_ = s.SaveJob(ctx, jobModel.Job{Id: "old"})
	time.Sleep(40 * time.Millisecond)
	_ = s.SaveJob(ctx, jobModel.Job{Id: "new"})

	if _, ok := s.GetJob(ctx, "old"); ok {
		t.Error("expired job still readable")
	}
	if _, ok := s.GetJob(ctx, "new"); !ok {
		t.Error("fresh job missing")
	}
}
