package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/PersonaRAG/internal/data/store"
	"github.com/akolanti/PersonaRAG/internal/domain/jobModel"
	"github.com/akolanti/PersonaRAG/internal/job"
	"github.com/akolanti/PersonaRAG/internal/rag"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	ProcessedCount int32
}

func (m *MockRagService) Respond(ctx context.Context, in rag.ChatInput) (rag.ChatOutput, error) {
	return rag.ChatOutput{}, nil
}

func (m *MockRagService) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	j.Status = jobModel.JobStatusComplete
	j.CurrentStep = jobModel.Complete
	j.JobPayload.ChunksUpserted = 4
	return j
}

type MockJobStore struct {
	OnSaveJob func(ctx context.Context, job jobModel.Job) error
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	if m.OnSaveJob != nil {
		return m.OnSaveJob(ctx, j)
	}
	return nil
}

func TestWorkerPool_Flow(t *testing.T) {
	jobStore := store.InitInMemoryJobStore()
	var statuses []jobModel.JobStatus
	var mu sync.Mutex
	recording := &MockJobStore{OnSaveJob: func(ctx context.Context, j jobModel.Job) error {
		mu.Lock()
		statuses = append(statuses, j.Status)
		mu.Unlock()
		return jobStore.SaveJob(ctx, j)
	}}

	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          recording,
	})
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	atomic.StoreInt64(&currentWorkerCount, 0)
	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true
		time.Sleep(50 * time.Millisecond)

		if count := atomic.LoadInt64(&currentWorkerCount); count < 2 {
			t.Errorf("Expected at least 2 workers, got %d", count)
		}
	})

	t.Run("Worker processes a submitted job", func(t *testing.T) {
		testJob := job.NewJob(context.Background(), jobModel.JobTypeIngestText, jobModel.JobPayload{Text: "body"})
		if err := jobSvc.Submit(context.Background(), testJob); err != nil {
			t.Fatal(err)
		}

		deadline := time.Now().Add(2 * time.Second)
		for atomic.LoadInt32(&mockRag.ProcessedCount) < 1 && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		time.Sleep(20 * time.Millisecond)

		if processed := atomic.LoadInt32(&mockRag.ProcessedCount); processed != 1 {
			t.Fatalf("Expected 1 job processed, got %d", processed)
		}
		stored, ok := jobStore.GetJob(context.Background(), testJob.Id)
		if !ok {
			t.Fatal("job not stored")
		}
		if stored.Status != jobModel.JobStatusComplete || stored.EndTime.IsZero() {
			t.Errorf("final state got %s (end %v)", stored.Status, stored.EndTime)
		}

		mu.Lock()
		defer mu.Unlock()
		want := []jobModel.JobStatus{jobModel.JobStatusQueued, jobModel.JobStatusRunning, jobModel.JobStatusComplete}
		if len(statuses) != len(want) {
			t.Fatalf("status transitions got %v, want %v", statuses, want)
		}
		for i := range want {
			if statuses[i] != want[i] {
				t.Errorf("transition %d got %s, want %s", i, statuses[i], want[i])
			}
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 1)
	previous := idleTimeout
	idleTimeout = 30 * time.Millisecond
	defer func() { idleTimeout = previous }()

	InitServices(job.InitJobService(job.ServiceConfig{JobChannel: make(chan jobModel.Job)}), &MockRagService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	createWorker()
	createWorker()
	time.Sleep(200 * time.Millisecond)

	if count := atomic.LoadInt64(&currentWorkerCount); count != 1 {
		t.Errorf("Idle workers should retire down to the floor of 1, but count is %d", count)
	}
	close(stopChan)
	wg.Wait()
}
