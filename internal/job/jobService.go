package job

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/domain/jobModel"
	"github.com/akolanti/PersonaRAG/internal/metrics"
	"github.com/google/uuid"
)

// Service is the queue between the ingestion endpoints and the worker pool.
type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
	}
}

// NewJob builds a queued job carrying the request's trace id.
func NewJob(ctx context.Context, jobType jobModel.JobType, payload jobModel.JobPayload) jobModel.Job {
	return jobModel.Job{
		Id:          uuid.NewString(),
		TraceId:     config.TraceID(ctx),
		JobType:     jobType,
		JobPayload:  payload,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.IngestInit,
	}
}

// Submit stores the job and hands it to the pool. Every
// RequestsPerNewWorkerCount submissions signal the dispatcher to grow the pool.
func (s *Service) Submit(ctx context.Context, job jobModel.Job) error {
	if err := s.JobStore.SaveJob(ctx, job); err != nil {
		return err
	}
	select {
	case s.JobChannel <- job:
	case <-ctx.Done():
		return ctx.Err()
	}
	metrics.IncrementJobsInQueue()

	if atomic.AddInt64(&s.RequestCount, 1)%config.RequestsPerNewWorkerCount == 0 {
		select {
		case s.DispatcherChannel <- true:
			metrics.StartDispatcherSignalCount()
		default:
		}
	}
	return nil
}
