package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/domain/jobModel"
	"github.com/akolanti/PersonaRAG/internal/metrics"
)

func executeJob(job jobModel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctx, cancel := context.WithTimeout(config.WithTraceID(context.Background(), job.TraceId), config.IngestJobTimeout)
	defer cancel()
	log := logger.WithTrace(ctx).With("jobId", job.Id)
	log.Debug("Processing job", "type", job.JobType)

	job.Status = jobModel.JobStatusRunning
	saveJobState(ctx, job)

	job = _ragService.IngestDocument(ctx, job)
	if job.EndTime.IsZero() {
		job.EndTime = time.Now()
	}
	log.Info("Job finished", "status", job.Status, "chunks", job.JobPayload.ChunksUpserted)
	// the final state must land even if the job used up its deadline
	saveJobState(context.WithoutCancel(ctx), job)
}

func removeWorker(reason string) {
	count := atomic.AddInt64(&currentWorkerCount, -1)
	workerWaitGroup.Done()
	logger.Info("Removed worker", "reason", reason, "workerCount", count)
	metrics.DecrementActiveWorkerCount()
}

func saveJobState(ctx context.Context, job jobModel.Job) {
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.WithTrace(ctx).Error("Failed to update job state", "jobId", job.Id, "error", err)
	}
}
