package ingest

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/akolanti/PersonaRAG/internal/domain/jobModel"
	"github.com/akolanti/PersonaRAG/internal/rag/embedding"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
)

// Ingester is the part of Pipeline the job worker depends on.
type Ingester interface {
	IngestFile(ctx context.Context, path, category string, startAt int) (Result, error)
	IngestDocument(ctx context.Context, doc commonModels.Document, body string, startAt int) (Result, error)
}

// ProcessDocumentIngestion runs one queued ingestion job and records the
// outcome on the returned job. A quota abort leaves the job PARTIAL with the
// index to resume from.
func ProcessDocumentIngestion(ctx context.Context, job jobModel.Job, ingester Ingester) jobModel.Job {
	logger := logger_i.NewLogger("Document Ingestion").WithTrace(ctx).With("jobId", job.Id)
	payload := job.JobPayload
	logger.Debug("processing ingestion job", "type", job.JobType, "file", payload.FileName)

	job.CurrentStep = jobModel.IngestChunking
	var res Result
	var err error
	switch job.JobType {
	case jobModel.JobTypeIngestText:
		doc, body := ParseDocument(payload.Text)
		if payload.Title != "" {
			doc.Title = payload.Title
		}
		if payload.Category != "" {
			doc.Category = payload.Category
		}
		doc.IngestedAt = time.Now()
		res, err = ingester.IngestDocument(ctx, doc, body, payload.StartAt)
	default:
		job.CurrentStep = jobModel.IngestExtracting
		res, err = ingester.IngestFile(ctx, payload.FilePath, payload.Category, payload.StartAt)
	}

	job.JobPayload.Title = res.Title
	job.JobPayload.ChunkType = string(res.Strategy)
	job.JobPayload.ChunksTotal = res.Total
	job.JobPayload.ChunksUpserted = res.Upserted
	job.JobPayload.ResumeFrom = res.ResumeFrom
	job.JobPayload.QuotaExceeded = res.QuotaExceeded
	job.EndTime = time.Now()

	switch {
	case err == nil:
		job.Status = jobModel.JobStatusComplete
		job.CurrentStep = jobModel.Complete
		removeUpload(payload.FilePath, logger)
	case errors.Is(err, embedding.ErrQuotaExceeded) && res.Upserted > 0:
		logger.Warn("ingestion stopped on quota", "resume_from", res.ResumeFrom)
		job.Status = jobModel.JobStatusPartial
		job.CurrentStep = jobModel.IngestEmbedding
		job.Error = jobModel.JobError{Code: 429, Message: err.Error(), Retry: true}
	default:
		logger.Error("ingestion failed", "error", err)
		job.Status = jobModel.JobStatusError
		job.CurrentStep = jobModel.Error
		job.Error = jobModel.JobError{Code: 500, Message: err.Error(), Retry: errors.Is(err, embedding.ErrQuotaExceeded)}
	}
	return job
}

func removeUpload(path string, logger *logger_i.Logger) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Error("Error removing file", "error", err)
	}
}
