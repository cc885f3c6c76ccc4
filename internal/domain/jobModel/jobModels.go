package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusPartial  JobStatus = "PARTIAL"
	JobStatusError    JobStatus = "Error"

	IngestInit       InternalStatus = "IngestInit"
	IngestExtracting InternalStatus = "Extracting"
	IngestChunking   InternalStatus = "Chunking"
	IngestEmbedding  InternalStatus = "Embedding"
	Error            InternalStatus = "Error"
	Complete         InternalStatus = "Complete"

	JobTypeIngestFile JobType = "IngestFile"
	JobTypeIngestText JobType = "IngestText"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	FileName string `json:"file_name,omitempty"`
	FilePath string `json:"file_path,omitempty"`
	Category string `json:"category,omitempty"`
	Text     string `json:"text,omitempty"`
	StartAt  int    `json:"start_at,omitempty"`

	Title          string `json:"title,omitempty"`
	ChunkType      string `json:"chunk_type,omitempty"`
	ChunksTotal    int    `json:"chunks_total"`
	ChunksUpserted int    `json:"chunks_upserted"`
	ResumeFrom     int    `json:"resume_from"`
	QuotaExceeded  bool   `json:"quota_exceeded,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
