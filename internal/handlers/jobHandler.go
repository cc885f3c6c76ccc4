package handlers

import (
	"context"
	"sync"

	"github.com/akolanti/PersonaRAG/internal/domain/jobModel"
	"github.com/akolanti/PersonaRAG/internal/job"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           = logger_i.NewLogger("JobHandler")
)

type JobHandler struct {
	service *job.Service
}

func InitJobHandler(jobService *job.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService}
		logJH.Info("Starting job handler")
	})
}

// CreateNewJob queues an ingestion job and returns its id.
func CreateNewJob(ctx context.Context, jobType jobModel.JobType, payload jobModel.JobPayload) (string, error) {
	newJob := job.NewJob(ctx, jobType, payload)
	log := logJH.WithTrace(ctx).With("jobId", newJob.Id)
	log.Info("Creating new job", "type", jobType, "file", payload.FileName)

	// blocking send so a full queue pushes back on the caller
	if err := handlerInstance.service.Submit(ctx, newJob); err != nil {
		log.Error("Could not queue job", "error", err)
		return "", err
	}
	return newJob.Id, nil
}

func GetJobStatus(ctx context.Context, id string) (result jobModel.Job, isFound bool) {
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctx, id)
	}
	return result, false
}
