package adapter

import (
	"fmt"

	"github.com/akolanti/PersonaRAG/internal/api"
	"github.com/akolanti/PersonaRAG/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result: api.Result{
			Status:    string(job.Status),
			Step:      string(job.CurrentStep),
			Ingestion: toIngestionResult(job.JobPayload),
		},
	}
}

func toIngestionResult(p jobModel.JobPayload) *api.IngestionResult {
	if p.Title == "" && p.ChunksTotal == 0 {
		return nil
	}
	return &api.IngestionResult{
		Title:          p.Title,
		ChunkType:      p.ChunkType,
		ChunksTotal:    p.ChunksTotal,
		ChunksUpserted: p.ChunksUpserted,
		ResumeFrom:     p.ResumeFrom,
		QuotaExceeded:  p.QuotaExceeded,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:     id,
		Result: api.Result{Status: string(api.JobStatusError)},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
