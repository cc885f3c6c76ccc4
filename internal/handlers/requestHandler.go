package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/PersonaRAG/internal/adapter"
	"github.com/akolanti/PersonaRAG/internal/adapter/utils"
	"github.com/akolanti/PersonaRAG/internal/api"
	"github.com/akolanti/PersonaRAG/internal/domain/jobModel"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

const maxUploadSize = 32 << 20 //32mb

// GetStatusHandler godoc
// @Summary      Get ingestion job status
// @Description  Retrieves the current status of an ingestion job using its ID.
// @Tags         Ingestion
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse "The current status of the job"
// @Failure      404  {object}  api.JobResponse "Job not found"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	result, isFound := validateId(r.Context(), idString)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// PostIngestHandler godoc
// @Summary      Queue a document for ingestion
// @Description  Accepts a PDF, DOCX or TXT upload as multipart/form-data, or raw text with an optional METADATA header as JSON, and queues an ingestion job.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        document_name  formData  string                 false  "Display name of the document"
// @Param        category       formData  string                 false  "Corpus category"
// @Param        document       formData  file                   false  "The file to upload"
// @Param        request        body      api.IngestTextRequest  false  "Raw text ingestion"
// @Success      202  {object}  api.InitJobResponse "Accepted"
// @Failure      400  {object}  api.JobResponse "Missing fields or file too large"
// @Failure      500  {object}  api.JobResponse "Storage or queue error"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request", "remote", r.RemoteAddr)
		return
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		ingestText(w, r)
		return
	}
	ingestUpload(w, r)
}

func ingestText(w http.ResponseWriter, r *http.Request) {
	var req api.IngestTextRequest
	defer r.Body.Close()
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadSize)).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "text is required")
		return
	}
	queueJob(w, r, jobModel.JobTypeIngestText, jobModel.JobPayload{
		Title:    req.Title,
		Category: req.Category,
		Text:     req.Text,
		StartAt:  req.StartAt,
	})
}

func ingestUpload(w http.ResponseWriter, r *http.Request) {
	targetDir, err := uploadDir()
	if err != nil {
		logRH.WithTrace(r.Context()).Error("upload directory unavailable", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage Error")
		return
	}

	if err = r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	docName := r.FormValue("document_name")
	if docName == "" {
		docName = fileMetadata.Filename
	}

	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fileMetadata.Filename))
	tempFilePath := filepath.Join(targetDir, filename)
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
		return
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
		return
	}
	queueJob(w, r, jobModel.JobTypeIngestFile, jobModel.JobPayload{
		FileName: docName,
		FilePath: tempFilePath,
		Category: r.FormValue("category"),
	})
}

func queueJob(w http.ResponseWriter, r *http.Request, jobType jobModel.JobType, payload jobModel.JobPayload) {
	id, err := CreateNewJob(r.Context(), jobType, payload)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not queue job")
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(id))
}
