package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

const pageTimeout = 10 * time.Second

func extractText(path string, contentType commonModels.DocType, logger *logger_i.Logger) (string, error) {
	switch contentType {
	case commonModels.TXT:
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read text file: %w", err)
		}
		return string(raw), nil
	case commonModels.PDF:
		return extractPDF(path, logger)
	case commonModels.DOCX:
		return extractDocxOdtRtf(path)
	default:
		return "", fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// extractPDF joins the plain text of every readable page. Pages that fail or
// hang are skipped.
func extractPDF(path string, logger *logger_i.Logger) (string, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	numPages := f.NumPage()
	logger.Debug("extracting pdf", "path", path, "pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := protectExtract(page)
		if err != nil {
			logger.Warn("skipping unreadable page", "page", i, "error", err)
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n\n")
	}
	if sb.Len() == 0 {
		return "", errors.New("pdf has no extractable text")
	}
	return sb.String(), nil
}

func extractDocxOdtRtf(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		return "", fmt.Errorf("failed to extract document: %w", err)
	}
	return text, nil
}

// protectExtract bounds a single page parse; malformed streams can spin.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(pageTimeout):
		return "", errors.New("page extraction timed out")
	}
}
