package ingest

import (
	"regexp"
	"strings"

	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
)

const (
	defaultTitle      = "Unknown"
	defaultCategory   = "general"
	defaultTranslator = "Unknown"
	defaultLanguage   = "English"
)

var headerPattern = regexp.MustCompile(`(?s)^\s*METADATA[ \t]*\n=+[ \t]*\n(.*?)\n---[ \t]*(?:\n|$)`)

// ParseDocument splits a raw text file into its metadata header and its
// chunkable body. Files without a header keep the whole content as body.
func ParseDocument(content string) (commonModels.Document, string) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	doc := commonModels.Document{
		Title:       defaultTitle,
		Category:    defaultCategory,
		Translator:  defaultTranslator,
		Language:    defaultLanguage,
		ContentType: commonModels.TXT,
	}

	m := headerPattern.FindStringSubmatchIndex(content)
	if m == nil {
		return doc, content
	}

	for _, line := range strings.Split(content[m[2]:m[3]], "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		switch key {
		case "title":
			doc.Title = value
		case "category":
			doc.Category = value
		case "translator":
			doc.Translator = value
		case "language":
			doc.Language = value
		case "license":
			doc.License = value
		case "tradition":
			doc.Tradition = strings.ToLower(value)
		}
	}
	return doc, content[m[1]:]
}
