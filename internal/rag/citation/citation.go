package citation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
)

var markerPattern = regexp.MustCompile(`\(Source:\s*([^,)]+),?\s*([^)]*)\)`)

type Citation struct {
	Source  string `json:"source"`
	Details string `json:"details,omitempty"`
}

// Extract returns every "(Source: <title>[, <details>])" marker in order.
func Extract(text string) []Citation {
	matches := markerPattern.FindAllStringSubmatch(text, -1)
	out := make([]Citation, 0, len(matches))
	for _, m := range matches {
		out = append(out, Citation{
			Source:  strings.TrimSpace(m[1]),
			Details: strings.TrimSpace(m[2]),
		})
	}
	return out
}

// Validate checks the markers of a generated reply against the snippets that
// were retrieved for it. The result is advisory and never blocks a reply.
func Validate(text string, sources []chatModel.Source) chatModel.CitationCheck {
	citations := Extract(text)

	switch {
	case len(citations) == 0 && len(sources) > 0:
		return chatModel.CitationCheck{Valid: false, Reason: "no citations found in reply text but sources were retrieved"}
	case len(citations) > 0 && len(sources) == 0:
		return chatModel.CitationCheck{
			Valid:         false,
			Reason:        fmt.Sprintf("citation source '%s' given but no sources were retrieved", citations[0].Source),
			CitationCount: len(citations),
		}
	}

	for _, c := range citations {
		if !grounded(c.Source, sources) {
			return chatModel.CitationCheck{
				Valid:         false,
				Reason:        fmt.Sprintf("citation source '%s' not in referenced sources", c.Source),
				CitationCount: len(citations),
			}
		}
	}
	return chatModel.CitationCheck{Valid: true, CitationCount: len(citations)}
}

func grounded(source string, sources []chatModel.Source) bool {
	for _, s := range sources {
		if strings.Contains(s.SourceTitle, source) {
			return true
		}
	}
	return false
}
