package rag

import (
	"regexp"
	"strings"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
)

var (
	quoteChars = strings.NewReplacer(`"`, "", "'", "", "`", "")
	nonWord    = regexp.MustCompile(`\W+`)
)

// DirectMatch finds a snippet the query quotes, or is quoted by. Containment
// is checked in either direction against every snippet; the shared-word ratio
// is checked against the top snippet only.
func DirectMatch(query string, snippets []commonModels.RetrievedSnippet) (commonModels.RetrievedSnippet, bool) {
	q := strings.TrimSpace(quoteChars.Replace(strings.ToLower(query)))
	if q == "" || len(snippets) == 0 {
		return commonModels.RetrievedSnippet{}, false
	}

	for _, s := range snippets {
		body := strings.ToLower(s.Payload.Body())
		if body == "" {
			continue
		}
		head := commonModels.PreviewText(body, config.DirectMatchSnippetHead)
		if strings.Contains(body, q) || strings.Contains(q, head) {
			return s, true
		}
	}

	top := snippets[0]
	if sharedWordRatio(q, strings.ToLower(top.Payload.Body())) >= config.DirectMatchTokenRatio {
		return top, true
	}
	return commonModels.RetrievedSnippet{}, false
}

// sharedWordRatio is the fraction of query words present in the snippet. Very
// short queries score zero so a bare question does not turn into a quote.
func sharedWordRatio(query, snippet string) float64 {
	qWords := words(query)
	if len(qWords) < config.DirectMatchMinTokens {
		return 0
	}
	present := make(map[string]struct{})
	for _, w := range words(snippet) {
		present[w] = struct{}{}
	}
	shared := 0
	for _, w := range qWords {
		if _, ok := present[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(qWords))
}

func words(s string) []string {
	return strings.Fields(nonWord.ReplaceAllString(s, " "))
}
