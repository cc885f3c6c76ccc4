package qdrantDB

import (
	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/qdrant/go-client/qdrant"
)

func toPayload(p commonModels.Payload) map[string]*qdrant.Value {
	groups := make([]any, 0, len(p.DeityGroups))
	for _, g := range p.DeityGroups {
		groups = append(groups, g)
	}
	return qdrant.NewValueMap(map[string]any{
		"source_title": p.SourceTitle,
		"book":         p.Book,
		"tradition":    p.Tradition,
		"deity_groups": groups,
		"category":     p.Category,
		"translator":   p.Translator,
		"language":     p.Language,
		"chapter":      p.Chapter,
		"verse":        p.Verse,
		"text":         p.Text,
		"full_text":    p.FullText,
		"chunk_type":   string(p.ChunkType),
		"chunk_index":  int64(p.ChunkIndex),
		"total_chunks": int64(p.TotalChunks),
	})
}

func fromPayload(m map[string]*qdrant.Value) commonModels.Payload {
	var groups []string
	for _, v := range m["deity_groups"].GetListValue().GetValues() {
		if s := v.GetStringValue(); s != "" {
			groups = append(groups, s)
		}
	}
	return commonModels.Payload{
		SourceTitle: m["source_title"].GetStringValue(),
		Book:        m["book"].GetStringValue(),
		Tradition:   m["tradition"].GetStringValue(),
		DeityGroups: groups,
		Category:    m["category"].GetStringValue(),
		Translator:  m["translator"].GetStringValue(),
		Language:    m["language"].GetStringValue(),
		Chapter:     m["chapter"].GetStringValue(),
		Verse:       m["verse"].GetStringValue(),
		Text:        m["text"].GetStringValue(),
		FullText:    m["full_text"].GetStringValue(),
		ChunkType:   commonModels.ChunkType(m["chunk_type"].GetStringValue()),
		ChunkIndex:  int(m["chunk_index"].GetIntegerValue()),
		TotalChunks: int(m["total_chunks"].GetIntegerValue()),
	}
}

// toFilter pushes the conjunction down to the service. Array payload fields
// match when any element equals the keyword.
func toFilter(f commonModels.Filters) *qdrant.Filter {
	if f.IsEmpty() {
		return nil
	}
	var must []*qdrant.Condition
	if f.Tradition != "" {
		must = append(must, keywordCondition("tradition", &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: f.Tradition}}))
	}
	if f.DeityGroup != "" {
		must = append(must, keywordCondition("deity_groups", &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: f.DeityGroup}}))
	}
	if len(f.Books) > 0 {
		must = append(must, keywordCondition("book", &qdrant.Match{MatchValue: &qdrant.Match_Keywords{Keywords: &qdrant.RepeatedStrings{Strings: f.Books}}}))
	}
	return &qdrant.Filter{Must: must}
}

func keywordCondition(key string, match *qdrant.Match) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{Key: key, Match: match},
		},
	}
}
