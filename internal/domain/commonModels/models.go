package commonModels

import (
	"slices"
	"time"
)

// Document is a named source text. It is identified by Title and never
// mutated once ingested.
type Document struct {
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Translator  string    `json:"translator"`
	Language    string    `json:"language"`
	License     string    `json:"license,omitempty"`
	Tradition   string    `json:"tradition,omitempty"`
	DeityGroups []string  `json:"deity_groups,omitempty"`
	IngestedAt  time.Time `json:"ingested_at"`
	ContentType DocType   `json:"content_type"`
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"

type ChunkType string

const (
	ChunkVerse     ChunkType = "verse"
	ChunkChapter   ChunkType = "chapter"
	ChunkParagraph ChunkType = "paragraph"
)

func (c ChunkType) Valid() bool {
	switch c {
	case ChunkVerse, ChunkChapter, ChunkParagraph:
		return true
	}
	return false
}

// Chunk is a contiguous span of a document body.
type Chunk struct {
	Text    string    `json:"text"`
	Type    ChunkType `json:"chunk_type"`
	Chapter string    `json:"chapter,omitempty"`
	Verse   string    `json:"verse,omitempty"`
	Index   int       `json:"chunk_index"`
	Total   int       `json:"total_chunks"`
	Offset  int       `json:"offset"`
}

// Payload is the metadata stored next to every vector.
type Payload struct {
	SourceTitle string    `json:"source_title"`
	Book        string    `json:"book"`
	Tradition   string    `json:"tradition,omitempty"`
	DeityGroups []string  `json:"deity_groups,omitempty"`
	Category    string    `json:"category"`
	Translator  string    `json:"translator"`
	Language    string    `json:"language"`
	Chapter     string    `json:"chapter,omitempty"`
	Verse       string    `json:"verse,omitempty"`
	Text        string    `json:"text"`
	FullText    string    `json:"full_text"`
	ChunkType   ChunkType `json:"chunk_type"`
	ChunkIndex  int       `json:"chunk_index"`
	TotalChunks int       `json:"total_chunks"`
}

// Body returns the full chunk text, falling back to the preview.
func (p Payload) Body() string {
	if p.FullText != "" {
		return p.FullText
	}
	return p.Text
}

// PreviewText truncates text to n runes.
func PreviewText(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

type EmbeddedPoint struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload Payload   `json:"payload"`
}

type RetrievedSnippet struct {
	ID      string  `json:"id"`
	Score   float32 `json:"score"`
	Payload Payload `json:"payload"`
}

// Filters is a conjunction over payload metadata. Empty fields do not constrain.
type Filters struct {
	Tradition  string   `json:"tradition,omitempty"`
	DeityGroup string   `json:"deity_group,omitempty"`
	Books      []string `json:"books,omitempty"`
}

func (f Filters) IsEmpty() bool {
	return f.Tradition == "" && f.DeityGroup == "" && len(f.Books) == 0
}

func (f Filters) Matches(p Payload) bool {
	if f.Tradition != "" && p.Tradition != f.Tradition {
		return false
	}
	if f.DeityGroup != "" && !slices.Contains(p.DeityGroups, f.DeityGroup) {
		return false
	}
	if len(f.Books) > 0 && !slices.Contains(f.Books, p.Book) {
		return false
	}
	return true
}

type CollectionInfo struct {
	Name       string `json:"name"`
	Points     int    `json:"points"`
	Dimensions int    `json:"dimensions"`
	Backend    string `json:"backend"`
}

// BookEntry is the catalog ownership of a scripture title.
type BookEntry struct {
	Book        string   `json:"book"`
	Tradition   string   `json:"tradition"`
	DeityGroups []string `json:"deity_groups"`
}
