package ingest

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
)

type ChunkStrategy string

const (
	StrategyAuto      ChunkStrategy = "auto"
	StrategyVerse     ChunkStrategy = "verse"
	StrategyChapter   ChunkStrategy = "chapter"
	StrategyParagraph ChunkStrategy = "paragraph"
)

// sentenceSlack bounds how far a paragraph window may be stretched to reach a
// sentence terminator.
const sentenceSlack = 300

type ChunkOptions struct {
	Size    int
	Overlap int
}

func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{Size: config.DefaultChunkSize, Overlap: config.DefaultChunkOverlap}
}

var (
	verseDetect   = regexp.MustCompile(`\b(?:Verse|Ayah)\s+\d+`)
	chapterDetect = regexp.MustCompile(`\b(?:Chapter|Book)\s`)

	versePattern   = regexp.MustCompile(`(?m)(?:Verse|Ayah)\s+(\d+):|^(\d+)\.\s+`)
	chapterPattern = regexp.MustCompile(`(?m)(?:Chapter|Book)\s+(\d+):|^#+\s+(.+)$`)
)

type span struct {
	text    string
	offset  int
	locator string
}

// DetectStrategy inspects structural markers of a body.
func DetectStrategy(text string) ChunkStrategy {
	switch {
	case verseDetect.MatchString(text):
		return StrategyVerse
	case chapterDetect.MatchString(text):
		return StrategyChapter
	default:
		return StrategyParagraph
	}
}

// Chunk splits a document body. It never fails: a structured strategy that
// yields nothing degrades to the paragraph window.
func Chunk(text string, hint ChunkStrategy, opts ChunkOptions) ([]commonModels.Chunk, ChunkStrategy) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	strategy := hint
	if strategy == "" || strategy == StrategyAuto {
		strategy = DetectStrategy(text)
	}

	var spans []span
	chunkType := commonModels.ChunkParagraph
	switch strategy {
	case StrategyVerse:
		spans = markerSpans(text, versePattern, config.MinVerseChunkLength)
		chunkType = commonModels.ChunkVerse
	case StrategyChapter:
		spans = markerSpans(text, chapterPattern, config.MinChapterChunkLength)
		chunkType = commonModels.ChunkChapter
	}
	if len(spans) == 0 {
		strategy = StrategyParagraph
		chunkType = commonModels.ChunkParagraph
		spans = paragraphSpans(text, opts)
	}

	chunks := make([]commonModels.Chunk, len(spans))
	for i, s := range spans {
		c := commonModels.Chunk{
			Text:   s.text,
			Type:   chunkType,
			Index:  i,
			Total:  len(spans),
			Offset: s.offset,
		}
		switch chunkType {
		case commonModels.ChunkVerse:
			c.Verse = s.locator
		case commonModels.ChunkChapter:
			c.Chapter = s.locator
		}
		chunks[i] = c
	}
	return chunks, strategy
}

// markerSpans treats the text between consecutive markers as one chunk. Text
// before the first marker is kept when long enough.
func markerSpans(text string, pattern *regexp.Regexp, minLength int) []span {
	matches := pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var spans []span
	if pre := strings.TrimSpace(text[:matches[0][0]]); len(pre) > minLength {
		spans = append(spans, span{text: pre, offset: firstNonSpace(text, 0)})
	}
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(text[m[0]:end])
		if len(body) <= minLength {
			continue
		}
		spans = append(spans, span{text: body, offset: m[0], locator: locator(text, m)})
	}
	return spans
}

func locator(text string, m []int) string {
	for g := 1; g*2+1 < len(m); g++ {
		if m[g*2] >= 0 {
			return strings.TrimSpace(text[m[g*2]:m[g*2+1]])
		}
	}
	return ""
}

func firstNonSpace(text string, from int) int {
	for i := from; i < len(text); i++ {
		if !strings.ContainsRune(" \t\n\r", rune(text[i])) {
			return i
		}
	}
	return from
}

// paragraphSpans is a sliding window extended forward to the next sentence
// terminator. The step is floored at 1 so the loop always terminates.
func paragraphSpans(text string, opts ChunkOptions) []span {
	size := opts.Size
	if size <= 0 {
		size = config.DefaultChunkSize
	}
	overlap := max(opts.Overlap, 0)
	step := max(size-overlap, 1)

	var spans []span
	for start := 0; start < len(text); start = runeBoundary(text, start+step) {
		end := runeBoundary(text, min(start+size, len(text)))
		if end < len(text) {
			end = extendToSentence(text, end)
		}
		if body := strings.TrimSpace(text[start:end]); body != "" {
			spans = append(spans, span{text: body, offset: start})
		}
		if end >= len(text) {
			break
		}
	}
	return spans
}

func extendToSentence(text string, end int) int {
	limit := min(end+sentenceSlack, len(text))
	if idx := strings.IndexAny(text[end:limit], ".!?"); idx >= 0 {
		return end + idx + 1
	}
	return end
}

func runeBoundary(text string, i int) int {
	if i >= len(text) {
		return len(text)
	}
	for i < len(text) && !utf8.RuneStart(text[i]) {
		i++
	}
	return i
}
