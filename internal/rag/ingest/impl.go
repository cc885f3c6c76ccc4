package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/akolanti/PersonaRAG/internal/metrics"
	"github.com/akolanti/PersonaRAG/internal/rag/embedding"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
	"github.com/google/uuid"
)

// pointNamespace scopes the UUIDv5 point ids so they never collide with
// ids minted elsewhere.
var pointNamespace = uuid.MustParse("6f1c3a52-93a4-4c8e-9b1e-2f4d7a0c5e11")

// BookIndex resolves which tradition and deity groups own a title.
type BookIndex interface {
	BookIndex(title string) (commonModels.BookEntry, bool)
}

type Options struct {
	Collection string
	Chunk      ChunkOptions
	Strategy   ChunkStrategy
	BatchSize  int
	PauseEvery int
	PauseFor   time.Duration
}

func DefaultOptions() Options {
	return Options{
		Collection: config.DefaultCollectionName,
		Chunk:      DefaultChunkOptions(),
		Strategy:   StrategyAuto,
		BatchSize:  config.IngestBatchSize,
		PauseEvery: config.IngestPauseEvery,
		PauseFor:   config.IngestPauseFor,
	}
}

// Result describes how far a document got. ResumeFrom is the first chunk
// index that was not upserted.
type Result struct {
	Title         string        `json:"title"`
	Strategy      ChunkStrategy `json:"strategy"`
	Total         int           `json:"total"`
	Upserted      int           `json:"upserted"`
	ResumeFrom    int           `json:"resume_from"`
	QuotaExceeded bool          `json:"quota_exceeded"`
}

func (r Result) Complete() bool {
	return r.ResumeFrom >= r.Total
}

type Pipeline struct {
	embedder embedding.Embedder
	store    vectorDB.Store
	books    BookIndex
	opts     Options
	logger   *logger_i.Logger
}

func NewPipeline(embedder embedding.Embedder, store vectorDB.Store, books BookIndex, opts Options) *Pipeline {
	if opts.BatchSize <= 0 {
		opts.BatchSize = config.IngestBatchSize
	}
	if opts.Collection == "" {
		opts.Collection = config.DefaultCollectionName
	}
	return &Pipeline{
		embedder: embedder,
		store:    store,
		books:    books,
		opts:     opts,
		logger:   logger_i.NewLogger("Ingestion"),
	}
}

// PointID is stable for a (title, chunk index) pair so re-ingestion replaces
// points instead of duplicating them.
func PointID(title string, index int) string {
	return uuid.NewSHA1(pointNamespace, fmt.Appendf(nil, "%s#%d", title, index)).String()
}

// IngestDocument chunks, embeds and upserts one document starting at chunk
// startAt. Upserts are incremental: on failure everything before ResumeFrom
// is already stored.
func (p *Pipeline) IngestDocument(ctx context.Context, doc commonModels.Document, body string, startAt int) (Result, error) {
	logger := p.logger.WithTrace(ctx).With("title", doc.Title)

	chunks, strategy := Chunk(body, p.opts.Strategy, p.opts.Chunk)
	res := Result{Title: doc.Title, Strategy: strategy, Total: len(chunks), ResumeFrom: max(startAt, 0)}
	if len(chunks) == 0 {
		logger.Warn("document has no content")
		return res, nil
	}

	book := doc.Title
	if p.books != nil {
		if entry, ok := p.books.BookIndex(doc.Title); ok {
			book = entry.Book
			doc.Tradition = entry.Tradition
			doc.DeityGroups = entry.DeityGroups
		}
	}
	logger.Info("ingesting document", "strategy", strategy, "chunks", len(chunks), "start_at", res.ResumeFrom, "tradition", doc.Tradition)

	ensured := false
	sincePause := 0
	for start := res.ResumeFrom; start < len(chunks); start += p.opts.BatchSize {
		if p.opts.PauseEvery > 0 && sincePause >= p.opts.PauseEvery {
			if err := p.pause(ctx); err != nil {
				return res, err
			}
			sincePause = 0
		}
		end := min(start+p.opts.BatchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			if errors.Is(err, embedding.ErrQuotaExceeded) {
				res.QuotaExceeded = true
				logger.Warn("embedding quota exceeded, aborting document", "resume_from", res.ResumeFrom)
			}
			return res, fmt.Errorf("embedding chunks %d-%d of %q: %w", start, end-1, doc.Title, err)
		}
		if len(vectors) != len(batch) || len(vectors[0]) == 0 {
			return res, fmt.Errorf("embedding chunks %d-%d of %q: %w", start, end-1, doc.Title, embedding.ErrEmptyResponse)
		}

		if !ensured {
			if err := p.store.EnsureCollection(ctx, p.opts.Collection, len(vectors[0])); err != nil {
				return res, fmt.Errorf("ensuring collection %s: %w", p.opts.Collection, err)
			}
			ensured = true
		}

		points := make([]commonModels.EmbeddedPoint, len(batch))
		for i, c := range batch {
			points[i] = commonModels.EmbeddedPoint{
				ID:      PointID(doc.Title, c.Index),
				Vector:  vectors[i],
				Payload: payloadFor(doc, book, c),
			}
		}
		if err := p.store.Upsert(ctx, p.opts.Collection, points); err != nil {
			return res, fmt.Errorf("upserting chunks %d-%d of %q: %w", start, end-1, doc.Title, err)
		}

		res.Upserted += len(points)
		res.ResumeFrom = end
		sincePause += len(points)
		metrics.ChunksIngested(string(batch[0].Type), len(points))
		logger.Debug("batch upserted", "through", end, "of", len(chunks))
	}

	logger.Info("document ingested", "upserted", res.Upserted)
	return res, nil
}

func (p *Pipeline) pause(ctx context.Context) error {
	if p.opts.PauseFor <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.opts.PauseFor):
		return nil
	}
}

func payloadFor(doc commonModels.Document, book string, c commonModels.Chunk) commonModels.Payload {
	return commonModels.Payload{
		SourceTitle: doc.Title,
		Book:        book,
		Tradition:   doc.Tradition,
		DeityGroups: doc.DeityGroups,
		Category:    doc.Category,
		Translator:  doc.Translator,
		Language:    doc.Language,
		Chapter:     c.Chapter,
		Verse:       c.Verse,
		Text:        commonModels.PreviewText(c.Text, config.PayloadTextPreview),
		FullText:    c.Text,
		ChunkType:   c.Type,
		ChunkIndex:  c.Index,
		TotalChunks: c.Total,
	}
}

// IngestFile extracts a file, parses its header and ingests it. category
// overrides a missing header category.
func (p *Pipeline) IngestFile(ctx context.Context, path, category string, startAt int) (Result, error) {
	docType := getDocType(path)
	if docType == commonModels.ERR {
		return Result{}, fmt.Errorf("unsupported document type: %s", filepath.Ext(path))
	}

	text, err := extractText(path, docType, p.logger.WithTrace(ctx))
	if err != nil {
		return Result{}, err
	}

	doc, body := ParseDocument(text)
	doc.ContentType = docType
	doc.IngestedAt = time.Now()
	if doc.Title == defaultTitle {
		doc.Title = titleFromFileName(path)
	}
	if category != "" && doc.Category == defaultCategory {
		doc.Category = category
	}
	return p.IngestDocument(ctx, doc, body, startAt)
}

// IngestDir walks root sequentially. Each sub-directory is a category; loose
// files fall into the default category. One failing document does not stop
// the walk.
func (p *Pipeline) IngestDir(ctx context.Context, root string) ([]Result, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory: %w", err)
	}

	var results []Result
	var errs []error
	ingest := func(path, category string) {
		res, err := p.IngestFile(ctx, path, category, 0)
		results = append(results, res)
		if err != nil {
			p.logger.WithTrace(ctx).Error("document ingestion failed", "path", path, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		path := filepath.Join(root, entry.Name())
		if !entry.IsDir() {
			if getDocType(path) != commonModels.ERR {
				ingest(path, "")
			}
			continue
		}
		files, err := os.ReadDir(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, f := range files {
			filePath := filepath.Join(path, f.Name())
			if f.IsDir() || getDocType(filePath) == commonModels.ERR {
				continue
			}
			ingest(filePath, entry.Name())
		}
	}
	return results, errors.Join(errs...)
}

func getDocType(docPath string) commonModels.DocType {
	switch strings.ToLower(filepath.Ext(docPath)) {
	case ".pdf":
		return commonModels.PDF
	case ".txt", ".md":
		return commonModels.TXT
	case ".docx", ".odt", ".rtf":
		return commonModels.DOCX
	default:
		return commonModels.ERR
	}
}

func titleFromFileName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}
