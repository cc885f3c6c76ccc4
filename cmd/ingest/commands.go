package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/akolanti/PersonaRAG/internal/providers"
	"github.com/akolanti/PersonaRAG/internal/rag/ingest"
	"github.com/akolanti/PersonaRAG/internal/rag/persona"
	"github.com/akolanti/PersonaRAG/internal/rag/vectorDB"
	"github.com/spf13/cobra"
)

type corpusIngester interface {
	ingest.Ingester
	IngestDir(ctx context.Context, root string) ([]ingest.Result, error)
}

type runtime struct {
	pipeline   corpusIngester
	store      vectorDB.Store
	collection string
}

// buildRuntime is swapped in tests.
var buildRuntime = func(ctx context.Context) (*runtime, error) {
	settings := config.Load()
	if collection != "" {
		settings.Store.Collection = collection
	}
	policy, err := persona.Load(settings.Server.PersonaCatalogPath)
	if err != nil {
		return nil, err
	}
	set := providers.Build(ctx, settings)

	opts := ingest.DefaultOptions()
	opts.Collection = set.Collection
	opts.Chunk = ingest.ChunkOptions{Size: settings.Retrieval.ChunkSize, Overlap: settings.Retrieval.ChunkOverlap}
	if strategy != "" {
		opts.Strategy = ingest.ChunkStrategy(strategy)
	}
	return &runtime{
		pipeline:   ingest.NewPipeline(set.Embedder, set.Store, policy, opts),
		store:      set.Store,
		collection: set.Collection,
	}, nil
}

var (
	collection string
	strategy   string
	category   string
	title      string
	startAt    int
	asJSON     bool
)

var rootCmd = &cobra.Command{
	Use:          "ingest",
	Short:        "Load scripture into the vector index",
	SilenceUsage: true,
}

var dirCmd = &cobra.Command{
	Use:   "dir [path]",
	Short: "Ingest every supported file under a corpus directory",
	Long: `Walks the directory. Each sub-directory is treated as a category and
loose files fall into the default category. One failing document does not
stop the walk.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDir,
}

var fileCmd = &cobra.Command{
	Use:   "file [path]",
	Short: "Ingest a single document",
	Args:  cobra.ExactArgs(1),
	RunE:  runFile,
}

var textCmd = &cobra.Command{
	Use:   "text [text]",
	Short: "Ingest raw text, reading stdin when no argument is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runText,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the collection the index currently serves",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&collection, "collection", "", "vector collection, defaults to VECTOR_COLLECTION")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "output results as JSON")

	for _, c := range []*cobra.Command{fileCmd, textCmd} {
		c.Flags().StringVar(&category, "category", "", "corpus category for documents without a header")
		c.Flags().IntVar(&startAt, "start-at", 0, "first chunk index to upsert, used to resume")
	}
	textCmd.Flags().StringVar(&title, "title", "", "document title when the text carries no header")
	rootCmd.PersistentFlags().StringVar(&strategy, "strategy", "", "chunking strategy: auto, verse, chapter or paragraph")

	rootCmd.AddCommand(dirCmd, fileCmd, textCmd, infoCmd)
}

func runDir(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	root := config.Load().Server.CorpusDir
	if len(args) == 1 {
		root = args[0]
	}
	results, err := rt.pipeline.IngestDir(cmd.Context(), root)
	if printErr := printResults(cmd, results); printErr != nil {
		return printErr
	}
	if err != nil {
		return fmt.Errorf("corpus ingestion incomplete: %w", err)
	}
	return nil
}

func runFile(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	res, err := rt.pipeline.IngestFile(cmd.Context(), args[0], category, startAt)
	return finish(cmd, res, err)
}

func runText(cmd *cobra.Command, args []string) error {
	var raw string
	if len(args) == 1 {
		raw = args[0]
	} else {
		data, err := readAll(cmd)
		if err != nil {
			return err
		}
		raw = string(data)
	}
	doc, body := ingest.ParseDocument(raw)
	if strings.TrimSpace(body) == "" {
		return errors.New("no text to ingest")
	}
	if title != "" {
		doc.Title = title
	}
	if category != "" {
		doc.Category = category
	}
	doc.ContentType = commonModels.TXT
	doc.IngestedAt = time.Now()

	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	res, err := rt.pipeline.IngestDocument(cmd.Context(), doc, body, startAt)
	return finish(cmd, res, err)
}

func runInfo(cmd *cobra.Command, _ []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	info, err := rt.store.Info(cmd.Context(), rt.collection)
	if err != nil {
		return fmt.Errorf("collection info: %w", err)
	}
	if asJSON {
		return printJSON(cmd, info)
	}
	cmd.Printf("collection: %s\nbackend:    %s\npoints:     %d\ndimensions: %d\n", info.Name, info.Backend, info.Points, info.Dimensions)
	return nil
}

func finish(cmd *cobra.Command, res ingest.Result, err error) error {
	if printErr := printResults(cmd, []ingest.Result{res}); printErr != nil {
		return printErr
	}
	if err != nil {
		return err
	}
	if !res.Complete() {
		cmd.Printf("resume with --start-at %d\n", res.ResumeFrom)
	}
	return nil
}

func printResults(cmd *cobra.Command, results []ingest.Result) error {
	if asJSON {
		return printJSON(cmd, results)
	}
	for _, r := range results {
		if r.Title == "" {
			continue
		}
		cmd.Printf("%s: %d/%d chunks (%s)\n", r.Title, r.Upserted, r.Total, r.Strategy)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func readAll(cmd *cobra.Command) ([]byte, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && f == os.Stdin {
		if stat, err := f.Stat(); err == nil && stat.Mode()&os.ModeCharDevice != 0 {
			return nil, errors.New("no text given and stdin is a terminal")
		}
	}
	return io.ReadAll(in)
}
