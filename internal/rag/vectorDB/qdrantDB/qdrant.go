package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

const healthTTL = 30 * time.Second

// ClientHolder is the remote managed vector service backend.
type ClientHolder struct {
	QObj   *qdrant.Client
	logger *logger_i.Logger

	mu          sync.Mutex
	lastCheck   time.Time
	lastHealthy bool
}

// GetQdrantClient returns nil when no host is configured or the client cannot
// be created. The connection is closed when ctx is cancelled.
func GetQdrantClient(ctx context.Context, cfg config.StoreConfig) *ClientHolder {
	logger := logger_i.NewLogger("Qdrant")
	if cfg.QdrantHost == "" {
		logger.Info("remote vector service not configured")
		return nil
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     cfg.QdrantHost,
		Port:     cfg.QdrantPort,
		APIKey:   cfg.QdrantAPIKey,
		UseTLS:   cfg.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "error", err)
		return nil
	}
	go closeQdrant(ctx, client, logger)
	return &ClientHolder{QObj: client, logger: logger}
}

func closeQdrant(ctx context.Context, qi *qdrant.Client, logger *logger_i.Logger) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) Name() string  { return "remote" }
func (db *ClientHolder) Durable() bool { return true }

// Available runs a health check at most once per healthTTL.
func (db *ClientHolder) Available(ctx context.Context) bool {
	if db == nil || db.QObj == nil {
		return false
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if !db.lastCheck.IsZero() && time.Since(db.lastCheck) < healthTTL {
		return db.lastHealthy
	}
	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := db.QObj.HealthCheck(checkCtx)
	db.lastCheck = time.Now()
	db.lastHealthy = err == nil
	if err != nil {
		db.logger.WithTrace(ctx).Warn("qdrant health check failed", "error", err)
	}
	return db.lastHealthy
}

func (db *ClientHolder) EnsureCollection(ctx context.Context, collectionName string, dim int) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}
	exists, err := db.QObj.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func (db *ClientHolder) Upsert(ctx context.Context, collectionName string, points []commonModels.EmbeddedPoint) error {
	qdrantPoints := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: toPayload(p.Payload),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Search(ctx context.Context, collectionName string, vector []float32, k int, filters commonModels.Filters) ([]commonModels.RetrievedSnippet, error) {
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		Filter:         toFilter(filters),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	out := make([]commonModels.RetrievedSnippet, 0, len(result))
	for _, hit := range result {
		out = append(out, commonModels.RetrievedSnippet{
			ID:      pointID(hit.GetId()),
			Score:   hit.GetScore(),
			Payload: fromPayload(hit.GetPayload()),
		})
	}
	return out, nil
}

func (db *ClientHolder) Count(ctx context.Context, collectionName string) (int, error) {
	n, err := db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: collectionName,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (db *ClientHolder) Dimensions(ctx context.Context, collectionName string) (int, error) {
	info, err := db.QObj.GetCollectionInfo(ctx, collectionName)
	if err != nil {
		return 0, err
	}
	return int(info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()), nil
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return fmt.Sprintf("%d", id.GetNum())
}
