package config

import (
	"context"
	"log/slog"
	"time"
)

type ctxKey string

const (
	LOG_LEVEL_PROD                     = slog.LevelInfo
	TRACE_ID_KEY                ctxKey = "traceId"
	RATE_LIMIT_PER_SECOND              = 2
	BURST_RATE_LIMIT_PER_SECOND        = 5
	RateLimiterIdleEviction            = 10 * time.Minute

	//identity headers set by the presentation layer
	HeaderUserName      = "X-User-Name"
	HeaderUserTradition = "X-User-Tradition"
	HeaderUserAge       = "X-User-Age"
	GuestTradition      = "all"

	//worker pool (ingestion jobs)
	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	IngestJobTimeout                = 30 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 90 * time.Second //warm-up retries block the chat request
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second
	ChatRequestTimeout     = 80 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//chunker
	DefaultChunkSize      = 1200
	DefaultChunkOverlap   = 150
	MinVerseChunkLength   = 50
	MinChapterChunkLength = 100
	PayloadTextPreview    = 500

	//ingestion pacing
	IngestBatchSize  = 10
	IngestPauseEvery = 10
	IngestPauseFor   = 500 * time.Millisecond

	//retrieval
	DefaultTopK            = 5
	FilterOverFetchFactor  = 4
	MinFilterOverFetch     = 32
	DirectMatchTokenRatio  = 0.4
	DirectMatchSnippetHead = 200
	DirectMatchMinTokens   = 4

	//vectorDB
	DefaultCollectionName   = "scripture_chunks"
	DefaultVectorDimension  = 768
	QdrantConnectionTimeout = 30 * time.Second
	QdrantGrpcPort          = 6334
	QdrantPoolSize          = 1 //2-5 is preferred for prod according to documentation

	//generation
	DefaultTemperature  float64 = 0.7
	DefaultMaxTokens            = 400
	WarmupAttempts              = 3
	WarmupInitialWait           = 2 * time.Second
	WarmupMaxWait               = 20 * time.Second
	ProviderCallTimeout         = 45 * time.Second

	//model defaults
	GeminiModelName          = "gemini-2.5-flash-lite"
	GoogleEmbeddingModel     = "gemini-embedding-001"
	OpenAIModelName          = "gpt-4o-mini"
	OpenAIEmbeddingModel     = "text-embedding-3-small"
	OpenRouterModelName      = "meta-llama/llama-3.1-8b-instruct:free"
	OpenRouterBaseURL        = "https://openrouter.ai/api/v1"
	AnthropicModelName       = "claude-3-5-haiku-latest"
	AnthropicBaseURL         = "https://api.anthropic.com"
	AnthropicAPIVersion      = "2023-06-01"
	HuggingFaceModelName     = "mistralai/Mistral-7B-Instruct-v0.3"
	HuggingFaceBaseURL       = "https://router.huggingface.co/v1"
	OllamaServerURL          = "http://localhost:11434"
	OllamaModelName          = "llama3.2"
	OllamaEmbeddingModelName = "nomic-embed-text"

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore          = 0
	RedisConversationStore = 1

	//redis timeouts
	RedisJobStoreTTL          = 24 * time.Hour
	RedisConversationStoreTTL = 7 * 24 * time.Hour
	ConversationHistoryTurns  = 6

	UploadDirName = "temporary_data"
)

// TraceID returns the request trace id stored in ctx, or "" when there is none.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	trace, _ := ctx.Value(TRACE_ID_KEY).(string)
	return trace
}

// WithTraceID returns a copy of ctx carrying the trace id.
func WithTraceID(ctx context.Context, trace string) context.Context {
	return context.WithValue(ctx, TRACE_ID_KEY, trace)
}
