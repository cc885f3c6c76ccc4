package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ProviderConfig is computed once at start-up and handed to the embedding
// router, the generation router and the vector store. It is never mutated.
type ProviderConfig struct {
	EmbeddingOrder  []string
	GenerationOrder []string
	VectorDimension int

	GoogleAPIKey         string
	GeminiModel          string
	GoogleEmbeddingModel string

	OpenAIAPIKey         string
	OpenAIModel          string
	OpenAIEmbeddingModel string
	ModerationEnabled    bool

	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string

	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string

	HuggingFaceAPIKey  string
	HuggingFaceModel   string
	HuggingFaceBaseURL string

	OllamaEnabled        bool
	OllamaURL            string
	OllamaModel          string
	OllamaEmbeddingModel string

	SpeechProvider string

	WarmupAttempts    int
	WarmupInitialWait time.Duration
	WarmupMaxWait     time.Duration
}

type StoreConfig struct {
	Collection         string
	LocalIndexPath     string //empty disables the local index
	LocalIndexCompress bool
	QdrantHost         string
	QdrantPort         int
	QdrantAPIKey       string
	QdrantUseTLS       bool
}

type RetrievalConfig struct {
	ChunkSize         int
	ChunkOverlap      int
	TopK              int
	TwoStage          bool
	ClassifierMode    string // "llm" or "keyword"
	EnhanceReferences bool
}

type ServerConfig struct {
	ListenAddr         string
	Production         bool
	AuthToken          string
	NoAuthBypass       bool
	PersonaCatalogPath string
	CorpusDir          string
}

type RedisConfig struct {
	Addr     string
	Password string
}

type Settings struct {
	Server    ServerConfig
	Providers ProviderConfig
	Store     StoreConfig
	Retrieval RetrievalConfig
	Redis     RedisConfig
}

// Load reads an optional .env file and then the process environment.
func Load() Settings {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds Settings from any key lookup, so tests can inject values.
func FromLookup(lookup func(string) (string, bool)) Settings {
	e := env{lookup: lookup}
	return Settings{
		Server: ServerConfig{
			ListenAddr:         e.str("LISTEN_ADDR", ServerListenAddr),
			Production:         e.str("APP_ENV", "development") == "production",
			AuthToken:          e.str("AUTH_TOKEN", ""),
			NoAuthBypass:       e.boolean("NO_AUTH_BYPASS", false),
			PersonaCatalogPath: e.str("PERSONA_CATALOG_PATH", ""),
			CorpusDir:          e.str("CORPUS_DIR", "data"),
		},
		Providers: ProviderConfig{
			EmbeddingOrder:  e.list("EMBEDDING_PROVIDERS", []string{"ollama", "google", "openai", "hash"}),
			GenerationOrder: e.list("GENERATION_PROVIDERS", []string{"huggingface", "openrouter", "openai", "anthropic", "gemini", "ollama"}),
			VectorDimension: e.integer("VECTOR_DIMENSION", DefaultVectorDimension),

			GoogleAPIKey:         e.str("GOOGLE_API_KEY", ""),
			GeminiModel:          e.str("GEMINI_MODEL", GeminiModelName),
			GoogleEmbeddingModel: e.str("GOOGLE_EMBEDDING_MODEL", GoogleEmbeddingModel),

			OpenAIAPIKey:         e.str("OPENAI_API_KEY", ""),
			OpenAIModel:          e.str("OPENAI_MODEL", OpenAIModelName),
			OpenAIEmbeddingModel: e.str("OPENAI_EMBEDDING_MODEL", OpenAIEmbeddingModel),
			ModerationEnabled:    e.boolean("MODERATION_ENABLED", true),

			OpenRouterAPIKey:  e.str("OPENROUTER_API_KEY", ""),
			OpenRouterModel:   e.str("OPENROUTER_MODEL", OpenRouterModelName),
			OpenRouterBaseURL: e.str("OPENROUTER_BASE_URL", OpenRouterBaseURL),

			AnthropicAPIKey:  e.str("ANTHROPIC_API_KEY", ""),
			AnthropicModel:   e.str("ANTHROPIC_MODEL", AnthropicModelName),
			AnthropicBaseURL: e.str("ANTHROPIC_BASE_URL", AnthropicBaseURL),

			HuggingFaceAPIKey:  e.str("HUGGINGFACE_API_KEY", ""),
			HuggingFaceModel:   e.str("HUGGINGFACE_MODEL", HuggingFaceModelName),
			HuggingFaceBaseURL: e.str("HUGGINGFACE_BASE_URL", HuggingFaceBaseURL),

			OllamaEnabled:        e.boolean("OLLAMA_ENABLED", false),
			OllamaURL:            e.str("OLLAMA_URL", OllamaServerURL),
			OllamaModel:          e.str("OLLAMA_MODEL", OllamaModelName),
			OllamaEmbeddingModel: e.str("OLLAMA_EMBEDDING_MODEL", OllamaEmbeddingModelName),

			SpeechProvider: e.str("SPEECH_PROVIDER", ""),

			WarmupAttempts:    e.integer("WARMUP_ATTEMPTS", WarmupAttempts),
			WarmupInitialWait: e.duration("WARMUP_INITIAL_WAIT", WarmupInitialWait),
			WarmupMaxWait:     e.duration("WARMUP_MAX_WAIT", WarmupMaxWait),
		},
		Store: StoreConfig{
			Collection:         e.str("VECTOR_COLLECTION", DefaultCollectionName),
			LocalIndexPath:     e.str("LOCAL_INDEX_PATH", "vector_index"),
			LocalIndexCompress: e.boolean("LOCAL_INDEX_COMPRESS", false),
			QdrantHost:         e.str("QDRANT_HOST", ""),
			QdrantPort:         e.integer("QDRANT_PORT", QdrantGrpcPort),
			QdrantAPIKey:       e.str("QDRANT_API_KEY", ""),
			QdrantUseTLS:       e.boolean("QDRANT_USE_TLS", true),
		},
		Retrieval: RetrievalConfig{
			ChunkSize:         e.integer("CHUNK_SIZE", DefaultChunkSize),
			ChunkOverlap:      e.integer("CHUNK_OVERLAP", DefaultChunkOverlap),
			TopK:              e.integer("TOP_K", DefaultTopK),
			TwoStage:          e.boolean("TWO_STAGE_GENERATION", false),
			ClassifierMode:    strings.ToLower(e.str("CLASSIFIER_MODE", "llm")),
			EnhanceReferences: e.boolean("ENHANCE_REFERENCES", true),
		},
		Redis: RedisConfig{
			Addr:     e.str("REDIS_ADDR", RedisAddr),
			Password: e.str("REDIS_PASSWORD", ""),
		},
	}
}

type env struct {
	lookup func(string) (string, bool)
}

func (e env) str(key, fallback string) string {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (e env) integer(key string, fallback int) int {
	n, err := strconv.Atoi(e.str(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func (e env) boolean(key string, fallback bool) bool {
	b, err := strconv.ParseBool(e.str(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func (e env) duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(e.str(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

func (e env) list(key string, fallback []string) []string {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
