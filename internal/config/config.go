// Package config loads all configuration for the Botify backend from
// environment variables, with a best-effort .env overlay for local dev.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// WindowDuration is the sliding rate-limit window. Fixed at one minute;
// the per-minute limit is the only tunable.
const WindowDuration = 60 * time.Second

// Config holds all configuration for the Botify backend.
type Config struct {
	Port        int
	Environment string
	Version     string

	RateLimit     RateLimitConfig
	Retrieval     RetrievalConfig
	Embeddings    EmbeddingsConfig
	Completion    CompletionConfig
	VectorStore   VectorStoreConfig
	Conversations ConversationsConfig
	Telemetry     TelemetryConfig
}

type RateLimitConfig struct {
	PerMinute int
	Window    time.Duration
}

type RetrievalConfig struct {
	TopK    int
	Timeout time.Duration
}

type EmbeddingsConfig struct {
	APIKey string
	Model  string
}

type CompletionConfig struct {
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
}

type VectorStoreConfig struct {
	// Kind selects the driver: "embedded", "pinecone", or "pgvector".
	Kind           string
	PineconeAPIKey string
	PineconeHost   string
	PgvectorURL    string
	Dimensions     int
}

type ConversationsConfig struct {
	// MaxEntries caps the in-memory transcript log.
	MaxEntries int
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first if present.
func Load() *Config {
	_ = godotenv.Load()

	env := envStr("ENVIRONMENT", "development")

	// Production gets the tighter quota; development stays permissive.
	defaultLimit := 200
	if env == "production" {
		defaultLimit = 60
	}

	return &Config{
		Port:        envInt("PORT", 8000),
		Environment: env,
		Version:     envStr("BOTIFY_VERSION", "0.4.0"),
		RateLimit: RateLimitConfig{
			PerMinute: envInt("RATE_LIMIT_PER_MINUTE", defaultLimit),
			Window:    WindowDuration,
		},
		Retrieval: RetrievalConfig{
			TopK:    envInt("RETRIEVAL_TOP_K", 3),
			Timeout: envDuration("RETRIEVAL_TIMEOUT", 10*time.Second),
		},
		Embeddings: EmbeddingsConfig{
			APIKey: envStr("OPENAI_API_KEY", ""),
			Model:  envStr("EMBEDDING_MODEL", "text-embedding-3-small"),
		},
		Completion: CompletionConfig{
			APIKey:   envStr("GROQ_API_KEY", ""),
			Endpoint: envStr("COMPLETION_ENDPOINT", "https://api.groq.com/openai/v1"),
			Model:    envStr("COMPLETION_MODEL", "llama-3.2-11b-text-preview"),
			Timeout:  envDuration("COMPLETION_TIMEOUT", 60*time.Second),
		},
		VectorStore: VectorStoreConfig{
			Kind:           envStr("VECTOR_STORE", "embedded"),
			PineconeAPIKey: envStr("PINECONE_API_KEY", ""),
			PineconeHost:   envStr("PINECONE_HOST", ""),
			PgvectorURL:    envStr("PGVECTOR_URL", ""),
			Dimensions:     envInt("VECTOR_DIMENSIONS", 1536),
		},
		Conversations: ConversationsConfig{
			MaxEntries: envInt("CONVERSATION_LOG_MAX", 1000),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "botify-backend"),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
