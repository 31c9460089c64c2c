// Package server provides the entry point for initializing the Botify
// backend: it loads configuration, builds the SaaS drivers, wires the
// core services, and returns a ready HTTP handler plus the background
// evictor and shutdown hooks.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/botify-ai/botify-backend/internal/api"
	"github.com/botify-ai/botify-backend/internal/api/handlers"
	"github.com/botify-ai/botify-backend/internal/chat"
	"github.com/botify-ai/botify-backend/internal/completion"
	"github.com/botify-ai/botify-backend/internal/config"
	"github.com/botify-ai/botify-backend/internal/conversations"
	"github.com/botify-ai/botify-backend/internal/embeddings"
	"github.com/botify-ai/botify-backend/internal/ratelimit"
	"github.com/botify-ai/botify-backend/internal/retrieval"
	"github.com/botify-ai/botify-backend/internal/telemetry"
	"github.com/botify-ai/botify-backend/internal/vectorstore"

	"github.com/rs/zerolog/log"
)

// Server holds the initialized Botify backend.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Evictor is the background window evictor; the caller starts it in
	// its own goroutine and stops it via context cancellation.
	Evictor *ratelimit.Evictor

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all components from environment configuration.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the backend with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	// Admission: shared tracker, gateway, background evictor.
	tracker := ratelimit.NewWindowTracker()
	gateway := ratelimit.NewGateway(tracker, cfg.RateLimit.PerMinute, cfg.RateLimit.Window)
	evictor := ratelimit.NewEvictor(tracker, cfg.RateLimit.Window)
	log.Info().
		Int("limit_per_minute", cfg.RateLimit.PerMinute).
		Str("environment", cfg.Environment).
		Msg("Admission gateway initialized")

	// SaaS drivers.
	embedder := embeddings.NewOpenAIDriver(cfg.Embeddings.APIKey, cfg.Embeddings.Model)

	index, err := vectorstore.New(ctx, cfg.VectorStore)
	if err != nil {
		return nil, fmt.Errorf("init vector store: %w", err)
	}
	log.Info().Str("kind", cfg.VectorStore.Kind).Msg("Vector index initialized")

	completer := completion.NewDriver(cfg.Completion.APIKey, cfg.Completion.Endpoint, cfg.Completion.Model)

	// Core services.
	retriever := retrieval.New(embedder, index,
		retrieval.WithTopK(cfg.Retrieval.TopK),
		retrieval.WithTimeout(cfg.Retrieval.Timeout),
	)
	orchestrator := chat.NewOrchestrator(retriever, chat.NewComposer(), completer,
		chat.WithCompletionTimeout(cfg.Completion.Timeout),
	)
	convLog := conversations.NewMemoryLog(cfg.Conversations.MaxEntries)

	h := handlers.New(orchestrator, retriever, convLog, cfg.Version)
	router := api.NewRouter(h, gateway)

	return &Server{
		Handler:      router,
		Evictor:      evictor,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}
