// Package contracts defines the service interfaces at the boundary between
// the Botify core and its external SaaS collaborators.
//
// The core (admission gateway, retriever, prompt composer, orchestrator)
// depends only on these interfaces. Concrete drivers live under
// internal/embeddings, internal/vectorstore, internal/completion, and
// internal/conversations, so swapping a provider is a single line change
// in the wiring code (pkg/server).
package contracts

import (
	"context"

	"github.com/botify-ai/botify-backend/pkg/models"
)

// EmbeddingService converts free text into a vector representation.
// Failures are expected (network, quota) and callers on the retrieval
// path must degrade rather than propagate them.
type EmbeddingService interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorIndex performs nearest-neighbor search over a precomputed
// embedding index. Matches are ordered by descending similarity.
type VectorIndex interface {
	// Query returns the topK nearest matches for the given vector.
	Query(ctx context.Context, vector []float64, topK int) ([]models.VectorMatch, error)

	// Upsert inserts or updates documents in the index.
	Upsert(ctx context.Context, docs []models.VectorDoc) error
}

// CompletionService generates a chat completion from a system and user
// message pair.
type CompletionService interface {
	Complete(ctx context.Context, system, user string, params models.CompletionParams) (string, error)
}

// ConversationStore is the side-channel transcript log. Writes are
// best-effort: a store failure must never fail the chat request.
type ConversationStore interface {
	Append(ctx context.Context, conv *models.Conversation) error
	Recent(ctx context.Context, limit int) ([]models.Conversation, error)
}
