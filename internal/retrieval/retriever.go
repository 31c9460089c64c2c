// Package retrieval implements best-effort context retrieval: embed the
// query, search the vector index, and reduce matches to text snippets.
// Every upstream failure collapses to an empty result — retrieval
// augmentation degrades, it never fails a chat request.
package retrieval

import (
	"context"
	"time"

	"github.com/botify-ai/botify-backend/pkg/contracts"
	"github.com/botify-ai/botify-backend/pkg/models"
	"github.com/rs/zerolog/log"
)

// DefaultTopK is the number of neighbors fetched when the caller doesn't
// ask for a specific k.
const DefaultTopK = 3

// MaxTopK caps caller-supplied k so a single request can't pull the whole
// index into a prompt.
const MaxTopK = 10

// FallbackSnippetText stands in for a match whose metadata carries no text.
const FallbackSnippetText = "No text available"

// Retriever resolves a free-text query into ranked context snippets.
type Retriever struct {
	embeddings contracts.EmbeddingService
	index      contracts.VectorIndex
	topK       int
	timeout    time.Duration
}

// Option configures the retriever.
type Option func(*Retriever)

// WithTopK overrides the default neighbor count.
func WithTopK(k int) Option {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithTimeout bounds each upstream call (embedding, index query).
func WithTimeout(d time.Duration) Option {
	return func(r *Retriever) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// New creates a retriever over the given embedding service and index.
func New(emb contracts.EmbeddingService, index contracts.VectorIndex, opts ...Option) *Retriever {
	r := &Retriever{
		embeddings: emb,
		index:      index,
		topK:       DefaultTopK,
		timeout:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns up to k snippets for the query, descending by
// similarity. k <= 0 selects the configured default. The result is empty
// when either upstream fails; the failure is logged, never returned.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) models.RetrievedContext {
	if k <= 0 {
		k = r.topK
	}
	if k > MaxTopK {
		k = MaxTopK
	}

	embedCtx, cancel := context.WithTimeout(ctx, r.timeout)
	vector, err := r.embeddings.Embed(embedCtx, query)
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("Embedding failed, proceeding without retrieved context")
		return nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, r.timeout)
	matches, err := r.index.Query(queryCtx, vector, k)
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("Vector query failed, proceeding without retrieved context")
		return nil
	}

	snippets := make(models.RetrievedContext, 0, len(matches))
	for _, m := range matches {
		text := m.Metadata["text"]
		if text == "" {
			text = FallbackSnippetText
		}
		snippets = append(snippets, models.Snippet{Text: text, Score: m.Score})
	}

	log.Debug().
		Int("matches", len(snippets)).
		Int("top_k", k).
		Msg("Context retrieval complete")
	return snippets
}
