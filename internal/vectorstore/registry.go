package vectorstore

import (
	"context"
	"fmt"

	"github.com/botify-ai/botify-backend/internal/config"
	"github.com/botify-ai/botify-backend/pkg/contracts"
	"github.com/rs/zerolog/log"
)

// New builds the vector index driver selected by configuration.
// An unconfigured managed driver falls back to the embedded index so the
// server still comes up in local development.
func New(ctx context.Context, cfg config.VectorStoreConfig) (contracts.VectorIndex, error) {
	switch cfg.Kind {
	case "pinecone":
		if cfg.PineconeAPIKey == "" || cfg.PineconeHost == "" {
			log.Warn().Msg("Pinecone selected but not configured, falling back to embedded index")
			return NewEmbeddedIndex(), nil
		}
		return NewPineconeIndex(cfg.PineconeAPIKey, cfg.PineconeHost), nil

	case "pgvector":
		if cfg.PgvectorURL == "" {
			log.Warn().Msg("pgvector selected but PGVECTOR_URL unset, falling back to embedded index")
			return NewEmbeddedIndex(), nil
		}
		return NewPgvectorIndex(ctx, cfg.PgvectorURL, cfg.Dimensions)

	case "", "embedded":
		return NewEmbeddedIndex(), nil

	default:
		return nil, fmt.Errorf("unknown vector store kind: %s", cfg.Kind)
	}
}
