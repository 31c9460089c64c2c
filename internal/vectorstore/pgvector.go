package vectorstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/botify-ai/botify-backend/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// PgvectorIndex implements contracts.VectorIndex using PostgreSQL with the
// pgvector extension. Users must provide a PostgreSQL instance with
// pgvector installed.
type PgvectorIndex struct {
	pool       *pgxpool.Pool
	dimensions int
}

// NewPgvectorIndex connects to Postgres and creates the vector table and
// indexes if they don't exist.
func NewPgvectorIndex(ctx context.Context, connURL string, dimensions int) (*PgvectorIndex, error) {
	pool, err := pgxpool.New(ctx, connURL)
	if err != nil {
		return nil, fmt.Errorf("pgvector connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgvector ping: %w", err)
	}

	s := &PgvectorIndex{pool: pool, dimensions: dimensions}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgvector migrate: %w", err)
	}

	log.Info().Int("dims", dimensions).Msg("pgvector index initialized")
	return s, nil
}

func (s *PgvectorIndex) migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS botify_vectors (
			id         TEXT PRIMARY KEY,
			metadata   JSONB NOT NULL DEFAULT '{}',
			vector     vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`, s.dimensions)

	_, err := s.pool.Exec(ctx, ddl)
	return err
}

func (s *PgvectorIndex) Kind() string { return "pgvector" }

// Upsert inserts or updates documents with a batch INSERT ... ON CONFLICT.
func (s *PgvectorIndex) Upsert(ctx context.Context, docs []models.VectorDoc) error {
	if len(docs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO botify_vectors (id, metadata, vector, created_at) VALUES `)

	args := make([]interface{}, 0, len(docs)*4)
	for i, d := range docs {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i*4 + 1
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d)", base, base+1, base+2, base+3))

		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		created := d.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		metadata := d.Metadata
		if metadata == nil {
			metadata = map[string]string{}
		}
		args = append(args, id, metadata, pgvectorArray(d.Vector), created)
	}

	sb.WriteString(` ON CONFLICT (id) DO UPDATE SET
		metadata = EXCLUDED.metadata,
		vector = EXCLUDED.vector`)

	_, err := s.pool.Exec(ctx, sb.String(), args...)
	return err
}

// Query returns the topK nearest documents by cosine similarity.
func (s *PgvectorIndex) Query(ctx context.Context, vector []float64, topK int) ([]models.VectorMatch, error) {
	query := `SELECT id, metadata, 1 - (vector <=> $1) AS score
		FROM botify_vectors
		ORDER BY vector <=> $1
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, pgvectorArray(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("pgvector query: %w", err)
	}
	defer rows.Close()

	var matches []models.VectorMatch
	for rows.Next() {
		var m models.VectorMatch
		if err := rows.Scan(&m.ID, &m.Metadata, &m.Score); err != nil {
			return nil, fmt.Errorf("pgvector scan: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// HealthCheck pings the database.
func (s *PgvectorIndex) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *PgvectorIndex) Close() {
	s.pool.Close()
}

// pgvectorArray converts a float64 slice to pgvector's text format: [1.0,2.0,3.0]
func pgvectorArray(v []float64) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(fmt.Sprintf("%g", f))
	}
	sb.WriteByte(']')
	return sb.String()
}
