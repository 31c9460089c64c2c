// Package vectorstore provides the VectorIndex drivers: a Pinecone HTTP
// client, a pgvector-backed index, and an embedded in-memory index for
// development and tests.
package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/botify-ai/botify-backend/pkg/models"
	"github.com/google/uuid"
)

// EmbeddedIndex is a lightweight in-memory vector index using brute-force
// cosine similarity. Suitable for development and small catalogs; use
// pinecone or pgvector in production.
type EmbeddedIndex struct {
	mu   sync.RWMutex
	docs map[string]*models.VectorDoc
}

// NewEmbeddedIndex creates an empty in-memory index.
func NewEmbeddedIndex() *EmbeddedIndex {
	return &EmbeddedIndex{docs: make(map[string]*models.VectorDoc)}
}

func (s *EmbeddedIndex) Kind() string { return "embedded" }

// Upsert inserts or replaces documents by ID.
func (s *EmbeddedIndex) Upsert(_ context.Context, docs []models.VectorDoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, d := range docs {
		cp := d
		if cp.ID == "" {
			cp.ID = uuid.NewString()
		}
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = now
		}
		if cp.Metadata == nil {
			cp.Metadata = map[string]string{}
		}
		s.docs[cp.ID] = &cp
	}
	return nil
}

// Query returns the topK most similar documents, descending by score.
func (s *EmbeddedIndex) Query(_ context.Context, vector []float64, topK int) ([]models.VectorMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		doc   *models.VectorDoc
		score float64
	}
	var candidates []scored
	for _, d := range s.docs {
		if len(d.Vector) != len(vector) {
			continue
		}
		candidates = append(candidates, scored{doc: d, score: cosineSimilarity(vector, d.Vector)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}
	matches := make([]models.VectorMatch, 0, topK)
	for i := 0; i < topK; i++ {
		md := make(map[string]string, len(candidates[i].doc.Metadata))
		for k, v := range candidates[i].doc.Metadata {
			md[k] = v
		}
		matches = append(matches, models.VectorMatch{
			ID:       candidates[i].doc.ID,
			Score:    candidates[i].score,
			Metadata: md,
		})
	}
	return matches, nil
}

// Count returns the number of stored documents.
func (s *EmbeddedIndex) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
