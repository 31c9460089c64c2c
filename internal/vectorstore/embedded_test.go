package vectorstore_test

import (
	"context"
	"testing"

	"github.com/botify-ai/botify-backend/internal/vectorstore"
	"github.com/botify-ai/botify-backend/pkg/models"
)

func seedIndex(t *testing.T) *vectorstore.EmbeddedIndex {
	t.Helper()
	idx := vectorstore.NewEmbeddedIndex()
	err := idx.Upsert(context.Background(), []models.VectorDoc{
		{ID: "shoes", Vector: []float64{1, 0, 0}, Metadata: map[string]string{"text": "Trail running shoes"}},
		{ID: "jacket", Vector: []float64{0, 1, 0}, Metadata: map[string]string{"text": "Rain jacket"}},
		{ID: "socks", Vector: []float64{0.9, 0.1, 0}, Metadata: map[string]string{"text": "Wool socks"}},
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	return idx
}

func TestQueryRanksByCosineSimilarity(t *testing.T) {
	idx := seedIndex(t)

	matches, err := idx.Query(context.Background(), []float64{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "shoes" {
		t.Errorf("best match should be shoes, got %s", matches[0].ID)
	}
	if matches[1].ID != "socks" {
		t.Errorf("second match should be socks, got %s", matches[1].ID)
	}
	if matches[0].Score < matches[1].Score {
		t.Errorf("scores not descending: %f < %f", matches[0].Score, matches[1].Score)
	}
}

func TestQuerySkipsDimensionMismatch(t *testing.T) {
	idx := seedIndex(t)

	matches, err := idx.Query(context.Background(), []float64{1, 0}, 10)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("mismatched dimensions should yield no matches, got %d", len(matches))
	}
}

func TestUpsertReplacesByID(t *testing.T) {
	idx := seedIndex(t)
	ctx := context.Background()

	err := idx.Upsert(ctx, []models.VectorDoc{
		{ID: "shoes", Vector: []float64{0, 0, 1}, Metadata: map[string]string{"text": "Hiking boots"}},
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	n, _ := idx.Count(ctx)
	if n != 3 {
		t.Fatalf("expected 3 docs after replace, got %d", n)
	}

	matches, _ := idx.Query(ctx, []float64{0, 0, 1}, 1)
	if len(matches) != 1 || matches[0].Metadata["text"] != "Hiking boots" {
		t.Errorf("replaced doc not returned: %+v", matches)
	}
}

func TestUpsertGeneratesIDs(t *testing.T) {
	idx := vectorstore.NewEmbeddedIndex()
	ctx := context.Background()

	err := idx.Upsert(ctx, []models.VectorDoc{{Vector: []float64{1}}})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	matches, _ := idx.Query(ctx, []float64{1}, 1)
	if len(matches) != 1 || matches[0].ID == "" {
		t.Errorf("expected generated ID, got %+v", matches)
	}
}
