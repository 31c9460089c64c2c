package retrieval_test

import (
	"context"
	"errors"
	"testing"

	"github.com/botify-ai/botify-backend/internal/retrieval"
	"github.com/botify-ai/botify-backend/pkg/models"
)

type stubEmbedder struct {
	vector []float64
	err    error
	calls  int
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	s.calls++
	return s.vector, s.err
}

type stubIndex struct {
	matches []models.VectorMatch
	err     error
	lastK   int
}

func (s *stubIndex) Query(_ context.Context, _ []float64, topK int) ([]models.VectorMatch, error) {
	s.lastK = topK
	return s.matches, s.err
}

func (s *stubIndex) Upsert(_ context.Context, _ []models.VectorDoc) error { return nil }

func TestRetrieveReturnsSnippetsInOrder(t *testing.T) {
	idx := &stubIndex{matches: []models.VectorMatch{
		{ID: "a", Score: 0.97, Metadata: map[string]string{"text": "Wireless headphones, 30h battery"}},
		{ID: "b", Score: 0.85, Metadata: map[string]string{"text": "Bluetooth speaker"}},
	}}
	r := retrieval.New(&stubEmbedder{vector: []float64{0.1, 0.2}}, idx)

	got := r.Retrieve(context.Background(), "headphones", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 snippets, got %d", len(got))
	}
	if got[0].Text != "Wireless headphones, 30h battery" || got[0].Score != 0.97 {
		t.Errorf("unexpected first snippet: %+v", got[0])
	}
	if got[1].Text != "Bluetooth speaker" {
		t.Errorf("unexpected second snippet: %+v", got[1])
	}
}

func TestRetrieveEmbeddingFailureDegradesToEmpty(t *testing.T) {
	r := retrieval.New(
		&stubEmbedder{err: errors.New("openai: connection refused")},
		&stubIndex{matches: []models.VectorMatch{{ID: "a", Score: 1}}},
	)

	if got := r.Retrieve(context.Background(), "anything", 3); len(got) != 0 {
		t.Fatalf("expected empty result on embedding failure, got %d snippets", len(got))
	}
}

func TestRetrieveIndexFailureDegradesToEmpty(t *testing.T) {
	r := retrieval.New(
		&stubEmbedder{vector: []float64{1, 0}},
		&stubIndex{err: errors.New("pinecone: 500")},
	)

	if got := r.Retrieve(context.Background(), "anything", 3); len(got) != 0 {
		t.Fatalf("expected empty result on index failure, got %d snippets", len(got))
	}
}

func TestRetrieveUsesDefaultAndCapsTopK(t *testing.T) {
	idx := &stubIndex{}
	r := retrieval.New(&stubEmbedder{vector: []float64{1}}, idx)

	r.Retrieve(context.Background(), "q", 0)
	if idx.lastK != retrieval.DefaultTopK {
		t.Errorf("k=0 should select default %d, index saw %d", retrieval.DefaultTopK, idx.lastK)
	}

	r.Retrieve(context.Background(), "q", 500)
	if idx.lastK != retrieval.MaxTopK {
		t.Errorf("oversized k should be capped at %d, index saw %d", retrieval.MaxTopK, idx.lastK)
	}
}

func TestRetrieveFallbackTextForMissingMetadata(t *testing.T) {
	idx := &stubIndex{matches: []models.VectorMatch{
		{ID: "a", Score: 0.9, Metadata: map[string]string{}},
		{ID: "b", Score: 0.8, Metadata: nil},
	}}
	r := retrieval.New(&stubEmbedder{vector: []float64{1}}, idx)

	got := r.Retrieve(context.Background(), "q", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 snippets, got %d", len(got))
	}
	for i, s := range got {
		if s.Text != retrieval.FallbackSnippetText {
			t.Errorf("snippet %d: expected fallback text, got %q", i, s.Text)
		}
	}
}
