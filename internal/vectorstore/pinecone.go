package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/botify-ai/botify-backend/pkg/models"
)

// PineconeIndex implements contracts.VectorIndex against a Pinecone
// serverless index over its HTTP data-plane API.
type PineconeIndex struct {
	apiKey string
	host   string // index host, e.g. https://botify-products-xxxx.svc.pinecone.io
	client *http.Client
}

// PineconeOption configures the Pinecone driver.
type PineconeOption func(*PineconeIndex)

// WithPineconeHTTPClient replaces the default HTTP client.
func WithPineconeHTTPClient(c *http.Client) PineconeOption {
	return func(p *PineconeIndex) { p.client = c }
}

// NewPineconeIndex creates a Pinecone-backed vector index client.
func NewPineconeIndex(apiKey, host string, opts ...PineconeOption) *PineconeIndex {
	p := &PineconeIndex{
		apiKey: apiKey,
		host:   host,
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PineconeIndex) Kind() string { return "pinecone" }

type pineconeQueryRequest struct {
	Vector          []float64 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type pineconeQueryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

type pineconeUpsertRequest struct {
	Vectors []pineconeVector `json:"vectors"`
}

type pineconeVector struct {
	ID       string            `json:"id"`
	Values   []float64         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Query returns the topK nearest matches, order as returned by Pinecone
// (descending similarity).
func (p *PineconeIndex) Query(ctx context.Context, vector []float64, topK int) ([]models.VectorMatch, error) {
	reqBody := pineconeQueryRequest{Vector: vector, TopK: topK, IncludeMetadata: true}

	var result pineconeQueryResponse
	if err := p.post(ctx, "/query", reqBody, &result); err != nil {
		return nil, err
	}

	matches := make([]models.VectorMatch, 0, len(result.Matches))
	for _, m := range result.Matches {
		md := make(map[string]string, len(m.Metadata))
		for k, v := range m.Metadata {
			if s, ok := v.(string); ok {
				md[k] = s
			}
		}
		matches = append(matches, models.VectorMatch{ID: m.ID, Score: m.Score, Metadata: md})
	}
	return matches, nil
}

// Upsert writes documents to the index.
func (p *PineconeIndex) Upsert(ctx context.Context, docs []models.VectorDoc) error {
	if len(docs) == 0 {
		return nil
	}
	vectors := make([]pineconeVector, 0, len(docs))
	for _, d := range docs {
		vectors = append(vectors, pineconeVector{ID: d.ID, Values: d.Vector, Metadata: d.Metadata})
	}
	return p.post(ctx, "/vectors/upsert", pineconeUpsertRequest{Vectors: vectors}, nil)
}

func (p *PineconeIndex) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("pinecone: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("pinecone: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("pinecone: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinecone API returned %d: %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("pinecone: unmarshal response: %w", err)
		}
	}
	return nil
}
