// Package models defines the request, response, and domain types shared
// across the Botify backend.
package models

import "time"

// ── Chat ────────────────────────────────────────────────────

// ChatRequest is the inbound payload for the chat endpoint.
// Context carries optional page/product metadata captured by the
// browser extension (title, description, url, cart indicator).
type ChatRequest struct {
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// ChatResponse is the success payload for the chat endpoint.
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the caller-facing error payload. Error is always a
// short, non-technical message; upstream detail stays in the logs.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Classification labels the terminal state of a chat request.
type Classification string

const (
	ClassSuccess             Classification = "success"
	ClassRateLimited         Classification = "rate_limited"
	ClassUpstreamAuthError   Classification = "upstream_auth_error"
	ClassUpstreamRateLimited Classification = "upstream_rate_limited"
	ClassUpstreamUnavailable Classification = "upstream_unavailable"
	ClassInternalError       Classification = "internal_error"
)

// ChatOutcome is the orchestrator's result: the text to return to the
// caller plus how the request terminated. Created per request, never
// persisted by the orchestrator itself.
type ChatOutcome struct {
	Response       string
	Classification Classification
}

// ── Retrieval ───────────────────────────────────────────────

// Snippet is a single piece of retrieved context with its similarity score.
type Snippet struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// RetrievedContext is an ordered sequence of snippets, descending by
// similarity score. May be empty.
type RetrievedContext []Snippet

// SearchRequest is the inbound payload for the semantic search endpoint.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// SearchResult is one semantic search hit.
type SearchResult struct {
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

// VectorMatch is a raw nearest-neighbor hit from a vector index.
type VectorMatch struct {
	ID       string
	Score    float64
	Metadata map[string]string
}

// VectorDoc is a document stored in a vector index.
type VectorDoc struct {
	ID        string
	Vector    []float64
	Metadata  map[string]string
	CreatedAt time.Time
}

// ── Prompting & completion ──────────────────────────────────

// ComposedPrompt is the bounded system prompt handed to the completion
// provider; the user message travels alongside it unchanged.
type ComposedPrompt struct {
	System string
}

// CompletionParams are the generation parameters for a completion call.
type CompletionParams struct {
	Model       string
	Temperature float64
	MaxTokens   int
	TopP        float64
	Stop        []string
}

// ── Admission ───────────────────────────────────────────────

// QuotaDecision is the per-request admission verdict. Derived from the
// client's window at decision time, never stored.
type QuotaDecision struct {
	Allowed      bool
	Limit        int
	Remaining    int
	ResetSeconds int
}

// ── Conversations ───────────────────────────────────────────

// Conversation is one exchanged turn kept in the side-channel transcript log.
type Conversation struct {
	ID          string         `json:"id"`
	UserMessage string         `json:"user_message"`
	BotResponse string         `json:"bot_response"`
	Context     map[string]any `json:"context,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
