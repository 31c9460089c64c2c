// Package handlers implements the HTTP handlers for the Botify API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/botify-ai/botify-backend/internal/chat"
	"github.com/botify-ai/botify-backend/internal/retrieval"
	"github.com/botify-ai/botify-backend/pkg/contracts"
	"github.com/botify-ai/botify-backend/pkg/models"
	"github.com/rs/zerolog/log"
)

// Handlers bundles the services the HTTP layer depends on.
type Handlers struct {
	orchestrator  *chat.Orchestrator
	retriever     *retrieval.Retriever
	conversations contracts.ConversationStore
	version       string
}

// New creates the handler set.
func New(orc *chat.Orchestrator, retr *retrieval.Retriever, convs contracts.ConversationStore, version string) *Handlers {
	return &Handlers{
		orchestrator:  orc,
		retriever:     retr,
		conversations: convs,
		version:       version,
	}
}

// Chat handles POST /api/v1/chat: one message in, one assistant reply out.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.", "bad_request")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required.", "bad_request")
		return
	}

	outcome := h.orchestrator.Handle(r.Context(), req.Message, req.Context)

	switch outcome.Classification {
	case models.ClassSuccess:
		h.logConversation(r, &req, outcome.Response)
		writeJSON(w, http.StatusOK, models.ChatResponse{Response: outcome.Response})
	case models.ClassUpstreamRateLimited:
		writeError(w, http.StatusTooManyRequests, outcome.Response, string(outcome.Classification))
	case models.ClassUpstreamAuthError, models.ClassUpstreamUnavailable:
		writeError(w, http.StatusServiceUnavailable, outcome.Response, string(outcome.Classification))
	default:
		writeError(w, http.StatusInternalServerError, outcome.Response, string(outcome.Classification))
	}
}

// Search handles POST /api/v1/search: direct semantic search over the
// product index.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.", "bad_request")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query is required.", "bad_request")
		return
	}

	snippets := h.retriever.Retrieve(r.Context(), req.Query, req.TopK)

	results := make([]models.SearchResult, 0, len(snippets))
	for _, s := range snippets {
		results = append(results, models.SearchResult{Score: s.Score, Text: s.Text})
	}
	writeJSON(w, http.StatusOK, results)
}

// Health handles GET /health. The route bypasses admission.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "botify-backend",
	})
}

// Version handles GET /version.
func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
		"service": "botify-backend",
	})
}

// logConversation appends the turn to the transcript log. Best-effort:
// failures are logged and the response already went out regardless.
func (h *Handlers) logConversation(r *http.Request, req *models.ChatRequest, response string) {
	if h.conversations == nil {
		return
	}
	conv := &models.Conversation{
		UserMessage: req.Message,
		BotResponse: response,
		Context:     req.Context,
	}
	if err := h.conversations.Append(r.Context(), conv); err != nil {
		log.Warn().Err(err).Msg("Failed to store conversation")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg, Code: code})
}
