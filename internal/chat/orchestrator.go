package chat

import (
	"context"
	"time"

	"github.com/botify-ai/botify-backend/internal/retrieval"
	"github.com/botify-ai/botify-backend/pkg/contracts"
	"github.com/botify-ai/botify-backend/pkg/models"
	"github.com/rs/zerolog/log"
)

// defaultParams are the fixed generation parameters for every chat call.
var defaultParams = models.CompletionParams{
	Temperature: 0.7,
	MaxTokens:   1024,
	TopP:        0.9,
	Stop:        []string{"Human:", "Assistant:"},
}

// Orchestrator is the top-level chat entry point: retrieve context,
// compose the prompt, call the completion provider, classify the result.
// Steps are strictly sequential; a single upstream failure terminates the
// request with no retries.
type Orchestrator struct {
	retriever  *retrieval.Retriever
	composer   *Composer
	completion contracts.CompletionService
	timeout    time.Duration
}

// OrchestratorOption configures the orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithCompletionTimeout bounds the completion call.
func WithCompletionTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// NewOrchestrator wires the chat pipeline.
func NewOrchestrator(r *retrieval.Retriever, c *Composer, completion contracts.CompletionService, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		retriever:  r,
		composer:   c,
		completion: completion,
		timeout:    60 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Handle processes one chat message. Retrieval failures degrade to an
// empty context; completion failures are classified and replaced with a
// caller-safe message.
func (o *Orchestrator) Handle(ctx context.Context, message string, callerCtx map[string]any) models.ChatOutcome {
	start := time.Now()

	retrieved := o.retriever.Retrieve(ctx, message, 0)
	prompt := o.composer.Compose(retrieved, callerCtx)

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	text, err := o.completion.Complete(callCtx, prompt.System, message, defaultParams)
	if err != nil {
		class := Classify(err)
		log.Error().
			Err(err).
			Str("classification", string(class)).
			Dur("elapsed", time.Since(start)).
			Msg("Completion call failed")
		return models.ChatOutcome{
			Response:       callerMessage(class),
			Classification: class,
		}
	}

	log.Info().
		Int("snippets", len(retrieved)).
		Dur("elapsed", time.Since(start)).
		Msg("Chat request complete")

	return models.ChatOutcome{
		Response:       text,
		Classification: models.ClassSuccess,
	}
}
