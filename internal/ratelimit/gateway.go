package ratelimit

import (
	"time"

	"github.com/botify-ai/botify-backend/pkg/models"
)

// Gateway decides request admission against a shared WindowTracker.
// It is safe for concurrent use; the tracker carries the only mutable state.
type Gateway struct {
	tracker *WindowTracker
	limit   int
	window  time.Duration
}

// NewGateway creates an admission gateway allowing limit accepted requests
// per client within the trailing window.
func NewGateway(tracker *WindowTracker, limit int, window time.Duration) *Gateway {
	if limit < 1 {
		limit = 1
	}
	return &Gateway{tracker: tracker, limit: limit, window: window}
}

// Limit returns the configured per-window request limit.
func (g *Gateway) Limit() int { return g.limit }

// Window returns the sliding window duration.
func (g *Gateway) Window() time.Duration { return g.window }

// Admit checks the client's window at time now and either records the
// request (accepted) or rejects it with Remaining=0. The quota fields are
// filled on both paths so every response can report them.
func (g *Gateway) Admit(client string, now time.Time) models.QuotaDecision {
	count, ok := g.tracker.TryAcquire(client, now, g.window, g.limit)

	dec := models.QuotaDecision{
		Allowed:      ok,
		Limit:        g.limit,
		ResetSeconds: g.resetSeconds(now),
	}
	if ok {
		dec.Remaining = g.limit - count
	}
	return dec
}

// resetSeconds reports the countdown to the next clock-aligned window
// boundary. All clients share this phase; it is a reset signal, not a
// per-client sliding expiry.
func (g *Gateway) resetSeconds(now time.Time) int {
	windowSec := int64(g.window / time.Second)
	if windowSec <= 0 {
		return 0
	}
	return int(windowSec - now.Unix()%windowSec)
}
