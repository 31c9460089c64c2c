package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Evictor periodically prunes stale windows so tracker memory stays
// bounded no matter how many one-off clients show up. It shares the
// tracker's mutex with the admission path, so a pass never observes a
// half-applied update.
type Evictor struct {
	tracker  *WindowTracker
	window   time.Duration
	interval time.Duration
}

// NewEvictor creates an evictor for the given tracker. The pass interval
// is a sixth of the window so abandoned windows are reclaimed well before
// they could be double-counted, without hammering the shared lock.
func NewEvictor(tracker *WindowTracker, window time.Duration) *Evictor {
	interval := window / 6
	if interval < time.Second {
		interval = time.Second
	}
	return &Evictor{tracker: tracker, window: window, interval: interval}
}

// Interval returns the time between eviction passes.
func (e *Evictor) Interval() time.Duration { return e.interval }

// Start runs the eviction loop until ctx is canceled. It blocks, so call
// it from its own goroutine. A failed pass is logged and the loop
// continues; eviction problems must never take the process down.
func (e *Evictor) Start(ctx context.Context) {
	log.Info().
		Dur("interval", e.interval).
		Dur("window", e.window).
		Msg("Window evictor started")

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Window evictor stopped")
			return
		case <-ticker.C:
			e.runPass()
		}
	}
}

func (e *Evictor) runPass() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Eviction pass failed")
		}
	}()
	e.tracker.EvictStale(time.Now(), e.window)
}
