// Package ratelimit implements per-client sliding-window request admission:
// a window tracker holding accepted-request timestamps, an admission
// gateway that decides accept/reject per request, and a background evictor
// that keeps tracker memory bounded.
package ratelimit

import (
	"sync"
	"time"
)

// WindowTracker keeps, per client key, the timestamps of accepted requests
// inside the trailing window. Only accepted requests are recorded — a
// rejection never advances the counter.
//
// All mutations go through one mutex, so admission checks and eviction
// passes never interleave mid-update.
type WindowTracker struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewWindowTracker creates an empty tracker.
func NewWindowTracker() *WindowTracker {
	return &WindowTracker{windows: make(map[string][]time.Time)}
}

// Record appends now to the client's window, creating the window if absent.
func (t *WindowTracker) Record(client string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.windows[client] = append(t.windows[client], now)
}

// CountInWindow returns how many recorded timestamps fall within
// [now-window, now]. Entries outside the window are excluded at read
// time even if the evictor has not pruned them yet.
func (t *WindowTracker) CountInWindow(client string, now time.Time, window time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := now.Add(-window)
	count := 0
	for _, ts := range t.windows[client] {
		if ts.After(cutoff) {
			count++
		}
	}
	return count
}

// TryAcquire prunes the client's window to [now-window, now], then either
// records now and returns the new in-window count with ok=true, or — if
// the pruned count has already reached limit — leaves the window untouched
// and returns ok=false.
//
// Prune, count, and record happen under a single lock acquisition so two
// concurrent callers can never both pass when only one slot is left.
func (t *WindowTracker) TryAcquire(client string, now time.Time, window time.Duration, limit int) (count int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := pruneWindow(t.windows[client], now.Add(-window))
	if len(kept) >= limit {
		if len(kept) == 0 {
			delete(t.windows, client)
		} else {
			t.windows[client] = kept
		}
		return len(kept), false
	}

	kept = append(kept, now)
	t.windows[client] = kept
	return len(kept), true
}

// EvictStale physically removes entries outside [now-window, now] for all
// clients, deleting a client's key entirely once its window is empty.
func (t *WindowTracker) EvictStale(now time.Time, window time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := now.Add(-window)
	for client, ts := range t.windows {
		kept := pruneWindow(ts, cutoff)
		if len(kept) == 0 {
			delete(t.windows, client)
		} else {
			t.windows[client] = kept
		}
	}
}

// Clients returns the number of tracked client keys.
func (t *WindowTracker) Clients() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.windows)
}

// pruneWindow returns the timestamps strictly after cutoff. Timestamps are
// appended in order, so the first in-window entry marks the keep boundary.
func pruneWindow(ts []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(ts) && !ts[idx].After(cutoff) {
		idx++
	}
	if idx == 0 {
		return ts
	}
	return append([]time.Time(nil), ts[idx:]...)
}
