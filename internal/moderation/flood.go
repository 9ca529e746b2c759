// Package moderation gates inbound messages before any intent or retrieval
// logic runs: a per-user flood state machine and a lexical toxicity filter.
// Both fail toward the suspicious branch, never toward silently passing.
package moderation

import (
	"sync"
	"time"
)

// Verdict is the flood gate's outcome for one message.
type Verdict string

const (
	VerdictOK       Verdict = "ok"
	VerdictWarn     Verdict = "warn"      // cadence too fast, surfaced but non-blocking
	VerdictMuted    Verdict = "muted"     // already muted, turn must short-circuit
	VerdictMutedNow Verdict = "muted_now" // mute engaged on this very message
)

// Result carries the verdict plus the warning tier (1-based index into the
// configured thresholds) when the verdict is VerdictWarn.
type Result struct {
	Verdict  Verdict
	WarnTier int
}

type floodRecord struct {
	lastMessageAt time.Time
	fastCount     int
	muteUntil     time.Time
}

// FloodGate tracks message inter-arrival times per user. Records are created
// lazily and kept for the process lifetime unless the idle-sweep janitor is
// enabled; unbounded growth is an accepted property of the in-memory model.
type FloodGate struct {
	interval       time.Duration
	muteWindow     time.Duration
	muteAfter      int
	warnThresholds []int

	now func() time.Time

	mu    sync.Mutex
	users map[string]*floodRecord
}

// NewFloodGate builds a gate with the given fast-message interval, hard-mute
// trigger count, mute window and soft-warning thresholds. Zero values fall
// back to the original tuning: 1.2s / 4 messages / 20s / tiers at 2, 4, 6.
func NewFloodGate(interval, muteWindow time.Duration, muteAfter int, warnThresholds []int) *FloodGate {
	if interval <= 0 {
		interval = 1200 * time.Millisecond
	}
	if muteWindow <= 0 {
		muteWindow = 20 * time.Second
	}
	if muteAfter < 1 {
		muteAfter = 4
	}
	if len(warnThresholds) == 0 {
		warnThresholds = []int{2, 4, 6}
	}
	return &FloodGate{
		interval:       interval,
		muteWindow:     muteWindow,
		muteAfter:      muteAfter,
		warnThresholds: warnThresholds,
		now:            time.Now,
		users:          make(map[string]*floodRecord),
	}
}

// Register records one message arrival and returns the gate's verdict. A muted
// user short-circuits with no state mutation beyond the mute check itself.
func (g *FloodGate) Register(userID string) Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	record, ok := g.users[userID]
	if !ok {
		record = &floodRecord{}
		g.users[userID] = record
	}

	if now.Before(record.muteUntil) {
		return Result{Verdict: VerdictMuted}
	}

	fast := !record.lastMessageAt.IsZero() && now.Sub(record.lastMessageAt) < g.interval
	if fast {
		record.fastCount++
	} else {
		record.fastCount = 0
	}
	record.lastMessageAt = now

	if record.fastCount >= g.muteAfter {
		record.muteUntil = now.Add(g.muteWindow)
		record.fastCount = 0
		return Result{Verdict: VerdictMutedNow}
	}

	if fast {
		tier := 0
		for i, threshold := range g.warnThresholds {
			if record.fastCount >= threshold {
				tier = i + 1
			}
		}
		if tier > 0 {
			return Result{Verdict: VerdictWarn, WarnTier: tier}
		}
	}
	return Result{Verdict: VerdictOK}
}

// Muted reports whether the user is currently muted without touching any
// other state.
func (g *FloodGate) Muted(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	record, ok := g.users[userID]
	return ok && g.now().Before(record.muteUntil)
}

// SweepIdle drops records whose last activity is older than ttl and returns
// how many were removed. Called only by the opt-in janitor.
func (g *FloodGate) SweepIdle(ttl time.Duration) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	cutoff := g.now().Add(-ttl)
	removed := 0
	for userID, record := range g.users {
		if record.lastMessageAt.Before(cutoff) && g.now().After(record.muteUntil) {
			delete(g.users, userID)
			removed++
		}
	}
	return removed
}
