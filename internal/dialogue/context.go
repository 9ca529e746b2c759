// Package dialogue owns the per-user conversation state machine and the turn
// pipeline that sequences moderation, intent resolution and retrieval fallback.
package dialogue

import (
	"sync"
	"time"

	"github.com/cubeworld/supportbot/internal/intent"
)

// State is the FSM position of one conversation.
type State string

const (
	StateIdle                State = "idle"
	StateOperator            State = "operator"
	StateWaitingCloseConfirm State = "waiting_close_confirm"
)

const historyLimit = 20

// Context is the volatile per-user conversation state. It is mutated only by
// the orchestrator, under the user's slot lock.
type Context struct {
	State           State
	LastIntent      intent.Label
	OperatorMode    bool
	NeedSpecialist  bool
	History         []string
	DataBuffer      map[string]any
	LastInteraction time.Time
}

func newContext() *Context {
	return &Context{
		State:           StateIdle,
		LastIntent:      intent.Unknown,
		DataBuffer:      make(map[string]any),
		LastInteraction: time.Now(),
	}
}

// PushHistory appends one normalized utterance, evicting the oldest entry once
// the history holds twenty.
func (c *Context) PushHistory(text string) {
	c.History = append(c.History, text)
	if len(c.History) > historyLimit {
		c.History = c.History[1:]
	}
}

// LastUtterance returns the most recent history entry, "" when empty.
func (c *Context) LastUtterance() string {
	if len(c.History) == 0 {
		return ""
	}
	return c.History[len(c.History)-1]
}

// Reset returns the context to its initial idle state.
func (c *Context) Reset() {
	c.State = StateIdle
	c.LastIntent = intent.Unknown
	c.OperatorMode = false
	c.NeedSpecialist = false
	c.History = c.History[:0]
	c.DataBuffer = make(map[string]any)
	c.LastInteraction = time.Now()
}

func (c *Context) enterOperator() {
	c.OperatorMode = true
	c.NeedSpecialist = true
	c.State = StateOperator
}

type contextSlot struct {
	mu  sync.Mutex
	ctx *Context
}

// Contexts holds every user's conversation state. Each user id owns a slot
// with its own mutex, so turns for one user run strictly one at a time while
// distinct users proceed concurrently.
type Contexts struct {
	mu    sync.Mutex
	slots map[string]*contextSlot
}

func NewContexts() *Contexts {
	return &Contexts{slots: make(map[string]*contextSlot)}
}

// Acquire locks the user's slot and returns the context plus the release
// function. The caller must invoke release when the turn is done.
func (c *Contexts) Acquire(userID string) (*Context, func()) {
	c.mu.Lock()
	slot, ok := c.slots[userID]
	if !ok {
		slot = &contextSlot{ctx: newContext()}
		c.slots[userID] = slot
	}
	c.mu.Unlock()

	slot.mu.Lock()
	slot.ctx.LastInteraction = time.Now()
	return slot.ctx, slot.mu.Unlock
}

// Count reports how many users have conversation state.
func (c *Contexts) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

// SweepIdle drops slots whose last interaction is older than ttl and returns
// the user ids that were removed. Slots locked by an in-flight turn are
// skipped and picked up on a later sweep.
func (c *Contexts) SweepIdle(ttl time.Duration) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	var dropped []string
	for userID, slot := range c.slots {
		if !slot.mu.TryLock() {
			continue
		}
		idle := slot.ctx.LastInteraction.Before(cutoff)
		slot.mu.Unlock()
		if idle {
			delete(c.slots, userID)
			dropped = append(dropped, userID)
		}
	}
	return dropped
}
