package memory

import (
	"sync"

	"github.com/cubeworld/supportbot/internal/embedding"
)

// UserStore is one user's personal utterance memory: append-only texts with
// their embeddings. Unbounded by default, matching the original behavior; the
// janitor can drop whole stores for long-idle users when a TTL is configured.
type UserStore struct {
	texts []string
	index *embedding.Index
}

func newUserStore() *UserStore {
	return &UserStore{index: embedding.NewIndex()}
}

// Add appends the normalized utterance to the store.
func (s *UserStore) Add(text string) {
	s.texts = append(s.texts, text)
	s.index.Add(embedding.Embed(text))
}

// Search returns the best prior utterance and its similarity, or ("", 0) when
// the store is empty.
func (s *UserStore) Search(text string) (string, float32) {
	hits := s.index.Search(embedding.Embed(text), 1)
	if len(hits) == 0 {
		return "", 0
	}
	return s.texts[hits[0].Index], hits[0].Score
}

func (s *UserStore) Len() int {
	return len(s.texts)
}

// Stores keys UserStore instances by user id. The map itself is safe for
// concurrent keyed access; turns for a single user are already serialized by
// the orchestrator, so the per-store slices need no locking of their own.
type Stores struct {
	mu    sync.Mutex
	users map[string]*UserStore
}

func NewStores() *Stores {
	return &Stores{users: make(map[string]*UserStore)}
}

// User returns the store for the given user id, creating it lazily.
func (s *Stores) User(userID string) *UserStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	store, ok := s.users[userID]
	if !ok {
		store = newUserStore()
		s.users[userID] = store
	}
	return store
}

// Drop removes a user's store. Used only by the idle-sweep janitor.
func (s *Stores) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
}

func (s *Stores) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}
