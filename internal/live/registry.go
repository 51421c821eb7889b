package live

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry owns the state of every open live session. Callers only ever
// see snapshots; all mutations go through Update.
type Registry struct {
	mu              sync.RWMutex
	sessions        map[string]*Session
	defaultLanguage string
	now             func() time.Time
	newID           func() string
}

// NewRegistry creates an empty registry. New sessions start with
// defaultLanguage, or "en" when empty.
func NewRegistry(defaultLanguage string) *Registry {
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	return &Registry{
		sessions:        make(map[string]*Session),
		defaultLanguage: defaultLanguage,
		now:             time.Now,
		newID:           uuid.NewString,
	}
}

// Create registers a new session and returns its id.
func (r *Registry) Create() string {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for _, taken := r.sessions[id]; taken; _, taken = r.sessions[id] {
		id = r.newID()
	}
	r.sessions[id] = &Session{
		ID:           id,
		Language:     r.defaultLanguage,
		CreatedAt:    now,
		LastActivity: now,
	}
	slog.Debug("live session created", "session_id", id, "open_sessions", len(r.sessions))
	return id
}

// Get returns a copy of the session.
func (r *Registry) Get(id string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return s.clone(), true
}

// State returns the phase of a session, StateClosed when it is gone.
func (r *Registry) State(id string) State {
	s, ok := r.Get(id)
	if !ok {
		return StateClosed
	}
	return s.State()
}

// Update applies p to the session and refreshes its activity time.
// It reports false when the session no longer exists.
func (r *Registry) Update(id string, p Patch) bool {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	s.apply(p)
	s.LastActivity = now
	return true
}

// Touch refreshes the activity time of a session.
func (r *Registry) Touch(id string) bool {
	return r.Update(id, Patch{})
}

// Remove drops a session and all its state.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	slog.Debug("live session removed", "session_id", id, "open_sessions", len(r.sessions))
	return true
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns the ids of all open sessions in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}
