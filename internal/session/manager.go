// Package session keeps one live form controller per terminal tab. Sessions
// are identified by uuid, expire on inactivity and are mutex-guarded so
// concurrent requests from the same tab serialize.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"clt400tt-terminal/internal/evento"
	"clt400tt-terminal/internal/notify"
)

// Session binds a controller to its notification collector. Callers must hold
// the lock across any controller access, snapshot included.
type Session struct {
	ID         string
	Controller evento.Controller
	Notices    *notify.Collector

	mu sync.Mutex
}

// Lock serializes access to the controller.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Manager is the TTL session store.
type Manager struct {
	cache *gocache.Cache
}

// NewManager builds a session store whose entries expire after ttl of
// inactivity and are swept every cleanup interval.
func NewManager(ttl, cleanup time.Duration) *Manager {
	return &Manager{cache: gocache.New(ttl, cleanup)}
}

// Create registers a new session around the given controller.
func (m *Manager) Create(ctrl evento.Controller, notices *notify.Collector) *Session {
	s := &Session{
		ID:         uuid.NewString(),
		Controller: ctrl,
		Notices:    notices,
	}
	m.cache.SetDefault(s.ID, s)
	return s
}

// Get returns the session and refreshes its expiration.
func (m *Manager) Get(id string) (*Session, bool) {
	v, ok := m.cache.Get(id)
	if !ok {
		return nil, false
	}
	s := v.(*Session)
	m.cache.SetDefault(id, s)
	return s, true
}

// Delete removes a session immediately.
func (m *Manager) Delete(id string) {
	m.cache.Delete(id)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	return m.cache.ItemCount()
}
