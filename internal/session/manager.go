// internal/session/manager.go
package session

import (
	"context"
	"sync"
)

// Manager tracks one Controller per monitored page context. Contexts
// are independent; they only share the persisted store.
//
// Controllers outlive the HTTP requests that create them, so they run
// on the manager's base context, not the request's.
type Manager struct {
	base    context.Context
	factory func(id string) *Controller

	mu       sync.Mutex
	sessions map[string]*Controller
}

func NewManager(base context.Context, factory func(id string) *Controller) *Manager {
	return &Manager{
		base:     base,
		factory:  factory,
		sessions: make(map[string]*Controller),
	}
}

// GetOrCreate returns the session, starting a new controller when the
// id is unknown.
func (m *Manager) GetOrCreate(id string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.sessions[id]; ok {
		return c
	}
	c := m.factory(id)
	c.Start(m.base)
	m.sessions[id] = c
	return c
}

// Get returns the session or nil.
func (m *Manager) Get(id string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Close tears one session down.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	c := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if c != nil {
		c.Close()
	}
}

// CloseAll tears every session down, used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Controller)
	m.mu.Unlock()
	for _, c := range sessions {
		c.Close()
	}
}
