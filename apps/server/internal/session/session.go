// Package session holds the active Bitbucket credentials.
//
// The manager is the single mutable piece of state in the server. It is
// constructed once in main and injected into every tool, replacing implicit
// globals: tools read the current credentials and pass them explicitly into
// each client call, so concurrent tool invocations are safe.
package session

import (
	"sync"

	"github.com/mcrae/bitbucket-mcp/apps/server/internal/bitbucket"
)

// Manager stores the credentials of the most recent successful
// authentication.
type Manager struct {
	mu    sync.RWMutex
	creds *bitbucket.Credentials
}

// NewManager returns an empty, unauthenticated manager.
func NewManager() *Manager {
	return &Manager{}
}

// Set records creds as the active session.
func (m *Manager) Set(creds bitbucket.Credentials) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = &creds
}

// Current returns the active credentials, or ok=false when no
// authentication has succeeded yet.
func (m *Manager) Current() (bitbucket.Credentials, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.creds == nil {
		return bitbucket.Credentials{}, false
	}
	return *m.creds, true
}

// Clear drops the active session.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = nil
}
