// Package session tracks which provider accounts currently hold a live
// login. The engine only ever asks a yes/no question; maintaining the
// underlying browser sessions is the login layer's job.
package session

import "sync"

// Registry answers whether an account can place bets right now.
type Registry interface {
	Ready(accountID string) bool
}

// Memory is a mutable in-process registry. The login layer marks accounts
// ready on login_success and lost when a keep-alive drops.
type Memory struct {
	mu    sync.RWMutex
	ready map[string]struct{}
}

// NewMemory seeds the registry with accounts already considered logged in.
func NewMemory(accounts ...string) *Memory {
	m := &Memory{ready: make(map[string]struct{}, len(accounts))}
	for _, a := range accounts {
		if a != "" {
			m.ready[a] = struct{}{}
		}
	}
	return m
}

func (m *Memory) Ready(accountID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.ready[accountID]
	return ok
}

func (m *Memory) MarkReady(accountID string) {
	if accountID == "" {
		return
	}
	m.mu.Lock()
	m.ready[accountID] = struct{}{}
	m.mu.Unlock()
}

func (m *Memory) MarkLost(accountID string) {
	m.mu.Lock()
	delete(m.ready, accountID)
	m.mu.Unlock()
}

// Count reports how many accounts are ready, for startup logging.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ready)
}
