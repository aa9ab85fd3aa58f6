package auth

import (
	"context"
	"sync"

	id "flagdesk/pkg/domain"
	"flagdesk/pkg/platform/sentinel"
)

// InMemoryUserStore is a map-backed user directory for tests and dev wiring.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[id.UserID]Principal
}

// NewInMemoryUserStore returns an empty in-memory directory.
func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[id.UserID]Principal)}
}

// Put inserts or replaces a principal.
func (s *InMemoryUserStore) Put(p Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[p.UserID] = p
}

// FindPrincipal implements UserStore.
func (s *InMemoryUserStore) FindPrincipal(_ context.Context, userID id.UserID) (*Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := p
	if p.CompanyID != nil {
		companyID := *p.CompanyID
		copied.CompanyID = &companyID
	}
	return &copied, nil
}
