// Package store persists companies.
package store

import (
	"context"
	"strings"
	"sync"

	companymodels "flagdesk/internal/company/models"
	id "flagdesk/pkg/domain"
	"flagdesk/pkg/platform/sentinel"
)

// InMemory is a map-backed company store. Execute holds the write lock
// across validate and mutate.
type InMemory struct {
	mu        sync.RWMutex
	companies map[id.CompanyID]*companymodels.Company
	byName    map[string]id.CompanyID
}

// NewInMemory returns an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{
		companies: make(map[id.CompanyID]*companymodels.Company),
		byName:    make(map[string]id.CompanyID),
	}
}

// CreateIfNameAvailable implements CompanyStore. Names collide
// case-insensitively.
func (s *InMemory) CreateIfNameAvailable(_ context.Context, company *companymodels.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(company.Name)
	if _, taken := s.byName[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	copied := *company
	s.companies[company.ID] = &copied
	s.byName[key] = company.ID
	return nil
}

// FindByID returns the company or sentinel.ErrNotFound.
func (s *InMemory) FindByID(_ context.Context, companyID id.CompanyID) (*companymodels.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	company, ok := s.companies[companyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *company
	return &copied, nil
}

// FindByName returns the company matching name case-insensitively.
func (s *InMemory) FindByName(_ context.Context, name string) (*companymodels.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	companyID, ok := s.byName[strings.ToLower(name)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *s.companies[companyID]
	return &copied, nil
}

// Execute runs a validate-then-mutate update under the store lock.
func (s *InMemory) Execute(_ context.Context, companyID id.CompanyID, validate func(*companymodels.Company) error, mutate func(*companymodels.Company)) (*companymodels.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	company, ok := s.companies[companyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if validate != nil {
		if err := validate(company); err != nil {
			return nil, err
		}
	}
	mutate(company)
	copied := *company
	return &copied, nil
}
