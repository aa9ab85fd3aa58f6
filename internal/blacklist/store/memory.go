// Package store persists blacklist entries. The memory implementation backs
// unit tests and dev wiring; postgres is the production store. Both honor
// the same predicate vocabulary produced by the query package.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"flagdesk/internal/blacklist/models"
	"flagdesk/internal/blacklist/query"
	id "flagdesk/pkg/domain"
	"flagdesk/pkg/platform/sentinel"
)

// InMemory is a map-backed entry store guarded by a single RWMutex. Execute
// holds the write lock across validate and mutate, which gives the same
// serialization the postgres store gets from SELECT ... FOR UPDATE.
type InMemory struct {
	mu      sync.RWMutex
	entries map[id.EntryID]*models.Entry
}

// NewInMemory returns an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[id.EntryID]*models.Entry)}
}

// Insert stores a new entry.
func (s *InMemory) Insert(_ context.Context, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[entry.ID]; exists {
		return sentinel.ErrConflict
	}
	s.entries[entry.ID] = entry.Clone()
	return nil
}

// FindByID returns the entry or sentinel.ErrNotFound.
func (s *InMemory) FindByID(_ context.Context, entryID id.EntryID) (*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[entryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return entry.Clone(), nil
}

// FindMany returns the page of entries matching every predicate, ordered
// deterministically.
func (s *InMemory) FindMany(_ context.Context, predicates query.Set, order query.Order, limit, offset int) ([]*models.Entry, error) {
	s.mu.RLock()
	matched := s.collect(predicates)
	s.mu.RUnlock()

	sortEntries(matched, order)

	if offset >= len(matched) {
		return []*models.Entry{}, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Count returns how many entries match every predicate, ignoring pagination.
func (s *InMemory) Count(_ context.Context, predicates query.Set) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collect(predicates)), nil
}

// Execute runs a validate-then-mutate update under the store lock and
// returns the mutated entry.
func (s *InMemory) Execute(_ context.Context, entryID id.EntryID, validate func(*models.Entry) error, mutate func(*models.Entry)) (*models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[entryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if validate != nil {
		if err := validate(entry); err != nil {
			return nil, err
		}
	}
	mutate(entry)
	return entry.Clone(), nil
}

// Delete removes the entry, reporting whether it existed.
func (s *InMemory) Delete(_ context.Context, entryID id.EntryID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entryID]; !ok {
		return false, nil
	}
	delete(s.entries, entryID)
	return true, nil
}

func (s *InMemory) collect(predicates query.Set) []*models.Entry {
	var matched []*models.Entry
	for _, entry := range s.entries {
		if matches(entry, predicates) {
			matched = append(matched, entry.Clone())
		}
	}
	return matched
}

func matches(entry *models.Entry, predicates query.Set) bool {
	for _, p := range predicates {
		if !matchPredicate(entry, p) {
			return false
		}
	}
	return true
}

func matchPredicate(entry *models.Entry, p query.Predicate) bool {
	switch p.Op {
	case query.OpEq:
		switch p.Field {
		case FieldCompanyID:
			companyID, ok := p.Value.(id.CompanyID)
			return ok && entry.CompanyID == companyID
		case FieldStatus:
			status, ok := p.Value.(string)
			return ok && string(entry.Status) == status
		}
	case query.OpGte:
		return compareBound(entry, p, func(cmp int) bool { return cmp >= 0 })
	case query.OpLte:
		return compareBound(entry, p, func(cmp int) bool { return cmp <= 0 })
	case query.OpSearch:
		needle, ok := p.Value.(string)
		if !ok {
			return false
		}
		needle = strings.ToLower(needle)
		for _, field := range p.Fields {
			if strings.Contains(strings.ToLower(textField(entry, field)), needle) {
				return true
			}
		}
		return false
	}
	return false
}

func compareBound(entry *models.Entry, p query.Predicate, accept func(int) bool) bool {
	switch p.Field {
	case FieldCreatedAt:
		bound, ok := p.Value.(time.Time)
		if !ok {
			return false
		}
		return accept(entry.CreatedAt.Compare(bound))
	case FieldScore:
		bound, ok := p.Value.(int)
		if !ok {
			return false
		}
		switch {
		case entry.BlacklistScore < bound:
			return accept(-1)
		case entry.BlacklistScore > bound:
			return accept(1)
		default:
			return accept(0)
		}
	}
	return false
}

func textField(entry *models.Entry, field string) string {
	switch field {
	case FieldFirstName:
		return entry.FirstName
	case FieldLastName:
		return entry.LastName
	case FieldIDNumber:
		return entry.IDNumber
	case FieldEmail:
		if entry.Email != nil {
			return *entry.Email
		}
	case FieldReason:
		return entry.Reason
	}
	return ""
}

func sortEntries(entries []*models.Entry, order query.Order) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if order.Field == FieldCreatedAt && !a.CreatedAt.Equal(b.CreatedAt) {
			if order.Descending {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		// Tiebreak on ID keeps pagination stable for equal timestamps.
		if order.Descending {
			return a.ID.String() > b.ID.String()
		}
		return a.ID.String() < b.ID.String()
	})
}
