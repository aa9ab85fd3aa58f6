// Package store persists activity events. Events are append-only; nothing
// updates or deletes them.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"flagdesk/internal/activity"
	"flagdesk/internal/blacklist/query"
)

// Storage field names for activity listings, shared with the postgres store.
const (
	FieldAction     = "action"
	FieldResourceID = "resource_id"
	FieldDetails    = "details"
	FieldCreatedAt  = "created_at"
)

// QueryFields maps the shared filter shape onto activity columns. The Status
// dimension filters on the action name; there is no score dimension.
var QueryFields = query.Fields{
	Status:  FieldAction,
	Search:  []string{FieldResourceID, FieldDetails},
	Created: FieldCreatedAt,
}

// DefaultOrder lists newest events first.
var DefaultOrder = query.Order{Field: FieldCreatedAt, Descending: true, TiebreakField: "id"}

// InMemory is a slice-backed event store for tests and dev wiring.
type InMemory struct {
	mu     sync.RWMutex
	events []activity.Event
}

// NewInMemory returns an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Append implements activity.Sink.
func (s *InMemory) Append(_ context.Context, event activity.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// FindMany returns the page of events matching every predicate.
func (s *InMemory) FindMany(_ context.Context, predicates query.Set, order query.Order, limit, offset int) ([]activity.Event, error) {
	s.mu.RLock()
	var matched []activity.Event
	for _, event := range s.events {
		if matchesEvent(event, predicates) {
			matched = append(matched, event)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			if order.Descending {
				return a.Timestamp.After(b.Timestamp)
			}
			return a.Timestamp.Before(b.Timestamp)
		}
		if order.Descending {
			return a.ID.String() > b.ID.String()
		}
		return a.ID.String() < b.ID.String()
	})

	if offset >= len(matched) {
		return []activity.Event{}, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Count returns how many events match every predicate.
func (s *InMemory) Count(_ context.Context, predicates query.Set) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, event := range s.events {
		if matchesEvent(event, predicates) {
			count++
		}
	}
	return count, nil
}

func matchesEvent(event activity.Event, predicates query.Set) bool {
	for _, p := range predicates {
		if !matchEventPredicate(event, p) {
			return false
		}
	}
	return true
}

func matchEventPredicate(event activity.Event, p query.Predicate) bool {
	switch p.Op {
	case query.OpEq:
		if p.Field == FieldAction {
			action, ok := p.Value.(string)
			return ok && event.Action == action
		}
	case query.OpGte:
		if p.Field == FieldCreatedAt {
			bound, ok := p.Value.(time.Time)
			return ok && event.Timestamp.Compare(bound) >= 0
		}
	case query.OpLte:
		if p.Field == FieldCreatedAt {
			bound, ok := p.Value.(time.Time)
			return ok && event.Timestamp.Compare(bound) <= 0
		}
	case query.OpSearch:
		needle, ok := p.Value.(string)
		if !ok {
			return false
		}
		needle = strings.ToLower(needle)
		for _, field := range p.Fields {
			var haystack string
			switch field {
			case FieldResourceID:
				haystack = event.ResourceID
			case FieldDetails:
				haystack = event.Details
			}
			if strings.Contains(strings.ToLower(haystack), needle) {
				return true
			}
		}
		return false
	}
	return false
}
