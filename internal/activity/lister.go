package activity

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"flagdesk/internal/blacklist/query"
	dErrors "flagdesk/pkg/domain-errors"
)

// EventStore reads back recorded events.
type EventStore interface {
	FindMany(ctx context.Context, predicates query.Set, order query.Order, limit, offset int) ([]Event, error)
	Count(ctx context.Context, predicates query.Set) (int, error)
}

// ListRequest carries the operator-facing filters and pagination for List.
type ListRequest struct {
	Action string
	Search string
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

// Page is one page of events plus the total count over the same predicate.
type Page struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

// Lister serves operator queries over the activity log. Events carry no
// tenant dimension, so listing is an operator-only surface.
type Lister struct {
	store  EventStore
	fields query.Fields
	order  query.Order
}

// NewLister constructs a lister over the given event store. The field map
// and order come from the store package so both backends agree on them.
func NewLister(store EventStore, fields query.Fields, order query.Order) *Lister {
	return &Lister{store: store, fields: fields, order: order}
}

// List returns the filtered page of events, newest first.
func (l *Lister) List(ctx context.Context, req ListRequest) (*Page, error) {
	predicates := query.Build(l.fields, query.Filter{
		Status: req.Action,
		Search: req.Search,
		From:   req.From,
		To:     req.To,
	})
	page := query.NewPage(req.Page, req.Limit)

	var (
		events []Event
		total  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var findErr error
		events, findErr = l.store.FindMany(gctx, predicates, l.order, page.Limit, page.Offset)
		return findErr
	})
	g.Go(func() error {
		var countErr error
		total, countErr = l.store.Count(gctx, predicates)
		return countErr
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list activity events")
	}

	if events == nil {
		events = []Event{}
	}
	pageNumber := req.Page
	if pageNumber < 1 {
		pageNumber = 1
	}
	return &Page{Events: events, Total: total, Page: pageNumber, Limit: page.Limit}, nil
}
