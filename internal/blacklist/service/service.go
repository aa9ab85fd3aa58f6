// Package service orchestrates the blacklist entry lifecycle.
//
// Every operation resolves the caller's company scope first and applies it
// as a mandatory predicate; there is no code path that touches an entry
// without it. Out-of-scope entries are reported as not found so callers
// cannot probe whether an id exists under another company.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"flagdesk/internal/activity"
	"flagdesk/internal/auth"
	"flagdesk/internal/blacklist/access"
	"flagdesk/internal/blacklist/models"
	"flagdesk/internal/blacklist/query"
	"flagdesk/internal/blacklist/score"
	"flagdesk/internal/blacklist/store"
	"flagdesk/internal/platform/metrics"
	id "flagdesk/pkg/domain"
	dErrors "flagdesk/pkg/domain-errors"
	"flagdesk/pkg/platform/sentinel"
	"flagdesk/pkg/requestcontext"
)

// EntryStore is the storage collaborator. Predicates are opaque
// AND-composable conditions built by the query package.
type EntryStore interface {
	Insert(ctx context.Context, entry *models.Entry) error
	FindByID(ctx context.Context, entryID id.EntryID) (*models.Entry, error)
	FindMany(ctx context.Context, predicates query.Set, order query.Order, limit, offset int) ([]*models.Entry, error)
	Count(ctx context.Context, predicates query.Set) (int, error)
	Execute(ctx context.Context, entryID id.EntryID, validate func(*models.Entry) error, mutate func(*models.Entry)) (*models.Entry, error)
	Delete(ctx context.Context, entryID id.EntryID) (bool, error)
}

// ActivityRecorder is the append-only audit sink. Implementations never
// surface errors to callers.
type ActivityRecorder interface {
	Record(ctx context.Context, userID id.UserID, action, resourceType, resourceID, details string)
}

// errOutOfScope marks an entry that exists but belongs to another company.
// It never leaves this package; callers see CodeNotFound.
var errOutOfScope = errors.New("entry out of scope")

// Service implements the entry lifecycle.
type Service struct {
	entries    EntryStore
	principals auth.PrincipalResolver
	recorder   ActivityRecorder
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type serviceConfig struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures optional service dependencies.
type Option func(*serviceConfig)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *serviceConfig) { cfg.logger = logger }
}

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

// New constructs the entry lifecycle service.
func New(entries EntryStore, principals auth.PrincipalResolver, recorder ActivityRecorder, opts ...Option) (*Service, error) {
	if entries == nil {
		return nil, fmt.Errorf("entry store is required")
	}
	if principals == nil {
		return nil, fmt.Errorf("principal resolver is required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder is required")
	}
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		entries:    entries,
		principals: principals,
		recorder:   recorder,
		logger:     cfg.logger,
		metrics:    cfg.metrics,
	}, nil
}

// Create files a new entry for the principal's company. The company is
// mandatory for admins too: every entry needs an owning tenant.
func (s *Service) Create(ctx context.Context, principalID id.UserID, sub models.Submission) (*models.Entry, error) {
	principal, err := s.principals.Resolve(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if principal.CompanyID == nil {
		return nil, dErrors.New(dErrors.CodeNoCompany, "user has no associated company")
	}

	riskScore := score.Compute(sub.Reason, len(sub.IDDocumentURLs) > 0, hasValue(sub.FaceImageURL))
	entry, err := models.NewEntry(id.NewEntryID(), *principal.CompanyID, principalID, sub, riskScore, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.entries.Insert(ctx, entry); err != nil {
		s.countOperation("create", "error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "store entry")
	}

	s.recorder.Record(ctx, principalID, activity.ActionEntryCreated, activity.ResourceEntry, entry.ID.String(), subjectOf(entry))
	s.countOperation("create", "ok")
	if s.metrics != nil {
		s.metrics.EntriesCreated.Inc()
	}
	return entry, nil
}

// ListRequest carries the caller-facing filters and pagination for List.
type ListRequest struct {
	Company  *id.CompanyID
	Status   string
	Search   string
	From     *time.Time
	To       *time.Time
	MinScore *int
	MaxScore *int
	Page     int
	Limit    int
}

// Page is one page of entries plus the total count over the same predicate.
type Page struct {
	Entries []*models.Entry `json:"entries"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}

// List returns the scope-filtered page of entries, newest first, with the
// total count computed over the same predicate set.
func (s *Service) List(ctx context.Context, principalID id.UserID, req ListRequest) (*Page, error) {
	scope, err := s.resolveScope(ctx, principalID)
	if err != nil {
		return nil, err
	}

	predicates := query.Build(store.QueryFields, query.Filter{
		Company:  scope.EffectiveCompanyFilter(req.Company),
		Status:   req.Status,
		Search:   req.Search,
		From:     req.From,
		To:       req.To,
		MinScore: req.MinScore,
		MaxScore: req.MaxScore,
	})
	page := query.NewPage(req.Page, req.Limit)

	var (
		entries []*models.Entry
		total   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var findErr error
		entries, findErr = s.entries.FindMany(gctx, predicates, store.DefaultOrder, page.Limit, page.Offset)
		return findErr
	})
	g.Go(func() error {
		var countErr error
		total, countErr = s.entries.Count(gctx, predicates)
		return countErr
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list entries")
	}

	pageNumber := req.Page
	if pageNumber < 1 {
		pageNumber = 1
	}
	return &Page{Entries: entries, Total: total, Page: pageNumber, Limit: page.Limit}, nil
}

// Get returns the entry when it exists and is inside the caller's scope;
// otherwise CodeNotFound, with no hint whether the id exists elsewhere.
func (s *Service) Get(ctx context.Context, principalID id.UserID, entryID id.EntryID) (*models.Entry, error) {
	scope, err := s.resolveScope(ctx, principalID)
	if err != nil {
		return nil, err
	}
	return s.getInScope(ctx, scope, entryID)
}

// Update applies a partial patch. The score is recomputed from the
// post-patch entry exactly when the patch touches a score input; an empty
// patch only bumps UpdatedAt.
func (s *Service) Update(ctx context.Context, principalID id.UserID, entryID id.EntryID, patch models.Patch) (*models.Entry, error) {
	scope, err := s.resolveScope(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	entry, err := s.entries.Execute(ctx, entryID,
		s.requireInScope(scope),
		func(e *models.Entry) {
			e.Apply(patch, now)
			if patch.TouchesScoreInputs() {
				e.BlacklistScore = score.Compute(e.Reason, e.HasDocuments(), e.HasFaceImage())
			}
		},
	)
	if err != nil {
		return nil, s.translateLookup(err, "update")
	}

	s.recorder.Record(ctx, principalID, activity.ActionEntryUpdated, activity.ResourceEntry, entryID.String(), subjectOf(entry))
	s.countOperation("update", "ok")
	return entry, nil
}

// Delete hard-deletes an in-scope entry.
func (s *Service) Delete(ctx context.Context, principalID id.UserID, entryID id.EntryID) error {
	scope, err := s.resolveScope(ctx, principalID)
	if err != nil {
		return err
	}
	entry, err := s.getInScope(ctx, scope, entryID)
	if err != nil {
		return err
	}

	deleted, err := s.entries.Delete(ctx, entryID)
	if err != nil {
		s.countOperation("delete", "error")
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete entry")
	}
	if !deleted {
		// Lost a race with another delete; same outcome for the caller.
		return dErrors.New(dErrors.CodeNotFound, "entry not found")
	}

	s.recorder.Record(ctx, principalID, activity.ActionEntryDeleted, activity.ResourceEntry, entryID.String(), subjectOf(entry))
	s.countOperation("delete", "ok")
	return nil
}

// ToggleStatus sets the blacklisted flag and derives the status from it:
// blacklisted entries are active, cleared ones inactive.
func (s *Service) ToggleStatus(ctx context.Context, principalID id.UserID, entryID id.EntryID, blacklisted bool) (*models.Entry, error) {
	scope, err := s.resolveScope(ctx, principalID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	entry, err := s.entries.Execute(ctx, entryID,
		s.requireInScope(scope),
		func(e *models.Entry) {
			e.ApplyToggle(blacklisted, now)
		},
	)
	if err != nil {
		return nil, s.translateLookup(err, "toggle")
	}

	action := activity.ActionEntryBlacklisted
	if !blacklisted {
		action = activity.ActionEntryUnblacklisted
	}
	s.recorder.Record(ctx, principalID, action, activity.ResourceEntry, entryID.String(), subjectOf(entry))
	s.countOperation("toggle", "ok")
	return entry, nil
}

func (s *Service) resolveScope(ctx context.Context, principalID id.UserID) (access.Scope, error) {
	principal, err := s.principals.Resolve(ctx, principalID)
	if err != nil {
		return access.Scope{}, err
	}
	return access.Resolve(principal)
}

func (s *Service) getInScope(ctx context.Context, scope access.Scope, entryID id.EntryID) (*models.Entry, error) {
	entry, err := s.entries.FindByID(ctx, entryID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "entry not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load entry")
	}
	if !scope.Allows(entry.CompanyID) {
		if s.metrics != nil {
			s.metrics.ScopeDenials.Inc()
		}
		return nil, dErrors.New(dErrors.CodeNotFound, "entry not found")
	}
	return entry, nil
}

// requireInScope is the Execute validation callback: entries outside the
// caller's scope fail exactly like missing ones.
func (s *Service) requireInScope(scope access.Scope) func(*models.Entry) error {
	return func(e *models.Entry) error {
		if !scope.Allows(e.CompanyID) {
			if s.metrics != nil {
				s.metrics.ScopeDenials.Inc()
			}
			return errOutOfScope
		}
		return nil
	}
}

func (s *Service) translateLookup(err error, operation string) error {
	if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, errOutOfScope) {
		return dErrors.New(dErrors.CodeNotFound, "entry not found")
	}
	s.countOperation(operation, "error")
	return dErrors.Wrap(err, dErrors.CodeInternal, operation+" entry")
}

func (s *Service) countOperation(operation, outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementEntryOperation(operation, outcome)
	}
}

func hasValue(s *string) bool {
	return s != nil && *s != ""
}

func subjectOf(entry *models.Entry) string {
	return entry.FirstName + " " + entry.LastName
}
