// Package service orchestrates company lifecycle management.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"flagdesk/internal/activity"
	companymodels "flagdesk/internal/company/models"
	"flagdesk/internal/platform/metrics"
	id "flagdesk/pkg/domain"
	dErrors "flagdesk/pkg/domain-errors"
	"flagdesk/pkg/platform/sentinel"
	"flagdesk/pkg/requestcontext"
)

// CompanyStore persists companies. Name uniqueness is case-insensitive and
// enforced by the store so concurrent registrations cannot both win.
type CompanyStore interface {
	CreateIfNameAvailable(ctx context.Context, company *companymodels.Company) error
	FindByID(ctx context.Context, companyID id.CompanyID) (*companymodels.Company, error)
	FindByName(ctx context.Context, name string) (*companymodels.Company, error)
	// Execute runs a validate-then-mutate update with the row locked.
	Execute(ctx context.Context, companyID id.CompanyID, validate func(*companymodels.Company) error, mutate func(*companymodels.Company)) (*companymodels.Company, error)
}

// ActivityRecorder mirrors the blacklist service's audit sink.
type ActivityRecorder interface {
	Record(ctx context.Context, userID id.UserID, action, resourceType, resourceID, details string)
}

// Service orchestrates company lifecycle management.
type Service struct {
	companies CompanyStore
	recorder  ActivityRecorder
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type serviceConfig struct {
	recorder ActivityRecorder
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures optional service dependencies.
type Option func(*serviceConfig)

// WithRecorder attaches the audit sink.
func WithRecorder(recorder ActivityRecorder) Option {
	return func(cfg *serviceConfig) { cfg.recorder = recorder }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *serviceConfig) { cfg.logger = logger }
}

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

// New constructs the company service.
func New(companies CompanyStore, opts ...Option) (*Service, error) {
	if companies == nil {
		return nil, fmt.Errorf("company store is required")
	}
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		companies: companies,
		recorder:  cfg.recorder,
		logger:    cfg.logger,
		metrics:   cfg.metrics,
	}, nil
}

// Create registers a new company under a unique name.
func (s *Service) Create(ctx context.Context, actor id.UserID, name string) (*companymodels.Company, error) {
	name = strings.TrimSpace(name)
	company, err := companymodels.NewCompany(id.NewCompanyID(), name, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.companies.CreateIfNameAvailable(ctx, company); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "company name must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create company")
	}

	s.record(ctx, actor, activity.ActionCompanyCreated, company.ID, company.Name)
	if s.metrics != nil {
		s.metrics.CompaniesCreated.Inc()
	}
	return company, nil
}

// Get retrieves a company by ID.
func (s *Service) Get(ctx context.Context, companyID id.CompanyID) (*companymodels.Company, error) {
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return company, nil
}

// GetByName retrieves a company by name (case-insensitive).
func (s *Service) GetByName(ctx context.Context, name string) (*companymodels.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "company name is required")
	}
	company, err := s.companies.FindByName(ctx, name)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return company, nil
}

// Deactivate transitions a company to inactive status.
func (s *Service) Deactivate(ctx context.Context, actor id.UserID, companyID id.CompanyID) (*companymodels.Company, error) {
	now := requestcontext.Now(ctx)
	company, err := s.companies.Execute(ctx, companyID,
		func(c *companymodels.Company) error {
			if err := c.CanDeactivate(); err != nil {
				return dErrors.New(dErrors.CodeConflict, "company is already inactive")
			}
			return nil
		},
		func(c *companymodels.Company) {
			c.ApplyDeactivation(now)
		},
	)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	s.record(ctx, actor, activity.ActionCompanyDeactivated, companyID, company.Name)
	return company, nil
}

// Reactivate transitions a company back to active status.
func (s *Service) Reactivate(ctx context.Context, actor id.UserID, companyID id.CompanyID) (*companymodels.Company, error) {
	now := requestcontext.Now(ctx)
	company, err := s.companies.Execute(ctx, companyID,
		func(c *companymodels.Company) error {
			if err := c.CanReactivate(); err != nil {
				return dErrors.New(dErrors.CodeConflict, "company is already active")
			}
			return nil
		},
		func(c *companymodels.Company) {
			c.ApplyReactivation(now)
		},
	)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	s.record(ctx, actor, activity.ActionCompanyReactivated, companyID, company.Name)
	return company, nil
}

func (s *Service) record(ctx context.Context, actor id.UserID, action string, companyID id.CompanyID, details string) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, actor, action, activity.ResourceCompany, companyID.String(), details)
}

func translateStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "company not found")
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "company store")
}
