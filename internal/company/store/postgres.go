package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	companymodels "flagdesk/internal/company/models"
	id "flagdesk/pkg/domain"
	"flagdesk/pkg/platform/sentinel"
)

// Postgres persists companies in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed company store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// CreateIfNameAvailable inserts the company; the partial unique index on
// LOWER(name) makes exactly one concurrent insert win.
func (s *Postgres) CreateIfNameAvailable(ctx context.Context, company *companymodels.Company) error {
	const stmt = `
		INSERT INTO companies (id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := s.db.ExecContext(ctx, stmt,
		uuid.UUID(company.ID),
		company.Name,
		string(company.Status),
		company.CreatedAt,
		company.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

// FindByID returns the company or sentinel.ErrNotFound.
func (s *Postgres) FindByID(ctx context.Context, companyID id.CompanyID) (*companymodels.Company, error) {
	const query = `
		SELECT id, name, status, created_at, updated_at
		FROM companies WHERE id = $1`
	return scanCompany(s.db.QueryRowContext(ctx, query, uuid.UUID(companyID)))
}

// FindByName returns the company matching name case-insensitively.
func (s *Postgres) FindByName(ctx context.Context, name string) (*companymodels.Company, error) {
	const query = `
		SELECT id, name, status, created_at, updated_at
		FROM companies WHERE LOWER(name) = LOWER($1)`
	return scanCompany(s.db.QueryRowContext(ctx, query, name))
}

// Execute runs a validate-then-mutate update with the row locked.
func (s *Postgres) Execute(ctx context.Context, companyID id.CompanyID, validate func(*companymodels.Company) error, mutate func(*companymodels.Company)) (*companymodels.Company, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin company update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
		SELECT id, name, status, created_at, updated_at
		FROM companies WHERE id = $1 FOR UPDATE`
	company, err := scanCompany(tx.QueryRowContext(ctx, query, uuid.UUID(companyID)))
	if err != nil {
		return nil, err
	}

	if validate != nil {
		if err := validate(company); err != nil {
			return nil, err
		}
	}
	mutate(company)

	const update = `
		UPDATE companies SET name = $2, status = $3, updated_at = $4 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update,
		uuid.UUID(company.ID),
		company.Name,
		string(company.Status),
		company.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("update company: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit company update: %w", err)
	}
	return company, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (*companymodels.Company, error) {
	var (
		company   companymodels.Company
		rawID     uuid.UUID
		rawStatus string
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(&rawID, &company.Name, &rawStatus, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan company: %w", err)
	}
	company.ID = id.CompanyID(rawID)
	company.Status = companymodels.Status(rawStatus)
	company.CreatedAt = createdAt
	company.UpdatedAt = updatedAt
	return &company, nil
}
