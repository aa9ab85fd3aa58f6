package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "flagdesk/pkg/domain"
	"flagdesk/pkg/platform/sentinel"
)

// PostgresUserStore reads principals from the users table.
type PostgresUserStore struct {
	db *sql.DB
}

// NewPostgresUserStore constructs a PostgreSQL-backed user directory.
func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

// FindPrincipal implements UserStore.
func (s *PostgresUserStore) FindPrincipal(ctx context.Context, userID id.UserID) (*Principal, error) {
	const query = `
		SELECT id, is_admin, company_id
		FROM users
		WHERE id = $1`

	var (
		rawID     uuid.UUID
		isAdmin   bool
		companyID uuid.NullUUID
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(userID)).Scan(&rawID, &isAdmin, &companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find principal: %w", err)
	}

	principal := &Principal{UserID: id.UserID(rawID), IsAdmin: isAdmin}
	if companyID.Valid {
		company := id.CompanyID(companyID.UUID)
		principal.CompanyID = &company
	}
	return principal, nil
}
