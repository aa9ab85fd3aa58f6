// Package auth resolves authenticated callers into principals.
//
// Credential verification, session issuance and two-factor handling live in
// an external identity service; this package only answers "who is user X"
// for authorization decisions, backed by the user directory.
package auth

import (
	"context"
	"errors"
	"fmt"

	id "flagdesk/pkg/domain"
	dErrors "flagdesk/pkg/domain-errors"
	"flagdesk/pkg/platform/sentinel"
)

// Principal is the authorization view of a user: identity, admin flag and
// company membership. CompanyID is nil for users without a tenant; most
// operations fail for them.
type Principal struct {
	UserID    id.UserID     `json:"user_id"`
	IsAdmin   bool          `json:"is_admin"`
	CompanyID *id.CompanyID `json:"company_id,omitempty"`
}

// PrincipalResolver looks up the principal for an authenticated user ID.
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID id.UserID) (*Principal, error)
}

// UserStore is the directory lookup the resolver is built on.
type UserStore interface {
	FindPrincipal(ctx context.Context, userID id.UserID) (*Principal, error)
}

// Resolver resolves principals from the user directory.
type Resolver struct {
	users UserStore
}

// NewResolver builds a store-backed resolver.
func NewResolver(users UserStore) (*Resolver, error) {
	if users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	return &Resolver{users: users}, nil
}

// Resolve returns the principal for userID, or CodeUnauthorized when the
// user does not exist (a token for a deleted user is a stale credential,
// not a missing resource).
func (r *Resolver) Resolve(ctx context.Context, userID id.UserID) (*Principal, error) {
	principal, err := r.users.FindPrincipal(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unknown user")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "resolve principal")
	}
	return principal, nil
}
