// Package access resolves a principal into its company scope.
//
// The scope is the single tenant-isolation decision: every entry operation
// applies it as a mandatory predicate, so cross-company reads and writes are
// impossible by construction rather than by per-handler checks.
package access

import (
	"flagdesk/internal/auth"
	id "flagdesk/pkg/domain"
	dErrors "flagdesk/pkg/domain-errors"
)

// Scope is a resolved authorization decision. It is computed per request and
// never persisted.
type Scope struct {
	unrestricted bool
	companyID    id.CompanyID
}

// Unrestricted returns the admin scope covering all companies.
func Unrestricted() Scope {
	return Scope{unrestricted: true}
}

// RestrictedTo returns a scope limited to a single company.
func RestrictedTo(companyID id.CompanyID) Scope {
	return Scope{companyID: companyID}
}

// IsUnrestricted reports whether the scope spans all companies.
func (s Scope) IsUnrestricted() bool { return s.unrestricted }

// Company returns the restricting company and whether one applies.
func (s Scope) Company() (id.CompanyID, bool) {
	if s.unrestricted {
		return id.CompanyID{}, false
	}
	return s.companyID, true
}

// Allows reports whether the scope permits acting on data owned by companyID.
func (s Scope) Allows(companyID id.CompanyID) bool {
	return s.unrestricted || s.companyID == companyID
}

// EffectiveCompanyFilter reconciles a caller-supplied company filter with the
// scope. Admins may narrow an unrestricted scope to one company; restricted
// callers always get their own company, whatever they asked for.
func (s Scope) EffectiveCompanyFilter(requested *id.CompanyID) *id.CompanyID {
	if s.unrestricted {
		return requested
	}
	companyID := s.companyID
	return &companyID
}

// Resolve maps a principal to its scope. Non-admins without a company cannot
// be scoped and fail with CodeNoCompany.
func Resolve(principal *auth.Principal) (Scope, error) {
	if principal == nil {
		return Scope{}, dErrors.New(dErrors.CodeUnauthorized, "principal is required")
	}
	if principal.IsAdmin {
		return Unrestricted(), nil
	}
	if principal.CompanyID == nil {
		return Scope{}, dErrors.New(dErrors.CodeNoCompany, "user has no associated company")
	}
	return RestrictedTo(*principal.CompanyID), nil
}
