package models

import (
	"time"

	id "flagdesk/pkg/domain"
	dErrors "flagdesk/pkg/domain-errors"
)

// Status is the lifecycle state of a company.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// CanTransitionTo permits active <-> inactive only.
func (s Status) CanTransitionTo(target Status) bool {
	return s != target && (target == StatusActive || target == StatusInactive)
}

// Company is the aggregate root for a tenant organization.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - Status is either active or inactive
//   - CreatedAt is immutable after construction
//
// Deactivation flips the status without cascading writes to the entries the
// company owns; the entries stay intact for reactivation.
type Company struct {
	ID        id.CompanyID `json:"id"`
	Name      string       `json:"name"`
	Status    Status       `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// CanDeactivate checks if the company can transition to inactive status.
func (c *Company) CanDeactivate() error {
	if !c.Status.CanTransitionTo(StatusInactive) {
		return dErrors.New(dErrors.CodeInvariantViolation, "company is already inactive")
	}
	return nil
}

// ApplyDeactivation transitions the company to inactive status.
// Call CanDeactivate first to validate the transition.
func (c *Company) ApplyDeactivation(now time.Time) {
	c.Status = StatusInactive
	c.UpdatedAt = now
}

// CanReactivate checks if the company can transition to active status.
func (c *Company) CanReactivate() error {
	if !c.Status.CanTransitionTo(StatusActive) {
		return dErrors.New(dErrors.CodeInvariantViolation, "company is already active")
	}
	return nil
}

// ApplyReactivation transitions the company to active status.
// Call CanReactivate first to validate the transition.
func (c *Company) ApplyReactivation(now time.Time) {
	c.Status = StatusActive
	c.UpdatedAt = now
}

// NewCompany validates and constructs a company.
func NewCompany(companyID id.CompanyID, name string, now time.Time) (*Company, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "company name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "company name must be 128 characters or less")
	}
	return &Company{
		ID:        companyID,
		Name:      name,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
