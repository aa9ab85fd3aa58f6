// Package activity captures the append-only audit trail of registry
// mutations. Recording is fire-and-forget: the primary operation never fails
// because the trail could not be written.
package activity

import (
	"time"

	id "flagdesk/pkg/domain"
)

// Actions emitted by the entry lifecycle and the company registry.
const (
	ActionEntryCreated       = "entry_created"
	ActionEntryUpdated       = "entry_updated"
	ActionEntryDeleted       = "entry_deleted"
	ActionEntryBlacklisted   = "entry_blacklisted"
	ActionEntryUnblacklisted = "entry_unblacklisted"
	ActionCompanyCreated     = "company_created"
	ActionCompanyDeactivated = "company_deactivated"
	ActionCompanyReactivated = "company_reactivated"
)

// Resource types events refer to.
const (
	ResourceEntry   = "blacklist_entry"
	ResourceCompany = "company"
)

// Event is one audit-trail record. Keep it transport-agnostic so stores and
// sinks can fan out.
type Event struct {
	ID           id.ActivityID `json:"id"`
	UserID       id.UserID     `json:"user_id"`
	Action       string        `json:"action"`
	ResourceType string        `json:"resource_type"`
	ResourceID   string        `json:"resource_id,omitempty"`
	Details      string        `json:"details,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}
