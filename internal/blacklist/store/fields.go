package store

import "flagdesk/internal/blacklist/query"

// Storage field names shared by the memory and postgres stores. The postgres
// store uses them verbatim as column names.
const (
	FieldCompanyID = "company_id"
	FieldStatus    = "status"
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldIDNumber  = "id_number"
	FieldEmail     = "email"
	FieldReason    = "reason"
	FieldCreatedAt = "created_at"
	FieldScore     = "blacklist_score"
)

// QueryFields is the entry listing's filter-to-field mapping.
var QueryFields = query.Fields{
	Company: FieldCompanyID,
	Status:  FieldStatus,
	Search:  []string{FieldFirstName, FieldLastName, FieldIDNumber, FieldEmail, FieldReason},
	Created: FieldCreatedAt,
	Score:   FieldScore,
}

// DefaultOrder lists newest entries first, tiebroken by id for stable pages.
var DefaultOrder = query.Order{
	Field:         FieldCreatedAt,
	Descending:    true,
	TiebreakField: "id",
}
