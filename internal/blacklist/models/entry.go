package models

import (
	"time"

	id "flagdesk/pkg/domain"
	dErrors "flagdesk/pkg/domain-errors"
)

// Status is the lifecycle state of a blacklist entry.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending, StatusResolved:
		return true
	}
	return false
}

// StatusForBlacklisted derives the status implied by the blacklisted flag.
func StatusForBlacklisted(blacklisted bool) Status {
	if blacklisted {
		return StatusActive
	}
	return StatusInactive
}

// Entry is the aggregate root for a flagged-person record.
//
// Invariants:
//   - CompanyID is fixed at creation to the creator's company and never
//     reassigned
//   - Reason is non-empty
//   - BlacklistScore is derived from (Reason, documents present, face image
//     present) and is never set directly by a caller
//   - UpdatedAt moves on every mutation; CreatedAt is immutable
type Entry struct {
	ID            id.EntryID   `json:"id"`
	CompanyID     id.CompanyID `json:"company_id"`
	CreatorUserID id.UserID    `json:"creator_user_id"`

	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	IDNumber       string   `json:"id_number"`
	Phone          *string  `json:"phone,omitempty"`
	Email          *string  `json:"email,omitempty"`
	FaceImageURL   *string  `json:"face_image_url,omitempty"`
	IDDocumentURLs []string `json:"id_document_urls"`

	Reason         string `json:"reason"`
	Status         Status `json:"status"`
	IsBlacklisted  bool   `json:"is_blacklisted"`
	BlacklistScore int    `json:"blacklist_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasDocuments reports whether any identity documents are attached.
func (e *Entry) HasDocuments() bool {
	return len(e.IDDocumentURLs) > 0
}

// HasFaceImage reports whether a face image is attached.
func (e *Entry) HasFaceImage() bool {
	return e.FaceImageURL != nil && *e.FaceImageURL != ""
}

// ApplyToggle flips the blacklisted flag and derives the matching status.
func (e *Entry) ApplyToggle(blacklisted bool, now time.Time) {
	e.IsBlacklisted = blacklisted
	e.Status = StatusForBlacklisted(blacklisted)
	e.UpdatedAt = now
}

// Clone returns a deep copy so stores can hand out entries without aliasing
// their internal state.
func (e *Entry) Clone() *Entry {
	clone := *e
	if e.Phone != nil {
		phone := *e.Phone
		clone.Phone = &phone
	}
	if e.Email != nil {
		email := *e.Email
		clone.Email = &email
	}
	if e.FaceImageURL != nil {
		face := *e.FaceImageURL
		clone.FaceImageURL = &face
	}
	if e.IDDocumentURLs != nil {
		clone.IDDocumentURLs = append([]string(nil), e.IDDocumentURLs...)
	}
	return &clone
}

// Submission carries the caller-supplied fields for a new entry. Score,
// status, company and creator are assigned by the service.
type Submission struct {
	FirstName      string
	LastName       string
	IDNumber       string
	Phone          *string
	Email          *string
	FaceImageURL   *string
	IDDocumentURLs []string
	Reason         string
}

// NewEntry validates a submission and builds the aggregate. The score is
// supplied by the caller because deriving it belongs to the score engine,
// not the model.
func NewEntry(entryID id.EntryID, companyID id.CompanyID, creator id.UserID, sub Submission, score int, now time.Time) (*Entry, error) {
	if sub.FirstName == "" || sub.LastName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "subject name is required")
	}
	if sub.IDNumber == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "subject id number is required")
	}
	if sub.Reason == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "reason cannot be empty")
	}
	if score < 0 || score > 100 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "score must be between 0 and 100")
	}
	return &Entry{
		ID:             entryID,
		CompanyID:      companyID,
		CreatorUserID:  creator,
		FirstName:      sub.FirstName,
		LastName:       sub.LastName,
		IDNumber:       sub.IDNumber,
		Phone:          sub.Phone,
		Email:          sub.Email,
		FaceImageURL:   sub.FaceImageURL,
		IDDocumentURLs: sub.IDDocumentURLs,
		Reason:         sub.Reason,
		Status:         StatusActive,
		IsBlacklisted:  true,
		BlacklistScore: score,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
