package models

import (
	"time"

	dErrors "flagdesk/pkg/domain-errors"
)

// Patch is a partial update to an entry. Absent fields leave the stored
// value untouched. Phone, Email and FaceImageURL are nullable: an explicit
// null clears them. Every other field rejects null.
type Patch struct {
	FirstName      Optional[string]   `json:"first_name,omitzero"`
	LastName       Optional[string]   `json:"last_name,omitzero"`
	IDNumber       Optional[string]   `json:"id_number,omitzero"`
	Phone          Optional[string]   `json:"phone,omitzero"`
	Email          Optional[string]   `json:"email,omitzero"`
	FaceImageURL   Optional[string]   `json:"face_image_url,omitzero"`
	IDDocumentURLs Optional[[]string] `json:"id_document_urls,omitzero"`
	Reason         Optional[string]   `json:"reason,omitzero"`
	Status         Optional[Status]   `json:"status,omitzero"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p Patch) IsEmpty() bool {
	return !p.FirstName.IsSet() && !p.LastName.IsSet() && !p.IDNumber.IsSet() &&
		!p.Phone.IsSet() && !p.Email.IsSet() && !p.FaceImageURL.IsSet() &&
		!p.IDDocumentURLs.IsSet() && !p.Reason.IsSet() && !p.Status.IsSet()
}

// TouchesScoreInputs reports whether applying the patch can change any score
// input (reason, attached documents, face image).
func (p Patch) TouchesScoreInputs() bool {
	return p.Reason.IsSet() || p.IDDocumentURLs.IsSet() || p.FaceImageURL.IsSet()
}

// Validate rejects patches that null out non-nullable fields or carry
// invalid values.
func (p Patch) Validate() error {
	for _, f := range []struct {
		name string
		null bool
	}{
		{"first_name", p.FirstName.IsNull()},
		{"last_name", p.LastName.IsNull()},
		{"id_number", p.IDNumber.IsNull()},
		{"id_document_urls", p.IDDocumentURLs.IsNull()},
		{"reason", p.Reason.IsNull()},
		{"status", p.Status.IsNull()},
	} {
		if f.null {
			return dErrors.New(dErrors.CodeBadRequest, f.name+" cannot be null")
		}
	}
	if reason, ok := p.Reason.Get(); ok && reason == "" {
		return dErrors.New(dErrors.CodeBadRequest, "reason cannot be empty")
	}
	if status, ok := p.Status.Get(); ok && !status.IsValid() {
		return dErrors.New(dErrors.CodeBadRequest, "unknown status")
	}
	for _, f := range []struct {
		name string
		opt  Optional[string]
	}{
		{"first_name", p.FirstName},
		{"last_name", p.LastName},
		{"id_number", p.IDNumber},
	} {
		if v, ok := f.opt.Get(); ok && v == "" {
			return dErrors.New(dErrors.CodeBadRequest, f.name+" cannot be empty")
		}
	}
	return nil
}

// Apply writes the patched fields onto the entry and bumps UpdatedAt. The
// caller recomputes the score afterwards when TouchesScoreInputs reports
// true; Apply itself never touches BlacklistScore, CompanyID or CreatedAt.
func (e *Entry) Apply(p Patch, now time.Time) {
	if v, ok := p.FirstName.Get(); ok {
		e.FirstName = v
	}
	if v, ok := p.LastName.Get(); ok {
		e.LastName = v
	}
	if v, ok := p.IDNumber.Get(); ok {
		e.IDNumber = v
	}
	applyNullable(&e.Phone, p.Phone)
	applyNullable(&e.Email, p.Email)
	applyNullable(&e.FaceImageURL, p.FaceImageURL)
	if v, ok := p.IDDocumentURLs.Get(); ok {
		e.IDDocumentURLs = v
	}
	if v, ok := p.Reason.Get(); ok {
		e.Reason = v
	}
	if v, ok := p.Status.Get(); ok {
		e.Status = v
	}
	e.UpdatedAt = now
}

func applyNullable(target **string, opt Optional[string]) {
	if !opt.IsSet() {
		return
	}
	if opt.IsNull() {
		*target = nil
		return
	}
	v, _ := opt.Get()
	*target = &v
}
