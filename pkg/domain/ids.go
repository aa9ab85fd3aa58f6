// Package domain defines the typed identifiers shared across modules.
//
// Every aggregate gets its own UUID-backed type so the compiler rejects
// cross-wiring (passing a UserID where a CompanyID is expected). Parsing
// happens once at trust boundaries; everything past the handler layer works
// with the typed form.
package domain

import (
	"github.com/google/uuid"

	dErrors "flagdesk/pkg/domain-errors"
)

type (
	// UserID identifies a registered user (the principal of every request).
	UserID uuid.UUID

	// CompanyID identifies a company, the tenancy boundary all blacklist
	// entries belong to.
	CompanyID uuid.UUID

	// EntryID identifies a blacklist entry.
	EntryID uuid.UUID

	// ActivityID identifies an activity-log event.
	ActivityID uuid.UUID
)

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id CompanyID) String() string  { return uuid.UUID(id).String() }
func (id EntryID) String() string    { return uuid.UUID(id).String() }
func (id ActivityID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id CompanyID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id EntryID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ActivityID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// The defined types do not inherit uuid.UUID's text marshalling, so each ID
// implements it explicitly. Without this, JSON encoding falls back to the
// underlying [16]byte array and responses carry byte arrays instead of the
// canonical UUID string.

func (id UserID) MarshalText() ([]byte, error)     { return marshalUUID(uuid.UUID(id)) }
func (id CompanyID) MarshalText() ([]byte, error)  { return marshalUUID(uuid.UUID(id)) }
func (id EntryID) MarshalText() ([]byte, error)    { return marshalUUID(uuid.UUID(id)) }
func (id ActivityID) MarshalText() ([]byte, error) { return marshalUUID(uuid.UUID(id)) }

func (id *UserID) UnmarshalText(text []byte) error {
	parsed, err := uuid.ParseBytes(text)
	if err != nil {
		return err
	}
	*id = UserID(parsed)
	return nil
}

func (id *CompanyID) UnmarshalText(text []byte) error {
	parsed, err := uuid.ParseBytes(text)
	if err != nil {
		return err
	}
	*id = CompanyID(parsed)
	return nil
}

func (id *EntryID) UnmarshalText(text []byte) error {
	parsed, err := uuid.ParseBytes(text)
	if err != nil {
		return err
	}
	*id = EntryID(parsed)
	return nil
}

func (id *ActivityID) UnmarshalText(text []byte) error {
	parsed, err := uuid.ParseBytes(text)
	if err != nil {
		return err
	}
	*id = ActivityID(parsed)
	return nil
}

func marshalUUID(u uuid.UUID) ([]byte, error) {
	return []byte(u.String()), nil
}

// parseUUID enforces the parsing invariant: IDs must be valid, non-empty,
// non-nil UUIDs.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be the nil UUID")
	}
	return parsed, nil
}

// ParseUserID parses a raw string into a UserID.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw, "user")
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseCompanyID parses a raw string into a CompanyID.
func ParseCompanyID(raw string) (CompanyID, error) {
	parsed, err := parseUUID(raw, "company")
	if err != nil {
		return CompanyID{}, err
	}
	return CompanyID(parsed), nil
}

// ParseEntryID parses a raw string into an EntryID.
func ParseEntryID(raw string) (EntryID, error) {
	parsed, err := parseUUID(raw, "entry")
	if err != nil {
		return EntryID{}, err
	}
	return EntryID(parsed), nil
}

// NewUserID returns a freshly generated UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewCompanyID returns a freshly generated CompanyID.
func NewCompanyID() CompanyID { return CompanyID(uuid.New()) }

// NewEntryID returns a freshly generated EntryID.
func NewEntryID() EntryID { return EntryID(uuid.New()) }

// NewActivityID returns a freshly generated ActivityID.
func NewActivityID() ActivityID { return ActivityID(uuid.New()) }
