package models

import "encoding/json"

// Optional is an explicit present/absent marker for patch fields.
//
// Partial updates need three states for nullable fields: absent (leave the
// stored value alone), explicit null (clear it), and value (replace it).
// Relying on pointer-nil to mean "absent" conflates the first two, so the
// distinction is carried explicitly. Non-nullable fields reject the null
// state at patch validation.
type Optional[T any] struct {
	set   bool
	null  bool
	value T
}

// Some returns a present Optional carrying v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{set: true, value: v}
}

// Null returns a present Optional carrying an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

// IsSet reports whether the field appeared in the patch at all.
func (o Optional[T]) IsSet() bool { return o.set }

// IsNull reports whether the field was explicitly set to null.
func (o Optional[T]) IsNull() bool { return o.set && o.null }

// Get returns the carried value and whether a non-null value is present.
func (o Optional[T]) Get() (T, bool) {
	if !o.set || o.null {
		var zero T
		return zero, false
	}
	return o.value, true
}

// UnmarshalJSON is only invoked for keys present in the document, which is
// exactly the present/absent distinction Optional encodes.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if string(data) == "null" {
		o.null = true
		return nil
	}
	return json.Unmarshal(data, &o.value)
}

// MarshalJSON round-trips the carried state; absent fields marshal as null,
// so Optional fields should also carry omitzero/omitempty tags when encoded.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
