// Package ids provides the 128-bit identifier type shared by every
// persisted and in-memory entity in the room coordinator.
package ids

import (
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidID is returned when parsing a malformed identifier.
var ErrInvalidID = errors.New("ids: invalid identifier")

// ID is a universally-unique 128-bit value, rendered lowercase hex with
// dashes (spec.md §3 "All ids are universally-unique 128-bit values
// rendered lowercase hex with dashes").
type ID uuid.UUID

// Nil is the zero-value ID, used to represent an absent/null id (e.g. a
// patient message's sender-id, or a room with no claimed doctor).
var Nil ID

// New generates a fresh random ID.
func New() ID {
	return ID(uuid.New())
}

// Parse parses a lowercase-hex-with-dashes string into an ID.
func Parse(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, ErrInvalidID
	}
	return ID(u), nil
}

// String renders the ID as lowercase hex with dashes.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether id is the null identifier.
func (id ID) IsNil() bool {
	return id == Nil
}

// MarshalText implements encoding.TextMarshaler so IDs serialize to JSON
// as plain strings.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
