// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "idcard/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a UserID where a CitizenID is expected.
type (
	UserID    uuid.UUID
	CitizenID uuid.UUID
	EventID   uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs, bulk id lists).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseCitizenID(s string) (CitizenID, error) {
	id, err := parseUUID(s, "citizen ID")
	return CitizenID(id), err
}

// NewCitizenID generates a random record identifier.
func NewCitizenID() CitizenID { return CitizenID(uuid.New()) }

// NewEventID generates a random lifecycle event identifier.
func NewEventID() EventID { return EventID(uuid.New()) }

// String methods - for logging and debugging.

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id CitizenID) String() string { return uuid.UUID(id).String() }
func (id EventID) String() string   { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CitizenID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// parseUUID is the shared validation logic.
// Nil UUIDs are well-formed and parse successfully; store lookups then
// report them as not found, which keeps bulk results uniform.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}

// Text marshalling keeps ids readable in JSON payloads and outbox events.

func (id CitizenID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id EventID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id UserID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }

func (id *CitizenID) UnmarshalText(b []byte) error {
	parsed, err := ParseCitizenID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
