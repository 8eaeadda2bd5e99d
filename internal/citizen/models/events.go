package models

import (
	"time"

	id "idcard/pkg/domain"
)

// Domain events capture what happened to a citizen record. The service
// serialises them into the transactional outbox in the same transaction as
// the mutation they describe.

const (
	AggregateCitizen = "citizen"

	EventCitizenRegistered         = "citizen.registered"
	EventCitizenProfileUpdated     = "citizen.profile_updated"
	EventCitizenStatusChanged      = "citizen.status_changed"
	EventCitizenPrintStatusChanged = "citizen.print_status_changed"
	EventCitizenDeleted            = "citizen.deleted"
)

// CitizenRegistered is emitted when a registrar submits a new record.
type CitizenRegistered struct {
	RecordID     id.CitizenID `json:"record_id"`
	CitizenID    string       `json:"citizen_id"`
	RegisteredBy string       `json:"registered_by"`
	At           time.Time    `json:"at"`
}

// CitizenProfileUpdated is emitted when descriptive fields or biometrics change.
type CitizenProfileUpdated struct {
	RecordID  id.CitizenID `json:"record_id"`
	CitizenID string       `json:"citizen_id"`
	UpdatedBy string       `json:"updated_by"`
	At        time.Time    `json:"at"`
}

// CitizenStatusChanged mirrors one appended history entry.
type CitizenStatusChanged struct {
	RecordID  id.CitizenID `json:"record_id"`
	CitizenID string       `json:"citizen_id"`
	From      Status       `json:"from"`
	To        Status       `json:"to"`
	ChangedBy string       `json:"changed_by"`
	At        time.Time    `json:"at"`
}

// CitizenPrintStatusChanged is emitted for card production changes, which are
// not part of the status history.
type CitizenPrintStatusChanged struct {
	RecordID  id.CitizenID `json:"record_id"`
	CitizenID string       `json:"citizen_id"`
	From      PrintStatus  `json:"from"`
	To        PrintStatus  `json:"to"`
	Reprint   bool         `json:"reprint"`
	ChangedBy string       `json:"changed_by"`
	At        time.Time    `json:"at"`
}

// CitizenDeleted is emitted when a record is destroyed.
type CitizenDeleted struct {
	RecordID  id.CitizenID `json:"record_id"`
	CitizenID string       `json:"citizen_id"`
	DeletedBy string       `json:"deleted_by"`
	At        time.Time    `json:"at"`
}
