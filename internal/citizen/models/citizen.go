package models

import (
	"fmt"
	"strings"
	"time"

	id "idcard/pkg/domain"
	dErrors "idcard/pkg/domain-errors"
)

// ValidityYears is the lifetime of an issued card.
const ValidityYears = 5

// InitialChangedBy is the author recorded on the creation history entry.
// The authenticated creator is kept separately in RegisteredBy.
const InitialChangedBy = "registrar"

// PersonName holds the name in Latin and Ethiopic script.
type PersonName struct {
	First    string
	Middle   string
	Last     string
	FirstAm  string
	MiddleAm string
	LastAm   string
}

// Full joins the Latin name parts, skipping empty ones.
func (n PersonName) Full() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{n.First, n.Middle, n.Last} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Address is the administrative hierarchy region > zone > woreda > kebele.
type Address struct {
	Region   string
	RegionAm string
	Zone     string
	ZoneAm   string
	Woreda   string
	WoredaAm string
	Kebele   string
	KebeleAm string
}

// Biometrics are opaque references (paths, URLs or blob ids). Content is never inspected.
type Biometrics struct {
	Photo       string
	Fingerprint string
	Signature   string
}

// Missing returns the names of absent references.
func (b Biometrics) Missing() []string {
	var missing []string
	if strings.TrimSpace(b.Photo) == "" {
		missing = append(missing, "photo")
	}
	if strings.TrimSpace(b.Fingerprint) == "" {
		missing = append(missing, "fingerprint")
	}
	if strings.TrimSpace(b.Signature) == "" {
		missing = append(missing, "signature")
	}
	return missing
}

// Profile is the descriptive part of a record that registrars may edit.
type Profile struct {
	Name          PersonName
	DateOfBirth   time.Time
	Gender        string
	GenderAm      string
	Nationality   string
	NationalityAm string
	Phone         string
	Address       Address
}

// HistoryEntry records one status change.
type HistoryEntry struct {
	Status    Status
	ChangedBy string
	Timestamp time.Time
}

// Citizen is one applicant's identity-card case.
type Citizen struct {
	ID            id.CitizenID
	CitizenID     string
	BusinessKey   string
	Profile       Profile
	Biometrics    Biometrics
	Status        Status
	PrintStatus   PrintStatus
	StatusHistory []HistoryEntry
	GivenDate     *time.Time
	ExpireDate    *time.Time
	RegisteredBy  string
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewCitizen builds a freshly registered record in waiting/unprinted with the
// single creation history entry.
func NewCitizen(recordID id.CitizenID, citizenID, businessKey string, profile Profile, bio Biometrics, givenDate *time.Time, registeredBy string, now time.Time) (*Citizen, error) {
	if strings.TrimSpace(citizenID) == "" || businessKey == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "citizen_id is required")
	}
	if missing := bio.Missing(); len(missing) > 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("biometrics required: %s", strings.Join(missing, ", ")))
	}
	c := &Citizen{
		ID:          recordID,
		CitizenID:   citizenID,
		BusinessKey: businessKey,
		Profile:     profile,
		Biometrics:  bio,
		Status:      StatusWaiting,
		PrintStatus: PrintStatusUnprinted,
		StatusHistory: []HistoryEntry{
			{Status: StatusWaiting, ChangedBy: InitialChangedBy, Timestamp: now},
		},
		RegisteredBy: registeredBy,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	c.SetGivenDate(givenDate)
	return c, nil
}

// ExpireDateFor derives the card expiry from the issue date. A card issued on
// 29 February expires on 28 February, matching the database's interval arithmetic.
func ExpireDateFor(given time.Time) time.Time {
	y, m, d := given.Date()
	h, mi, sec := given.Clock()
	e := time.Date(y+ValidityYears, m, d, h, mi, sec, given.Nanosecond(), given.Location())
	if e.Month() != m {
		e = e.AddDate(0, 0, -e.Day())
	}
	return e
}

// SetGivenDate sets the issue date and recomputes the expiry. A nil date clears both.
func (c *Citizen) SetGivenDate(given *time.Time) {
	if given == nil {
		c.GivenDate = nil
		c.ExpireDate = nil
		return
	}
	g := *given
	e := ExpireDateFor(g)
	c.GivenDate = &g
	c.ExpireDate = &e
}

// TransitionTo moves the record to target and appends exactly one history entry.
func (c *Citizen) TransitionTo(target Status, changedBy string, now time.Time) error {
	if !target.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid status: %q", target))
	}
	if !CanTransition(c.Status, target) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("cannot move citizen %s from %s to %s", c.CitizenID, c.Status, target))
	}
	c.Status = target
	c.StatusHistory = append(c.StatusHistory, HistoryEntry{Status: target, ChangedBy: changedBy, Timestamp: now})
	c.UpdatedAt = now
	return nil
}

// SetPrintStatus moves the card through production. Only approved records may
// leave or re-enter print states; history is untouched.
func (c *Citizen) SetPrintStatus(target PrintStatus, now time.Time) error {
	if !target.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid print status: %q", target))
	}
	if c.Status != StatusApproved {
		return dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("citizen %s is %s; print status changes require approval", c.CitizenID, c.Status))
	}
	if !CanTransitionPrint(c.PrintStatus, target) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("cannot move card for %s from %s to %s", c.CitizenID, c.PrintStatus, target))
	}
	c.PrintStatus = target
	c.UpdatedAt = now
	return nil
}

// IsEditable reports whether registrars may change the profile or biometrics.
func (c *Citizen) IsEditable() bool {
	return c.Status == StatusWaiting || c.Status == StatusRejected
}

// IsDeletable reports whether the record may be destroyed.
func (c *Citizen) IsDeletable() bool {
	return c.Status == StatusWaiting || c.Status == StatusRejected
}

// LastHistory returns the most recent history entry.
func (c *Citizen) LastHistory() (HistoryEntry, bool) {
	if len(c.StatusHistory) == 0 {
		return HistoryEntry{}, false
	}
	return c.StatusHistory[len(c.StatusHistory)-1], true
}

// Clone returns a deep copy safe to hand across store boundaries.
func (c *Citizen) Clone() *Citizen {
	if c == nil {
		return nil
	}
	out := *c
	out.StatusHistory = append([]HistoryEntry(nil), c.StatusHistory...)
	if c.GivenDate != nil {
		g := *c.GivenDate
		out.GivenDate = &g
	}
	if c.ExpireDate != nil {
		e := *c.ExpireDate
		out.ExpireDate = &e
	}
	return &out
}

// WithoutBiometrics returns a copy with biometric references blanked for list projections.
func (c *Citizen) WithoutBiometrics() *Citizen {
	out := c.Clone()
	out.Biometrics = Biometrics{}
	return out
}
