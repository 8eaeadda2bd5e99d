package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"idcard/internal/citizen/models"
	id "idcard/pkg/domain"
)

// TestActors are principals for each role, with stable ids.
var TestActors = struct {
	Admin      id.Actor
	Registrar  id.Actor
	Supervisor id.Actor
	Officer    id.Actor
	Citizen    id.Actor
}{
	Admin:      id.Actor{ID: id.UserID(uuid.MustParse("11111111-1111-1111-1111-111111111111")), Username: "admin", Role: id.RoleAdmin},
	Registrar:  id.Actor{ID: id.UserID(uuid.MustParse("22222222-2222-2222-2222-222222222222")), Username: "reg-1", Role: id.RoleRegistrar},
	Supervisor: id.Actor{ID: id.UserID(uuid.MustParse("33333333-3333-3333-3333-333333333333")), Username: "sup-1", Role: id.RoleSupervisor},
	Officer:    id.Actor{ID: id.UserID(uuid.MustParse("44444444-4444-4444-4444-444444444444")), Username: "off-1", Role: id.RoleOfficer},
	Citizen:    id.Actor{ID: id.UserID(uuid.MustParse("55555555-5555-5555-5555-555555555555")), Username: "abebe", Role: id.RoleCitizen},
}

var citizenSeq atomic.Int64

// CitizenBuilder provides a fluent interface for building test citizen records.
type CitizenBuilder struct {
	citizen *models.Citizen
}

// NewCitizenBuilder creates a waiting/unprinted record with unique business ids.
func NewCitizenBuilder() *CitizenBuilder {
	n := citizenSeq.Add(1)
	now := time.Now().UTC().Truncate(time.Microsecond)
	key := fmt.Sprintf("%06d", 100000+n)
	c, err := models.NewCitizen(id.NewCitizenID(), models.DefaultBusinessIDPrefix+key, key, models.Profile{
		Name:        models.PersonName{First: "Abebe", Middle: "Bikila", Last: "Kebede", FirstAm: "አበበ", LastAm: "ከበደ"},
		DateOfBirth: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		Gender:      "male",
		Nationality: "Ethiopian",
		Phone:       "+251911000000",
		Address:     models.Address{Region: "Addis Ababa", Zone: "Bole", Woreda: "03", Kebele: "07"},
	}, models.Biometrics{
		Photo:       "s3://biometrics/" + key + "/photo.jpg",
		Fingerprint: "s3://biometrics/" + key + "/fp.wsq",
		Signature:   "s3://biometrics/" + key + "/sig.png",
	}, nil, TestActors.Registrar.Identity(), now)
	if err != nil {
		panic(fmt.Sprintf("NewCitizenBuilder: %v", err))
	}
	return &CitizenBuilder{citizen: c}
}

func (b *CitizenBuilder) WithID(recordID id.CitizenID) *CitizenBuilder {
	b.citizen.ID = recordID
	return b
}

// WithCitizenID sets the business id; the normalised key follows the default prefix rules.
func (b *CitizenBuilder) WithCitizenID(citizenID string) *CitizenBuilder {
	b.citizen.CitizenID = citizenID
	b.citizen.BusinessKey = models.NewBusinessKeyNormalizer(models.DefaultBusinessIDPrefix).Normalize(citizenID)
	return b
}

func (b *CitizenBuilder) WithGender(gender string) *CitizenBuilder {
	b.citizen.Profile.Gender = strings.ToLower(gender)
	return b
}

func (b *CitizenBuilder) WithGivenDate(given time.Time) *CitizenBuilder {
	b.citizen.SetGivenDate(&given)
	return b
}

func (b *CitizenBuilder) CreatedAt(t time.Time) *CitizenBuilder {
	b.citizen.CreatedAt = t
	b.citizen.UpdatedAt = t
	b.citizen.StatusHistory[0].Timestamp = t
	return b
}

// WithStatus walks the legal edges to reach status so the history stays consistent.
func (b *CitizenBuilder) WithStatus(status models.Status) *CitizenBuilder {
	at := b.citizen.CreatedAt
	step := func(target models.Status, by string) {
		at = at.Add(time.Second)
		if err := b.citizen.TransitionTo(target, by, at); err != nil {
			panic(fmt.Sprintf("CitizenBuilder.WithStatus: %v", err))
		}
	}
	switch status {
	case models.StatusWaiting:
	case models.StatusPending:
		step(models.StatusPending, TestActors.Registrar.Identity())
	case models.StatusApproved:
		step(models.StatusPending, TestActors.Registrar.Identity())
		step(models.StatusApproved, TestActors.Supervisor.Identity())
	case models.StatusRejected:
		step(models.StatusPending, TestActors.Registrar.Identity())
		step(models.StatusRejected, TestActors.Supervisor.Identity())
	}
	return b
}

// WithPrintStatus sets the print status directly; the record must already be approved.
func (b *CitizenBuilder) WithPrintStatus(p models.PrintStatus) *CitizenBuilder {
	b.citizen.PrintStatus = p
	return b
}

func (b *CitizenBuilder) Build() *models.Citizen {
	return b.citizen
}

// NewTestCitizen creates a record in the given status.
func NewTestCitizen(status models.Status) *models.Citizen {
	return NewCitizenBuilder().WithStatus(status).Build()
}
