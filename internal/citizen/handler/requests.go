package handler

import (
	"fmt"
	"strings"
	"time"

	"idcard/internal/citizen/models"
	"idcard/internal/citizen/service"
	dErrors "idcard/pkg/domain-errors"
	"idcard/pkg/platform/validation"
	strutil "idcard/pkg/string"
	reqvalidation "idcard/pkg/validation"
)

// NameRequest is a person's name in Latin and Ethiopic script.
type NameRequest struct {
	First    string `json:"first" validate:"required,notblank,max=100"`
	Middle   string `json:"middle" validate:"max=100"`
	Last     string `json:"last" validate:"required,notblank,max=100"`
	FirstAm  string `json:"first_am" validate:"max=100"`
	MiddleAm string `json:"middle_am" validate:"max=100"`
	LastAm   string `json:"last_am" validate:"max=100"`
}

// AddressRequest is the region > zone > woreda > kebele hierarchy.
type AddressRequest struct {
	Region   string `json:"region" validate:"max=100"`
	RegionAm string `json:"region_am" validate:"max=100"`
	Zone     string `json:"zone" validate:"max=100"`
	ZoneAm   string `json:"zone_am" validate:"max=100"`
	Woreda   string `json:"woreda" validate:"max=100"`
	WoredaAm string `json:"woreda_am" validate:"max=100"`
	Kebele   string `json:"kebele" validate:"max=100"`
	KebeleAm string `json:"kebele_am" validate:"max=100"`
}

// BiometricsRequest carries references to stored biometric files.
type BiometricsRequest struct {
	Photo       string `json:"photo" validate:"required,notblank,max=2048"`
	Fingerprint string `json:"fingerprint" validate:"required,notblank,max=2048"`
	Signature   string `json:"signature" validate:"required,notblank,max=2048"`
}

// CreateCitizenRequest is a registrar's submission.
type CreateCitizenRequest struct {
	CitizenID     string            `json:"citizen_id" validate:"required,notblank,max=64"`
	Name          NameRequest       `json:"name"`
	DateOfBirth   string            `json:"date_of_birth" validate:"required,isodate"`
	Gender        string            `json:"gender" validate:"required,oneof=male female"`
	GenderAm      string            `json:"gender_am" validate:"max=32"`
	Nationality   string            `json:"nationality" validate:"required,max=64"`
	NationalityAm string            `json:"nationality_am" validate:"max=64"`
	Phone         string            `json:"phone" validate:"max=32"`
	Address       AddressRequest    `json:"address"`
	Biometrics    BiometricsRequest `json:"biometrics"`
	GivenDate     string            `json:"given_date" validate:"omitempty,isodate"`
}

func (r *CreateCitizenRequest) Sanitize() {
	strutil.TrimStrings(
		&r.CitizenID, &r.DateOfBirth, &r.Gender, &r.GenderAm, &r.Nationality, &r.NationalityAm, &r.Phone, &r.GivenDate,
		&r.Name.First, &r.Name.Middle, &r.Name.Last, &r.Name.FirstAm, &r.Name.MiddleAm, &r.Name.LastAm,
		&r.Address.Region, &r.Address.RegionAm, &r.Address.Zone, &r.Address.ZoneAm,
		&r.Address.Woreda, &r.Address.WoredaAm, &r.Address.Kebele, &r.Address.KebeleAm,
		&r.Biometrics.Photo, &r.Biometrics.Fingerprint, &r.Biometrics.Signature,
	)
}

func (r *CreateCitizenRequest) Normalize() {
	r.CitizenID = strings.ToUpper(r.CitizenID)
	r.Gender = strings.ToLower(r.Gender)
}

func (r *CreateCitizenRequest) Validate() error {
	return reqvalidation.Validate(r)
}

// ToCommand converts a validated request. Dates were checked by Validate.
func (r *CreateCitizenRequest) ToCommand() service.CreateCommand {
	dob, _ := time.Parse(time.DateOnly, r.DateOfBirth)
	cmd := service.CreateCommand{
		CitizenID: r.CitizenID,
		Profile: models.Profile{
			Name: models.PersonName{
				First: r.Name.First, Middle: r.Name.Middle, Last: r.Name.Last,
				FirstAm: r.Name.FirstAm, MiddleAm: r.Name.MiddleAm, LastAm: r.Name.LastAm,
			},
			DateOfBirth:   dob,
			Gender:        r.Gender,
			GenderAm:      r.GenderAm,
			Nationality:   r.Nationality,
			NationalityAm: r.NationalityAm,
			Phone:         r.Phone,
			Address: models.Address{
				Region: r.Address.Region, RegionAm: r.Address.RegionAm,
				Zone: r.Address.Zone, ZoneAm: r.Address.ZoneAm,
				Woreda: r.Address.Woreda, WoredaAm: r.Address.WoredaAm,
				Kebele: r.Address.Kebele, KebeleAm: r.Address.KebeleAm,
			},
		},
		Biometrics: models.Biometrics{
			Photo:       r.Biometrics.Photo,
			Fingerprint: r.Biometrics.Fingerprint,
			Signature:   r.Biometrics.Signature,
		},
	}
	if r.GivenDate != "" {
		given, _ := time.Parse(time.DateOnly, r.GivenDate)
		cmd.GivenDate = &given
	}
	return cmd
}

// UpdateCitizenRequest is a partial edit. Absent fields are left unchanged;
// citizen_id, status and history are not accepted.
type UpdateCitizenRequest struct {
	FirstName       *string `json:"first_name" validate:"omitempty,notblank,max=100"`
	MiddleName      *string `json:"middle_name" validate:"omitempty,max=100"`
	LastName        *string `json:"last_name" validate:"omitempty,notblank,max=100"`
	FirstNameAm     *string `json:"first_name_am" validate:"omitempty,max=100"`
	MiddleNameAm    *string `json:"middle_name_am" validate:"omitempty,max=100"`
	LastNameAm      *string `json:"last_name_am" validate:"omitempty,max=100"`
	DateOfBirth     *string `json:"date_of_birth" validate:"omitempty,isodate"`
	Gender          *string `json:"gender" validate:"omitempty,oneof=male female"`
	GenderAm        *string `json:"gender_am" validate:"omitempty,max=32"`
	Nationality     *string `json:"nationality" validate:"omitempty,max=64"`
	NationalityAm   *string `json:"nationality_am" validate:"omitempty,max=64"`
	Phone           *string `json:"phone" validate:"omitempty,max=32"`
	Region          *string `json:"region" validate:"omitempty,max=100"`
	RegionAm        *string `json:"region_am" validate:"omitempty,max=100"`
	Zone            *string `json:"zone" validate:"omitempty,max=100"`
	ZoneAm          *string `json:"zone_am" validate:"omitempty,max=100"`
	Woreda          *string `json:"woreda" validate:"omitempty,max=100"`
	WoredaAm        *string `json:"woreda_am" validate:"omitempty,max=100"`
	Kebele          *string `json:"kebele" validate:"omitempty,max=100"`
	KebeleAm        *string `json:"kebele_am" validate:"omitempty,max=100"`
	Photo           *string `json:"photo" validate:"omitempty,max=2048"`
	Fingerprint     *string `json:"fingerprint" validate:"omitempty,max=2048"`
	Signature       *string `json:"signature" validate:"omitempty,max=2048"`
	GivenDate       *string `json:"given_date" validate:"omitempty,isodate"`
	ExpectedVersion int64   `json:"expected_version" validate:"min=0"`

	// Rejected outright when present.
	CitizenID     *string `json:"citizen_id"`
	Status        *string `json:"status"`
	StatusHistory any     `json:"status_history"`
	ExpireDate    *string `json:"expire_date"`
}

func (r *UpdateCitizenRequest) Sanitize() {
	strutil.TrimPtrs(
		r.FirstName, r.MiddleName, r.LastName, r.FirstNameAm, r.MiddleNameAm, r.LastNameAm,
		r.DateOfBirth, r.Gender, r.GenderAm, r.Nationality, r.NationalityAm, r.Phone,
		r.Region, r.RegionAm, r.Zone, r.ZoneAm, r.Woreda, r.WoredaAm, r.Kebele, r.KebeleAm,
		r.Photo, r.Fingerprint, r.Signature, r.GivenDate,
	)
}

func (r *UpdateCitizenRequest) Normalize() {
	strutil.LowerPtr(r.Gender)
}

func (r *UpdateCitizenRequest) Validate() error {
	switch {
	case r.CitizenID != nil:
		return dErrors.New(dErrors.CodeInvalidInput, "citizen_id cannot be changed")
	case r.Status != nil || r.StatusHistory != nil:
		return dErrors.New(dErrors.CodeInvalidInput, "status changes go through the status endpoints")
	case r.ExpireDate != nil:
		return dErrors.New(dErrors.CodeInvalidInput, "expire_date is derived from given_date")
	}
	return reqvalidation.Validate(r)
}

// ToPatch converts a validated request.
func (r *UpdateCitizenRequest) ToPatch() models.Patch {
	patch := models.Patch{
		Profile: models.ProfilePatch{
			FirstName: r.FirstName, MiddleName: r.MiddleName, LastName: r.LastName,
			FirstNameAm: r.FirstNameAm, MiddleNameAm: r.MiddleNameAm, LastNameAm: r.LastNameAm,
			Gender: r.Gender, GenderAm: r.GenderAm,
			Nationality: r.Nationality, NationalityAm: r.NationalityAm,
			Phone:  r.Phone,
			Region: r.Region, RegionAm: r.RegionAm,
			Zone: r.Zone, ZoneAm: r.ZoneAm,
			Woreda: r.Woreda, WoredaAm: r.WoredaAm,
			Kebele: r.Kebele, KebeleAm: r.KebeleAm,
		},
		Biometrics: models.BiometricsPatch{Photo: r.Photo, Fingerprint: r.Fingerprint, Signature: r.Signature},
	}
	if r.DateOfBirth != nil {
		dob, _ := time.Parse(time.DateOnly, *r.DateOfBirth)
		patch.Profile.DateOfBirth = &dob
	}
	if r.GivenDate != nil {
		given, _ := time.Parse(time.DateOnly, *r.GivenDate)
		patch.GivenDate = &given
	}
	return patch
}

// TransitionRequest changes one record's status.
type TransitionRequest struct {
	Status          string `json:"status" validate:"required"`
	ExpectedVersion int64  `json:"expected_version" validate:"min=0"`
}

func (r *TransitionRequest) Normalize() {
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
}

func (r *TransitionRequest) Validate() error {
	if err := reqvalidation.Validate(r); err != nil {
		return err
	}
	_, err := models.ParseStatus(r.Status)
	return err
}

// BulkIDsRequest lists the records a bulk action applies to.
type BulkIDsRequest struct {
	IDs []string `json:"ids"`
}

func (r *BulkIDsRequest) Sanitize() {
	strutil.TrimSlice(r.IDs)
}

func (r *BulkIDsRequest) Validate() error {
	return validateIDs(r.IDs)
}

// BulkTransitionRequest moves many records to one target status.
type BulkTransitionRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

func (r *BulkTransitionRequest) Sanitize() {
	strutil.TrimSlice(r.IDs)
}

func (r *BulkTransitionRequest) Normalize() {
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
}

func (r *BulkTransitionRequest) Validate() error {
	if err := validateIDs(r.IDs); err != nil {
		return err
	}
	_, err := models.ParseStatus(r.Status)
	return err
}

// BulkPrintRequest sets the print status of many records.
type BulkPrintRequest struct {
	IDs         []string `json:"ids"`
	PrintStatus string   `json:"print_status"`
}

func (r *BulkPrintRequest) Sanitize() {
	strutil.TrimSlice(r.IDs)
}

func (r *BulkPrintRequest) Normalize() {
	r.PrintStatus = strings.ToLower(strings.TrimSpace(r.PrintStatus))
}

func (r *BulkPrintRequest) Validate() error {
	if err := validateIDs(r.IDs); err != nil {
		return err
	}
	_, err := models.ParsePrintStatus(r.PrintStatus)
	return err
}

func validateIDs(ids []string) error {
	if len(ids) == 0 {
		return dErrors.New(dErrors.CodeValidation, "ids are required")
	}
	if err := validation.CheckSliceCount("ids", len(ids), validation.MaxBulkIDs); err != nil {
		return err
	}
	for i, raw := range ids {
		if raw == "" {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("ids[%d] must not be blank", i))
		}
	}
	return nil
}
