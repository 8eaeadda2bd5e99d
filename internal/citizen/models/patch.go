package models

import "time"

// ProfilePatch carries the descriptive fields a registrar wants to change.
// Nil fields are left as they are.
type ProfilePatch struct {
	FirstName     *string
	MiddleName    *string
	LastName      *string
	FirstNameAm   *string
	MiddleNameAm  *string
	LastNameAm    *string
	DateOfBirth   *time.Time
	Gender        *string
	GenderAm      *string
	Nationality   *string
	NationalityAm *string
	Phone         *string
	Region        *string
	RegionAm      *string
	Zone          *string
	ZoneAm        *string
	Woreda        *string
	WoredaAm      *string
	Kebele        *string
	KebeleAm      *string
}

// BiometricsPatch replaces individual biometric references.
type BiometricsPatch struct {
	Photo       *string
	Fingerprint *string
	Signature   *string
}

// Patch is a partial update. citizen_id, status and history are not part of it.
type Patch struct {
	Profile    ProfilePatch
	Biometrics BiometricsPatch
	GivenDate  *time.Time
}

func set[T any](dst *T, src *T) bool {
	if src == nil {
		return false
	}
	*dst = *src
	return true
}

// Apply writes the non-nil fields into p and reports whether anything was set.
func (pp ProfilePatch) Apply(p *Profile) bool {
	changed := false
	for _, pair := range []struct {
		dst *string
		src *string
	}{
		{&p.Name.First, pp.FirstName},
		{&p.Name.Middle, pp.MiddleName},
		{&p.Name.Last, pp.LastName},
		{&p.Name.FirstAm, pp.FirstNameAm},
		{&p.Name.MiddleAm, pp.MiddleNameAm},
		{&p.Name.LastAm, pp.LastNameAm},
		{&p.Gender, pp.Gender},
		{&p.GenderAm, pp.GenderAm},
		{&p.Nationality, pp.Nationality},
		{&p.NationalityAm, pp.NationalityAm},
		{&p.Phone, pp.Phone},
		{&p.Address.Region, pp.Region},
		{&p.Address.RegionAm, pp.RegionAm},
		{&p.Address.Zone, pp.Zone},
		{&p.Address.ZoneAm, pp.ZoneAm},
		{&p.Address.Woreda, pp.Woreda},
		{&p.Address.WoredaAm, pp.WoredaAm},
		{&p.Address.Kebele, pp.Kebele},
		{&p.Address.KebeleAm, pp.KebeleAm},
	} {
		changed = set(pair.dst, pair.src) || changed
	}
	return set(&p.DateOfBirth, pp.DateOfBirth) || changed
}

// Apply writes the non-nil references into b and reports whether anything was set.
func (bp BiometricsPatch) Apply(b *Biometrics) bool {
	changed := set(&b.Photo, bp.Photo)
	changed = set(&b.Fingerprint, bp.Fingerprint) || changed
	return set(&b.Signature, bp.Signature) || changed
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	var profile Profile
	var bio Biometrics
	return p.GivenDate == nil && !p.Profile.Apply(&profile) && !p.Biometrics.Apply(&bio)
}
