package handler

import (
	"errors"
	"time"

	"idcard/internal/citizen/models"
	dErrors "idcard/pkg/domain-errors"
	"idcard/pkg/platform/httputil"
)

type NameResponse struct {
	First    string `json:"first"`
	Middle   string `json:"middle,omitempty"`
	Last     string `json:"last"`
	FirstAm  string `json:"first_am,omitempty"`
	MiddleAm string `json:"middle_am,omitempty"`
	LastAm   string `json:"last_am,omitempty"`
}

type AddressResponse struct {
	Region   string `json:"region,omitempty"`
	RegionAm string `json:"region_am,omitempty"`
	Zone     string `json:"zone,omitempty"`
	ZoneAm   string `json:"zone_am,omitempty"`
	Woreda   string `json:"woreda,omitempty"`
	WoredaAm string `json:"woreda_am,omitempty"`
	Kebele   string `json:"kebele,omitempty"`
	KebeleAm string `json:"kebele_am,omitempty"`
}

type BiometricsResponse struct {
	Photo       string `json:"photo"`
	Fingerprint string `json:"fingerprint"`
	Signature   string `json:"signature"`
}

type HistoryEntryResponse struct {
	Status    string    `json:"status"`
	ChangedBy string    `json:"changed_by"`
	Timestamp time.Time `json:"timestamp"`
}

// CitizenResponse is the full record view. Biometrics is omitted from list
// projections.
type CitizenResponse struct {
	ID            string                 `json:"id"`
	CitizenID     string                 `json:"citizen_id"`
	Name          NameResponse           `json:"name"`
	DateOfBirth   string                 `json:"date_of_birth,omitempty"`
	Gender        string                 `json:"gender,omitempty"`
	GenderAm      string                 `json:"gender_am,omitempty"`
	Nationality   string                 `json:"nationality,omitempty"`
	NationalityAm string                 `json:"nationality_am,omitempty"`
	Phone         string                 `json:"phone,omitempty"`
	Address       AddressResponse        `json:"address"`
	Biometrics    *BiometricsResponse    `json:"biometrics,omitempty"`
	Status        string                 `json:"status"`
	PrintStatus   string                 `json:"print_status"`
	StatusHistory []HistoryEntryResponse `json:"status_history"`
	GivenDate     string                 `json:"given_date,omitempty"`
	ExpireDate    string                 `json:"expire_date,omitempty"`
	Version       int64                  `json:"version"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// StatusCheckResponse is the public self-service view. It carries no
// demographics beyond the name.
type StatusCheckResponse struct {
	CitizenID   string `json:"citizen_id"`
	FullName    string `json:"full_name"`
	Status      string `json:"status"`
	PrintStatus string `json:"print_status"`
	ExpireDate  string `json:"expire_date,omitempty"`
}

type BulkItemResponse struct {
	ID          string `json:"id"`
	Success     bool   `json:"success"`
	Skipped     bool   `json:"skipped,omitempty"`
	Error       string `json:"error,omitempty"`
	Message     string `json:"message,omitempty"`
	Status      string `json:"status,omitempty"`
	PrintStatus string `json:"print_status,omitempty"`
}

type BulkResponse struct {
	AllSucceeded bool               `json:"all_succeeded"`
	Succeeded    int                `json:"succeeded"`
	Failed       int                `json:"failed"`
	Skipped      int                `json:"skipped"`
	Results      []BulkItemResponse `json:"results"`
}

type ListResponse struct {
	Citizens []CitizenResponse `json:"citizens"`
	Count    int               `json:"count"`
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func toBiometricsResponse(b models.Biometrics) *BiometricsResponse {
	return &BiometricsResponse{Photo: b.Photo, Fingerprint: b.Fingerprint, Signature: b.Signature}
}

func toCitizenResponse(c *models.Citizen) CitizenResponse {
	p := c.Profile
	res := CitizenResponse{
		ID:        c.ID.String(),
		CitizenID: c.CitizenID,
		Name: NameResponse{
			First: p.Name.First, Middle: p.Name.Middle, Last: p.Name.Last,
			FirstAm: p.Name.FirstAm, MiddleAm: p.Name.MiddleAm, LastAm: p.Name.LastAm,
		},
		Gender:        p.Gender,
		GenderAm:      p.GenderAm,
		Nationality:   p.Nationality,
		NationalityAm: p.NationalityAm,
		Phone:         p.Phone,
		Address: AddressResponse{
			Region: p.Address.Region, RegionAm: p.Address.RegionAm,
			Zone: p.Address.Zone, ZoneAm: p.Address.ZoneAm,
			Woreda: p.Address.Woreda, WoredaAm: p.Address.WoredaAm,
			Kebele: p.Address.Kebele, KebeleAm: p.Address.KebeleAm,
		},
		Status:        string(c.Status),
		PrintStatus:   string(c.PrintStatus),
		StatusHistory: make([]HistoryEntryResponse, len(c.StatusHistory)),
		GivenDate:     formatDate(c.GivenDate),
		ExpireDate:    formatDate(c.ExpireDate),
		Version:       c.Version,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if !p.DateOfBirth.IsZero() {
		res.DateOfBirth = p.DateOfBirth.Format(time.DateOnly)
	}
	if c.Biometrics != (models.Biometrics{}) {
		res.Biometrics = toBiometricsResponse(c.Biometrics)
	}
	for i, h := range c.StatusHistory {
		res.StatusHistory[i] = HistoryEntryResponse{Status: string(h.Status), ChangedBy: h.ChangedBy, Timestamp: h.Timestamp}
	}
	return res
}

func toStatusCheckResponse(c *models.Citizen) StatusCheckResponse {
	return StatusCheckResponse{
		CitizenID:   c.CitizenID,
		FullName:    c.Profile.Name.Full(),
		Status:      string(c.Status),
		PrintStatus: string(c.PrintStatus),
		ExpireDate:  formatDate(c.ExpireDate),
	}
}

func toBulkResponse(r *models.BulkResult) BulkResponse {
	res := BulkResponse{
		AllSucceeded: r.AllSucceeded(),
		Succeeded:    r.Succeeded,
		Failed:       r.Failed,
		Skipped:      r.Skipped,
		Results:      make([]BulkItemResponse, len(r.Items)),
	}
	for i, it := range r.Items {
		item := BulkItemResponse{ID: it.ID, Success: it.Success, Skipped: it.Skipped}
		if it.Err != nil {
			item.Error = httputil.DomainCodeToHTTPCode(dErrors.CodeOf(it.Err))
			var de *dErrors.Error
			if errors.As(it.Err, &de) {
				item.Message = de.Message
			}
		}
		if it.Citizen != nil {
			item.Status = string(it.Citizen.Status)
			item.PrintStatus = string(it.Citizen.PrintStatus)
		}
		res.Results[i] = item
	}
	return res
}
