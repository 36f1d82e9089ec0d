package domain

import "time"

// AccountResponse is the externally visible shape of an account. It never
// carries the credential hash.
type AccountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone,omitempty"`
	UserType  Role      `json:"userType"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Bio                string             `json:"bio,omitempty"`
	Location           string             `json:"location,omitempty"`
	Skills             []string           `json:"skills,omitempty"`
	ExperienceYears    *int               `json:"experienceYears,omitempty"`
	HourlyRate         *float64           `json:"hourlyRate,omitempty"`
	AvailabilityStatus AvailabilityStatus `json:"availabilityStatus,omitempty"`
	ProfileImageURL    string             `json:"profileImageUrl,omitempty"`
}

// ProjectAccount builds the external representation of a and its optional
// profile p. Profile-derived fields stay zero when p is nil.
func ProjectAccount(a *Account, p *Profile) AccountResponse {
	resp := AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Phone:     a.Phone,
		UserType:  a.Role,
		IsActive:  a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if p == nil {
		return resp
	}

	resp.Bio = p.Bio
	resp.Location = p.Location
	if p.Skills != nil {
		resp.Skills = append([]string(nil), p.Skills...)
	}
	if p.ExperienceYears != nil {
		years := *p.ExperienceYears
		resp.ExperienceYears = &years
	}
	if p.HourlyRate != nil {
		// Float conversion happens only at this boundary.
		rate := p.HourlyRate.InexactFloat64()
		resp.HourlyRate = &rate
	}
	resp.AvailabilityStatus = p.AvailabilityStatus
	resp.ProfileImageURL = p.ProfileImageURL
	return resp
}

// NewAccountResponse projects a together with its attached profile.
func NewAccountResponse(a *Account) AccountResponse {
	return ProjectAccount(a, a.Profile)
}

// NewAccountResponses projects every account in accounts.
func NewAccountResponses(accounts []*Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, NewAccountResponse(a))
	}
	return out
}
