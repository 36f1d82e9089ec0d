package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a registered user. It exclusively owns at most one Profile.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"userType"`
	Active       bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Profile      *Profile  `json:"profile,omitempty"`
}

// Profile holds the descriptive, optional part of an account. AccountID is a
// plain reference; the Account is the owner.
type Profile struct {
	ID                 string             `json:"id"`
	AccountID          string             `json:"accountId"`
	Bio                string             `json:"bio,omitempty"`
	Location           string             `json:"location,omitempty"`
	Skills             []string           `json:"skills,omitempty"`
	ExperienceYears    *int               `json:"experienceYears,omitempty"`
	HourlyRate         *decimal.Decimal   `json:"hourlyRate,omitempty"`
	AvailabilityStatus AvailabilityStatus `json:"availabilityStatus"`
	ProfileImageURL    string             `json:"profileImageUrl,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// NewProfile returns an empty profile bound to accountID with the default
// availability.
func NewProfile(accountID string, now time.Time) *Profile {
	return &Profile{
		AccountID:          accountID,
		AvailabilityStatus: StatusAvailable,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
