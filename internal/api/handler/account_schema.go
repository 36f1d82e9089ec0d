package handler

import (
	"github.com/agriconnect/user-service/internal/core/domain"
	"github.com/agriconnect/user-service/internal/core/ports"
)

// registerRequest is the body of POST /api/users/register. Field names are
// the camelCase names existing clients already send.
type registerRequest struct {
	Email           string   `json:"email"           validate:"required,email"`
	Password        string   `json:"password"        validate:"required"`
	FirstName       string   `json:"firstName"       validate:"required"`
	LastName        string   `json:"lastName"        validate:"required"`
	Phone           string   `json:"phone"`
	UserType        string   `json:"userType"        validate:"required,oneof=FARMER LABOUR ADMIN"`
	Bio             string   `json:"bio"`
	Location        string   `json:"location"`
	Skills          []string `json:"skills"`
	ExperienceYears *int     `json:"experienceYears" validate:"omitempty,min=0"`
	HourlyRate      *float64 `json:"hourlyRate"      validate:"omitempty,min=0"`
}

// updateProfileRequest is the body of PUT /api/users/{id}/profile. It has the
// same shape as registerRequest, but email, password and userType are
// accepted and ignored, so none of them is required.
type updateProfileRequest struct {
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	Phone           string   `json:"phone"`
	UserType        string   `json:"userType"`
	Bio             string   `json:"bio"`
	Location        string   `json:"location"`
	Skills          []string `json:"skills"`
	ExperienceYears *int     `json:"experienceYears" validate:"omitempty,min=0"`
	HourlyRate      *float64 `json:"hourlyRate"      validate:"omitempty,min=0"`
}

func (r registerRequest) toInput() ports.AccountInput {
	return ports.AccountInput{
		Email:           r.Email,
		Password:        r.Password,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Phone:           r.Phone,
		Role:            domain.Role(r.UserType),
		Bio:             r.Bio,
		Location:        r.Location,
		Skills:          r.Skills,
		ExperienceYears: r.ExperienceYears,
		HourlyRate:      r.HourlyRate,
	}
}

func (r updateProfileRequest) toInput() ports.AccountInput {
	return ports.AccountInput{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Phone:           r.Phone,
		Bio:             r.Bio,
		Location:        r.Location,
		Skills:          r.Skills,
		ExperienceYears: r.ExperienceYears,
		HourlyRate:      r.HourlyRate,
	}
}
