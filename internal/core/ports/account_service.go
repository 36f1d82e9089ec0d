package ports

import (
	"context"

	"github.com/agriconnect/user-service/internal/core/domain"
)

// AccountInput is the DTO passed from the transport layer to AccountService.
// It is shared by registration and profile update; UpdateProfile ignores
// Email, Password and Role.
type AccountInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      domain.Role

	Bio             string
	Location        string
	Skills          []string
	ExperienceYears *int     // optional
	HourlyRate      *float64 // optional; nil leaves the stored rate untouched on update
}

// AccountService defines use-case operations for accounts and profiles.
type AccountService interface {
	Register(ctx context.Context, input AccountInput) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.Account, error)
	ListByLocationAndRole(ctx context.Context, location string, role domain.Role) ([]*domain.Account, error)
	UpdateProfile(ctx context.Context, id string, input AccountInput) (*domain.Account, error)
	Deactivate(ctx context.Context, id string) error
}
