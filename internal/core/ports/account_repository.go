package ports

import (
	"context"

	"github.com/agriconnect/user-service/internal/core/domain"
)

// AccountRepository persists accounts and their profiles as two linked
// records. Finders return accounts with the owning Profile attached (nil when
// none exists). SaveAccount never writes the attached Profile; callers save it
// explicitly with SaveProfile.
type AccountRepository interface {
	// FindByID returns domain.ErrAccountNotFound when no account has id.
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// FindByEmail returns domain.ErrAccountNotFound when no account has email.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// FindByRole lists accounts of role, restricted to active ones when activeOnly is set.
	FindByRole(ctx context.Context, role domain.Role, activeOnly bool) ([]*domain.Account, error)
	// FindByLocationAndRole joins on the profile location. Accounts without a
	// profile never match. The active flag is not consulted.
	FindByLocationAndRole(ctx context.Context, location string, role domain.Role) ([]*domain.Account, error)
	// SaveAccount inserts when ID is empty (assigning one) and replaces otherwise.
	// A uniqueness violation on email yields domain.ErrAccountExists.
	SaveAccount(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// SaveProfile inserts when ID is empty (assigning one) and replaces otherwise.
	SaveProfile(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
}
