// Package memory provides a process-local AccountRepository for development
// and single-instance deployments.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/agriconnect/user-service/internal/core/domain"
	"github.com/agriconnect/user-service/internal/core/ports"
)

// AccountRepository keeps accounts and profiles in maps guarded by a single
// lock. Email uniqueness is enforced at insert, mirroring the unique index of
// the Mongo store.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	byEmail  map[string]string
	profiles map[string]*domain.Profile // keyed by account id
	order    []string                   // account ids in insertion order
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]*domain.Account),
		byEmail:  make(map[string]string),
		profiles: make(map[string]*domain.Profile),
	}
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return r.withProfile(a), nil
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return r.withProfile(r.accounts[id]), nil
}

func (r *AccountRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *AccountRepository) FindByRole(_ context.Context, role domain.Role, activeOnly bool) ([]*domain.Account, error) {
	return r.filter(func(a *domain.Account) bool {
		return a.Role == role && (!activeOnly || a.Active)
	}), nil
}

func (r *AccountRepository) FindByLocationAndRole(_ context.Context, location string, role domain.Role) ([]*domain.Account, error) {
	return r.filter(func(a *domain.Account) bool {
		p, ok := r.profiles[a.ID]
		return ok && p.Location == location && a.Role == role
	}), nil
}

func (r *AccountRepository) SaveAccount(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyAccount(account)
	if owner, taken := r.byEmail[stored.Email]; taken && owner != stored.ID {
		return nil, domain.ErrAccountExists
	}

	if stored.ID == "" {
		stored.ID = uuid.NewString()
		r.order = append(r.order, stored.ID)
	} else {
		prev, ok := r.accounts[stored.ID]
		if !ok {
			return nil, domain.ErrAccountNotFound
		}
		if prev.Email != stored.Email {
			delete(r.byEmail, prev.Email)
		}
	}

	r.accounts[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	return copyAccount(stored), nil
}

func (r *AccountRepository) SaveProfile(_ context.Context, profile *domain.Profile) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[profile.AccountID]; !ok {
		return nil, fmt.Errorf("profile owner %q: %w", profile.AccountID, domain.ErrAccountNotFound)
	}

	stored := copyProfile(profile)
	existing, hasProfile := r.profiles[stored.AccountID]
	switch {
	case stored.ID == "" && hasProfile:
		return nil, fmt.Errorf("profile for %s already exists: %w", stored.AccountID, domain.ErrAccountExists)
	case stored.ID == "":
		stored.ID = uuid.NewString()
	case hasProfile && existing.ID != stored.ID:
		return nil, fmt.Errorf("profile %s does not belong to %s: %w", stored.ID, stored.AccountID, domain.ErrInvalidInput)
	}
	if !stored.AvailabilityStatus.Valid() {
		return nil, fmt.Errorf("availability %q: %w", stored.AvailabilityStatus, domain.ErrInvalidInput)
	}

	r.profiles[stored.AccountID] = stored
	return copyProfile(stored), nil
}

// filter returns copies of the matching accounts in insertion order.
func (r *AccountRepository) filter(match func(*domain.Account) bool) []*domain.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Account, 0)
	for _, id := range r.order {
		if a := r.accounts[id]; match(a) {
			out = append(out, r.withProfile(a))
		}
	}
	return out
}

func (r *AccountRepository) withProfile(a *domain.Account) *domain.Account {
	c := copyAccount(a)
	if p, ok := r.profiles[a.ID]; ok {
		c.Profile = copyProfile(p)
	}
	return c
}

func copyAccount(a *domain.Account) *domain.Account {
	c := *a
	c.Profile = nil
	return &c
}

func copyProfile(p *domain.Profile) *domain.Profile {
	c := *p
	if p.Skills != nil {
		c.Skills = append([]string(nil), p.Skills...)
	}
	if p.ExperienceYears != nil {
		years := *p.ExperienceYears
		c.ExperienceYears = &years
	}
	if p.HourlyRate != nil {
		rate := *p.HourlyRate
		c.HourlyRate = &rate
	}
	return &c
}
