package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/agriconnect/user-service/internal/core/domain"
	"github.com/agriconnect/user-service/internal/core/ports"
)

// AccountService implements registration, lookup, profile update and
// deactivation on top of an AccountRepository.
type AccountService struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	cache  ports.AccountCache
	log    zerolog.Logger
	now    func() time.Time
}

var _ ports.AccountService = (*AccountService)(nil)

// NewAccountService returns an AccountService. cache may be nil.
func NewAccountService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	cache ports.AccountCache,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		repo:   repo,
		hasher: hasher,
		cache:  cache,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account together with its profile. The email is checked
// for uniqueness before anything is written; a duplicate reported later by the
// store maps to the same error.
func (s *AccountService) Register(ctx context.Context, in ports.AccountInput) (*domain.Account, error) {
	if !in.Role.Valid() {
		return nil, fmt.Errorf("register: role %q: %w", in.Role, domain.ErrInvalidInput)
	}
	if err := checkNumbers(in); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	exists, err := s.repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("register: check email: %w", err)
	}
	if exists {
		return nil, domain.ErrAccountExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now()
	account, err := s.repo.SaveAccount(ctx, &domain.Account{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Role:         in.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("register: save account: %w", err)
	}

	profile := domain.NewProfile(account.ID, now)
	applyProfileFields(profile, in)

	saved, err := s.repo.SaveProfile(ctx, profile)
	if err != nil {
		s.log.Error().Err(err).Str("account_id", account.ID).Msg("account saved without profile")
		return nil, fmt.Errorf("register: save profile: %w", err)
	}
	account.Profile = saved

	s.log.Info().Str("account_id", account.ID).Str("role", string(account.Role)).Msg("account registered")
	return account, nil
}

// GetByID returns the account with id regardless of its active flag.
func (s *AccountService) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var (
		gen      int64
		fillable bool
	)
	if s.cache != nil {
		cached, g, ok, err := s.cache.Get(ctx, id)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("account_id", id).Msg("account cache read failed")
		case ok:
			return cached, nil
		default:
			gen, fillable = g, true
		}
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if fillable {
		if err := s.cache.Set(ctx, account, gen); err != nil {
			s.log.Warn().Err(err).Str("account_id", id).Msg("account cache write failed")
		}
	}
	return account, nil
}

// GetByEmail returns the account registered with email.
func (s *AccountService) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.repo.FindByEmail(ctx, email)
}

// ListByRole returns the active accounts of role.
func (s *AccountService) ListByRole(ctx context.Context, role domain.Role) ([]*domain.Account, error) {
	return s.repo.FindByRole(ctx, role, true)
}

// ListByLocationAndRole returns accounts of role whose profile location equals
// location. Inactive accounts are included.
func (s *AccountService) ListByLocationAndRole(ctx context.Context, location string, role domain.Role) ([]*domain.Account, error) {
	return s.repo.FindByLocationAndRole(ctx, location, role)
}

// UpdateProfile overwrites the name and contact fields of the account and
// upserts its profile. Every profile field except the hourly rate is
// overwritten, even when the input leaves it empty; the hourly rate changes
// only when a value is supplied.
func (s *AccountService) UpdateProfile(ctx context.Context, id string, in ports.AccountInput) (*domain.Account, error) {
	if err := checkNumbers(in); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	account.FirstName = in.FirstName
	account.LastName = in.LastName
	account.Phone = in.Phone
	account.UpdatedAt = now

	profile := account.Profile
	if profile == nil {
		profile = domain.NewProfile(account.ID, now)
	}
	applyProfileFields(profile, in)
	profile.UpdatedAt = now

	saved, err := s.repo.SaveAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("update profile: save account: %w", err)
	}
	savedProfile, err := s.repo.SaveProfile(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("update profile: save profile: %w", err)
	}
	saved.Profile = savedProfile

	s.invalidate(ctx, id)
	s.log.Info().Str("account_id", id).Msg("profile updated")
	return saved, nil
}

// Deactivate clears the active flag. Deactivating an inactive account is a
// no-op that succeeds.
func (s *AccountService) Deactivate(ctx context.Context, id string) error {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !account.Active {
		return nil
	}

	account.Active = false
	account.UpdatedAt = s.now()
	if _, err := s.repo.SaveAccount(ctx, account); err != nil {
		return fmt.Errorf("deactivate: %w", err)
	}

	s.invalidate(ctx, id)
	s.log.Info().Str("account_id", id).Msg("account deactivated")
	return nil
}

func (s *AccountService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("account_id", id).Msg("account cache invalidation failed")
	}
}

// applyProfileFields copies the descriptive fields of in onto p.
func applyProfileFields(p *domain.Profile, in ports.AccountInput) {
	p.Bio = in.Bio
	p.Location = in.Location
	p.Skills = in.Skills
	p.ExperienceYears = in.ExperienceYears
	if in.HourlyRate != nil {
		rate := decimal.NewFromFloat(*in.HourlyRate)
		p.HourlyRate = &rate
	}
}

func checkNumbers(in ports.AccountInput) error {
	if in.ExperienceYears != nil && *in.ExperienceYears < 0 {
		return fmt.Errorf("experience years %d: %w", *in.ExperienceYears, domain.ErrInvalidInput)
	}
	if in.HourlyRate != nil && *in.HourlyRate < 0 {
		return fmt.Errorf("hourly rate %v: %w", *in.HourlyRate, domain.ErrInvalidInput)
	}
	return nil
}
