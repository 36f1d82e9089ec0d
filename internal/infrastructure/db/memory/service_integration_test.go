package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/agriconnect/user-service/internal/core/domain"
	"github.com/agriconnect/user-service/internal/core/ports"
	"github.com/agriconnect/user-service/internal/core/service"
	"github.com/agriconnect/user-service/internal/infrastructure/db/memory"
	"github.com/agriconnect/user-service/internal/infrastructure/security"
)

func newService() (*service.AccountService, *memory.AccountRepository) {
	repo := memory.NewAccountRepository()
	svc := service.NewAccountService(repo, security.NewBcryptHasher(bcrypt.MinCost), nil, zerolog.Nop())
	return svc, repo
}

func TestAccountService_ConcurrentRegisterSameEmail(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	const callers = 8
	var (
		wg   sync.WaitGroup
		errs = make(chan error, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, ports.AccountInput{
				Email: "same@x.com", Password: "pw", FirstName: "A", LastName: "B", Role: domain.RoleLabour,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, domain.ErrAccountExists), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, ok)
	labourers, err := repo.FindByRole(ctx, domain.RoleLabour, false)
	require.NoError(t, err)
	assert.Len(t, labourers, 1)

	a, err := svc.GetByEmail(ctx, "same@x.com")
	require.NoError(t, err)
	assert.NotNil(t, a.Profile)
}

func TestAccountService_EndToEndScenario(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	a, err := svc.Register(ctx, ports.AccountInput{
		Email: "a@x.com", Password: "pw", FirstName: "Jo", LastName: "Farmer",
		Role: domain.RoleFarmer, Location: "Kisumu",
	})
	require.NoError(t, err)
	assert.True(t, a.Active)
	assert.Equal(t, "Kisumu", a.Profile.Location)
	assert.Equal(t, domain.StatusAvailable, a.Profile.AvailabilityStatus)

	years := 3
	updated, err := svc.UpdateProfile(ctx, a.ID, ports.AccountInput{FirstName: "Joan", Location: "Kisumu", ExperienceYears: &years})
	require.NoError(t, err)
	assert.Equal(t, "Joan", updated.FirstName)
	assert.Equal(t, "Kisumu", updated.Profile.Location)
	require.NotNil(t, updated.Profile.ExperienceYears)
	assert.Equal(t, 3, *updated.Profile.ExperienceYears)
	assert.Equal(t, a.Profile.ID, updated.Profile.ID)

	require.NoError(t, svc.Deactivate(ctx, a.ID))
	require.NoError(t, svc.Deactivate(ctx, a.ID))

	farmers, err := svc.ListByRole(ctx, domain.RoleFarmer)
	require.NoError(t, err)
	assert.Empty(t, farmers)

	kisumu, err := svc.ListByLocationAndRole(ctx, "Kisumu", domain.RoleFarmer)
	require.NoError(t, err)
	require.Len(t, kisumu, 1)
	assert.False(t, kisumu[0].Active)

	resp := domain.NewAccountResponse(kisumu[0])
	assert.Equal(t, "Joan", resp.FirstName)
	assert.False(t, resp.IsActive)
}
