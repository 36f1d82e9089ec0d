package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/agriconnect/user-service/internal/core/domain"
)

const (
	nsAccounts = "agriconnect_users.users"
	nsProfiles = "agriconnect_users.user_profiles"
)

// toD renders a stored document the way the server would return it.
func toD(t *testing.T, v any) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func cursor(ns string, docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, docs...)
}

func duplicateKey() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"})
}

func matched(n int32) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
}

// nextCommand pops the next recorded command and checks its name.
func nextCommand(mt *mtest.T, name string) bson.Raw {
	mt.Helper()
	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt, "expected a %s command", name)
	require.Equal(mt, name, evt.CommandName)
	return evt.Command
}

func storedAccount(active bool, role domain.Role) accountDoc {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	return accountDoc{
		ID:           primitive.NewObjectID(),
		Email:        primitive.NewObjectID().Hex() + "@x.io",
		PasswordHash: "$2a$04$hash",
		FirstName:    "Wan",
		LastName:     "Jiru",
		UserType:     string(role),
		IsActive:     active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func storedProfile(owner primitive.ObjectID, location string) profileDoc {
	rate, _ := primitive.ParseDecimal128("12.50")
	years := 3
	return profileDoc{
		ID:                 primitive.NewObjectID(),
		UserID:             owner,
		Location:           location,
		Skills:             []string{"weeding"},
		ExperienceYears:    &years,
		HourlyRate:         &rate,
		AvailabilityStatus: string(domain.StatusBusy),
	}
}

func TestAccountRepository_SaveAccount(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("insert assigns an object id", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		saved, err := r.SaveAccount(ctx, &domain.Account{Email: "new@x.io", Role: domain.RoleFarmer, Active: true})
		require.NoError(mt, err)
		_, err = primitive.ObjectIDFromHex(saved.ID)
		assert.NoError(mt, err, "id %q", saved.ID)

		cmd := nextCommand(mt, "insert")
		assert.Equal(mt, collectionAccounts, cmd.Lookup("insert").StringValue())
	})

	mt.Run("insert duplicate email", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		mt.AddMockResponses(duplicateKey())

		_, err := r.SaveAccount(ctx, &domain.Account{Email: "dup@x.io", Role: domain.RoleFarmer})
		assert.ErrorIs(mt, err, domain.ErrAccountExists)
	})

	mt.Run("replace keeps the id", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		mt.AddMockResponses(matched(1))
		id := primitive.NewObjectID().Hex()

		saved, err := r.SaveAccount(ctx, &domain.Account{ID: id, Email: "a@x.io", Role: domain.RoleLabour})
		require.NoError(mt, err)
		assert.Equal(mt, id, saved.ID)
		nextCommand(mt, "update")
	})

	mt.Run("replace onto a taken email", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		mt.AddMockResponses(duplicateKey())

		_, err := r.SaveAccount(ctx, &domain.Account{ID: primitive.NewObjectID().Hex(), Email: "taken@x.io"})
		assert.ErrorIs(mt, err, domain.ErrAccountExists)
	})

	mt.Run("replace of a missing account", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		mt.AddMockResponses(matched(0))

		_, err := r.SaveAccount(ctx, &domain.Account{ID: primitive.NewObjectID().Hex(), Email: "gone@x.io"})
		assert.ErrorIs(mt, err, domain.ErrAccountNotFound)
	})
}

func TestAccountRepository_SaveProfile(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	owner := primitive.NewObjectID().Hex()

	mt.Run("insert", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		saved, err := r.SaveProfile(ctx, domain.NewProfile(owner, time.Now()))
		require.NoError(mt, err)
		assert.NotEmpty(mt, saved.ID)
		assert.Equal(mt, owner, saved.AccountID)
	})

	mt.Run("second profile for an account", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		mt.AddMockResponses(duplicateKey())

		_, err := r.SaveProfile(ctx, domain.NewProfile(owner, time.Now()))
		assert.ErrorIs(mt, err, domain.ErrAccountExists)
	})

	mt.Run("upsert keeps the profile id", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		mt.AddMockResponses(matched(1))

		rate := decimal.RequireFromString("30")
		p := domain.NewProfile(owner, time.Now())
		p.ID = primitive.NewObjectID().Hex()
		p.HourlyRate = &rate

		saved, err := r.SaveProfile(ctx, p)
		require.NoError(mt, err)
		assert.Equal(mt, p.ID, saved.ID)

		cmd := nextCommand(mt, "update")
		assert.Equal(mt, collectionProfiles, cmd.Lookup("update").StringValue())
		upsert, err := cmd.LookupErr("updates", "0", "upsert")
		require.NoError(mt, err)
		assert.True(mt, upsert.Boolean())
	})

	mt.Run("unknown availability is rejected before writing", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)

		p := domain.NewProfile(owner, time.Now())
		p.AvailabilityStatus = "ON_LEAVE"
		_, err := r.SaveProfile(ctx, p)
		assert.ErrorIs(mt, err, domain.ErrInvalidInput)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestAccountRepository_FindAttachesProfile(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("with profile", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		acc := storedAccount(true, domain.RoleLabour)
		prof := storedProfile(acc.ID, "Eldoret")
		mt.AddMockResponses(cursor(nsAccounts, toD(mt.T, acc)), cursor(nsProfiles, toD(mt.T, prof)))

		a, err := r.FindByID(ctx, acc.ID.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, acc.Email, a.Email)
		assert.Equal(mt, "$2a$04$hash", a.PasswordHash)
		require.NotNil(mt, a.Profile)
		assert.Equal(mt, prof.ID.Hex(), a.Profile.ID)
		assert.Equal(mt, acc.ID.Hex(), a.Profile.AccountID)
		assert.Equal(mt, domain.StatusBusy, a.Profile.AvailabilityStatus)
		require.NotNil(mt, a.Profile.HourlyRate)
		assert.True(mt, a.Profile.HourlyRate.Equal(decimal.RequireFromString("12.5")))
	})

	mt.Run("without profile", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		acc := storedAccount(true, domain.RoleFarmer)
		mt.AddMockResponses(cursor(nsAccounts, toD(mt.T, acc)), cursor(nsProfiles))

		a, err := r.FindByEmail(ctx, acc.Email)
		require.NoError(mt, err)
		assert.Nil(mt, a.Profile)
	})

	mt.Run("missing account", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		mt.AddMockResponses(cursor(nsAccounts))

		_, err := r.FindByEmail(ctx, "nobody@x.io")
		assert.ErrorIs(mt, err, domain.ErrAccountNotFound)
	})
}

func TestAccountRepository_ExistsByEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("taken", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		mt.AddMockResponses(cursor(nsAccounts, bson.D{{Key: "_id", Value: 1}, {Key: "n", Value: int32(1)}}))

		ok, err := r.ExistsByEmail(ctx, "a@x.io")
		require.NoError(mt, err)
		assert.True(mt, ok)
	})

	mt.Run("free", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		mt.AddMockResponses(cursor(nsAccounts))

		ok, err := r.ExistsByEmail(ctx, "b@x.io")
		require.NoError(mt, err)
		assert.False(mt, ok)
	})
}

func TestAccountRepository_FindByRole(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("active only filters on is_active", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		acc := storedAccount(true, domain.RoleFarmer)
		mt.AddMockResponses(cursor(nsAccounts, toD(mt.T, acc)), cursor(nsProfiles))

		out, err := r.FindByRole(ctx, domain.RoleFarmer, true)
		require.NoError(mt, err)
		require.Len(mt, out, 1)

		cmd := nextCommand(mt, "find")
		active, err := cmd.LookupErr("filter", "is_active")
		require.NoError(mt, err)
		assert.True(mt, active.Boolean())
		assert.Equal(mt, "FARMER", cmd.Lookup("filter", "user_type").StringValue())
	})

	mt.Run("no matches is an empty list", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		mt.AddMockResponses(cursor(nsAccounts))

		out, err := r.FindByRole(ctx, domain.RoleAdmin, true)
		require.NoError(mt, err)
		assert.NotNil(mt, out)
		assert.Empty(mt, out)
	})
}

func TestAccountRepository_FindByLocationAndRole(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("joins profiles and keeps inactive accounts", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		active := storedAccount(true, domain.RoleLabour)
		inactive := storedAccount(false, domain.RoleLabour)
		mt.AddMockResponses(
			cursor(nsProfiles, toD(mt.T, storedProfile(active.ID, "Kitale")), toD(mt.T, storedProfile(inactive.ID, "Kitale"))),
			cursor(nsAccounts, toD(mt.T, active), toD(mt.T, inactive)),
		)

		out, err := r.FindByLocationAndRole(ctx, "Kitale", domain.RoleLabour)
		require.NoError(mt, err)
		require.Len(mt, out, 2)
		assert.True(mt, out[0].Active)
		assert.False(mt, out[1].Active)
		for _, a := range out {
			require.NotNil(mt, a.Profile)
			assert.Equal(mt, "Kitale", a.Profile.Location)
			assert.Equal(mt, a.ID, a.Profile.AccountID)
		}

		profiles := nextCommand(mt, "find")
		assert.Equal(mt, "Kitale", profiles.Lookup("filter", "location").StringValue())
		accounts := nextCommand(mt, "find")
		_, err = accounts.LookupErr("filter", "is_active")
		assert.Error(mt, err, "location queries must not filter on the active flag")
		assert.Equal(mt, "LABOUR", accounts.Lookup("filter", "user_type").StringValue())
	})

	mt.Run("no profile at the location", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		mt.AddMockResponses(cursor(nsProfiles))

		out, err := r.FindByLocationAndRole(ctx, "Nowhere", domain.RoleLabour)
		require.NoError(mt, err)
		assert.NotNil(mt, out)
		assert.Empty(mt, out)
	})
}

func TestAccountRepository_EnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unique email and owner", func(mt *mtest.T) {
		r := NewAccountRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		require.NoError(mt, r.EnsureIndexes(context.Background()))

		accounts := nextCommand(mt, "createIndexes")
		assert.Equal(mt, collectionAccounts, accounts.Lookup("createIndexes").StringValue())
		unique, err := accounts.LookupErr("indexes", "0", "unique")
		require.NoError(mt, err)
		assert.True(mt, unique.Boolean())

		profiles := nextCommand(mt, "createIndexes")
		assert.Equal(mt, collectionProfiles, profiles.Lookup("createIndexes").StringValue())
		unique, err = profiles.LookupErr("indexes", "0", "unique")
		require.NoError(mt, err)
		assert.True(mt, unique.Boolean())
	})
}
