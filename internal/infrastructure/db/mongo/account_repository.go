package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agriconnect/user-service/internal/core/domain"
	"github.com/agriconnect/user-service/internal/core/ports"
)

const (
	collectionAccounts = "users"
	collectionProfiles = "user_profiles"
)

// AccountRepository implements ports.AccountRepository with one collection
// for accounts and one for profiles linked through user_id.
type AccountRepository struct {
	accounts *mongo.Collection
	profiles *mongo.Collection
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		accounts: db.Collection(collectionAccounts),
		profiles: db.Collection(collectionProfiles),
	}
}

type accountDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	FirstName    string             `bson:"first_name"`
	LastName     string             `bson:"last_name"`
	Phone        string             `bson:"phone,omitempty"`
	UserType     string             `bson:"user_type"`
	IsActive     bool               `bson:"is_active"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type profileDoc struct {
	ID                 primitive.ObjectID    `bson:"_id,omitempty"`
	UserID             primitive.ObjectID    `bson:"user_id"`
	Bio                string                `bson:"bio,omitempty"`
	Location           string                `bson:"location"`
	Skills             []string              `bson:"skills"`
	ExperienceYears    *int                  `bson:"experience_years,omitempty"`
	HourlyRate         *primitive.Decimal128 `bson:"hourly_rate,omitempty"`
	AvailabilityStatus string                `bson:"availability_status"`
	ProfileImageURL    string                `bson:"profile_image_url,omitempty"`
	CreatedAt          time.Time             `bson:"created_at"`
	UpdatedAt          time.Time             `bson:"updated_at"`
}

// FindByID retrieves an account and its profile. Malformed ids cannot exist
// and are reported as not found.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.accounts.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, wrapErr("count accounts", err)
	}
	return n > 0, nil
}

func (r *AccountRepository) FindByRole(ctx context.Context, role domain.Role, activeOnly bool) ([]*domain.Account, error) {
	filter := bson.M{"user_type": string(role)}
	if activeOnly {
		filter["is_active"] = true
	}
	return r.findMany(ctx, filter)
}

// FindByLocationAndRole resolves matching profiles first, then the accounts
// owning them.
func (r *AccountRepository) FindByLocationAndRole(ctx context.Context, location string, role domain.Role) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.profiles.Find(ctx, bson.M{"location": location})
	if err != nil {
		return nil, wrapErr("find profiles", err)
	}
	var profiles []profileDoc
	if err := cur.All(ctx, &profiles); err != nil {
		return nil, wrapErr("decode profiles", err)
	}
	if len(profiles) == 0 {
		return []*domain.Account{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}

	accounts, err := r.queryAccounts(ctx, bson.M{"_id": bson.M{"$in": ids}, "user_type": string(role)})
	if err != nil {
		return nil, err
	}
	return attach(accounts, profiles)
}

// SaveAccount inserts or replaces the account document. The attached profile
// is never written here.
func (r *AccountRepository) SaveAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := accountDoc{
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		FirstName:    account.FirstName,
		LastName:     account.LastName,
		Phone:        account.Phone,
		UserType:     string(account.Role),
		IsActive:     account.Active,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}

	if account.ID == "" {
		doc.ID = primitive.NewObjectID()
		if _, err := r.accounts.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, domain.ErrAccountExists
			}
			return nil, wrapErr("insert account", err)
		}
	} else {
		oid, err := primitive.ObjectIDFromHex(account.ID)
		if err != nil {
			return nil, domain.ErrAccountNotFound
		}
		doc.ID = oid
		res, err := r.accounts.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, domain.ErrAccountExists
			}
			return nil, wrapErr("replace account", err)
		}
		if res.MatchedCount == 0 {
			return nil, domain.ErrAccountNotFound
		}
	}

	saved := *account
	saved.ID = doc.ID.Hex()
	return &saved, nil
}

// SaveProfile inserts or replaces the profile document. The unique index on
// user_id rejects a second profile for the same account.
func (r *AccountRepository) SaveProfile(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	userID, err := primitive.ObjectIDFromHex(profile.AccountID)
	if err != nil {
		return nil, fmt.Errorf("profile owner %q: %w", profile.AccountID, domain.ErrAccountNotFound)
	}
	if !profile.AvailabilityStatus.Valid() {
		return nil, fmt.Errorf("availability %q: %w", profile.AvailabilityStatus, domain.ErrInvalidInput)
	}
	rate, err := toDecimal128(profile.HourlyRate)
	if err != nil {
		return nil, fmt.Errorf("hourly rate: %w", domain.ErrInvalidInput)
	}

	doc := profileDoc{
		UserID:             userID,
		Bio:                profile.Bio,
		Location:           profile.Location,
		Skills:             profile.Skills,
		ExperienceYears:    profile.ExperienceYears,
		HourlyRate:         rate,
		AvailabilityStatus: string(profile.AvailabilityStatus),
		ProfileImageURL:    profile.ProfileImageURL,
		CreatedAt:          profile.CreatedAt,
		UpdatedAt:          profile.UpdatedAt,
	}

	if profile.ID == "" {
		doc.ID = primitive.NewObjectID()
		if _, err := r.profiles.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, fmt.Errorf("profile for %s already exists: %w", profile.AccountID, domain.ErrAccountExists)
			}
			return nil, wrapErr("insert profile", err)
		}
	} else {
		oid, err := primitive.ObjectIDFromHex(profile.ID)
		if err != nil {
			return nil, fmt.Errorf("profile id %q: %w", profile.ID, domain.ErrInvalidInput)
		}
		doc.ID = oid
		if _, err := r.profiles.ReplaceOne(ctx, bson.M{"_id": oid}, doc, options.Replace().SetUpsert(true)); err != nil {
			return nil, wrapErr("replace profile", err)
		}
	}

	saved := *profile
	saved.ID = doc.ID.Hex()
	return &saved, nil
}

// EnsureIndexes creates the uniqueness and lookup indexes both collections rely on.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.accounts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_type", Value: 1}, {Key: "is_active", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("account indexes: %w", err)
	}

	_, err = r.profiles.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "location", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("profile indexes: %w", err)
	}
	return nil
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.accounts.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, wrapErr("find account", err)
	}
	account := doc.toDomain()

	var p profileDoc
	err := r.profiles.FindOne(ctx, bson.M{"user_id": doc.ID}).Decode(&p)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return account, nil
	case err != nil:
		return nil, wrapErr("find profile", err)
	}

	profile, err := p.toDomain()
	if err != nil {
		return nil, err
	}
	account.Profile = profile
	return account, nil
}

func (r *AccountRepository) findMany(ctx context.Context, filter bson.M) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	accounts, err := r.queryAccounts(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return []*domain.Account{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}
	cur, err := r.profiles.Find(ctx, bson.M{"user_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, wrapErr("find profiles", err)
	}
	var profiles []profileDoc
	if err := cur.All(ctx, &profiles); err != nil {
		return nil, wrapErr("decode profiles", err)
	}
	return attach(accounts, profiles)
}

// queryAccounts returns matching account documents ordered by _id so repeated
// calls list accounts in the same order.
func (r *AccountRepository) queryAccounts(ctx context.Context, filter bson.M) ([]accountDoc, error) {
	cur, err := r.accounts.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, wrapErr("find accounts", err)
	}
	var docs []accountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr("decode accounts", err)
	}
	return docs, nil
}

func attach(accounts []accountDoc, profiles []profileDoc) ([]*domain.Account, error) {
	byOwner := make(map[primitive.ObjectID]profileDoc, len(profiles))
	for _, p := range profiles {
		byOwner[p.UserID] = p
	}

	out := make([]*domain.Account, 0, len(accounts))
	for _, doc := range accounts {
		account := doc.toDomain()
		if p, ok := byOwner[doc.ID]; ok {
			profile, err := p.toDomain()
			if err != nil {
				return nil, err
			}
			account.Profile = profile
		}
		out = append(out, account)
	}
	return out, nil
}

func (d accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Phone:        d.Phone,
		Role:         domain.Role(d.UserType),
		Active:       d.IsActive,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

func (d profileDoc) toDomain() (*domain.Profile, error) {
	rate, err := fromDecimal128(d.HourlyRate)
	if err != nil {
		return nil, fmt.Errorf("decode hourly rate of profile %s: %w", d.ID.Hex(), err)
	}
	// Documents written before availability existed carry no status.
	status := domain.AvailabilityStatus(d.AvailabilityStatus)
	if !status.Valid() {
		status = domain.StatusAvailable
	}
	return &domain.Profile{
		ID:                 d.ID.Hex(),
		AccountID:          d.UserID.Hex(),
		Bio:                d.Bio,
		Location:           d.Location,
		Skills:             d.Skills,
		ExperienceYears:    d.ExperienceYears,
		HourlyRate:         rate,
		AvailabilityStatus: status,
		ProfileImageURL:    d.ProfileImageURL,
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
	}, nil
}

func toDecimal128(d *decimal.Decimal) (*primitive.Decimal128, error) {
	if d == nil {
		return nil, nil
	}
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func fromDecimal128(v *primitive.Decimal128) (*decimal.Decimal, error) {
	if v == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return nil, err
	}
	return &d, nil
}
