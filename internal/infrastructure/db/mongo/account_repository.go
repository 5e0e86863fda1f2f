package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jobportal/account-service/internal/core/domain"
)

type AccountRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		col: db.Collection(collectionAccounts),
		now: func() time.Time { return time.Now().UTC() },
	}
}

type accountDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	FullName    string             `bson:"fullname"`
	Email       string             `bson:"email"`
	PhoneNumber int64              `bson:"phoneNumber"`
	Password    string             `bson:"password"`
	Role        string             `bson:"role"`
	Profile     profileDoc         `bson:"profile"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type profileDoc struct {
	ProfilePhoto       string   `bson:"profilePhoto,omitempty"`
	Bio                string   `bson:"bio,omitempty"`
	Skills             []string `bson:"skills,omitempty"`
	Resume             string   `bson:"resume,omitempty"`
	ResumeOriginalName string   `bson:"resumeOriginalName,omitempty"`
}

func toDoc(a *domain.Account) accountDoc {
	return accountDoc{
		FullName:    a.FullName,
		Email:       a.Email,
		PhoneNumber: a.PhoneNumber,
		Password:    a.PasswordHash,
		Role:        a.Role,
		Profile: profileDoc{
			ProfilePhoto:       a.Profile.ProfilePhoto,
			Bio:                a.Profile.Bio,
			Skills:             a.Profile.Skills,
			Resume:             a.Profile.Resume,
			ResumeOriginalName: a.Profile.ResumeOriginalName,
		},
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (d accountDoc) toDomain() *domain.Account {
	skills := d.Profile.Skills
	if skills == nil {
		skills = []string{}
	}
	return &domain.Account{
		ID:           d.ID.Hex(),
		FullName:     d.FullName,
		Email:        d.Email,
		PhoneNumber:  d.PhoneNumber,
		PasswordHash: d.Password,
		Role:         d.Role,
		Profile: domain.Profile{
			ProfilePhoto:       d.Profile.ProfilePhoto,
			Bio:                d.Profile.Bio,
			Skills:             skills,
			Resume:             d.Profile.Resume,
			ResumeOriginalName: d.Profile.ResumeOriginalName,
		},
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// Create inserts a new account. A duplicate email surfaces as
// domain.ErrAccountExists through the unique index.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toDoc(a)
	doc.ID = primitive.NewObjectID()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = r.now()
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByID treats a malformed id the same as an unknown one.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

// ApplyProfilePatch sets only the supplied fields in a single atomic update,
// so concurrent patches touching different fields never overwrite each other.
func (r *AccountRepository) ApplyProfilePatch(ctx context.Context, id string, p domain.ProfilePatch) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": patchSet(p, r.now())}, opts)

	var doc accountDoc
	if err := res.Decode(&doc); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrAccountNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return doc.toDomain(), nil
}

func patchSet(p domain.ProfilePatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.FullName != nil {
		set["fullname"] = *p.FullName
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.PhoneNumber != nil {
		set["phoneNumber"] = *p.PhoneNumber
	}
	if p.Bio != nil {
		set["profile.bio"] = *p.Bio
	}
	if p.Skills != nil {
		set["profile.skills"] = p.Skills
	}
	if p.Resume != nil {
		set["profile.resume"] = *p.Resume
	}
	if p.ResumeOriginalName != nil {
		set["profile.resumeOriginalName"] = *p.ResumeOriginalName
	}
	return set
}

// EnsureIndexes creates the account indexes, including the unique email index.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := r.col.Indexes().CreateMany(ctx, accountIndexes()); err != nil {
		return fmt.Errorf("ensure account indexes: %w", err)
	}
	return nil
}
