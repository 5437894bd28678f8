package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/auth"
	"backend/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrResetTokenInvalid = errors.New("token is invalid or has expired")
)

// UserRepo is the single entry point for user persistence. All find-type
// queries exclude soft-deleted accounts; password mutations run the hash and
// changed-at hooks before the write.
type UserRepo struct {
	col *mongo.Collection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{col: db.Collection("users")}
}

// activeFilter merges the soft-delete predicate into a caller filter. The
// predicate is set last, so a caller-supplied active key can never disable it.
func activeFilter(filter bson.M) bson.M {
	merged := bson.M{}
	for key, value := range filter {
		merged[key] = value
	}
	merged["active"] = bson.M{"$ne": false}
	return merged
}

func (r *UserRepo) Create(ctx context.Context, name, email, password, role string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	count, err := r.col.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	if role == "" {
		role = models.RoleUser
	}

	now := time.Now()
	user := models.User{
		Name:      strings.TrimSpace(name),
		Email:     email,
		Role:      role,
		Password:  hash,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := r.col.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	user.ID = res.InsertedID.(primitive.ObjectID)
	return &user, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, activeFilter(bson.M{"_id": id})).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := r.col.FindOne(ctx, activeFilter(bson.M{"email": email})).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	cursor, err := r.col.Find(ctx, activeFilter(bson.M{}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdatePassword replaces the stored hash and stamps passwordChangedAt one
// second in the past, so a session issued in the same instant as the change
// is still accepted by the auth gate. Any pending reset token is cleared.
func (r *UserRepo) UpdatePassword(ctx context.Context, id primitive.ObjectID, newPassword string) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	now := time.Now()
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"password":          hash,
			"passwordChangedAt": now.Add(-time.Second),
			"updatedAt":         now,
		},
		"$unset": bson.M{
			"passwordResetToken":   "",
			"passwordResetExpires": "",
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateProfile updates non-sensitive fields only. Re-saving a user through
// this path never touches the stored hash or passwordChangedAt.
func (r *UserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	if email, ok := fields["email"].(string); ok {
		fields["email"] = strings.ToLower(strings.TrimSpace(email))
	}
	fields["updatedAt"] = time.Now()

	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrUserNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *UserRepo) SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"passwordResetToken":   tokenHash,
			"passwordResetExpires": expires,
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ClearResetToken rolls back a half-written reset, used when the reset email
// cannot be dispatched.
func (r *UserRepo) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$unset": bson.M{
			"passwordResetToken":   "",
			"passwordResetExpires": "",
		},
	})
	return err
}

// FindByResetToken matches the hash of a presented raw token against an
// unexpired stored hash. Hash mismatch and expiry are indistinguishable to
// the caller.
func (r *UserRepo) FindByResetToken(ctx context.Context, rawToken string) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, activeFilter(bson.M{
		"passwordResetToken":   auth.HashResetToken(rawToken),
		"passwordResetExpires": bson.M{"$gt": time.Now()},
	})).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrResetTokenInvalid
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SoftDelete flips the active flag; the document stays in storage but no
// find-type query returns it anymore.
func (r *UserRepo) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"active":    false,
			"updatedAt": time.Now(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a user document permanently. Admin-only path; regular
// account removal goes through SoftDelete.
func (r *UserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
