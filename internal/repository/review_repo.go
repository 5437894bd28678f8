package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

var ErrReviewNotFound = errors.New("review not found")

type ReviewRepo struct {
	col *mongo.Collection
}

func NewReviewRepo(db *mongo.Database) *ReviewRepo {
	return &ReviewRepo{col: db.Collection("reviews")}
}

func (r *ReviewRepo) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	review.CreatedAt = time.Now()

	res, err := r.col.InsertOne(ctx, review)
	if err != nil {
		return nil, err
	}

	review.ID = res.InsertedID.(primitive.ObjectID)
	return review, nil
}

func (r *ReviewRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// List returns all reviews, optionally scoped to one tour.
func (r *ReviewRepo) List(ctx context.Context, tourID *primitive.ObjectID) ([]models.Review, error) {
	filter := bson.M{}
	if tourID != nil {
		filter["tour"] = *tourID
	}

	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := make([]models.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepo) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Review, error) {
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrReviewNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *ReviewRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrReviewNotFound
	}
	return nil
}
