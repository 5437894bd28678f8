package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	log.Println("EnsureUserIndexes: email_unique index created")
	return nil
}

func EnsureTourIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("tours").Indexes()

	nameIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
		Options: options.Index().
			SetName("name_unique").
			SetUnique(true),
	}

	slugIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetName("slug_index"),
	}

	log.Println("EnsureTourIndexes: creating name_unique and slug indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{nameIndex, slugIndex})
	if err != nil {
		log.Println("EnsureTourIndexes: tour index error:", err)
		return err
	}
	log.Println("EnsureTourIndexes: tour indexes created")
	return nil
}

func EnsureReviewIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("reviews").Indexes()

	tourIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "tour", Value: 1}},
		Options: options.Index().SetName("tour_index"),
	}

	log.Println("EnsureReviewIndexes: creating tour_index index")
	_, err := indexes.CreateOne(ctx, tourIndex)
	if err != nil {
		log.Println("EnsureReviewIndexes: tour index error:", err)
		return err
	}
	log.Println("EnsureReviewIndexes: tour_index index created")
	return nil
}
