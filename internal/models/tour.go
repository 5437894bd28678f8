package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// Location is a GeoJSON point with tour-specific metadata.
type Location struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Day         int       `bson:"day,omitempty" json:"day,omitempty"`
}

// Tour represents a tour listing. Guides are stored as raw user ids; the
// repository resolves them into GuideSummary values on reads. DurationWeeks
// and Guides are computed on read and never stored.
type Tour struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name           string               `bson:"name" json:"name"`
	Slug           string               `bson:"slug" json:"slug"`
	Duration       float64              `bson:"duration" json:"duration"`
	DurationWeeks  float64              `bson:"-" json:"durationWeeks"`
	MaxGroupSize   int                  `bson:"maxGroupSize" json:"maxGroupSize"`
	Difficulty     string               `bson:"difficulty" json:"difficulty"`
	RatingAverage  float64              `bson:"ratingAverage" json:"ratingAverage"`
	RatingQuantity int                  `bson:"ratingQuantity" json:"ratingQuantity"`
	Price          float64              `bson:"price" json:"price"`
	PriceDiscount  float64              `bson:"priceDiscount,omitempty" json:"-"`
	Summary        string               `bson:"summary" json:"summary"`
	Description    string               `bson:"description,omitempty" json:"description,omitempty"`
	ImageCover     string               `bson:"imageCover" json:"imageCover"`
	Images         []string             `bson:"images,omitempty" json:"images,omitempty"`
	StartDates     []time.Time          `bson:"startDates,omitempty" json:"startDates,omitempty"`
	StartLocation  *Location            `bson:"startLocation,omitempty" json:"startLocation,omitempty"`
	Locations      []Location           `bson:"locations,omitempty" json:"locations,omitempty"`
	GuideIDs       []primitive.ObjectID `bson:"guides,omitempty" json:"-"`
	Guides         []GuideSummary       `bson:"-" json:"guides,omitempty"`
	SecretTour     bool                 `bson:"secretTour" json:"-"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// GuideSummary is the public projection of a guide user embedded in tour
// responses.
type GuideSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Role  string             `bson:"role" json:"role"`
	Photo string             `bson:"photo,omitempty" json:"photo,omitempty"`
}
