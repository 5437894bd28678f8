package repository

import (
	"context"
	"errors"
	"time"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

var (
	ErrTourNotFound  = errors.New("tour not found")
	ErrTourNameTaken = errors.New("a tour with this name already exists")
)

// TourRepo wraps every tour persistence call with the lifecycle hooks: slug
// derivation before saves, the secret-tour visibility filter on every read
// and aggregation, and guide population plus derived fields after reads.
type TourRepo struct {
	tours *mongo.Collection
	users *mongo.Collection
}

func NewTourRepo(db *mongo.Database) *TourRepo {
	return &TourRepo{
		tours: db.Collection("tours"),
		users: db.Collection("users"),
	}
}

// visibleFilter merges the unconditional secret-tour predicate into a caller
// filter. The predicate is set last, so every find goes through it with no
// opt-out, even for a caller filter that names secretTour itself.
func visibleFilter(filter bson.M) bson.M {
	merged := bson.M{}
	for key, value := range filter {
		merged[key] = value
	}
	merged["secretTour"] = bson.M{"$ne": true}
	return merged
}

// visibleMatchStage is the $match prepended to every aggregation pipeline.
func visibleMatchStage() bson.D {
	return bson.D{{Key: "$match", Value: bson.M{"secretTour": bson.M{"$ne": true}}}}
}

// preSave recomputes derived stored fields. The slug is always rederived
// from the name, with no dirty-check.
func (r *TourRepo) preSave(tour *models.Tour) {
	tour.Slug = slug.Make(tour.Name)
	tour.UpdatedAt = time.Now()
}

// postFind computes read-only derived fields on a decoded document.
func (r *TourRepo) postFind(tour *models.Tour) {
	tour.DurationWeeks = tour.Duration / 7
}

func (r *TourRepo) Create(ctx context.Context, tour *models.Tour) (*models.Tour, error) {
	if tour.RatingAverage == 0 {
		tour.RatingAverage = 4.5
	}
	tour.CreatedAt = time.Now()
	r.preSave(tour)

	res, err := r.tours.InsertOne(ctx, tour)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrTourNameTaken
		}
		return nil, err
	}

	tour.ID = res.InsertedID.(primitive.ObjectID)
	r.postFind(tour)
	return tour, nil
}

func (r *TourRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tour, error) {
	var tour models.Tour
	err := r.tours.FindOne(ctx, visibleFilter(bson.M{"_id": id})).Decode(&tour)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTourNotFound
	}
	if err != nil {
		return nil, err
	}

	r.postFind(&tour)
	if err := r.populateGuides(ctx, []*models.Tour{&tour}); err != nil {
		return nil, err
	}
	return &tour, nil
}

func (r *TourRepo) List(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Tour, error) {
	cursor, err := r.tours.Find(ctx, visibleFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tours := make([]models.Tour, 0)
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, err
	}

	refs := make([]*models.Tour, len(tours))
	for i := range tours {
		r.postFind(&tours[i])
		refs[i] = &tours[i]
	}
	if err := r.populateGuides(ctx, refs); err != nil {
		return nil, err
	}
	return tours, nil
}

func (r *TourRepo) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Tour, error) {
	if name, ok := fields["name"].(string); ok {
		fields["slug"] = slug.Make(name)
	}
	fields["updatedAt"] = time.Now()

	res, err := r.tours.UpdateOne(ctx, visibleFilter(bson.M{"_id": id}), bson.M{"$set": fields})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrTourNameTaken
		}
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrTourNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *TourRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.tours.DeleteOne(ctx, visibleFilter(bson.M{"_id": id}))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrTourNotFound
	}
	return nil
}

// populateGuides resolves the raw guide ids of the given tours into embedded
// summaries with a single $in lookup, projecting out everything sensitive.
func (r *TourRepo) populateGuides(ctx context.Context, tours []*models.Tour) error {
	idSet := make(map[primitive.ObjectID]struct{})
	for _, tour := range tours {
		for _, guideID := range tour.GuideIDs {
			idSet[guideID] = struct{}{}
		}
	}
	if len(idSet) == 0 {
		return nil
	}

	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	cursor, err := r.users.Find(ctx,
		activeFilter(bson.M{"_id": bson.M{"$in": ids}}),
		options.Find().SetProjection(bson.M{
			"_id":   1,
			"name":  1,
			"email": 1,
			"role":  1,
			"photo": 1,
		}),
	)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var guides []models.GuideSummary
	if err := cursor.All(ctx, &guides); err != nil {
		return err
	}

	guideByID := make(map[primitive.ObjectID]models.GuideSummary, len(guides))
	for _, guide := range guides {
		guideByID[guide.ID] = guide
	}

	for _, tour := range tours {
		resolved := make([]models.GuideSummary, 0, len(tour.GuideIDs))
		for _, guideID := range tour.GuideIDs {
			if guide, exists := guideByID[guideID]; exists {
				resolved = append(resolved, guide)
			}
		}
		tour.Guides = resolved
	}
	return nil
}

// TourStats is the per-difficulty aggregate used by the stats endpoint.
type TourStats struct {
	Difficulty string  `bson:"_id" json:"difficulty"`
	NumTours   int     `bson:"numTours" json:"numTours"`
	NumRatings int     `bson:"numRatings" json:"numRatings"`
	AvgRating  float64 `bson:"avgRating" json:"avgRating"`
	AvgPrice   float64 `bson:"avgPrice" json:"avgPrice"`
	MinPrice   float64 `bson:"minPrice" json:"minPrice"`
	MaxPrice   float64 `bson:"maxPrice" json:"maxPrice"`
}

func (r *TourRepo) Stats(ctx context.Context) ([]TourStats, error) {
	pipeline := mongo.Pipeline{
		visibleMatchStage(),
		bson.D{{Key: "$match", Value: bson.M{"ratingAverage": bson.M{"$gte": 1.0}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":        "$difficulty",
			"numTours":   bson.M{"$sum": 1},
			"numRatings": bson.M{"$sum": "$ratingQuantity"},
			"avgRating":  bson.M{"$avg": "$ratingAverage"},
			"avgPrice":   bson.M{"$avg": "$price"},
			"minPrice":   bson.M{"$min": "$price"},
			"maxPrice":   bson.M{"$max": "$price"},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"avgPrice": 1}}},
	}

	cursor, err := r.tours.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := make([]TourStats, 0)
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// MonthlyPlanEntry counts tour starts per month of a year.
type MonthlyPlanEntry struct {
	Month    int      `bson:"_id" json:"month"`
	NumTours int      `bson:"numTourStarts" json:"numTourStarts"`
	Tours    []string `bson:"tours" json:"tours"`
}

func (r *TourRepo) MonthlyPlan(ctx context.Context, year int) ([]MonthlyPlanEntry, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	pipeline := mongo.Pipeline{
		visibleMatchStage(),
		bson.D{{Key: "$unwind", Value: "$startDates"}},
		bson.D{{Key: "$match", Value: bson.M{
			"startDates": bson.M{"$gte": from, "$lte": to},
		}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":           bson.M{"$month": "$startDates"},
			"numTourStarts": bson.M{"$sum": 1},
			"tours":         bson.M{"$push": "$name"},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"numTourStarts": -1}}},
	}

	cursor, err := r.tours.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	plan := make([]MonthlyPlanEntry, 0)
	if err := cursor.All(ctx, &plan); err != nil {
		return nil, err
	}
	return plan, nil
}
