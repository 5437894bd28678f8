package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
	"backend/internal/repository"
)

type TourRequest struct {
	Name          string            `json:"name" binding:"required"`
	Duration      float64           `json:"duration" binding:"required,gt=0"`
	MaxGroupSize  int               `json:"maxGroupSize" binding:"required,gt=0"`
	Difficulty    string            `json:"difficulty" binding:"required,oneof=easy medium difficult"`
	RatingAverage float64           `json:"ratingAverage" binding:"omitempty,gte=1,lte=5"`
	Price         float64           `json:"price" binding:"required,gt=0"`
	PriceDiscount float64           `json:"priceDiscount" binding:"omitempty,gte=0"`
	Summary       string            `json:"summary" binding:"required"`
	Description   string            `json:"description"`
	ImageCover    string            `json:"imageCover" binding:"required"`
	Images        []string          `json:"images"`
	StartDates    []time.Time       `json:"startDates"`
	StartLocation *models.Location  `json:"startLocation"`
	Locations     []models.Location `json:"locations"`
	Guides        []string          `json:"guides"`
	SecretTour    bool              `json:"secretTour"`
}

func GetTours(db *mongo.Database) gin.HandlerFunc {
	tours := repository.NewTourRepo(db)

	return func(c *gin.Context) {
		const route = "GET /tours"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		filter, findOptions, err := buildTourQuery(c.Request.URL.Query())
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		list, err := tours.List(ctx, filter, findOptions)
		if err != nil {
			log.Printf("[%s] list failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] returning %d tours", route, len(list))
		respondSuccess(c, http.StatusOK, gin.H{
			"results": len(list),
			"data":    gin.H{"tours": list},
		})
	}
}

// TopCheapTours is the curated alias: five cheapest tours, best-rated first
// among equals.
func TopCheapTours(db *mongo.Database) gin.HandlerFunc {
	tours := repository.NewTourRepo(db)

	return func(c *gin.Context) {
		const route = "GET /tours/top-5-cheap"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().
			SetSort(bson.D{{Key: "price", Value: 1}, {Key: "ratingAverage", Value: -1}}).
			SetLimit(5)

		list, err := tours.List(ctx, bson.M{}, findOptions)
		if err != nil {
			log.Printf("[%s] list failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondSuccess(c, http.StatusOK, gin.H{
			"results": len(list),
			"data":    gin.H{"tours": list},
		})
	}
}

func GetTour(db *mongo.Database) gin.HandlerFunc {
	tours := repository.NewTourRepo(db)

	return func(c *gin.Context) {
		const route = "GET /tours/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid tour id format")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		tour, err := tours.FindByID(ctx, id)
		if err == repository.ErrTourNotFound {
			respondError(c, http.StatusNotFound, route, "No tour found with that id")
			return
		}
		if err != nil {
			log.Printf("[%s] lookup failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondSuccess(c, http.StatusOK, gin.H{"data": gin.H{"tour": tour}})
	}
}

func CreateTour(db *mongo.Database) gin.HandlerFunc {
	tours := repository.NewTourRepo(db)

	return func(c *gin.Context) {
		const route = "POST /tours"
		defer handlePanic(c, route)

		var req TourRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		guideIDs, err := parseGuideIDs(req.Guides)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid guide id format")
			return
		}

		tour := models.Tour{
			Name:          strings.TrimSpace(req.Name),
			Duration:      req.Duration,
			MaxGroupSize:  req.MaxGroupSize,
			Difficulty:    req.Difficulty,
			RatingAverage: req.RatingAverage,
			Price:         req.Price,
			PriceDiscount: req.PriceDiscount,
			Summary:       strings.TrimSpace(req.Summary),
			Description:   strings.TrimSpace(req.Description),
			ImageCover:    req.ImageCover,
			Images:        req.Images,
			StartDates:    req.StartDates,
			StartLocation: req.StartLocation,
			Locations:     req.Locations,
			GuideIDs:      guideIDs,
			SecretTour:    req.SecretTour,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		created, err := tours.Create(ctx, &tour)
		if err == repository.ErrTourNameTaken {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		if err != nil {
			log.Printf("[%s] insert failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] tour created: %s", route, created.Slug)
		respondSuccess(c, http.StatusCreated, gin.H{"data": gin.H{"tour": created}})
	}
}

// TourUpdateRequest is the typed partial-update body for PATCH. Pointer
// fields distinguish "absent" from zero, and decoding rejects values whose
// type does not match the stored document, so a mistyped write can never
// corrupt a tour. Slug is derived, never accepted from the client.
type TourUpdateRequest struct {
	Name          *string           `json:"name"`
	Duration      *float64          `json:"duration" binding:"omitempty,gt=0"`
	MaxGroupSize  *int              `json:"maxGroupSize" binding:"omitempty,gt=0"`
	Difficulty    *string           `json:"difficulty" binding:"omitempty,oneof=easy medium difficult"`
	RatingAverage *float64          `json:"ratingAverage" binding:"omitempty,gte=1,lte=5"`
	Price         *float64          `json:"price" binding:"omitempty,gt=0"`
	PriceDiscount *float64          `json:"priceDiscount" binding:"omitempty,gte=0"`
	Summary       *string           `json:"summary"`
	Description   *string           `json:"description"`
	ImageCover    *string           `json:"imageCover"`
	Images        []string          `json:"images"`
	StartDates    []time.Time       `json:"startDates"`
	StartLocation *models.Location  `json:"startLocation"`
	Locations     []models.Location `json:"locations"`
	SecretTour    *bool             `json:"secretTour"`
}

// setFields collects the present fields into the update document.
func (r TourUpdateRequest) setFields() bson.M {
	fields := bson.M{}
	if r.Name != nil {
		fields["name"] = strings.TrimSpace(*r.Name)
	}
	if r.Duration != nil {
		fields["duration"] = *r.Duration
	}
	if r.MaxGroupSize != nil {
		fields["maxGroupSize"] = *r.MaxGroupSize
	}
	if r.Difficulty != nil {
		fields["difficulty"] = *r.Difficulty
	}
	if r.RatingAverage != nil {
		fields["ratingAverage"] = *r.RatingAverage
	}
	if r.Price != nil {
		fields["price"] = *r.Price
	}
	if r.PriceDiscount != nil {
		fields["priceDiscount"] = *r.PriceDiscount
	}
	if r.Summary != nil {
		fields["summary"] = strings.TrimSpace(*r.Summary)
	}
	if r.Description != nil {
		fields["description"] = strings.TrimSpace(*r.Description)
	}
	if r.ImageCover != nil {
		fields["imageCover"] = *r.ImageCover
	}
	if r.Images != nil {
		fields["images"] = r.Images
	}
	if r.StartDates != nil {
		fields["startDates"] = r.StartDates
	}
	if r.StartLocation != nil {
		fields["startLocation"] = r.StartLocation
	}
	if r.Locations != nil {
		fields["locations"] = r.Locations
	}
	if r.SecretTour != nil {
		fields["secretTour"] = *r.SecretTour
	}
	return fields
}

func UpdateTour(db *mongo.Database) gin.HandlerFunc {
	tours := repository.NewTourRepo(db)

	return func(c *gin.Context) {
		const route = "PATCH /tours/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid tour id format")
			return
		}

		var req TourUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		fields := req.setFields()
		if len(fields) == 0 {
			respondError(c, http.StatusBadRequest, route, "no updatable fields in request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		tour, err := tours.Update(ctx, id, fields)
		if err == repository.ErrTourNotFound {
			respondError(c, http.StatusNotFound, route, "No tour found with that id")
			return
		}
		if err == repository.ErrTourNameTaken {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		if err != nil {
			log.Printf("[%s] update failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondSuccess(c, http.StatusOK, gin.H{"data": gin.H{"tour": tour}})
	}
}

func DeleteTour(db *mongo.Database) gin.HandlerFunc {
	tours := repository.NewTourRepo(db)

	return func(c *gin.Context) {
		const route = "DELETE /tours/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid tour id format")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		err = tours.Delete(ctx, id)
		if err == repository.ErrTourNotFound {
			respondError(c, http.StatusNotFound, route, "No tour found with that id")
			return
		}
		if err != nil {
			log.Printf("[%s] delete failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func GetTourStats(db *mongo.Database) gin.HandlerFunc {
	tours := repository.NewTourRepo(db)

	return func(c *gin.Context) {
		const route = "GET /tours/tour-stats"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		stats, err := tours.Stats(ctx)
		if err != nil {
			log.Printf("[%s] aggregation failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondSuccess(c, http.StatusOK, gin.H{"data": gin.H{"stats": stats}})
	}
}

func GetMonthlyPlan(db *mongo.Database) gin.HandlerFunc {
	tours := repository.NewTourRepo(db)

	return func(c *gin.Context) {
		const route = "GET /tours/monthly-plan/:year"
		defer handlePanic(c, route)

		year, err := strconv.Atoi(strings.TrimSpace(c.Param("year")))
		if err != nil || year < 1900 || year > 3000 {
			respondError(c, http.StatusBadRequest, route, "Invalid year")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		plan, err := tours.MonthlyPlan(ctx, year)
		if err != nil {
			log.Printf("[%s] aggregation failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondSuccess(c, http.StatusOK, gin.H{
			"results": len(plan),
			"data":    gin.H{"plan": plan},
		})
	}
}

func parseGuideIDs(raw []string) ([]primitive.ObjectID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, value := range raw {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
