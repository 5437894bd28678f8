package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/repository"
)

type ReviewRequest struct {
	Review string  `json:"review" binding:"required"`
	Rating float64 `json:"rating" binding:"required,gte=1,lte=5"`
	Tour   string  `json:"tour"`
}

type ReviewUpdateRequest struct {
	Review string  `json:"review"`
	Rating float64 `json:"rating" binding:"omitempty,gte=1,lte=5"`
}

func GetReviews(db *mongo.Database) gin.HandlerFunc {
	reviews := repository.NewReviewRepo(db)

	return func(c *gin.Context) {
		const route = "GET /reviews"
		defer handlePanic(c, route)

		// On the nested route the id wildcard is the tour id.
		var tourID *primitive.ObjectID
		if raw := strings.TrimSpace(c.Param("id")); raw != "" {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "Invalid tour id format")
				return
			}
			tourID = &id
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		list, err := reviews.List(ctx, tourID)
		if err != nil {
			log.Printf("[%s] list failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondSuccess(c, http.StatusOK, gin.H{
			"results": len(list),
			"data":    gin.H{"reviews": list},
		})
	}
}

func CreateReview(db *mongo.Database) gin.HandlerFunc {
	reviews := repository.NewReviewRepo(db)
	tours := repository.NewTourRepo(db)

	return func(c *gin.Context) {
		const route = "POST /reviews"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "You are not logged in. Please log in to get access.")
			return
		}

		var req ReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		// The tour comes from the nested route when present, the body
		// otherwise.
		rawTour := strings.TrimSpace(c.Param("id"))
		if rawTour == "" {
			rawTour = strings.TrimSpace(req.Tour)
		}
		tourID, err := primitive.ObjectIDFromHex(rawTour)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid tour id format")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := tours.FindByID(ctx, tourID); err == repository.ErrTourNotFound {
			respondError(c, http.StatusNotFound, route, "No tour found with that id")
			return
		} else if err != nil {
			log.Printf("[%s] tour lookup failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		review := models.Review{
			Review: strings.TrimSpace(req.Review),
			Rating: req.Rating,
			Tour:   tourID,
			User:   user.ID,
		}

		created, err := reviews.Create(ctx, &review)
		if err != nil {
			log.Printf("[%s] insert failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondSuccess(c, http.StatusCreated, gin.H{"data": gin.H{"review": created}})
	}
}

func GetReview(db *mongo.Database) gin.HandlerFunc {
	reviews := repository.NewReviewRepo(db)

	return func(c *gin.Context) {
		const route = "GET /reviews/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid review id format")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		review, err := reviews.FindByID(ctx, id)
		if err == repository.ErrReviewNotFound {
			respondError(c, http.StatusNotFound, route, "No review found with that id")
			return
		}
		if err != nil {
			log.Printf("[%s] lookup failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondSuccess(c, http.StatusOK, gin.H{"data": gin.H{"review": review}})
	}
}

// loadOwnedReview fetches a review and enforces the owner-or-admin rule
// shared by update and delete.
func loadOwnedReview(ctx context.Context, reviews *repository.ReviewRepo, c *gin.Context, route string) (*models.Review, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, route, "You are not logged in. Please log in to get access.")
		return nil, false
	}

	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
	if err != nil {
		respondError(c, http.StatusBadRequest, route, "Invalid review id format")
		return nil, false
	}

	review, err := reviews.FindByID(ctx, id)
	if err == repository.ErrReviewNotFound {
		respondError(c, http.StatusNotFound, route, "No review found with that id")
		return nil, false
	}
	if err != nil {
		log.Printf("[%s] lookup failed: %v", route, err)
		respondError(c, http.StatusInternalServerError, route, "db error")
		return nil, false
	}

	if review.User != user.ID && user.Role != models.RoleAdmin {
		respondError(c, http.StatusForbidden, route, "You do not have permission to perform this action.")
		return nil, false
	}
	return review, true
}

func UpdateReview(db *mongo.Database) gin.HandlerFunc {
	reviews := repository.NewReviewRepo(db)

	return func(c *gin.Context) {
		const route = "PATCH /reviews/:id"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		review, ok := loadOwnedReview(ctx, reviews, c, route)
		if !ok {
			return
		}

		var req ReviewUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		fields := bson.M{}
		if text := strings.TrimSpace(req.Review); text != "" {
			fields["review"] = text
		}
		if req.Rating != 0 {
			fields["rating"] = req.Rating
		}
		if len(fields) == 0 {
			respondError(c, http.StatusBadRequest, route, "nothing to update")
			return
		}

		updated, err := reviews.Update(ctx, review.ID, fields)
		if err != nil {
			log.Printf("[%s] update failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondSuccess(c, http.StatusOK, gin.H{"data": gin.H{"review": updated}})
	}
}

func DeleteReview(db *mongo.Database) gin.HandlerFunc {
	reviews := repository.NewReviewRepo(db)

	return func(c *gin.Context) {
		const route = "DELETE /reviews/:id"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		review, ok := loadOwnedReview(ctx, reviews, c, route)
		if !ok {
			return
		}

		if err := reviews.Delete(ctx, review.ID); err != nil {
			log.Printf("[%s] delete failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.Status(http.StatusNoContent)
	}
}
