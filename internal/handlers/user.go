package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/middleware"
	"backend/internal/repository"
)

type UpdateMeRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
	Photo string `json:"photo"`
}

func GetMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /users/me"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "You are not logged in. Please log in to get access.")
			return
		}

		respondSuccess(c, http.StatusOK, gin.H{"data": gin.H{"user": user}})
	}
}

// UpdateMe changes profile fields only. Password mutations must go through
// updateMyPassword so the hash and changed-at hooks run.
func UpdateMe(db *mongo.Database) gin.HandlerFunc {
	users := repository.NewUserRepo(db)

	return func(c *gin.Context) {
		const route = "PATCH /users/updateMe"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "You are not logged in. Please log in to get access.")
			return
		}

		var body map[string]interface{}
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}
		if _, hasPassword := body["password"]; hasPassword {
			respondError(c, http.StatusBadRequest, route, "This route is not for password updates. Please use /updateMyPassword.")
			return
		}
		if _, hasConfirm := body["passwordConfirm"]; hasConfirm {
			respondError(c, http.StatusBadRequest, route, "This route is not for password updates. Please use /updateMyPassword.")
			return
		}

		var req UpdateMeRequest
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			respondValidationError(c, route, err)
			return
		}

		fields := bson.M{}
		if name := strings.TrimSpace(req.Name); name != "" {
			fields["name"] = name
		}
		if email := strings.TrimSpace(req.Email); email != "" {
			fields["email"] = email
		}
		if photo := strings.TrimSpace(req.Photo); photo != "" {
			fields["photo"] = photo
		}
		if len(fields) == 0 {
			respondError(c, http.StatusBadRequest, route, "nothing to update")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		updated, err := users.UpdateProfile(ctx, user.ID, fields)
		if err == repository.ErrEmailTaken {
			respondError(c, http.StatusBadRequest, route, "email already registered")
			return
		}
		if err != nil {
			log.Printf("[%s] update failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondSuccess(c, http.StatusOK, gin.H{"data": gin.H{"user": updated}})
	}
}

// DeleteMe soft-deletes the account: the document stays in storage but is
// excluded from every find-type query afterwards.
func DeleteMe(db *mongo.Database) gin.HandlerFunc {
	users := repository.NewUserRepo(db)

	return func(c *gin.Context) {
		const route = "DELETE /users/deleteMe"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "You are not logged in. Please log in to get access.")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := users.SoftDelete(ctx, user.ID); err != nil {
			log.Printf("[%s] soft delete failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[USER] [INFO] account deactivated:", user.Email)
		c.Status(http.StatusNoContent)
	}
}

func GetUsers(db *mongo.Database) gin.HandlerFunc {
	users := repository.NewUserRepo(db)

	return func(c *gin.Context) {
		const route = "GET /users"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		list, err := users.List(ctx)
		if err != nil {
			log.Printf("[%s] list failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondSuccess(c, http.StatusOK, gin.H{
			"results": len(list),
			"data":    gin.H{"users": list},
		})
	}
}

func GetUser(db *mongo.Database) gin.HandlerFunc {
	users := repository.NewUserRepo(db)

	return func(c *gin.Context) {
		const route = "GET /users/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid user id format")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := users.FindByID(ctx, id)
		if err == repository.ErrUserNotFound {
			respondError(c, http.StatusNotFound, route, "No user found with that id")
			return
		}
		if err != nil {
			log.Printf("[%s] lookup failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondSuccess(c, http.StatusOK, gin.H{"data": gin.H{"user": user}})
	}
}

// UpdateUser is the admin path for profile and role changes. Passwords are
// not accepted here either.
func UpdateUser(db *mongo.Database) gin.HandlerFunc {
	users := repository.NewUserRepo(db)

	return func(c *gin.Context) {
		const route = "PATCH /users/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid user id format")
			return
		}

		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		fields := bson.M{}
		for _, key := range []string{"name", "email", "photo", "role"} {
			if value, ok := body[key].(string); ok && strings.TrimSpace(value) != "" {
				fields[key] = strings.TrimSpace(value)
			}
		}
		if role, ok := fields["role"].(string); ok && !middleware.RoleAllowed(role, []string{"admin", "user", "guide", "lead-guide"}) {
			respondError(c, http.StatusBadRequest, route, "role must be one of: admin user guide lead-guide")
			return
		}
		if len(fields) == 0 {
			respondError(c, http.StatusBadRequest, route, "nothing to update")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		updated, err := users.UpdateProfile(ctx, id, fields)
		if err == repository.ErrUserNotFound {
			respondError(c, http.StatusNotFound, route, "No user found with that id")
			return
		}
		if err == repository.ErrEmailTaken {
			respondError(c, http.StatusBadRequest, route, "email already registered")
			return
		}
		if err != nil {
			log.Printf("[%s] update failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondSuccess(c, http.StatusOK, gin.H{"data": gin.H{"user": updated}})
	}
}

func DeleteUser(db *mongo.Database) gin.HandlerFunc {
	users := repository.NewUserRepo(db)

	return func(c *gin.Context) {
		const route = "DELETE /users/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid user id format")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		err = users.Delete(ctx, id)
		if err == repository.ErrUserNotFound {
			respondError(c, http.StatusNotFound, route, "No user found with that id")
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
