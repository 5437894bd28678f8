package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/auth"
	"backend/internal/models"
	"backend/internal/repository"
)

// ContextUserKey is where Protect stores the resolved user.
const ContextUserKey = "user"

func abortWithFail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"status": "fail", "message": message})
}

// Protect validates the bearer token, resolves it to a live user and attaches
// the user to the context. A token issued before the user's last password
// change is rejected.
func Protect(db *mongo.Database, secret string) gin.HandlerFunc {
	users := repository.NewUserRepo(db)

	return func(c *gin.Context) {
		token := ExtractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			log.Println("[AUTH] [ERROR] missing bearer token")
			abortWithFail(c, http.StatusUnauthorized, "You are not logged in. Please log in to get access.")
			return
		}

		userIDValue, issuedAt, err := auth.VerifyToken(token, secret)
		if err != nil {
			log.Println("[AUTH] [ERROR] token verification failed:", err)
			abortWithFail(c, http.StatusUnauthorized, "Invalid or expired token. Please log in again.")
			return
		}

		userID, err := primitive.ObjectIDFromHex(userIDValue)
		if err != nil {
			log.Println("[AUTH] [ERROR] invalid user id claim")
			abortWithFail(c, http.StatusUnauthorized, "Invalid or expired token. Please log in again.")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := users.FindByID(ctx, userID)
		if err != nil {
			log.Println("[AUTH] [ERROR] token user lookup failed:", err)
			abortWithFail(c, http.StatusUnauthorized, "The user belonging to this token no longer exists.")
			return
		}

		if user.ChangedPasswordAfter(issuedAt) {
			log.Println("[AUTH] [ERROR] token issued before password change:", user.Email)
			abortWithFail(c, http.StatusUnauthorized, "Password was changed recently. Please log in again.")
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RestrictTo gates a route to the given roles. Must run after Protect.
func RestrictTo(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortWithFail(c, http.StatusUnauthorized, "You are not logged in. Please log in to get access.")
			return
		}

		if !RoleAllowed(user.Role, allowedRoles) {
			log.Println("[AUTH] [ERROR] role not permitted:", user.Role)
			abortWithFail(c, http.StatusForbidden, "You do not have permission to perform this action.")
			return
		}

		c.Next()
	}
}

// ExtractBearerToken pulls the raw token out of an Authorization header. An
// empty result means no usable credential was presented.
func ExtractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RoleAllowed reports whether role is in the allowed set.
func RoleAllowed(role string, allowedRoles []string) bool {
	for _, allowed := range allowedRoles {
		if role == allowed {
			return true
		}
	}
	return false
}

// CurrentUser returns the user attached by Protect.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
