package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/auth"
	"backend/internal/config"
	"backend/internal/mailer"
	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/repository"
)

type SignupRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
	Role            string `json:"role" binding:"omitempty,oneof=admin user guide lead-guide"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

// sendTokenResponse issues a session token and delivers it twice: in the JSON
// body for API clients and as an httpOnly cookie for browsers.
func sendTokenResponse(c *gin.Context, cfg config.Config, user *models.User, status int) {
	token, err := auth.IssueToken(user.ID.Hex(), cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Println("[AUTH] [ERROR] token generation failed:", err)
		respondError(c, http.StatusInternalServerError, "AUTH", "token generation failed")
		return
	}

	c.SetCookie("jwt", token, int(cfg.TokenTTL.Seconds()), "/", "", cfg.IsProduction(), true)

	respondSuccess(c, status, gin.H{
		"token": token,
		"data":  gin.H{"user": user},
	})
}

func Signup(db *mongo.Database, cfg config.Config) gin.HandlerFunc {
	users := repository.NewUserRepo(db)

	return func(c *gin.Context) {
		const route = "POST /users/signup"
		defer handlePanic(c, route)

		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		if req.Password != req.PasswordConfirm {
			respondError(c, http.StatusBadRequest, route, "Passwords do not match")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := users.Create(ctx, req.Name, req.Email, req.Password, req.Role)
		if err == repository.ErrEmailTaken {
			respondError(c, http.StatusBadRequest, route, "email already registered")
			return
		}
		if err != nil {
			log.Println("[AUTH] [ERROR] signup failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[AUTH] [INFO] user signed up:", user.Email)
		sendTokenResponse(c, cfg, user, http.StatusCreated)
	}
}

func Login(db *mongo.Database, cfg config.Config) gin.HandlerFunc {
	users := repository.NewUserRepo(db)

	return func(c *gin.Context) {
		const route = "POST /users/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "Please provide email and password")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// A missing user and a wrong password produce the same answer, so
		// the response never reveals which of the two was incorrect.
		user, err := users.FindByEmail(ctx, req.Email)
		if err == repository.ErrUserNotFound {
			respondError(c, http.StatusUnauthorized, route, "Incorrect email or password")
			return
		}
		if err != nil {
			log.Println("[AUTH] [ERROR] login lookup failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !auth.CheckPassword(user.Password, req.Password) {
			log.Println("[AUTH] [ERROR] login invalid credentials")
			respondError(c, http.StatusUnauthorized, route, "Incorrect email or password")
			return
		}

		log.Println("[AUTH] [INFO] login succeeded:", user.Email)
		sendTokenResponse(c, cfg, user, http.StatusOK)
	}
}

func ForgotPassword(db *mongo.Database, cfg config.Config, mail mailer.Mailer) gin.HandlerFunc {
	users := repository.NewUserRepo(db)

	return func(c *gin.Context) {
		const route = "POST /users/forgotPassword"
		defer handlePanic(c, route)

		var req ForgotPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		user, err := users.FindByEmail(ctx, req.Email)
		if err == repository.ErrUserNotFound {
			respondError(c, http.StatusNotFound, route, "There is no user with this email address")
			return
		}
		if err != nil {
			log.Println("[AUTH] [ERROR] forgot password lookup failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		rawToken, tokenHash, err := auth.NewResetToken()
		if err != nil {
			log.Println("[AUTH] [ERROR] reset token generation failed:", err)
			respondError(c, http.StatusInternalServerError, route, "could not generate reset token")
			return
		}

		expires := time.Now().Add(cfg.ResetTokenTTL)
		if err := users.SetResetToken(ctx, user.ID, tokenHash, expires); err != nil {
			log.Println("[AUTH] [ERROR] reset token store failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		scheme := "http"
		if c.Request.TLS != nil || cfg.IsProduction() {
			scheme = "https"
		}
		resetURL := fmt.Sprintf("%s://%s/api/v1/users/resetPassword/%s", scheme, c.Request.Host, rawToken)
		body := fmt.Sprintf(
			"Forgot your password? Submit a PATCH request with your new password and passwordConfirm to %s\nIf you didn't forget your password, please ignore this email.",
			resetURL,
		)

		if err := mail.Send(ctx, user.Email, "Your password reset token (valid for 10 minutes)", body); err != nil {
			log.Println("[AUTH] [ERROR] reset email dispatch failed:", err)
			// Roll back the half-written reset so the stored state stays
			// consistent with what the user received. The send may have died
			// with the request context, so the rollback runs on its own
			// deadline.
			rollbackCtx, rollbackCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer rollbackCancel()
			if clearErr := users.ClearResetToken(rollbackCtx, user.ID); clearErr != nil {
				log.Println("[AUTH] [ERROR] reset token rollback failed:", clearErr)
			}
			respondError(c, http.StatusInternalServerError, route, "There was an error sending the email. Try again later!")
			return
		}

		log.Println("[AUTH] [INFO] reset token sent:", user.Email)
		respondSuccess(c, http.StatusOK, gin.H{"message": "Token sent to email"})
	}
}

func ResetPassword(db *mongo.Database, cfg config.Config) gin.HandlerFunc {
	users := repository.NewUserRepo(db)

	return func(c *gin.Context) {
		const route = "PATCH /users/resetPassword"
		defer handlePanic(c, route)

		rawToken := strings.TrimSpace(c.Param("token"))
		if rawToken == "" {
			respondError(c, http.StatusBadRequest, route, "reset token is required")
			return
		}

		var req ResetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		if req.Password != req.PasswordConfirm {
			respondError(c, http.StatusBadRequest, route, "Passwords do not match")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := users.FindByResetToken(ctx, rawToken)
		if err == repository.ErrResetTokenInvalid {
			respondError(c, http.StatusNotFound, route, "Token is invalid or has expired")
			return
		}
		if err != nil {
			log.Println("[AUTH] [ERROR] reset token lookup failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// UpdatePassword re-runs the hash hook, stamps passwordChangedAt and
		// clears the token fields, making the token single-use.
		if err := users.UpdatePassword(ctx, user.ID, req.Password); err != nil {
			log.Println("[AUTH] [ERROR] password reset failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[AUTH] [INFO] password reset:", user.Email)
		sendTokenResponse(c, cfg, user, http.StatusOK)
	}
}

func UpdateMyPassword(db *mongo.Database, cfg config.Config) gin.HandlerFunc {
	users := repository.NewUserRepo(db)

	return func(c *gin.Context) {
		const route = "PATCH /users/updateMyPassword"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "You are not logged in. Please log in to get access.")
			return
		}

		var req UpdatePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		if req.Password != req.PasswordConfirm {
			respondError(c, http.StatusBadRequest, route, "Passwords do not match")
			return
		}

		if !auth.CheckPassword(user.Password, req.PasswordCurrent) {
			respondError(c, http.StatusUnauthorized, route, "Your current password is wrong")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := users.UpdatePassword(ctx, user.ID, req.Password); err != nil {
			log.Println("[AUTH] [ERROR] password update failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[AUTH] [INFO] password updated:", user.Email)
		sendTokenResponse(c, cfg, user, http.StatusOK)
	}
}
