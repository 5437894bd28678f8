package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/mailer"
	"backend/internal/middleware"
	"backend/internal/models"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(cfg.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureTourIndexes(db); err != nil {
		log.Printf("tour index warning: %v", err)
	}
	if err := database.EnsureReviewIndexes(db); err != nil {
		log.Printf("review index warning: %v", err)
	}

	mail := mailer.New(cfg)
	protect := middleware.Protect(db, cfg.JWTSecret)

	r := gin.Default()

	users := r.Group("/api/v1/users")
	{
		users.POST("/signup", handlers.Signup(db, cfg))
		users.POST("/login", handlers.Login(db, cfg))
		users.POST("/forgotPassword", handlers.ForgotPassword(db, cfg, mail))
		users.PATCH("/resetPassword/:token", handlers.ResetPassword(db, cfg))

		me := users.Group("")
		me.Use(protect)
		{
			me.GET("/me", handlers.GetMe())
			me.PATCH("/updateMyPassword", handlers.UpdateMyPassword(db, cfg))
			me.PATCH("/updateMe", handlers.UpdateMe(db))
			me.DELETE("/deleteMe", handlers.DeleteMe(db))
		}

		admin := users.Group("")
		admin.Use(protect, middleware.RestrictTo(models.RoleAdmin))
		{
			admin.GET("", handlers.GetUsers(db))
			admin.GET("/:id", handlers.GetUser(db))
			admin.PATCH("/:id", handlers.UpdateUser(db))
			admin.DELETE("/:id", handlers.DeleteUser(db))
		}
	}

	tours := r.Group("/api/v1/tours")
	{
		tours.GET("", handlers.GetTours(db))
		tours.GET("/top-5-cheap", handlers.TopCheapTours(db))
		tours.GET("/tour-stats", handlers.GetTourStats(db))
		tours.GET("/monthly-plan/:year", handlers.GetMonthlyPlan(db))
		tours.GET("/:id", handlers.GetTour(db))

		tours.POST("", protect, middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide), handlers.CreateTour(db))
		tours.PATCH("/:id", protect, middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide), handlers.UpdateTour(db))
		tours.DELETE("/:id", protect, middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide), handlers.DeleteTour(db))

		tours.GET("/:id/reviews", handlers.GetReviews(db))
		tours.POST("/:id/reviews", protect, middleware.RestrictTo(models.RoleUser), handlers.CreateReview(db))
	}

	reviews := r.Group("/api/v1/reviews")
	{
		reviews.GET("", handlers.GetReviews(db))
		reviews.GET("/:id", handlers.GetReview(db))
		reviews.POST("", protect, middleware.RestrictTo(models.RoleUser), handlers.CreateReview(db))
		reviews.PATCH("/:id", protect, handlers.UpdateReview(db))
		reviews.DELETE("/:id", protect, handlers.DeleteReview(db))
	}

	r.NoRoute(handlers.NotFound())

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
