package routes

import (
	"MediBook/cache"
	"MediBook/config"
	"MediBook/controllers"
	"MediBook/handlers"
	"MediBook/middlewares"
	"MediBook/repositories"
	"MediBook/services"
	"MediBook/utils"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(cache *cache.Cache, config *config.AppConfig, db *gorm.DB) http.Handler {
	// Set Gin to release mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.Default()

	// Apply Bearer token validation to all routes
	router.Use(middlewares.ValidateBearerToken(config.GetBearerToken()))

	router.Use(middlewares.CorsMiddleware(middlewares.DefaultCorsConfig()))

	// The booking endpoint is open to the internet; limit per client IP
	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: 15,
		Burst:             30,
	}))

	router.Use(middlewares.LoggingMiddleware())

	// Initialize repositories, services, and handlers
	doctorRepo := repositories.NewDoctorRepository(db, cache)
	locationRepo := repositories.NewLocationRepository(db, cache)
	consultationRepo := repositories.NewConsultationRepository(db, cache)
	patientRepo := repositories.NewPatientRepository(db, cache)

	verifier := utils.NewRecaptchaVerifier(config.RecaptchaSecret)
	mailer := utils.NewBookingMailer()

	bookingService := services.NewBookingService(doctorRepo, locationRepo, consultationRepo, verifier, mailer)
	consultationService := services.NewConsultationService(consultationRepo, patientRepo)
	doctorService := services.NewDoctorService(doctorRepo, locationRepo)
	patientService := services.NewPatientService(patientRepo)
	authService := services.NewAuthService(doctorRepo)

	bookingHandler := handlers.NewBookingHandler(bookingService)
	consultationHandler := handlers.NewConsultationHandler(consultationService)
	doctorHandler := handlers.NewDoctorHandler(doctorService)
	patientHandler := handlers.NewPatientHandler(patientService)
	authHandler := handlers.NewAuthHandler(authService)

	// Register routes
	controllers.SetupBookingRoutes(router, bookingHandler, doctorHandler)
	controllers.SetupDoctorRoutes(router, doctorHandler, consultationHandler, patientHandler)

	authController := controllers.NewAuthController(authHandler)
	authController.RegisterRoutes(router)

	controllers.SetupRootRoute(router)

	return router
}
