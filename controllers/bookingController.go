package controllers

import (
	"MediBook/handlers"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes registers the unauthenticated public endpoints:
// the doctor's booking page and the booking submission itself.
func SetupBookingRoutes(router *gin.Engine, bookingHandler *handlers.BookingHandler, doctorHandler *handlers.DoctorHandler) {
	router.GET("/doctor/:regNo", doctorHandler.GetPublicProfile)
	router.POST("/book/:regNo", bookingHandler.Book)
}
