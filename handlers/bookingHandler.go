package handlers

import (
	"MediBook/middlewares"
	"MediBook/models"
	"MediBook/services"
	"MediBook/utils"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BookingHandler serves the public booking endpoint. The doctor is
// identified by the registration number in the URL, not by the body.
type BookingHandler struct {
	service *services.BookingService
}

func NewBookingHandler(service *services.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Book handles POST /book/:regNo.
func (h *BookingHandler) Book(c *gin.Context) {
	regNo := c.Param("regNo")

	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateBookingRequest(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	confirmation, err := h.service.Book(c.Request.Context(), regNo, &req)
	if err != nil {
		var bookingErr *services.BookingError
		if errors.As(err, &bookingErr) {
			middlewares.RespondJSON(c, bookingErr, bookingStatus(bookingErr.Reason))
			return
		}
		middlewares.HttpError(c, "Failed to book appointment", http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Appointment booked successfully",
		"appointment": confirmation,
	})
}

// bookingStatus maps a rejection reason to its HTTP status.
func bookingStatus(reason string) int {
	switch reason {
	case services.ReasonInvalidRequest:
		return http.StatusBadRequest
	case services.ReasonVerificationFailed:
		return http.StatusForbidden
	case services.ReasonProviderNotFound, services.ReasonLocationNotFound, services.ReasonSlotNotFound:
		return http.StatusNotFound
	case services.ReasonDuplicateBooking, services.ReasonSlotFull:
		return http.StatusConflict
	case services.ReasonBookingConflict:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
