package handlers

import (
	"MediBook/middlewares"
	"MediBook/models"
	"MediBook/repositories"
	"MediBook/services"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DoctorHandler serves the doctor profile and consultation-location
// endpoints.
type DoctorHandler struct {
	service *services.DoctorService
}

func NewDoctorHandler(service *services.DoctorService) *DoctorHandler {
	return &DoctorHandler{service: service}
}

// GetPublicProfile handles GET /doctor/:regNo, the unauthenticated
// booking-page view: profile plus published locations only.
func (h *DoctorHandler) GetPublicProfile(c *gin.Context) {
	regNo := c.Param("regNo")

	doctor, locations, err := h.service.ResolvePublicProfile(c.Request.Context(), regNo)
	if err != nil {
		if errors.Is(err, repositories.ErrDoctorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
			return
		}
		middlewares.HttpError(c, "Failed to get doctor profile", http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"doctor":    doctor,
		"locations": locations,
	})
}

// GetProfile handles GET /profile for the signed-in doctor.
func (h *DoctorHandler) GetProfile(c *gin.Context) {
	regNo, err := middlewares.ExtractRegNoFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	doctor, err := h.service.GetProfile(c.Request.Context(), regNo)
	if err != nil {
		if errors.Is(err, repositories.ErrDoctorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
			return
		}
		middlewares.HttpError(c, "Failed to get profile", http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, doctor)
}

// profileUpdateRequest is the profile editor's payload: basic fields
// plus the full degree list.
type profileUpdateRequest struct {
	Name      string                `json:"name"`
	Email     string                `json:"email"`
	Phone     string                `json:"phone"`
	ImageURL  string                `json:"imageUrl"`
	Specialty string                `json:"specialty"`
	Address   string                `json:"address"`
	Degrees   []models.DoctorDegree `json:"degrees"`
}

// UpdateProfile handles PUT /profile.
func (h *DoctorHandler) UpdateProfile(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}
	regNo, _ := middlewares.ExtractRegNoFromContext(c.Request.Context())

	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doctor := &models.Doctor{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		ImageURL:  req.ImageURL,
		Specialty: req.Specialty,
		Address:   req.Address,
		RegNo:     regNo,
	}
	if err := h.service.UpdateProfile(c.Request.Context(), doctorID, doctor, req.Degrees); err != nil {
		middlewares.HttpError(c, "Failed to update profile", http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

// CreateLocation handles POST /locations with the nested active-day
// and time-slot tree.
func (h *DoctorHandler) CreateLocation(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	var location models.ConsultationLocation
	if err := c.ShouldBindJSON(&location); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if location.LocationName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "locationName is required"})
		return
	}

	if err := h.service.CreateLocation(c.Request.Context(), doctorID, &location); err != nil {
		middlewares.HttpError(c, "Failed to create location", http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, location)
}

// UpdateLocation handles PUT /locations/:id, replacing the schedule
// tree wholesale.
func (h *DoctorHandler) UpdateLocation(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var location models.ConsultationLocation
	if err := c.ShouldBindJSON(&location); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.UpdateLocation(c.Request.Context(), doctorID, id, &location); err != nil {
		respondLocationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Location updated"})
}

// DeleteLocation handles DELETE /locations/:id.
func (h *DoctorHandler) DeleteLocation(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteLocation(c.Request.Context(), doctorID, id); err != nil {
		respondLocationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Location deleted"})
}

// PublishLocation handles PATCH /locations/:id/publish.
func (h *DoctorHandler) PublishLocation(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsPublished bool `json:"isPublished"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.PublishLocation(c.Request.Context(), doctorID, id, req.IsPublished); err != nil {
		respondLocationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Publish status updated"})
}

// ListLocations handles GET /locations with optional filters.
func (h *DoctorHandler) ListLocations(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	filter := repositories.LocationFilter{
		LocationName: c.Query("locationName"),
		ActiveDay:    c.Query("activeDay"),
		StartTime:    c.Query("startTime"),
		EndTime:      c.Query("endTime"),
		Search:       c.Query("search"),
	}

	locations, err := h.service.ListLocations(c.Request.Context(), doctorID, filter)
	if err != nil {
		middlewares.HttpError(c, "Failed to list locations", http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, locations)
}

func respondLocationError(c *gin.Context, err error) {
	if errors.Is(err, repositories.ErrLocationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
		return
	}
	middlewares.HttpError(c, "Failed to process location", http.StatusInternalServerError, err)
}
