package handlers

import (
	"MediBook/middlewares"
	"MediBook/models"
	"MediBook/repositories"
	"MediBook/services"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ConsultationHandler serves the doctor-facing appointment endpoints.
type ConsultationHandler struct {
	service *services.ConsultationService
}

func NewConsultationHandler(service *services.ConsultationService) *ConsultationHandler {
	return &ConsultationHandler{service: service}
}

// UpdateConsultation handles PATCH /consultations/:id with a sparse
// fieldset; only the fields present in the body are written.
func (h *ConsultationHandler) UpdateConsultation(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var upd models.ConsultationUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	warnings, err := h.service.Update(c.Request.Context(), doctorID, id, &upd)
	if err != nil {
		respondConsultationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Consultation updated",
		"warnings": warnings,
	})
}

// CancelConsultation handles PATCH /consultations/:id/cancel.
func (h *ConsultationHandler) CancelConsultation(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), doctorID, id); err != nil {
		respondConsultationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment cancelled"})
}

// GetConsultation handles GET /consultations/:id, returning the detail
// view with the linked patient's history attached.
func (h *ConsultationHandler) GetConsultation(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.GetWithHistory(c.Request.Context(), doctorID, id)
	if err != nil {
		respondConsultationError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListConsultations handles GET /consultations with optional filters.
func (h *ConsultationHandler) ListConsultations(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	filter := repositories.AppointmentFilter{
		ConsultType:       c.Query("consultType"),
		AppointmentStatus: c.Query("appointmentStatus"),
		Date:              c.Query("date"),
		LocationID:        parseUintQuery(c, "locationId"),
		TimeSlotID:        parseUintQuery(c, "timeSlotId"),
		Search:            c.Query("search"),
	}

	rows, err := h.service.List(c.Request.Context(), doctorID, filter)
	if err != nil {
		middlewares.HttpError(c, "Failed to list appointments", http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetNotes handles GET /consultations/notes with optional filters.
func (h *ConsultationHandler) GetNotes(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	filter := repositories.NotesFilter{
		LocationID:  parseUintQuery(c, "locationId"),
		ConsultType: c.Query("consultType"),
		Date:        c.Query("date"),
		Disease:     c.Query("disease"),
	}

	notes, err := h.service.Notes(c.Request.Context(), doctorID, filter)
	if err != nil {
		middlewares.HttpError(c, "Failed to get consultation notes", http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

// LinkPatient handles POST /consultations/link-patient, attaching or
// creating a patient record and writing the consultation through in
// the same call.
func (h *ConsultationHandler) LinkPatient(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	var link models.PatientLink
	if err := c.ShouldBindJSON(&link); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if link.ConsultationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "consultationId is required"})
		return
	}

	patientID, created, warnings, err := h.service.LinkPatient(c.Request.Context(), doctorID, &link)
	if err != nil {
		respondConsultationError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"message":   "Patient linked to consultation",
		"patientId": patientID,
		"created":   created,
		"warnings":  warnings,
	})
}

// respondConsultationError maps service errors onto HTTP statuses.
func respondConsultationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repositories.ErrConsultationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Consultation not found"})
	case errors.Is(err, repositories.ErrPatientNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
	case errors.Is(err, repositories.ErrNoUpdatableFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields in request"})
	default:
		middlewares.HttpError(c, "Failed to process consultation", http.StatusInternalServerError, err)
	}
}

// requireDoctorID pulls the authenticated doctor id from the request
// context, aborting with 401 when absent.
func requireDoctorID(c *gin.Context) (uint, bool) {
	doctorID, err := middlewares.ExtractDoctorIDFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return doctorID, true
}

// parseIDParam parses a numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// parseUintQuery parses an optional numeric query parameter, returning
// zero when absent or malformed.
func parseUintQuery(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(c.Query(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}
