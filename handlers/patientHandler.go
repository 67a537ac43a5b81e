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

// PatientHandler serves the doctor-facing patient record endpoints.
type PatientHandler struct {
	service *services.PatientService
}

func NewPatientHandler(service *services.PatientService) *PatientHandler {
	return &PatientHandler{service: service}
}

// CreatePatient handles POST /patients.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	var patient models.Patient
	if err := c.ShouldBindJSON(&patient); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patient.Name == "" || patient.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and phone are required"})
		return
	}

	if err := h.service.Create(c.Request.Context(), doctorID, &patient); err != nil {
		middlewares.HttpError(c, "Failed to create patient", http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, patient)
}

// GetPatient handles GET /patients/:id.
func (h *PatientHandler) GetPatient(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	patient, err := h.service.GetByID(c.Request.Context(), doctorID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPatientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
			return
		}
		middlewares.HttpError(c, "Failed to get patient", http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, patient)
}

// GetPatientsByPhone handles GET /patients/by-phone?phone=...
func (h *PatientHandler) GetPatientsByPhone(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}
	phone := c.Query("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone is required"})
		return
	}

	patients, err := h.service.GetByPhone(c.Request.Context(), doctorID, phone)
	if err != nil {
		middlewares.HttpError(c, "Failed to get patients", http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, patients)
}

// patientUpdateRequest carries the sparse fieldset for a patient
// update; only non-nil fields are written.
type patientUpdateRequest struct {
	Name            *string  `json:"name"`
	Age             *int     `json:"age"`
	Sex             *string  `json:"sex"`
	Address         *string  `json:"address"`
	Phone           *string  `json:"phone"`
	Email           *string  `json:"email"`
	Height          *float64 `json:"height"`
	Weight          *float64 `json:"weight"`
	BloodGroup      *string  `json:"bloodGroup"`
	DOB             *string  `json:"dob"`
	TreatmentStatus *string  `json:"treatmentStatus"`
	Disease         *string  `json:"disease"`
}

// UpdatePatient handles PATCH /patients/:id.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req patientUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := buildPatientFields(&req)
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields in request"})
		return
	}

	if err := h.service.Update(c.Request.Context(), doctorID, id, fields); err != nil {
		if errors.Is(err, repositories.ErrPatientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
			return
		}
		middlewares.HttpError(c, "Failed to update patient", http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Patient updated"})
}

// ListPatients handles GET /patients with optional filters.
func (h *PatientHandler) ListPatients(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	filter := repositories.PatientFilter{
		Disease:               c.Query("disease"),
		Sex:                   c.Query("sex"),
		ConsultLocation:       c.Query("consultLocation"),
		TreatmentStatus:       c.Query("treatmentStatus"),
		TimeSlotID:            parseUintQuery(c, "timeSlotId"),
		RecentAppointmentDate: c.Query("recentAppointmentDate"),
		Search:                c.Query("search"),
	}

	rows, err := h.service.List(c.Request.Context(), doctorID, filter)
	if err != nil {
		middlewares.HttpError(c, "Failed to list patients", http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func buildPatientFields(req *patientUpdateRequest) map[string]interface{} {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Age != nil {
		fields["age"] = *req.Age
	}
	if req.Sex != nil {
		fields["sex"] = *req.Sex
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Height != nil {
		fields["height"] = *req.Height
	}
	if req.Weight != nil {
		fields["weight"] = *req.Weight
	}
	if req.BloodGroup != nil {
		fields["blood_group"] = *req.BloodGroup
	}
	if req.DOB != nil {
		fields["dob"] = *req.DOB
	}
	if req.TreatmentStatus != nil {
		fields["treatment_status"] = *req.TreatmentStatus
	}
	if req.Disease != nil {
		fields["disease"] = *req.Disease
	}
	return fields
}
