package services

import (
	"MediBook/models"
	"MediBook/repositories"
	"context"
	"time"
)

// PatientService covers the doctor-facing patient records.
type PatientService struct {
	patients repositories.PatientRepository
}

func NewPatientService(patients repositories.PatientRepository) *PatientService {
	return &PatientService{patients: patients}
}

// Create registers a new patient under the doctor, stamping today as
// the registration and most recent visit date when the caller left
// them blank.
func (s *PatientService) Create(ctx context.Context, doctorID uint, patient *models.Patient) error {
	patient.DoctorID = doctorID
	today := time.Now().Format(models.DateOnly)
	if patient.RegistrationDate == "" {
		patient.RegistrationDate = today
	}
	if patient.RecentAppointmentDate == "" {
		patient.RecentAppointmentDate = today
	}
	if patient.TreatmentStatus == "" {
		patient.TreatmentStatus = "Ongoing"
	}
	if patient.Disease == "" {
		patient.Disease = "Unknown"
	}
	return s.patients.Create(ctx, patient)
}

func (s *PatientService) GetByID(ctx context.Context, doctorID, id uint) (*models.Patient, error) {
	return s.patients.GetByID(ctx, doctorID, id)
}

func (s *PatientService) GetByPhone(ctx context.Context, doctorID uint, phone string) ([]models.Patient, error) {
	return s.patients.GetByPhone(ctx, doctorID, phone)
}

func (s *PatientService) Update(ctx context.Context, doctorID, id uint, fields map[string]interface{}) error {
	return s.patients.UpdateFields(ctx, doctorID, id, fields)
}

func (s *PatientService) List(ctx context.Context, doctorID uint, filter repositories.PatientFilter) ([]models.PatientRow, error) {
	return s.patients.List(ctx, doctorID, filter)
}
