package services

import (
	"MediBook/models"
	"MediBook/repositories"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

// ConsultationService covers the doctor-facing appointment operations:
// partial updates, cancellation, detail and list views, clinical notes
// and linking a consultation to a patient record.
type ConsultationService struct {
	consultations repositories.ConsultationRepository
	patients      repositories.PatientRepository
}

func NewConsultationService(consultations repositories.ConsultationRepository, patients repositories.PatientRepository) *ConsultationService {
	return &ConsultationService{consultations: consultations, patients: patients}
}

// PatientHistory is the appointment detail with the linked patient's
// other consultations attached.
type PatientHistory struct {
	Detail  *models.AppointmentDetail `json:"detail"`
	History []models.Consultation     `json:"history"`
}

// Update applies the non-nil fields of upd to one consultation. The
// consultation write is the unit of success; when a patient is linked
// and a visit date is present, the patient row's recent-visit fields
// are written afterwards as a secondary step whose failure is reported
// in warnings, never rolled back into the primary result.
func (s *ConsultationService) Update(ctx context.Context, doctorID, id uint, upd *models.ConsultationUpdate) ([]string, error) {
	fields, err := buildConsultationFields(upd)
	if err != nil {
		return nil, err
	}
	if err := s.consultations.UpdateFields(ctx, doctorID, id, fields); err != nil {
		return nil, err
	}

	var warnings []string
	if upd.PatientID != nil && upd.Date != nil {
		visitDate := dateOnly(*upd.Date)
		disease := ""
		if upd.Disease != nil {
			disease = *upd.Disease
		}
		if err := s.patients.TouchVisit(ctx, doctorID, *upd.PatientID, visitDate, disease); err != nil {
			log.Printf("Failed to propagate visit to patient %d: %v", *upd.PatientID, err)
			warnings = append(warnings, "consultation updated but patient record was not")
		}
	}
	return warnings, nil
}

// Cancel marks the consultation cancelled. Its serial number stays
// consumed.
func (s *ConsultationService) Cancel(ctx context.Context, doctorID, id uint) error {
	return s.consultations.Cancel(ctx, doctorID, id)
}

func (s *ConsultationService) GetDetail(ctx context.Context, doctorID, id uint) (*models.AppointmentDetail, error) {
	return s.consultations.GetDetail(ctx, doctorID, id)
}

// GetWithHistory returns the appointment detail plus the linked
// patient's other consultations, newest first.
func (s *ConsultationService) GetWithHistory(ctx context.Context, doctorID, id uint) (*PatientHistory, error) {
	detail, err := s.consultations.GetDetail(ctx, doctorID, id)
	if err != nil {
		return nil, err
	}
	result := &PatientHistory{Detail: detail}
	if detail.Consultation.PatientID != nil {
		history, err := s.consultations.ListForPatient(ctx, doctorID, *detail.Consultation.PatientID, id)
		if err != nil {
			return nil, err
		}
		result.History = history
	}
	return result, nil
}

func (s *ConsultationService) List(ctx context.Context, doctorID uint, filter repositories.AppointmentFilter) ([]models.AppointmentRow, error) {
	return s.consultations.List(ctx, doctorID, filter)
}

func (s *ConsultationService) Notes(ctx context.Context, doctorID uint, filter repositories.NotesFilter) ([]models.Consultation, error) {
	return s.consultations.Notes(ctx, doctorID, filter)
}

// LinkPatient attaches a patient record to a finished consultation. An
// existing patient is linked by id; otherwise a new record is created
// from the consultation's demographics. The consultation fields in the
// payload are written through in the same call, as a plain function
// call into Update rather than a second request. Returns the patient
// id, whether it was newly created, and any secondary-write warnings.
func (s *ConsultationService) LinkPatient(ctx context.Context, doctorID uint, link *models.PatientLink) (uint, bool, []string, error) {
	var warnings []string
	data := link.PatientData

	var patientID uint
	created := false
	if data.PatientID != nil {
		patient, err := s.patients.GetByID(ctx, doctorID, *data.PatientID)
		if err != nil {
			return 0, false, nil, err
		}
		patientID = patient.ID

		fields := map[string]interface{}{}
		if data.Height != nil {
			fields["height"] = *data.Height
		}
		if data.Weight != nil {
			fields["weight"] = *data.Weight
		}
		if data.BloodGroup != nil {
			fields["blood_group"] = *data.BloodGroup
		}
		if data.Disease != nil {
			fields["disease"] = *data.Disease
		}
		if len(fields) > 0 {
			if err := s.patients.UpdateFields(ctx, doctorID, patientID, fields); err != nil {
				log.Printf("Failed to update linked patient %d: %v", patientID, err)
				warnings = append(warnings, "patient metrics were not updated")
			}
		}
		if err := s.patients.LinkConsultation(ctx, doctorID, patientID, link.ConsultationID); err != nil {
			return 0, false, nil, err
		}
	} else {
		today := time.Now().Format(models.DateOnly)
		patient := &models.Patient{
			DoctorID:              doctorID,
			LastConsultationID:    &link.ConsultationID,
			Name:                  data.Name,
			Age:                   data.Age,
			Sex:                   data.Sex,
			Address:               data.Address,
			Phone:                 data.Phone,
			Email:                 data.Email,
			Height:                data.Height,
			Weight:                data.Weight,
			ConsultLocation:       data.Location,
			TreatmentStatus:       "Ongoing",
			Disease:               "Unknown",
			RegistrationDate:      today,
			RecentAppointmentDate: today,
		}
		if data.BloodGroup != nil {
			patient.BloodGroup = *data.BloodGroup
		}
		if data.Disease != nil {
			patient.Disease = *data.Disease
		}
		if err := s.patients.Create(ctx, patient); err != nil {
			return 0, false, nil, err
		}
		patientID = patient.ID
		created = true
	}

	upd := link.Consultation
	upd.PatientID = &patientID
	updateWarnings, err := s.Update(ctx, doctorID, link.ConsultationID, &upd)
	if err != nil {
		return 0, false, nil, err
	}
	warnings = append(warnings, updateWarnings...)

	return patientID, created, warnings, nil
}

// buildConsultationFields turns the sparse update payload into a column
// field mask. Only fields the caller actually sent are included, so an
// absent field can never clobber stored data.
func buildConsultationFields(upd *models.ConsultationUpdate) (map[string]interface{}, error) {
	fields := map[string]interface{}{}

	setString := func(column string, v *string) {
		if v != nil {
			fields[column] = *v
		}
	}
	setInt := func(column string, v *int) {
		if v != nil {
			fields[column] = *v
		}
	}

	setString("name", upd.Name)
	setInt("age", upd.Age)
	setString("sex", upd.Sex)
	setString("phone", upd.Phone)
	setString("email", upd.Email)
	setString("address", upd.Address)
	setString("patient_condition", upd.PatientCondition)
	setString("appointment_status", upd.AppointmentStatus)
	setString("audio_url", upd.AudioURL)
	setString("medical_tests", upd.MedicalTests)
	setString("medical_reports", upd.MedicalReports)
	setString("consult_type", upd.ConsultType)
	setString("medical_files", upd.MedicalFiles)
	setString("report_comments", upd.ReportComments)
	setString("patient_advice", upd.PatientAdvice)
	setString("medicine", upd.Medicine)
	setString("disease", upd.Disease)
	setInt("recovery_status", upd.RecoveryStatus)
	setString("follow_up", upd.FollowUp)
	setString("prescription", upd.Prescription)
	setString("medical_report", upd.MedicalReport)
	setInt("consultation_fee", upd.ConsultationFee)
	setString("payment_status", upd.PaymentStatus)

	if upd.PatientID != nil {
		fields["patient_id"] = *upd.PatientID
	}
	if upd.Symptoms != nil {
		encoded, err := json.Marshal(upd.Symptoms)
		if err != nil {
			return nil, fmt.Errorf("failed to encode symptoms list: %w", err)
		}
		fields["symptoms_list"] = string(encoded)
	}
	if upd.Date != nil {
		day := dateOnly(*upd.Date)
		fields["date"] = day
		fields["serial_date"] = day
	}

	if len(fields) == 0 {
		return nil, repositories.ErrNoUpdatableFields
	}
	return fields, nil
}

// dateOnly trims an ISO date-time down to its calendar date.
func dateOnly(value string) string {
	if idx := strings.IndexByte(value, 'T'); idx >= 0 {
		return value[:idx]
	}
	return value
}
