package repositories

import (
	"MediBook/cache"
	"MediBook/database"
	"MediBook/models"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PatientCacheExpiry = 24 * time.Hour
)

// PatientFilter narrows the patient search.
type PatientFilter struct {
	Disease               string
	Sex                   string
	ConsultLocation       string
	TreatmentStatus       string
	TimeSlotID            uint
	RecentAppointmentDate string
	Search                string
}

// PatientRepository owns a doctor's patient records. Every query is
// scoped by doctor_id; a structurally valid but foreign patient id
// resolves to not-found.
type PatientRepository interface {
	Create(ctx context.Context, patient *models.Patient) error
	GetByID(ctx context.Context, doctorID, id uint) (*models.Patient, error)
	GetByPhone(ctx context.Context, doctorID uint, phone string) ([]models.Patient, error)
	UpdateFields(ctx context.Context, doctorID, id uint, fields map[string]interface{}) error
	TouchVisit(ctx context.Context, doctorID, patientID uint, visitDate, disease string) error
	LinkConsultation(ctx context.Context, doctorID, patientID, consultationID uint) error
	List(ctx context.Context, doctorID uint, filter PatientFilter) ([]models.PatientRow, error)
}

type patientRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewPatientRepository(db *gorm.DB, cache *cache.Cache) PatientRepository {
	return &patientRepository{db: db, cache: cache}
}

// Create inserts a patient under a short-lived distributed lock keyed by
// doctor and phone, so double-submits from the same form don't produce
// twin records. The lock is best-effort dedupe, not a correctness
// mechanism.
func (r *patientRepository) Create(ctx context.Context, patient *models.Patient) error {
	lockKey := fmt.Sprintf("patient_lock:%d_%s", patient.DoctorID, patient.Phone)
	lockValue := uuid.New().String()

	maxRetries := 3
	retryDelay := 2 * time.Second
	var locked bool
	var err error
	for i := 0; i < maxRetries; i++ {
		locked, err = database.NewLock(ctx, lockKey, lockValue, 10*time.Second)
		if err == nil && locked {
			break
		}
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock after retries: %w", err)
	}
	defer func() {
		if err := database.ReleaseLock(ctx, lockKey, lockValue); err != nil {
			log.Printf("Failed to release lock: %v", err)
		}
	}()

	if err := r.db.WithContext(ctx).Create(patient).Error; err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	r.invalidateListCache(ctx, patient.DoctorID)
	return nil
}

func (r *patientRepository) GetByID(ctx context.Context, doctorID, id uint) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).
		Where("id = ? AND doctor_id = ?", id, doctorID).
		First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByPhone(ctx context.Context, doctorID uint, phone string) ([]models.Patient, error) {
	var patients []models.Patient
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND phone = ?", doctorID, phone).
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get patients by phone: %w", err)
	}
	return patients, nil
}

// UpdateFields applies a pre-built field mask to one patient row.
func (r *patientRepository) UpdateFields(ctx context.Context, doctorID, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return ErrNoUpdatableFields
	}
	res := r.db.WithContext(ctx).Model(&models.Patient{}).
		Where("id = ? AND doctor_id = ?", id, doctorID).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update patient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPatientNotFound
	}
	r.invalidateListCache(ctx, doctorID)
	return nil
}

// TouchVisit propagates the most recent visit date (and optionally a
// disease tag) onto the patient row.
func (r *patientRepository) TouchVisit(ctx context.Context, doctorID, patientID uint, visitDate, disease string) error {
	fields := map[string]interface{}{
		"recent_appointment_date": visitDate,
	}
	if disease != "" {
		fields["disease"] = disease
	}
	return r.UpdateFields(ctx, doctorID, patientID, fields)
}

// LinkConsultation records the given consultation as the patient's most
// recent one, stamping today as the visit date.
func (r *patientRepository) LinkConsultation(ctx context.Context, doctorID, patientID, consultationID uint) error {
	return r.UpdateFields(ctx, doctorID, patientID, map[string]interface{}{
		"last_consultation_id":    consultationID,
		"recent_appointment_date": time.Now().Format(models.DateOnly),
	})
}

// List returns the doctor's patients with the most recent consultation,
// its location and slot window joined in, most recently seen first.
func (r *patientRepository) List(ctx context.Context, doctorID uint, filter PatientFilter) ([]models.PatientRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	unfiltered := filter == PatientFilter{}
	cacheKey := r.getListCacheKey(doctorID)
	if unfiltered {
		var cached []models.PatientRow
		if ok, err := r.cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
			return cached, nil
		} else if err != nil {
			log.Printf("Failed to get patients from cache: %v", err)
		}
	}

	query := r.db.WithContext(ctx).
		Table("patients AS p").
		Select(`p.id, p.doctor_id, p.last_consultation_id, p.name, p.age, p.sex, p.address,
			p.phone, p.email, p.height, p.weight, p.blood_group, p.dob,
			p.treatment_status, p.disease, p.registration_date, p.recent_appointment_date,
			c.consult_location_id, cl.location_name AS consult_location_name,
			c.time_slot_id, CONCAT(ts.start_time, ' - ', ts.end_time) AS slot_time,
			c.consult_type, c.appointment_status`).
		Joins("LEFT JOIN consultations AS c ON c.id = p.last_consultation_id").
		Joins("LEFT JOIN consultation_locations AS cl ON cl.id = c.consult_location_id").
		Joins("LEFT JOIN time_slots AS ts ON ts.id = c.time_slot_id").
		Where("p.doctor_id = ?", doctorID)

	if filter.Disease != "" {
		query = query.Where("p.disease = ?", filter.Disease)
	}
	if filter.Sex != "" {
		query = query.Where("p.sex = ?", filter.Sex)
	}
	if filter.ConsultLocation != "" {
		query = query.Where("cl.location_name = ?", filter.ConsultLocation)
	}
	if filter.TreatmentStatus != "" {
		query = query.Where("p.treatment_status = ?", filter.TreatmentStatus)
	}
	if filter.TimeSlotID != 0 {
		query = query.Where("ts.id = ?", filter.TimeSlotID)
	}
	if filter.RecentAppointmentDate != "" {
		query = query.Where("p.recent_appointment_date = ?", filter.RecentAppointmentDate)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("(p.name LIKE ? OR p.phone LIKE ? OR p.email LIKE ?)", term, term, term)
	}

	var rows []models.PatientRow
	if err := query.Order("p.recent_appointment_date DESC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	if unfiltered {
		if err := r.cache.SetJSON(ctx, cacheKey, rows, PatientCacheExpiry); err != nil {
			log.Printf("Failed to set patients in cache: %v", err)
		}
	}
	return rows, nil
}

func (r *patientRepository) invalidateListCache(ctx context.Context, doctorID uint) {
	if err := r.cache.Delete(ctx, r.getListCacheKey(doctorID)); err != nil {
		log.Printf("Failed to delete patients cache: %v", err)
	}
}

func (r *patientRepository) getListCacheKey(doctorID uint) string {
	return fmt.Sprintf("patients_cache:%d", doctorID)
}
