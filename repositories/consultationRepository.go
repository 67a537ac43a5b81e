package repositories

import (
	"MediBook/cache"
	"MediBook/models"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	AppointmentCacheExpiry = 1 * time.Hour
)

// AppointmentFilter narrows the doctor's appointment listing.
type AppointmentFilter struct {
	ConsultType       string
	AppointmentStatus string
	Date              string // calendar date, YYYY-MM-DD
	LocationID        uint
	TimeSlotID        uint
	Search            string
}

// NotesFilter narrows the consultation-notes query.
type NotesFilter struct {
	LocationID  uint
	ConsultType string
	Date        string
	Disease     string
}

// ConsultationRepository owns the booking rows. CreateBooking is the
// serial allocator and capacity guard: the MAX(serial_no) read and the
// insert run in one transaction, and the composite unique index turns a
// lost race into ErrSerialTaken for the caller to retry on.
type ConsultationRepository interface {
	FindConflict(ctx context.Context, doctorID uint, phone, serialDate string, locationID, slotID uint) (*models.Consultation, error)
	CreateBooking(ctx context.Context, consultation *models.Consultation, capacity int) error
	UpdateFields(ctx context.Context, doctorID, id uint, fields map[string]interface{}) error
	Cancel(ctx context.Context, doctorID, id uint) error
	GetByID(ctx context.Context, doctorID, id uint) (*models.Consultation, error)
	GetDetail(ctx context.Context, doctorID, id uint) (*models.AppointmentDetail, error)
	List(ctx context.Context, doctorID uint, filter AppointmentFilter) ([]models.AppointmentRow, error)
	ListForPatient(ctx context.Context, doctorID, patientID, excludeID uint) ([]models.Consultation, error)
	Notes(ctx context.Context, doctorID uint, filter NotesFilter) ([]models.Consultation, error)
}

type consultationRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewConsultationRepository(db *gorm.DB, cache *cache.Cache) ConsultationRepository {
	return &consultationRepository{db: db, cache: cache}
}

// FindConflict looks for a non-cancelled booking with the same requester
// phone, calendar date, location and slot. Phone is the deduplication
// key because requesters are not authenticated; this is a best-effort
// guard, not a hard identity check.
func (r *consultationRepository) FindConflict(ctx context.Context, doctorID uint, phone, serialDate string, locationID, slotID uint) (*models.Consultation, error) {
	var existing models.Consultation
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND phone = ? AND serial_date = ? AND consult_location_id = ? AND time_slot_id = ? AND appointment_status <> ?",
			doctorID, phone, serialDate, locationID, slotID, models.StatusCancelled).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check duplicate booking: %w", err)
	}
	return &existing, nil
}

// CreateBooking allocates the next serial for the consultation's
// (doctor, date, location, slot) group and inserts the row, all inside
// one transaction. Serials are derived from committed rows only, so a
// failed attempt never consumes one. Cancelled rows keep their serial:
// MAX runs over every status.
//
// Returns ErrSlotCapacityFull when the group is at capacity (a capacity
// of zero or less fails the first attempt), and ErrSerialTaken when a
// concurrent insert won the unique index; callers re-derive and retry.
func (r *consultationRepository) CreateBooking(ctx context.Context, consultation *models.Consultation, capacity int) error {
	if consultation.SerialDate == "" {
		consultation.SerialDate = consultation.Date.Format(models.DateOnly)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxSerial int
		err := tx.Raw(
			"SELECT COALESCE(MAX(serial_no), 0) FROM consultations WHERE doctor_id = ? AND serial_date = ? AND consult_location_id = ? AND time_slot_id = ?",
			consultation.DoctorID, consultation.SerialDate, consultation.ConsultLocationID, consultation.TimeSlotID,
		).Scan(&maxSerial).Error
		if err != nil {
			return fmt.Errorf("failed to compute next serial: %w", err)
		}

		next := maxSerial + 1
		if next > capacity {
			return ErrSlotCapacityFull
		}
		consultation.SerialNo = next

		if err := tx.Create(consultation).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrSerialTaken
			}
			return fmt.Errorf("failed to insert consultation: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.invalidateListCache(ctx, consultation.DoctorID)
	return nil
}

// UpdateFields applies a pre-built field mask to one consultation.
// Absent fields are untouched; the mask is never assembled into SQL
// text, it goes through a single parameterized update.
func (r *consultationRepository) UpdateFields(ctx context.Context, doctorID, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return ErrNoUpdatableFields
	}
	res := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Where("id = ? AND doctor_id = ?", id, doctorID).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update consultation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConsultationNotFound
	}
	r.invalidateListCache(ctx, doctorID)
	return nil
}

// Cancel marks a booking cancelled. The consumed serial number is not
// given back; history is preserved.
func (r *consultationRepository) Cancel(ctx context.Context, doctorID, id uint) error {
	return r.UpdateFields(ctx, doctorID, id, map[string]interface{}{
		"appointment_status": models.StatusCancelled,
	})
}

func (r *consultationRepository) GetByID(ctx context.Context, doctorID, id uint) (*models.Consultation, error) {
	var consultation models.Consultation
	err := r.db.WithContext(ctx).
		Where("id = ? AND doctor_id = ?", id, doctorID).
		First(&consultation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConsultationNotFound
		}
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}
	return &consultation, nil
}

// GetDetail expands one appointment with its location, slot and linked
// patient. All lookups stay scoped to the owning doctor.
func (r *consultationRepository) GetDetail(ctx context.Context, doctorID, id uint) (*models.AppointmentDetail, error) {
	consultation, err := r.GetByID(ctx, doctorID, id)
	if err != nil {
		return nil, err
	}

	detail := &models.AppointmentDetail{
		ID:           consultation.ID,
		SerialNo:     consultation.SerialNo,
		Consultation: consultation,
	}

	var location models.ConsultationLocation
	err = r.db.WithContext(ctx).
		Where("id = ? AND doctor_id = ?", consultation.ConsultLocationID, doctorID).
		First(&location).Error
	if err == nil {
		detail.Location = &location
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get location detail: %w", err)
	}

	var slot models.TimeSlot
	err = r.db.WithContext(ctx).First(&slot, "id = ?", consultation.TimeSlotID).Error
	if err == nil {
		detail.TimeSlot = &slot
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get slot detail: %w", err)
	}

	if consultation.PatientID != nil {
		var patient models.Patient
		err = r.db.WithContext(ctx).
			Where("id = ? AND doctor_id = ?", *consultation.PatientID, doctorID).
			First(&patient).Error
		if err == nil {
			detail.Patient = &patient
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to get patient detail: %w", err)
		}
	}

	return detail, nil
}

// List returns the doctor's appointments with location name and slot
// window joined in, newest first. The unfiltered listing is cached.
func (r *consultationRepository) List(ctx context.Context, doctorID uint, filter AppointmentFilter) ([]models.AppointmentRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	unfiltered := filter == AppointmentFilter{}
	cacheKey := r.getListCacheKey(doctorID)
	if unfiltered {
		var cached []models.AppointmentRow
		if ok, err := r.cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
			return cached, nil
		} else if err != nil {
			log.Printf("Failed to get appointments from cache: %v", err)
		}
	}

	query := r.db.WithContext(ctx).
		Table("consultations AS c").
		Select(`c.id, c.doctor_id, c.serial_no, c.name, c.age, c.sex, c.email, c.phone, c.address,
			c.consult_location_id, cl.location_name AS consult_location_name,
			c.time_slot_id, CONCAT(ts.start_time, ' - ', ts.end_time) AS slot_time,
			c.patient_id, c.consult_type, c.patient_condition, c.consultation_fee,
			c.payment_status, c.appointment_status, c.date`).
		Joins("LEFT JOIN consultation_locations AS cl ON c.consult_location_id = cl.id").
		Joins("LEFT JOIN time_slots AS ts ON c.time_slot_id = ts.id").
		Where("c.doctor_id = ?", doctorID)

	if filter.ConsultType != "" {
		query = query.Where("c.consult_type = ?", filter.ConsultType)
	}
	if filter.AppointmentStatus != "" {
		query = query.Where("c.appointment_status = ?", filter.AppointmentStatus)
	}
	if filter.Date != "" {
		query = query.Where("c.serial_date = ?", filter.Date)
	}
	if filter.LocationID != 0 {
		query = query.Where("c.consult_location_id = ?", filter.LocationID)
	}
	if filter.TimeSlotID != 0 {
		query = query.Where("c.time_slot_id = ?", filter.TimeSlotID)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("(c.name LIKE ? OR c.phone LIKE ? OR c.email LIKE ? OR c.address LIKE ?)",
			term, term, term, term)
	}

	var rows []models.AppointmentRow
	if err := query.Order("c.date DESC, c.id DESC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	if unfiltered {
		if err := r.cache.SetJSON(ctx, cacheKey, rows, AppointmentCacheExpiry); err != nil {
			log.Printf("Failed to set appointments in cache: %v", err)
		}
	}
	return rows, nil
}

// ListForPatient returns a patient's consultation history, excluding
// the one currently being viewed.
func (r *consultationRepository) ListForPatient(ctx context.Context, doctorID, patientID, excludeID uint) ([]models.Consultation, error) {
	var consultations []models.Consultation
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND patient_id = ? AND id <> ?", doctorID, patientID, excludeID).
		Order("date DESC").
		Find(&consultations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list consultations for patient: %w", err)
	}
	return consultations, nil
}

// Notes returns the clinical-notes slice of matching consultations.
func (r *consultationRepository) Notes(ctx context.Context, doctorID uint, filter NotesFilter) ([]models.Consultation, error) {
	query := r.db.WithContext(ctx).
		Select("id, consult_location_id, consult_type, date, disease, patient_advice").
		Where("doctor_id = ?", doctorID)

	if filter.LocationID != 0 {
		query = query.Where("consult_location_id = ?", filter.LocationID)
	}
	if filter.ConsultType != "" {
		query = query.Where("consult_type = ?", filter.ConsultType)
	}
	if filter.Date != "" {
		query = query.Where("serial_date = ?", filter.Date)
	}
	if filter.Disease != "" {
		query = query.Where("disease = ?", filter.Disease)
	}

	var notes []models.Consultation
	if err := query.Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("failed to get consultation notes: %w", err)
	}
	return notes, nil
}

func (r *consultationRepository) invalidateListCache(ctx context.Context, doctorID uint) {
	if err := r.cache.Delete(ctx, r.getListCacheKey(doctorID)); err != nil {
		log.Printf("Failed to delete appointments cache: %v", err)
	}
}

func (r *consultationRepository) getListCacheKey(doctorID uint) string {
	return fmt.Sprintf("appointments_cache:%d", doctorID)
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
