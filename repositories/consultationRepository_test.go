package repositories

import (
	"MediBook/cache"
	"MediBook/models"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func setupTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewCacheWithClient(client)
}

func bookingFixture() *models.Consultation {
	return &models.Consultation{
		DoctorID:          7,
		Name:              "Rahim Uddin",
		Age:               34,
		Sex:               "Male",
		Phone:             "01711000000",
		ConsultLocationID: 3,
		TimeSlotID:        5,
		Date:              time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC),
		SerialDate:        "2026-09-14",
		AppointmentStatus: models.StatusBooked,
	}
}

const maxSerialQuery = `SELECT COALESCE\(MAX\(serial_no\), 0\) FROM consultations WHERE doctor_id = \$1 AND serial_date = \$2 AND consult_location_id = \$3 AND time_slot_id = \$4`

func TestCreateBookingAllocatesNextSerial(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewConsultationRepository(db, setupTestCache(t))

	consultation := bookingFixture()

	mock.ExpectBegin()
	mock.ExpectQuery(maxSerialQuery).
		WithArgs(consultation.DoctorID, consultation.SerialDate, consultation.ConsultLocationID, consultation.TimeSlotID).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(4))
	mock.ExpectQuery(`INSERT INTO "consultations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	err := repo.CreateBooking(context.Background(), consultation, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, consultation.SerialNo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRejectsWhenAtCapacity(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewConsultationRepository(db, setupTestCache(t))

	consultation := bookingFixture()

	mock.ExpectBegin()
	mock.ExpectQuery(maxSerialQuery).
		WithArgs(consultation.DoctorID, consultation.SerialDate, consultation.ConsultLocationID, consultation.TimeSlotID).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(10))
	mock.ExpectRollback()

	err := repo.CreateBooking(context.Background(), consultation, 10)
	assert.ErrorIs(t, err, ErrSlotCapacityFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingClosedSlotNeverAccepts(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewConsultationRepository(db, setupTestCache(t))

	consultation := bookingFixture()

	mock.ExpectBegin()
	mock.ExpectQuery(maxSerialQuery).
		WithArgs(consultation.DoctorID, consultation.SerialDate, consultation.ConsultLocationID, consultation.TimeSlotID).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
	mock.ExpectRollback()

	err := repo.CreateBooking(context.Background(), consultation, 0)
	assert.ErrorIs(t, err, ErrSlotCapacityFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingLostRaceReturnsErrSerialTaken(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewConsultationRepository(db, setupTestCache(t))

	consultation := bookingFixture()

	mock.ExpectBegin()
	mock.ExpectQuery(maxSerialQuery).
		WithArgs(consultation.DoctorID, consultation.SerialDate, consultation.ConsultLocationID, consultation.TimeSlotID).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(2))
	mock.ExpectQuery(`INSERT INTO "consultations"`).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := repo.CreateBooking(context.Background(), consultation, 10)
	assert.ErrorIs(t, err, ErrSerialTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingDerivesSerialDateFromDate(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewConsultationRepository(db, setupTestCache(t))

	consultation := bookingFixture()
	consultation.SerialDate = ""

	mock.ExpectBegin()
	mock.ExpectQuery(maxSerialQuery).
		WithArgs(consultation.DoctorID, "2026-09-14", consultation.ConsultLocationID, consultation.TimeSlotID).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "consultations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.CreateBooking(context.Background(), consultation, 3)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-14", consultation.SerialDate)
	assert.Equal(t, 1, consultation.SerialNo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindConflictIgnoresCancelledBookings(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewConsultationRepository(db, setupTestCache(t))

	mock.ExpectQuery(`SELECT \* FROM "consultations" WHERE doctor_id = \$1 AND phone = \$2 AND serial_date = \$3 AND consult_location_id = \$4 AND time_slot_id = \$5 AND appointment_status <> \$6`).
		WithArgs(uint(7), "01711000000", "2026-09-14", uint(3), uint(5), models.StatusCancelled, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	existing, err := repo.FindConflict(context.Background(), 7, "01711000000", "2026-09-14", 3, 5)
	require.NoError(t, err)
	assert.Nil(t, existing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindConflictReturnsExistingBooking(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewConsultationRepository(db, setupTestCache(t))

	rows := sqlmock.NewRows([]string{"id", "doctor_id", "serial_no", "phone", "serial_date"}).
		AddRow(11, 7, 2, "01711000000", "2026-09-14")
	mock.ExpectQuery(`SELECT \* FROM "consultations"`).
		WillReturnRows(rows)

	existing, err := repo.FindConflict(context.Background(), 7, "01711000000", "2026-09-14", 3, 5)
	require.NoError(t, err)
	require.NotNil(t, existing)
	assert.Equal(t, 2, existing.SerialNo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFieldsRequiresAtLeastOneField(t *testing.T) {
	db, _ := setupTestDB(t)
	repo := NewConsultationRepository(db, setupTestCache(t))

	err := repo.UpdateFields(context.Background(), 7, 11, map[string]interface{}{})
	assert.ErrorIs(t, err, ErrNoUpdatableFields)
}

func TestUpdateFieldsScopedToOwningDoctor(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewConsultationRepository(db, setupTestCache(t))

	mock.ExpectExec(`UPDATE "consultations" SET "disease"=\$1 WHERE id = \$2 AND doctor_id = \$3`).
		WithArgs("Migraine", uint(11), uint(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateFields(context.Background(), 7, 11, map[string]interface{}{"disease": "Migraine"})
	assert.ErrorIs(t, err, ErrConsultationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelMarksStatusCancelled(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewConsultationRepository(db, setupTestCache(t))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "consultations" SET "appointment_status"=$1 WHERE id = $2 AND doctor_id = $3`)).
		WithArgs(models.StatusCancelled, uint(11), uint(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Cancel(context.Background(), 7, 11)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
