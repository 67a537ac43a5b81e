package services

import (
	"MediBook/models"
	"MediBook/repositories"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDoctorRepo struct {
	doctor *models.Doctor
	calls  int
}

func (f *fakeDoctorRepo) ResolveByRegNo(ctx context.Context, regNo string) (*models.Doctor, error) {
	f.calls++
	if f.doctor == nil || f.doctor.RegNo != regNo {
		return nil, repositories.ErrDoctorNotFound
	}
	return f.doctor, nil
}

func (f *fakeDoctorRepo) GetByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	return nil, repositories.ErrDoctorNotFound
}

func (f *fakeDoctorRepo) GetByID(ctx context.Context, id uint) (*models.Doctor, error) {
	return nil, repositories.ErrDoctorNotFound
}

func (f *fakeDoctorRepo) Create(ctx context.Context, doctor *models.Doctor) error { return nil }

func (f *fakeDoctorRepo) FindRegistrationConflict(ctx context.Context, email, regNo, phone string) (string, error) {
	return "", nil
}

func (f *fakeDoctorRepo) UpdateRefreshToken(ctx context.Context, id uint, token string) error {
	return nil
}

func (f *fakeDoctorRepo) GetProfile(ctx context.Context, regNo string) (*models.Doctor, error) {
	return f.doctor, nil
}

func (f *fakeDoctorRepo) UpdateProfile(ctx context.Context, id uint, doctor *models.Doctor, degrees []models.DoctorDegree) error {
	return nil
}

type fakeLocationRepo struct {
	location *models.ConsultationLocation
	slot     *models.TimeSlot
}

func (f *fakeLocationRepo) CreateWithSchedule(ctx context.Context, location *models.ConsultationLocation) error {
	return nil
}

func (f *fakeLocationRepo) UpdateWithSchedule(ctx context.Context, doctorID, locationID uint, location *models.ConsultationLocation) error {
	return nil
}

func (f *fakeLocationRepo) Delete(ctx context.Context, doctorID, locationID uint) error { return nil }

func (f *fakeLocationRepo) TogglePublish(ctx context.Context, doctorID, locationID uint, publish bool) error {
	return nil
}

func (f *fakeLocationRepo) List(ctx context.Context, doctorID uint, filter repositories.LocationFilter) ([]models.ConsultationLocation, error) {
	return nil, nil
}

func (f *fakeLocationRepo) GetLocation(ctx context.Context, doctorID, locationID uint) (*models.ConsultationLocation, error) {
	if f.location == nil || f.location.ID != locationID {
		return nil, repositories.ErrLocationNotFound
	}
	return f.location, nil
}

func (f *fakeLocationRepo) GetTimeSlot(ctx context.Context, locationID, slotID uint) (*models.TimeSlot, error) {
	if f.slot == nil || f.slot.ID != slotID {
		return nil, repositories.ErrTimeSlotNotFound
	}
	return f.slot, nil
}

// fakeConsultationRepo mimics the serial allocator: serials per
// (doctor, date, location, slot) group, capacity checked against the
// committed count, everything under one lock like the DB transaction.
type fakeConsultationRepo struct {
	mu            sync.Mutex
	existing      *models.Consultation
	booked        []*models.Consultation
	createErrs    []error
	createCalls   int
	conflictCalls int
}

func (f *fakeConsultationRepo) FindConflict(ctx context.Context, doctorID uint, phone, serialDate string, locationID, slotID uint) (*models.Consultation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conflictCalls++
	return f.existing, nil
}

func (f *fakeConsultationRepo) CreateBooking(ctx context.Context, consultation *models.Consultation, capacity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		return err
	}

	max := 0
	for _, b := range f.booked {
		if b.SerialDate == consultation.SerialDate &&
			b.ConsultLocationID == consultation.ConsultLocationID &&
			b.TimeSlotID == consultation.TimeSlotID &&
			b.SerialNo > max {
			max = b.SerialNo
		}
	}
	next := max + 1
	if next > capacity {
		return repositories.ErrSlotCapacityFull
	}
	consultation.SerialNo = next
	f.booked = append(f.booked, consultation)
	return nil
}

func (f *fakeConsultationRepo) UpdateFields(ctx context.Context, doctorID, id uint, fields map[string]interface{}) error {
	return nil
}

func (f *fakeConsultationRepo) Cancel(ctx context.Context, doctorID, id uint) error { return nil }

func (f *fakeConsultationRepo) GetByID(ctx context.Context, doctorID, id uint) (*models.Consultation, error) {
	return nil, repositories.ErrConsultationNotFound
}

func (f *fakeConsultationRepo) GetDetail(ctx context.Context, doctorID, id uint) (*models.AppointmentDetail, error) {
	return nil, repositories.ErrConsultationNotFound
}

func (f *fakeConsultationRepo) List(ctx context.Context, doctorID uint, filter repositories.AppointmentFilter) ([]models.AppointmentRow, error) {
	return nil, nil
}

func (f *fakeConsultationRepo) ListForPatient(ctx context.Context, doctorID, patientID, excludeID uint) ([]models.Consultation, error) {
	return nil, nil
}

func (f *fakeConsultationRepo) Notes(ctx context.Context, doctorID uint, filter repositories.NotesFilter) ([]models.Consultation, error) {
	return nil, nil
}

type fakeVerifier struct {
	ok  bool
	err error
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (bool, error) {
	return f.ok, f.err
}

type fakeMailer struct {
	err  error
	sent chan *models.BookingConfirmation
}

func newFakeMailer(err error) *fakeMailer {
	return &fakeMailer{err: err, sent: make(chan *models.BookingConfirmation, 8)}
}

func (f *fakeMailer) SendBookingConfirmation(confirmation *models.BookingConfirmation) error {
	f.sent <- confirmation
	return f.err
}

func validRequest() *models.BookingRequest {
	return &models.BookingRequest{
		Name:              "Rahim Uddin",
		Age:               34,
		Sex:               "Male",
		Phone:             "01711000000",
		Email:             "rahim@example.com",
		Date:              "2026-09-14T10:00:00Z",
		TimeSlotID:        5,
		Address:           "Dhaka",
		ConsultLocationID: 3,
		RecaptchaToken:    "token",
	}
}

func testFixtures() (*fakeDoctorRepo, *fakeLocationRepo, *fakeConsultationRepo) {
	doctors := &fakeDoctorRepo{doctor: &models.Doctor{ID: 7, Name: "Dr. Karim", RegNo: "A12345"}}
	locations := &fakeLocationRepo{
		location: &models.ConsultationLocation{ID: 3, DoctorID: 7, LocationName: "City Clinic"},
		slot:     &models.TimeSlot{ID: 5, StartTime: "10:00", EndTime: "12:00", Capacity: 3},
	}
	return doctors, locations, &fakeConsultationRepo{}
}

func bookingReason(t *testing.T, err error) string {
	t.Helper()
	var bookingErr *BookingError
	require.ErrorAs(t, err, &bookingErr)
	return bookingErr.Reason
}

func TestBookSucceedsAndReturnsConfirmation(t *testing.T) {
	doctors, locations, consultations := testFixtures()
	mailer := newFakeMailer(nil)
	svc := NewBookingService(doctors, locations, consultations, &fakeVerifier{ok: true}, mailer)

	confirmation, err := svc.Book(context.Background(), "A12345", validRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, confirmation.SerialNo)
	assert.Equal(t, "Dr. Karim", confirmation.Doctor.Name)
	assert.Equal(t, "City Clinic", confirmation.Location.Name)
	assert.Equal(t, "10:00 - 12:00", confirmation.SlotTime)
	assert.Equal(t, models.StatusBooked, confirmation.Status)

	select {
	case sent := <-mailer.sent:
		assert.Equal(t, confirmation.SerialNo, sent.SerialNo)
	case <-time.After(time.Second):
		t.Fatal("confirmation email was not sent")
	}
}

func TestBookVerificationGateShortCircuits(t *testing.T) {
	doctors, locations, consultations := testFixtures()
	svc := NewBookingService(doctors, locations, consultations, &fakeVerifier{ok: false}, newFakeMailer(nil))

	_, err := svc.Book(context.Background(), "A12345", validRequest())
	assert.Equal(t, ReasonVerificationFailed, bookingReason(t, err))

	// Nothing downstream runs on a failed gate
	assert.Zero(t, doctors.calls)
	assert.Zero(t, consultations.conflictCalls)
	assert.Zero(t, consultations.createCalls)
}

func TestBookVerifierErrorRejects(t *testing.T) {
	doctors, locations, consultations := testFixtures()
	svc := NewBookingService(doctors, locations, consultations, &fakeVerifier{ok: true, err: errors.New("siteverify down")}, newFakeMailer(nil))

	_, err := svc.Book(context.Background(), "A12345", validRequest())
	assert.Equal(t, ReasonVerificationFailed, bookingReason(t, err))
}

func TestBookUnknownDoctorRejected(t *testing.T) {
	doctors, locations, consultations := testFixtures()
	svc := NewBookingService(doctors, locations, consultations, &fakeVerifier{ok: true}, newFakeMailer(nil))

	_, err := svc.Book(context.Background(), "UNKNOWN", validRequest())
	assert.Equal(t, ReasonProviderNotFound, bookingReason(t, err))
	assert.Zero(t, consultations.createCalls)
}

func TestBookUnknownSlotRejected(t *testing.T) {
	doctors, locations, consultations := testFixtures()
	svc := NewBookingService(doctors, locations, consultations, &fakeVerifier{ok: true}, newFakeMailer(nil))

	req := validRequest()
	req.TimeSlotID = 99
	_, err := svc.Book(context.Background(), "A12345", req)
	assert.Equal(t, ReasonSlotNotFound, bookingReason(t, err))
}

func TestBookDuplicateRejectedWithDetail(t *testing.T) {
	doctors, locations, consultations := testFixtures()
	consultations.existing = &models.Consultation{
		SerialNo:   2,
		Date:       time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC),
		SerialDate: "2026-09-14",
	}
	svc := NewBookingService(doctors, locations, consultations, &fakeVerifier{ok: true}, newFakeMailer(nil))

	_, err := svc.Book(context.Background(), "A12345", validRequest())

	var bookingErr *BookingError
	require.ErrorAs(t, err, &bookingErr)
	assert.Equal(t, ReasonDuplicateBooking, bookingErr.Reason)
	require.NotNil(t, bookingErr.Existing)
	assert.Equal(t, 2, bookingErr.Existing.SerialNo)
	assert.Equal(t, "City Clinic", bookingErr.Existing.Location)
	assert.Zero(t, consultations.createCalls)
}

func TestBookSlotFullCarriesSlotInfo(t *testing.T) {
	doctors, locations, consultations := testFixtures()
	locations.slot.Capacity = 1
	svc := NewBookingService(doctors, locations, consultations, &fakeVerifier{ok: true}, newFakeMailer(nil))

	_, err := svc.Book(context.Background(), "A12345", validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Phone = "01722000000"
	_, err = svc.Book(context.Background(), "A12345", req)

	var bookingErr *BookingError
	require.ErrorAs(t, err, &bookingErr)
	assert.Equal(t, ReasonSlotFull, bookingErr.Reason)
	require.NotNil(t, bookingErr.SlotInfo)
	assert.Equal(t, 1, bookingErr.SlotInfo.Capacity)
	assert.Equal(t, "City Clinic", bookingErr.SlotInfo.Location)
}

func TestBookRetriesLostRacesUpToBound(t *testing.T) {
	doctors, locations, consultations := testFixtures()
	consultations.createErrs = []error{
		repositories.ErrSerialTaken,
		repositories.ErrSerialTaken,
	}
	svc := NewBookingService(doctors, locations, consultations, &fakeVerifier{ok: true}, newFakeMailer(nil))

	confirmation, err := svc.Book(context.Background(), "A12345", validRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, confirmation.SerialNo)
	assert.Equal(t, 3, consultations.createCalls)
}

func TestBookGivesUpAfterRetryBound(t *testing.T) {
	doctors, locations, consultations := testFixtures()
	consultations.createErrs = []error{
		repositories.ErrSerialTaken,
		repositories.ErrSerialTaken,
		repositories.ErrSerialTaken,
	}
	svc := NewBookingService(doctors, locations, consultations, &fakeVerifier{ok: true}, newFakeMailer(nil))

	_, err := svc.Book(context.Background(), "A12345", validRequest())
	assert.Equal(t, ReasonBookingConflict, bookingReason(t, err))
	assert.Equal(t, 3, consultations.createCalls)
}

func TestBookMailerFailureDoesNotAffectResult(t *testing.T) {
	doctors, locations, consultations := testFixtures()
	mailer := newFakeMailer(errors.New("smtp refused"))
	svc := NewBookingService(doctors, locations, consultations, &fakeVerifier{ok: true}, mailer)

	confirmation, err := svc.Book(context.Background(), "A12345", validRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, confirmation.SerialNo)

	select {
	case <-mailer.sent:
	case <-time.After(time.Second):
		t.Fatal("mailer was never invoked")
	}
}

func TestBookNoEmailSkipsMailer(t *testing.T) {
	doctors, locations, consultations := testFixtures()
	mailer := newFakeMailer(nil)
	svc := NewBookingService(doctors, locations, consultations, &fakeVerifier{ok: true}, mailer)

	req := validRequest()
	req.Email = ""
	_, err := svc.Book(context.Background(), "A12345", req)
	require.NoError(t, err)

	select {
	case <-mailer.sent:
		t.Fatal("mailer should not run without a requester email")
	case <-time.After(50 * time.Millisecond):
	}
}

// Capacity three, five concurrent requesters: exactly three bookings
// commit and their serials are exactly 1, 2, 3.
func TestBookConcurrentRequestersNeverExceedCapacity(t *testing.T) {
	doctors, locations, consultations := testFixtures()
	svc := NewBookingService(doctors, locations, consultations, &fakeVerifier{ok: true}, newFakeMailer(nil))

	phones := []string{"01711", "01722", "01733", "01744", "01755"}
	results := make(chan error, len(phones))

	var wg sync.WaitGroup
	for _, phone := range phones {
		wg.Add(1)
		go func(phone string) {
			defer wg.Done()
			req := validRequest()
			req.Phone = phone
			req.Email = ""
			_, err := svc.Book(context.Background(), "A12345", req)
			results <- err
		}(phone)
	}
	wg.Wait()
	close(results)

	succeeded, full := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var bookingErr *BookingError
		require.ErrorAs(t, err, &bookingErr)
		assert.Equal(t, ReasonSlotFull, bookingErr.Reason)
		full++
	}
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 2, full)

	serials := make([]int, 0, len(consultations.booked))
	for _, b := range consultations.booked {
		serials = append(serials, b.SerialNo)
	}
	sort.Ints(serials)
	assert.Equal(t, []int{1, 2, 3}, serials)
}
