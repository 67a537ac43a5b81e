package services

import (
	"MediBook/models"
	"MediBook/repositories"
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// Machine-readable rejection reasons surfaced to the booking UI. These
// are first-class results, not internal failures: the frontend renders
// a different screen for "slot_full" than for a system error.
const (
	ReasonInvalidRequest     = "invalid_request"
	ReasonVerificationFailed = "verification_failed"
	ReasonProviderNotFound   = "provider_not_found"
	ReasonLocationNotFound   = "location_not_found"
	ReasonSlotNotFound       = "slot_not_found"
	ReasonDuplicateBooking   = "duplicate_appointment"
	ReasonSlotFull           = "slot_full"
	ReasonBookingConflict    = "booking_conflict"
	ReasonInternalError      = "internal_error"
)

// serialRetryAttempts bounds how often a lost serial-allocation race is
// retried before the attempt is surfaced as a transient conflict.
const serialRetryAttempts = 3

// BookingError is a structured booking rejection.
type BookingError struct {
	Reason   string                      `json:"reason"`
	Title    string                      `json:"title"`
	Message  string                      `json:"message"`
	Existing *models.ExistingBookingInfo `json:"existingAppointment,omitempty"`
	SlotInfo *models.SlotFullInfo        `json:"slotInfo,omitempty"`
}

func (e *BookingError) Error() string {
	return e.Message
}

// HumanVerifier is the external human-verification gate consumed before
// any booking state is touched.
type HumanVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// ConfirmationMailer delivers the post-commit confirmation. Fire and
// forget: its failure never affects a booking already committed.
type ConfirmationMailer interface {
	SendBookingConfirmation(confirmation *models.BookingConfirmation) error
}

// BookingService sequences a booking end to end: verification gate,
// tenant resolution, slot configuration lookup, duplicate detection,
// serial allocation under the capacity ceiling, insert, then the
// best-effort confirmation email. Any failure before commit leaves zero
// rows behind; serials come from committed rows only, so nothing is
// consumed by a failed attempt.
type BookingService struct {
	doctors       repositories.DoctorRepository
	locations     repositories.LocationRepository
	consultations repositories.ConsultationRepository
	verifier      HumanVerifier
	mailer        ConfirmationMailer
}

func NewBookingService(
	doctors repositories.DoctorRepository,
	locations repositories.LocationRepository,
	consultations repositories.ConsultationRepository,
	verifier HumanVerifier,
	mailer ConfirmationMailer,
) *BookingService {
	return &BookingService{
		doctors:       doctors,
		locations:     locations,
		consultations: consultations,
		verifier:      verifier,
		mailer:        mailer,
	}
}

// Book books a consultation slot for the requester against the doctor
// identified by regNo. On rejection the returned error is a
// *BookingError carrying the reason code and user-facing detail.
func (s *BookingService) Book(ctx context.Context, regNo string, req *models.BookingRequest) (*models.BookingConfirmation, error) {
	// Step 1: human-verification gate. No state is touched on failure.
	isHuman, err := s.verifier.Verify(ctx, req.RecaptchaToken)
	if err != nil || !isHuman {
		if err != nil {
			log.Printf("Verification check error: %v", err)
		}
		return nil, &BookingError{
			Reason:  ReasonVerificationFailed,
			Title:   "Verification Failed",
			Message: "reCAPTCHA verification failed. Please try again.",
		}
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return nil, &BookingError{
			Reason:  ReasonInvalidRequest,
			Title:   "Invalid Request",
			Message: "The appointment date is not a valid ISO-8601 date-time.",
		}
	}

	// Step 2: resolve the tenant. Everything after this uses the
	// resolved doctor id, never the raw header value.
	doctor, err := s.doctors.ResolveByRegNo(ctx, regNo)
	if err != nil {
		if errors.Is(err, repositories.ErrDoctorNotFound) {
			return nil, &BookingError{
				Reason:  ReasonProviderNotFound,
				Title:   "Doctor Not Found",
				Message: "No doctor is registered under this identifier.",
			}
		}
		return nil, s.internalError(err)
	}

	// Step 3: slot configuration, read fresh on every attempt so
	// capacity edits take effect immediately.
	location, err := s.locations.GetLocation(ctx, doctor.ID, req.ConsultLocationID)
	if err != nil {
		if errors.Is(err, repositories.ErrLocationNotFound) {
			return nil, &BookingError{
				Reason:  ReasonLocationNotFound,
				Title:   "Location Not Found",
				Message: "The requested consultation location does not exist.",
			}
		}
		return nil, s.internalError(err)
	}

	slot, err := s.locations.GetTimeSlot(ctx, req.ConsultLocationID, req.TimeSlotID)
	if err != nil {
		if errors.Is(err, repositories.ErrTimeSlotNotFound) {
			return nil, &BookingError{
				Reason:  ReasonSlotNotFound,
				Title:   "Time Slot Not Found",
				Message: "The requested time slot does not exist.",
			}
		}
		return nil, s.internalError(err)
	}

	slotTime := fmt.Sprintf("%s - %s", slot.StartTime, slot.EndTime)
	serialDate := date.Format(models.DateOnly)

	// Step 4: duplicate detection. Abort before any mutation.
	existing, err := s.consultations.FindConflict(ctx, doctor.ID, req.Phone, serialDate, req.ConsultLocationID, req.TimeSlotID)
	if err != nil {
		return nil, s.internalError(err)
	}
	if existing != nil {
		return nil, &BookingError{
			Reason: ReasonDuplicateBooking,
			Title:  "Appointment Already Exists",
			Message: fmt.Sprintf("You already have an appointment booked for this slot on %s with Dr. %s.",
				existing.Date.Format("02 Jan 2006"), doctor.Name),
			Existing: &models.ExistingBookingInfo{
				SerialNo: existing.SerialNo,
				Date:     existing.Date,
				Location: location.LocationName,
				SlotTime: slotTime,
			},
		}
	}

	// Steps 5-7: serial allocation, capacity check and insert run as
	// one transaction inside the repository. A lost race on the unique
	// index re-derives the serial and retries up to the bound.
	var booked *models.Consultation
	for attempt := 0; attempt < serialRetryAttempts; attempt++ {
		consultation := &models.Consultation{
			DoctorID:          doctor.ID,
			Name:              req.Name,
			Age:               req.Age,
			Sex:               req.Sex,
			Phone:             req.Phone,
			Email:             req.Email,
			Address:           req.Address,
			ConsultLocationID: req.ConsultLocationID,
			TimeSlotID:        req.TimeSlotID,
			Date:              date,
			SerialDate:        serialDate,
			AppointmentStatus: models.StatusBooked,
		}

		err = s.consultations.CreateBooking(ctx, consultation, slot.Capacity)
		if err == nil {
			booked = consultation
			break
		}
		if errors.Is(err, repositories.ErrSlotCapacityFull) {
			return nil, &BookingError{
				Reason: ReasonSlotFull,
				Title:  "All Slots Are Booked",
				Message: fmt.Sprintf("Sorry, all %d appointments for %s (%s) are already booked.",
					slot.Capacity, date.Format("02 Jan 2006"), slotTime),
				SlotInfo: &models.SlotFullInfo{
					Date:      date,
					StartTime: slot.StartTime,
					EndTime:   slot.EndTime,
					Capacity:  slot.Capacity,
					Location:  location.LocationName,
				},
			}
		}
		if errors.Is(err, repositories.ErrSerialTaken) {
			continue
		}
		return nil, s.internalError(err)
	}
	if booked == nil {
		return nil, &BookingError{
			Reason:  ReasonBookingConflict,
			Title:   "Booking Conflict",
			Message: "The slot is being booked by others right now. Please try again.",
		}
	}

	confirmation := buildConfirmation(booked, doctor, location, slot, slotTime)

	// Step 8: post-commit confirmation email. Side channel only; the
	// booking result above is already final.
	if s.mailer != nil && req.Email != "" {
		go func(c models.BookingConfirmation) {
			if err := s.mailer.SendBookingConfirmation(&c); err != nil {
				log.Printf("Failed to send booking confirmation email: %v", err)
			}
		}(*confirmation)
	}

	return confirmation, nil
}

func (s *BookingService) internalError(err error) *BookingError {
	log.Printf("Error during adding consultation: %v", err)
	return &BookingError{
		Reason:  ReasonInternalError,
		Title:   "Booking Failed",
		Message: "An unexpected error occurred while booking your appointment. Please try again later.",
	}
}

func buildConfirmation(c *models.Consultation, doctor *models.Doctor, location *models.ConsultationLocation, slot *models.TimeSlot, slotTime string) *models.BookingConfirmation {
	confirmation := &models.BookingConfirmation{
		SerialNo: c.SerialNo,
		Date:     c.Date,
		Status:   c.AppointmentStatus,
		SlotTime: slotTime,
	}
	confirmation.Patient.Name = c.Name
	confirmation.Patient.Age = c.Age
	confirmation.Patient.Sex = c.Sex
	confirmation.Patient.Phone = c.Phone
	confirmation.Patient.Email = c.Email
	confirmation.Patient.Address = c.Address
	confirmation.Doctor.Name = doctor.Name
	confirmation.Doctor.RegNo = doctor.RegNo
	confirmation.Location.ID = location.ID
	confirmation.Location.Name = location.LocationName
	confirmation.Slot.ID = slot.ID
	confirmation.Slot.StartTime = slot.StartTime
	confirmation.Slot.EndTime = slot.EndTime
	confirmation.Slot.Capacity = slot.Capacity
	return confirmation
}
