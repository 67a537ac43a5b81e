package utils

import (
	"MediBook/models"
	"log"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// ValidateBookingRequest validates the public booking payload using
// ozzo-validation. Malformed requests must never reach storage.
func ValidateBookingRequest(req models.BookingRequest) error {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Age, validation.Required, validation.Min(1), validation.Max(150)),
		validation.Field(&req.Sex, validation.Required, validation.In("Male", "Female", "Other")),
		validation.Field(&req.Phone, validation.Required, validation.Match(phoneRegex)),
		validation.Field(&req.Email, is.Email),
		validation.Field(&req.Date, validation.Required, validation.By(validateISODate)),
		validation.Field(&req.TimeSlotID, validation.Required),
		validation.Field(&req.ConsultLocationID, validation.Required),
		validation.Field(&req.RecaptchaToken, validation.Required),
	)
	if err != nil {
		log.Printf("Booking validation error: %v\n", err)
	}
	return err
}

// ValidateRegistration validates a new doctor registration.
func ValidateRegistration(doctor models.Doctor) error {
	err := validation.ValidateStruct(&doctor,
		validation.Field(&doctor.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&doctor.Email, validation.Required, is.Email),
		validation.Field(&doctor.RegNo, validation.Required, validation.Length(3, 50)),
		validation.Field(&doctor.Phone, validation.Required, validation.Match(phoneRegex)),
		validation.Field(&doctor.Password, validation.Required, validation.Length(8, 72)),
	)
	if err != nil {
		log.Printf("Registration validation error: %v\n", err)
	}
	return err
}

// validateISODate accepts an RFC 3339 date-time string.
func validateISODate(value interface{}) error {
	s, _ := value.(string)
	_, err := time.Parse(time.RFC3339, s)
	return err
}
