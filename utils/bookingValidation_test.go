package utils

import (
	"MediBook/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validBooking() models.BookingRequest {
	return models.BookingRequest{
		Name:              "Rahim Uddin",
		Age:               34,
		Sex:               "Male",
		Phone:             "01711000000",
		Email:             "rahim@example.com",
		Date:              "2026-09-14T10:00:00Z",
		TimeSlotID:        5,
		ConsultLocationID: 3,
		RecaptchaToken:    "token",
	}
}

func TestValidateBookingRequestAcceptsValid(t *testing.T) {
	assert.NoError(t, ValidateBookingRequest(validBooking()))
}

func TestValidateBookingRequestOptionalEmail(t *testing.T) {
	req := validBooking()
	req.Email = ""
	assert.NoError(t, ValidateBookingRequest(req))
}

func TestValidateBookingRequestRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.BookingRequest)
	}{
		{"missing name", func(r *models.BookingRequest) { r.Name = "" }},
		{"zero age", func(r *models.BookingRequest) { r.Age = 0 }},
		{"bad phone", func(r *models.BookingRequest) { r.Phone = "not-a-phone" }},
		{"bad email", func(r *models.BookingRequest) { r.Email = "not-an-email" }},
		{"bad date", func(r *models.BookingRequest) { r.Date = "14/09/2026" }},
		{"date only", func(r *models.BookingRequest) { r.Date = "2026-09-14" }},
		{"missing slot", func(r *models.BookingRequest) { r.TimeSlotID = 0 }},
		{"missing location", func(r *models.BookingRequest) { r.ConsultLocationID = 0 }},
		{"missing recaptcha", func(r *models.BookingRequest) { r.RecaptchaToken = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validBooking()
			tc.mutate(&req)
			assert.Error(t, ValidateBookingRequest(req))
		})
	}
}

func TestValidateRegistration(t *testing.T) {
	doctor := models.Doctor{
		Name:     "Dr. Karim",
		Email:    "karim@example.com",
		RegNo:    "A12345",
		Phone:    "01711000000",
		Password: "Str0ng@Pass",
	}
	assert.NoError(t, ValidateRegistration(doctor))

	doctor.Password = "short"
	assert.Error(t, ValidateRegistration(doctor))
}
