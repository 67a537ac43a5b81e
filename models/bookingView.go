package models

import "time"

// DateOnly is the calendar-date layout used for serial scoping and the
// date columns inherited from the source schema.
const DateOnly = "2006-01-02"

// BookingRequest is the public payload for booking a consultation slot.
// The target doctor comes from the request path/header, not the body.
type BookingRequest struct {
	Name              string `json:"name"`
	Age               int    `json:"age"`
	Sex               string `json:"sex"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	Date              string `json:"date"` // ISO-8601 date-time
	TimeSlotID        uint   `json:"timeSlotId"`
	Address           string `json:"address"`
	ConsultLocationID uint   `json:"consultLocationId"`
	RecaptchaToken    string `json:"recaptchaToken"`
}

// BookingConfirmation is the denormalized success view returned to the
// requester so no follow-up query is needed.
type BookingConfirmation struct {
	Patient struct {
		Name    string `json:"name"`
		Age     int    `json:"age"`
		Sex     string `json:"sex"`
		Phone   string `json:"phone"`
		Email   string `json:"email"`
		Address string `json:"address"`
	} `json:"patient"`
	Doctor struct {
		Name  string `json:"name"`
		RegNo string `json:"regNo"`
	} `json:"doctor"`
	Location struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	} `json:"location"`
	Slot struct {
		ID        uint   `json:"id"`
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
		Capacity  int    `json:"capacity"`
	} `json:"slot"`
	SerialNo int       `json:"serialNo"`
	Date     time.Time `json:"date"`
	Status   string    `json:"status"`
	SlotTime string    `json:"slotTime"`
}

// ExistingBookingInfo describes the booking that caused a duplicate
// rejection.
type ExistingBookingInfo struct {
	SerialNo int       `json:"serialNo"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
	SlotTime string    `json:"slotTime"`
}

// SlotFullInfo describes the exhausted slot on a capacity rejection.
type SlotFullInfo struct {
	Date      time.Time `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Capacity  int       `json:"capacity"`
	Location  string    `json:"location"`
}

// ConsultationUpdate carries the sparse fieldset for a partial update.
// Only non-nil fields are written; absent fields are left untouched.
type ConsultationUpdate struct {
	Name              *string  `json:"name"`
	Age               *int     `json:"age"`
	Sex               *string  `json:"sex"`
	Phone             *string  `json:"phone"`
	Email             *string  `json:"email"`
	Address           *string  `json:"address"`
	PatientID         *uint    `json:"patientId"`
	PatientCondition  *string  `json:"patientCondition"`
	AppointmentStatus *string  `json:"appointmentStatus"`
	AudioURL          *string  `json:"audioURL"`
	MedicalTests      *string  `json:"medicalTests"`
	MedicalReports    *string  `json:"medicalReports"`
	ConsultType       *string  `json:"consultType"`
	MedicalFiles      *string  `json:"medicalFiles"`
	ReportComments    *string  `json:"reportComments"`
	PatientAdvice     *string  `json:"patientAdvice"`
	Medicine          *string  `json:"medicine"`
	Disease           *string  `json:"disease"`
	RecoveryStatus    *int     `json:"recoveryStatus"`
	FollowUp          *string  `json:"followUp"`
	Prescription      *string  `json:"prescription"`
	MedicalReport     *string  `json:"medical_report"`
	Symptoms          []string `json:"symptoms"`
	ConsultationFee   *int     `json:"consultationFee"`
	PaymentStatus     *string  `json:"paymentStatus"`
	Date              *string  `json:"date"`
}

// AppointmentRow is one line of the doctor's filtered appointment list,
// with location name and slot window joined in.
type AppointmentRow struct {
	ID                  uint      `json:"id"`
	DoctorID            uint      `json:"doctorId"`
	SerialNo            int       `json:"serialNo"`
	Name                string    `json:"name"`
	Age                 int       `json:"age"`
	Sex                 string    `json:"sex"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
	Address             string    `json:"address"`
	ConsultLocationID   uint      `json:"consultLocationId"`
	ConsultLocationName string    `json:"consultLocationName"`
	TimeSlotID          uint      `json:"timeSlotId"`
	SlotTime            string    `json:"slotTime"`
	PatientID           *uint     `json:"patientId"`
	ConsultType         string    `json:"consultType"`
	PatientCondition    string    `json:"patientCondition"`
	ConsultationFee     int       `json:"consultationFee"`
	PaymentStatus       string    `json:"paymentStatus"`
	AppointmentStatus   string    `json:"appointmentStatus"`
	Date                time.Time `json:"date"`
}

// AppointmentDetail is the single-appointment view with location, slot
// and linked patient expanded.
type AppointmentDetail struct {
	ID           uint                  `json:"id"`
	SerialNo     int                   `json:"serialNo"`
	Consultation *Consultation         `json:"consultation"`
	Location     *ConsultationLocation `json:"location"`
	TimeSlot     *TimeSlot             `json:"timeSlot"`
	Patient      *Patient              `json:"patient"`
}

// PatientRow is one line of the doctor's filtered patient list, with
// the most recent consultation, its location and slot window joined in.
type PatientRow struct {
	ID                    uint     `json:"id"`
	DoctorID              uint     `json:"doctorId"`
	LastConsultationID    *uint    `json:"lastConsultationId"`
	Name                  string   `json:"name"`
	Age                   *int     `json:"age"`
	Sex                   string   `json:"sex"`
	Address               string   `json:"address"`
	Phone                 string   `json:"phone"`
	Email                 string   `json:"email"`
	Height                *float64 `json:"height"`
	Weight                *float64 `json:"weight"`
	BloodGroup            string   `json:"bloodGroup"`
	DOB                   string   `json:"dob"`
	TreatmentStatus       string   `json:"treatmentStatus"`
	Disease               string   `json:"disease"`
	RegistrationDate      string   `json:"registrationDate"`
	RecentAppointmentDate string   `json:"recentAppointmentDate"`
	ConsultLocationID     *uint    `json:"consultLocationId"`
	ConsultLocationName   string   `json:"consultLocationName"`
	TimeSlotID            *uint    `json:"timeSlotId"`
	SlotTime              string   `json:"slotTime"`
	ConsultType           string   `json:"consultType"`
	AppointmentStatus     string   `json:"appointmentStatus"`
}

// PatientLink is the payload for attaching (or creating) a patient
// record from a finished consultation, together with the consultation
// fields to write through in the same call.
type PatientLink struct {
	ConsultationID uint               `json:"consultationId"`
	PatientData    PatientLinkDetails `json:"patientData"`
	Consultation   ConsultationUpdate `json:"consultation"`
}

// PatientLinkDetails carries patient identity and optional metrics.
type PatientLinkDetails struct {
	PatientID  *uint    `json:"patientId"`
	Name       string   `json:"name"`
	Age        *int     `json:"age"`
	Sex        string   `json:"sex"`
	Address    string   `json:"address"`
	Phone      string   `json:"phone"`
	Email      string   `json:"email"`
	Location   string   `json:"consultlocation"`
	Height     *float64 `json:"height"`
	Weight     *float64 `json:"weight"`
	BloodGroup *string  `json:"bloodGroup"`
	Disease    *string  `json:"disease"`
}
