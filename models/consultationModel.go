package models

import (
	"time"
)

// Appointment status lifecycle values. The serial number of a cancelled
// consultation is never reused; cancellation is a status change only.
const (
	StatusBooked    = "booked"
	StatusCancelled = "Cancelled"
	StatusCompleted = "Completed"
)

// ConsultationLocation model. A place where the owning doctor sees
// patients; deletion cascades to its active days and time slots.
type ConsultationLocation struct {
	ID              uint        `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	DoctorID        uint        `gorm:"column:doctor_id;not null;index" json:"doctor_id"`
	LocationName    string      `gorm:"column:location_name;size:100;not null" json:"locationName"`
	Address         string      `gorm:"column:address;size:255" json:"address"`
	LocationType    string      `gorm:"column:location_type;size:50" json:"locationType"`
	RoomNumber      string      `gorm:"column:room_number;size:20" json:"roomNumber"`
	ConsultationFee float64     `gorm:"column:consultation_fee" json:"consultationFee"`
	IsPublished     bool        `gorm:"column:is_published;not null;default:false" json:"isPublished"`
	CreatedAt       time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	ActiveDays      []ActiveDay `gorm:"foreignKey:LocationID;references:ID" json:"activeDays"`
}

func (ConsultationLocation) TableName() string {
	return "consultation_locations"
}

// ActiveDay model. One weekday a location is open for booking.
type ActiveDay struct {
	ID         uint       `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	LocationID uint       `gorm:"column:location_id;not null;index" json:"location_id"`
	Day        string     `gorm:"column:day;size:16;not null" json:"day"`
	IsActive   bool       `gorm:"column:is_active;not null" json:"isActive"`
	TimeSlots  []TimeSlot `gorm:"foreignKey:ActiveDayID;references:ID" json:"timeSlots"`
}

func (ActiveDay) TableName() string {
	return "active_days"
}

// TimeSlot model. Capacity is a property of the slot definition and is
// shared by every calendar date the slot recurs on; per-date occupancy
// is re-derived from existing consultations.
type TimeSlot struct {
	ID           uint   `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	ActiveDayID  uint   `gorm:"column:active_day_id;not null;index" json:"active_day_id"`
	SlotActive   bool   `gorm:"column:slot_active;not null" json:"slotActive"`
	StartTime    string `gorm:"column:start_time;size:16;not null" json:"startTime"`
	EndTime      string `gorm:"column:end_time;size:16;not null" json:"endTime"`
	SlotDuration int    `gorm:"column:slot_duration" json:"slotDuration"`
	Capacity     int    `gorm:"column:capacity;not null" json:"capacity"`
}

func (TimeSlot) TableName() string {
	return "time_slots"
}

// Patient model. A recurring individual within one doctor's records,
// optionally linked from consultations.
type Patient struct {
	ID                    uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	DoctorID              uint      `gorm:"column:doctor_id;not null;index" json:"doctor_id"`
	LastConsultationID    *uint     `gorm:"column:last_consultation_id" json:"lastConsultationId"`
	Name                  string    `gorm:"column:name;size:100;not null" json:"name"`
	Age                   *int      `gorm:"column:age" json:"age"`
	Sex                   string    `gorm:"column:sex;size:10" json:"sex"`
	Address               string    `gorm:"column:address;size:100" json:"address"`
	Phone                 string    `gorm:"column:phone;size:20;index" json:"phone"`
	Email                 string    `gorm:"column:email;size:100" json:"email"`
	Height                *float64  `gorm:"column:height" json:"height"`
	Weight                *float64  `gorm:"column:weight" json:"weight"`
	BloodGroup            string    `gorm:"column:blood_group;size:10" json:"bloodGroup"`
	DOB                   string    `gorm:"column:dob;type:date" json:"dob"`
	ConsultLocation       string    `gorm:"column:consult_location;size:100" json:"consultlocation"`
	TreatmentStatus       string    `gorm:"column:treatment_status;size:20" json:"treatmentStatus"`
	Disease               string    `gorm:"column:disease;size:100" json:"disease"`
	RegistrationDate      string    `gorm:"column:registration_date;type:date" json:"registrationDate"`
	RecentAppointmentDate string    `gorm:"column:recent_appointment_date;type:date" json:"recentAppointmentDate"`
	CreatedAt             time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Patient) TableName() string {
	return "patients"
}

// Consultation model. One booking. The composite unique index on
// (doctor_id, consult_location_id, time_slot_id, serial_date, serial_no)
// is what makes serial allocation safe under concurrent inserts: two
// transactions that derive the same serial cannot both commit.
type Consultation struct {
	ID                uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	DoctorID          uint      `gorm:"column:doctor_id;not null;index;uniqueIndex:idx_slot_serial" json:"doctor_id"`
	SerialNo          int       `gorm:"column:serial_no;not null;uniqueIndex:idx_slot_serial" json:"serialNo"`
	SerialDate        string    `gorm:"column:serial_date;type:date;not null;uniqueIndex:idx_slot_serial" json:"serialDate"`
	Name              string    `gorm:"column:name;size:100;not null" json:"name"`
	Age               int       `gorm:"column:age;not null" json:"age"`
	Sex               string    `gorm:"column:sex;size:20;not null" json:"sex"`
	Email             string    `gorm:"column:email;size:100" json:"email"`
	Phone             string    `gorm:"column:phone;size:50;not null;index" json:"phone"`
	Address           string    `gorm:"column:address;size:1024" json:"address"`
	ConsultLocationID uint      `gorm:"column:consult_location_id;not null;uniqueIndex:idx_slot_serial" json:"consultLocationId"`
	Date              time.Time `gorm:"column:date;not null;index" json:"date"`
	TimeSlotID        uint      `gorm:"column:time_slot_id;not null;uniqueIndex:idx_slot_serial" json:"timeSlotId"`
	PatientID         *uint     `gorm:"column:patient_id" json:"patientId"`
	ConsultType       string    `gorm:"column:consult_type;size:20" json:"consultType"`
	PatientCondition  string    `gorm:"column:patient_condition;size:1024" json:"patientCondition"`
	ConsultationFee   int       `gorm:"column:consultation_fee" json:"consultationFee"`
	PaymentStatus     string    `gorm:"column:payment_status;size:20;default:pending" json:"paymentStatus"`
	AppointmentStatus string    `gorm:"column:appointment_status;size:20" json:"appointmentStatus"`
	AudioURL          string    `gorm:"column:audio_url;size:512" json:"audioURL"`
	MedicalTests      string    `gorm:"column:medical_tests;size:512" json:"medicalTests"`
	MedicalReports    string    `gorm:"column:medical_reports;size:1024" json:"medicalReports"`
	MedicalFiles      string    `gorm:"column:medical_files;size:1024" json:"medicalFiles"`
	ReportComments    string    `gorm:"column:report_comments;size:1024" json:"reportComments"`
	PatientAdvice     string    `gorm:"column:patient_advice;size:1024" json:"patientAdvice"`
	Medicine          string    `gorm:"column:medicine;size:512" json:"medicine"`
	Disease           string    `gorm:"column:disease;size:100" json:"disease"`
	RecoveryStatus    *int      `gorm:"column:recovery_status" json:"recoveryStatus"`
	FollowUp          string    `gorm:"column:follow_up;type:date" json:"followUp"`
	Prescription      string    `gorm:"column:prescription;size:512" json:"prescription"`
	MedicalReport     string    `gorm:"column:medical_report;size:512" json:"medical_report"`
	SymptomsList      string    `gorm:"column:symptoms_list;type:text" json:"symptoms_list"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Consultation) TableName() string {
	return "consultations"
}
