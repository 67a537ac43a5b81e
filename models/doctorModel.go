package models

import (
	"time"
)

// Doctor model. Each doctor owns an isolated set of patients and
// consultations, all scoped by doctor_id.
type Doctor struct {
	ID              uint           `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name            string         `gorm:"column:name;size:100;not null" json:"name"`
	Email           string         `gorm:"column:email;size:100;unique;not null;index" json:"email"`
	RegNo           string         `gorm:"column:reg_no;size:32;unique;not null;index" json:"regNo"`
	Phone           string         `gorm:"column:phone;size:32;unique;not null" json:"phone"`
	Password        string         `gorm:"column:password;size:255;not null" json:"-"`
	ImageURL        string         `gorm:"column:image_url;size:512" json:"imageURL"`
	Specialty       string         `gorm:"column:specialty;size:100" json:"specialty"`
	Address         string         `gorm:"column:address;size:255" json:"address"`
	ConsultLocation string         `gorm:"column:consult_location;size:255" json:"consultlocation"`
	RefreshToken    string         `gorm:"column:refresh_token;size:512" json:"-"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Degrees         []DoctorDegree `gorm:"foreignKey:DoctorID;references:ID" json:"-"`
	Patients        []Patient      `gorm:"foreignKey:DoctorID;references:ID" json:"-"`
	Consultations   []Consultation `gorm:"foreignKey:DoctorID;references:ID" json:"-"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// DoctorDegree model
type DoctorDegree struct {
	ID          uint   `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	DoctorID    uint   `gorm:"column:doctor_id;not null;index" json:"doctor_id"`
	DegreeName  string `gorm:"column:degree_name;size:100" json:"degree"`
	Institution string `gorm:"column:institution;size:100" json:"institution"`
	Year        string `gorm:"column:year;size:10" json:"year"`
}

func (DoctorDegree) TableName() string {
	return "doctor_degrees"
}
