package repositories

import "errors"

// Sentinel errors surfaced to services so callers can distinguish
// business outcomes from infrastructure failures with errors.Is.
var (
	ErrDoctorNotFound       = errors.New("doctor not found")
	ErrLocationNotFound     = errors.New("consultation location not found")
	ErrTimeSlotNotFound     = errors.New("time slot not found")
	ErrConsultationNotFound = errors.New("consultation not found")
	ErrPatientNotFound      = errors.New("patient not found")

	// ErrSlotCapacityFull means the allocator derived a serial beyond the
	// slot's capacity. A capacity of zero or less behaves as a closed slot.
	ErrSlotCapacityFull = errors.New("slot capacity exhausted")

	// ErrSerialTaken means a concurrent booking committed the same serial
	// first (unique index collision). Callers retry allocation from scratch.
	ErrSerialTaken = errors.New("serial number already taken")

	ErrNoUpdatableFields = errors.New("no valid fields to update")
)
