package model

import (
	"time"

	"github.com/google/uuid"
)

// Prescription holds at most one row per appointment; saving again updates
// the existing row. Doctor and patient ids are denormalized from the
// appointment so the triple stays internally consistent.
type Prescription struct {
	Base
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	DoctorID      uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	Text          string    `db:"prescription_text" json:"prescription_text"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// PrescriptionDetail is the patient-facing view of a prescription.
type PrescriptionDetail struct {
	Text        string    `db:"prescription_text" json:"prescription_text"`
	WrittenAt   time.Time `db:"written_at" json:"written_at"`
	ScheduledAt time.Time `db:"scheduled_at" json:"scheduled_at"`
	DoctorName  string    `db:"doctor_name" json:"doctor_name"`
}

// SavePrescriptionRequest represents the prescription form.
type SavePrescriptionRequest struct {
	Text string `form:"prescription_text" json:"prescription_text"`
}
