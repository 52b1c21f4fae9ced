package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// AppointmentAction is a doctor-triggered status transition request.
type AppointmentAction string

const (
	AppointmentActionConfirm  AppointmentAction = "confirm"
	AppointmentActionCancel   AppointmentAction = "cancel"
	AppointmentActionComplete AppointmentAction = "complete"
)

// Transition describes one edge of the appointment state machine: the
// statuses an action may leave from and the status it lands on.
type Transition struct {
	From []AppointmentStatus
	To   AppointmentStatus
}

var transitions = map[AppointmentAction]Transition{
	AppointmentActionConfirm: {
		From: []AppointmentStatus{AppointmentStatusPending},
		To:   AppointmentStatusConfirmed,
	},
	AppointmentActionCancel: {
		From: []AppointmentStatus{AppointmentStatusPending, AppointmentStatusConfirmed},
		To:   AppointmentStatusCancelled,
	},
	AppointmentActionComplete: {
		From: []AppointmentStatus{AppointmentStatusConfirmed},
		To:   AppointmentStatusCompleted,
	},
}

// TransitionFor returns the state-machine edge for an action, or false for
// an unknown action.
func TransitionFor(action AppointmentAction) (Transition, bool) {
	t, ok := transitions[action]
	return t, ok
}

type Appointment struct {
	Base
	PatientID   uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID    uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	ScheduledAt time.Time         `db:"scheduled_at" json:"scheduled_at"`
	Symptoms    string            `db:"symptoms" json:"symptoms"`
	Status      AppointmentStatus `db:"status" json:"status"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// AppointmentListItem is one row of a listing; which counterparty name is
// populated depends on who asked.
type AppointmentListItem struct {
	ID              uuid.UUID         `db:"id" json:"id"`
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id,omitempty"`
	ScheduledAt     time.Time         `db:"scheduled_at" json:"scheduled_at"`
	Symptoms        string            `db:"symptoms" json:"symptoms"`
	Status          AppointmentStatus `db:"status" json:"status"`
	DoctorName      string            `db:"doctor_name" json:"doctor_name,omitempty"`
	PatientName     string            `db:"patient_name" json:"patient_name,omitempty"`
	HasPrescription bool              `db:"has_prescription" json:"has_prescription"`
}

// BookAppointmentRequest represents the booking form. Fields stay loose
// strings so every invalid one is reported together, not first-failure-only.
type BookAppointmentRequest struct {
	DoctorID    string `form:"doctor_id" json:"doctor_id"`
	ScheduledAt string `form:"scheduled_at" json:"scheduled_at"`
	Symptoms    string `form:"symptoms" json:"symptoms"`
}

// TransitionRequest represents the status-change form.
type TransitionRequest struct {
	Action string `form:"action" json:"action" binding:"required"`
}
