package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medportal/portal-api/internal/model"
)

// ErrNotFound is returned by lookups when no row matches. Services decide
// whether that surfaces as not-found-or-unauthorized.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint rejects an insert.
var ErrDuplicate = errors.New("duplicate row")

// All repository interfaces in one file
type (
	// UserRepository handles account rows
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByUsername(ctx context.Context, username string) (*model.User, error)
		GetPatient(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetDoctor(ctx context.Context, id uuid.UUID) (*model.User, error)
		ListDoctors(ctx context.Context) ([]*model.DoctorSummary, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		GetOwned(ctx context.Context, id, doctorID uuid.UUID) (*model.Appointment, error)
		ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentListItem, error)
		ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AppointmentListItem, error)
		// TransitionStatus flips status in one statement conditioned on id,
		// owning doctor and current status; it reports how many rows moved.
		TransitionStatus(ctx context.Context, id, doctorID uuid.UUID, from []model.AppointmentStatus, to model.AppointmentStatus) (int64, error)
	}

	PrescriptionRepository interface {
		// Upsert inserts or, if the appointment already has a prescription,
		// replaces its text and ownership fields in one statement.
		Upsert(ctx context.Context, prescription *model.Prescription) error
		GetForPatient(ctx context.Context, appointmentID, patientID uuid.UUID) (*model.PrescriptionDetail, error)
		GetForAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Prescription, error)
	}

	MedicalRecordRepository interface {
		Create(ctx context.Context, record *model.MedicalRecord) error
		ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error)
	}
)
