package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/medportal/portal-api/internal/model"
	"github.com/medportal/portal-api/internal/repository"
)

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, scheduled_at,
			symptoms, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.ScheduledAt,
		appointment.Symptoms,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// GetOwned fetches an appointment only if the given doctor is assigned to
// it, so a miss never reveals whether the id exists at all.
func (r *appointmentRepository) GetOwned(ctx context.Context, id, doctorID uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, scheduled_at,
			   symptoms, status, created_at, updated_at
		FROM appointments
		WHERE id = $1 AND doctor_id = $2
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id, doctorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

// ListForPatient orders newest first: patients review history.
func (r *appointmentRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentListItem, error) {
	query := `
		SELECT a.id, a.scheduled_at, a.symptoms, a.status,
			   d.username AS doctor_name,
			   EXISTS (
				   SELECT 1 FROM prescriptions p WHERE p.appointment_id = a.id
			   ) AS has_prescription
		FROM appointments a
		JOIN users d ON a.doctor_id = d.id
		WHERE a.patient_id = $1
		ORDER BY a.scheduled_at DESC
	`
	var items []*model.AppointmentListItem
	err := r.db.SelectContext(ctx, &items, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	return items, nil
}

// ListForDoctor orders upcoming first: doctors triage forward work.
func (r *appointmentRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AppointmentListItem, error) {
	query := `
		SELECT a.id, a.patient_id, a.scheduled_at, a.symptoms, a.status,
			   p.username AS patient_name,
			   EXISTS (
				   SELECT 1 FROM prescriptions pr WHERE pr.appointment_id = a.id
			   ) AS has_prescription
		FROM appointments a
		JOIN users p ON a.patient_id = p.id
		WHERE a.doctor_id = $1
		ORDER BY a.scheduled_at ASC
	`
	var items []*model.AppointmentListItem
	err := r.db.SelectContext(ctx, &items, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return items, nil
}

// TransitionStatus is a single compare-and-swap: the row moves only if it
// still belongs to the doctor and sits in an eligible status, so two racing
// transitions can never both win.
func (r *appointmentRepository) TransitionStatus(ctx context.Context, id, doctorID uuid.UUID, from []model.AppointmentStatus, to model.AppointmentStatus) (int64, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3 AND doctor_id = $4 AND status = ANY($5)
	`
	fromStrs := make([]string, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}

	result, err := r.db.ExecContext(ctx, query, to, time.Now(), id, doctorID, pq.Array(fromStrs))
	if err != nil {
		return 0, fmt.Errorf("failed to transition appointment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
