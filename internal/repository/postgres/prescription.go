package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medportal/portal-api/internal/model"
	"github.com/medportal/portal-api/internal/repository"
)

// Upsert relies on the unique constraint on appointment_id: the insert and
// the replace-existing path are one atomic statement, so there is no
// check-then-write window and never a second row per appointment.
func (r *prescriptionRepository) Upsert(ctx context.Context, prescription *model.Prescription) error {
	query := `
		INSERT INTO prescriptions (
			id, appointment_id, doctor_id, patient_id,
			prescription_text, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (appointment_id) DO UPDATE
		SET prescription_text = EXCLUDED.prescription_text,
			doctor_id = EXCLUDED.doctor_id,
			patient_id = EXCLUDED.patient_id,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	prescription.ID = uuid.New()
	prescription.CreatedAt = now
	prescription.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		prescription.ID,
		prescription.AppointmentID,
		prescription.DoctorID,
		prescription.PatientID,
		prescription.Text,
		prescription.CreatedAt,
		prescription.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert prescription: %w", err)
	}
	return nil
}

// GetForPatient joins through the appointment so a prescription is only
// visible to the patient that appointment belongs to.
func (r *prescriptionRepository) GetForPatient(ctx context.Context, appointmentID, patientID uuid.UUID) (*model.PrescriptionDetail, error) {
	query := `
		SELECT pr.prescription_text,
			   pr.updated_at AS written_at,
			   a.scheduled_at,
			   d.username AS doctor_name
		FROM prescriptions pr
		JOIN appointments a ON pr.appointment_id = a.id
		JOIN users d ON pr.doctor_id = d.id
		WHERE pr.appointment_id = $1 AND a.patient_id = $2
	`
	var detail model.PrescriptionDetail
	err := r.db.GetContext(ctx, &detail, query, appointmentID, patientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}
	return &detail, nil
}

func (r *prescriptionRepository) GetForAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Prescription, error) {
	query := `
		SELECT id, appointment_id, doctor_id, patient_id,
			   prescription_text, created_at, updated_at
		FROM prescriptions
		WHERE appointment_id = $1
	`
	var prescription model.Prescription
	err := r.db.GetContext(ctx, &prescription, query, appointmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}
	return &prescription, nil
}
