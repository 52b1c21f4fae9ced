package prescription

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/medportal/portal-api/internal/email"
	"github.com/medportal/portal-api/internal/model"
	"github.com/medportal/portal-api/internal/repository"
	apperrors "github.com/medportal/portal-api/pkg/errors"
	"github.com/medportal/portal-api/pkg/logger"
)

type Service struct {
	repo            repository.PrescriptionRepository
	appointmentRepo repository.AppointmentRepository
	userRepo        repository.UserRepository
	emailSvc        email.Service
	log             *logger.Logger
}

func NewService(repo repository.PrescriptionRepository, appointmentRepo repository.AppointmentRepository,
	userRepo repository.UserRepository, emailSvc email.Service, log *logger.Logger) *Service {
	return &Service{
		repo:            repo,
		appointmentRepo: appointmentRepo,
		userRepo:        userRepo,
		emailSvc:        emailSvc,
		log:             log,
	}
}

// Save writes the one prescription an appointment may carry, creating or
// replacing it in a single upsert. The appointment must belong to the
// acting doctor; a mismatch reads the same as a missing appointment.
func (s *Service) Save(ctx context.Context, doctor *model.Identity, appointmentID uuid.UUID, req *model.SavePrescriptionRequest) (*model.Prescription, error) {
	appointment, err := s.appointmentRepo.GetOwned(ctx, appointmentID, doctor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundOrUnauthorized("appointment")
		}
		return nil, apperrors.Storage(err)
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperrors.Validation("prescription text cannot be empty")
	}

	prescription := &model.Prescription{
		AppointmentID: appointment.ID,
		DoctorID:      doctor.UserID,
		PatientID:     appointment.PatientID,
		Text:          text,
	}

	if err := s.repo.Upsert(ctx, prescription); err != nil {
		return nil, apperrors.Storage(err)
	}

	s.notifyPatient(ctx, appointment.PatientID)

	return prescription, nil
}

// GetForPatient returns the prescription on one of the patient's own
// appointments; anything else is not-found-or-unauthorized.
func (s *Service) GetForPatient(ctx context.Context, patient *model.Identity, appointmentID uuid.UUID) (*model.PrescriptionDetail, error) {
	detail, err := s.repo.GetForPatient(ctx, appointmentID, patient.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundOrUnauthorized("prescription")
		}
		return nil, apperrors.Storage(err)
	}
	return detail, nil
}

// GetForAppointment pre-fills the doctor's prescription form; a nil result
// means none exists yet.
func (s *Service) GetForAppointment(ctx context.Context, doctor *model.Identity, appointmentID uuid.UUID) (*model.Prescription, error) {
	if _, err := s.appointmentRepo.GetOwned(ctx, appointmentID, doctor.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundOrUnauthorized("appointment")
		}
		return nil, apperrors.Storage(err)
	}

	prescription, err := s.repo.GetForAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.Storage(err)
	}
	return prescription, nil
}

func (s *Service) notifyPatient(ctx context.Context, patientID uuid.UUID) {
	patient, err := s.userRepo.Get(ctx, patientID)
	if err != nil || patient.Email == nil {
		return
	}
	if err := s.emailSvc.SendPrescriptionReady(ctx, *patient.Email); err != nil {
		s.log.Error(err, "failed to notify patient of prescription",
			"patient_id", patientID)
	}
}
