package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medportal/portal-api/internal/email"
	"github.com/medportal/portal-api/internal/model"
	"github.com/medportal/portal-api/internal/repository"
	apperrors "github.com/medportal/portal-api/pkg/errors"
	"github.com/medportal/portal-api/pkg/logger"
)

// Accepted layouts for the booking form's datetime field. The first is what
// an HTML datetime-local input submits.
var scheduleLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.RFC3339,
}

type Service struct {
	repo     repository.AppointmentRepository
	userRepo repository.UserRepository
	emailSvc email.Service
	log      *logger.Logger

	// now is swappable so the strictly-in-the-future rule is testable.
	now func() time.Time
}

func NewService(repo repository.AppointmentRepository, userRepo repository.UserRepository,
	emailSvc email.Service, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		emailSvc: emailSvc,
		log:      log,
		now:      time.Now,
	}
}

// Book validates the whole request before touching the store: every failed
// check is reported together and no row exists unless all pass.
func (s *Service) Book(ctx context.Context, patient *model.Identity, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	var vb apperrors.ValidationBuilder

	var doctor *model.User
	if strings.TrimSpace(req.DoctorID) == "" {
		vb.Add("please select a doctor")
	} else if doctorID, err := uuid.Parse(req.DoctorID); err != nil {
		vb.Add("invalid doctor selected")
	} else {
		doctor, err = s.userRepo.GetDoctor(ctx, doctorID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				vb.Add("invalid doctor selected")
			} else {
				return nil, apperrors.Storage(err)
			}
		}
	}

	var scheduledAt time.Time
	if strings.TrimSpace(req.ScheduledAt) == "" {
		vb.Add("appointment date and time are required")
	} else if t, ok := parseSchedule(req.ScheduledAt); !ok {
		vb.Add("invalid appointment date and time")
	} else if !t.After(s.now()) {
		vb.Add("appointment date and time must be in the future")
	} else {
		scheduledAt = t
	}

	symptoms := strings.TrimSpace(req.Symptoms)
	if symptoms == "" {
		vb.Add("please describe your symptoms")
	}

	if err := vb.Err(); err != nil {
		return nil, err
	}

	appointment := &model.Appointment{
		PatientID:   patient.UserID,
		DoctorID:    doctor.ID,
		ScheduledAt: scheduledAt,
		Symptoms:    symptoms,
		Status:      model.AppointmentStatusPending,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, apperrors.Storage(err)
	}

	if doctor.Email != nil {
		if err := s.emailSvc.SendAppointmentBooked(ctx, *doctor.Email, patient.Username); err != nil {
			s.log.Error(err, "failed to notify doctor of booking",
				"appointment_id", appointment.ID)
		}
	}

	return appointment, nil
}

// List shows patients their history newest first and doctors their assigned
// work upcoming first.
func (s *Service) List(ctx context.Context, identity *model.Identity) ([]*model.AppointmentListItem, error) {
	var (
		items []*model.AppointmentListItem
		err   error
	)
	if identity.IsDoctor() {
		items, err = s.repo.ListForDoctor(ctx, identity.UserID)
	} else {
		items, err = s.repo.ListForPatient(ctx, identity.UserID)
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return items, nil
}

// Transition applies a doctor-triggered status change as one conditional
// update. A wrong doctor gets the same answer as a missing appointment; an
// ineligible current status is reported as an invalid transition.
func (s *Service) Transition(ctx context.Context, doctor *model.Identity, appointmentID uuid.UUID, action model.AppointmentAction) (*model.Appointment, error) {
	transition, ok := model.TransitionFor(action)
	if !ok {
		return nil, apperrors.Validation("invalid action specified")
	}

	moved, err := s.repo.TransitionStatus(ctx, appointmentID, doctor.UserID, transition.From, transition.To)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	if moved == 0 {
		// The swap lost: either the appointment is not this doctor's, or it
		// is but no longer sits in an eligible status. The probe only runs
		// after ownership failed to win, so it leaks nothing extra.
		appointment, err := s.repo.GetOwned(ctx, appointmentID, doctor.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NotFoundOrUnauthorized("appointment")
			}
			return nil, apperrors.Storage(err)
		}
		return nil, apperrors.InvalidTransition(string(appointment.Status), string(transition.To))
	}

	appointment, err := s.repo.GetOwned(ctx, appointmentID, doctor.UserID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	s.notifyPatient(ctx, appointment)

	return appointment, nil
}

func (s *Service) notifyPatient(ctx context.Context, appointment *model.Appointment) {
	patient, err := s.userRepo.Get(ctx, appointment.PatientID)
	if err != nil || patient.Email == nil {
		return
	}
	if err := s.emailSvc.SendAppointmentStatus(ctx, *patient.Email, string(appointment.Status)); err != nil {
		s.log.Error(err, "failed to notify patient of status change",
			"appointment_id", appointment.ID)
	}
}

func parseSchedule(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range scheduleLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
