package appointment

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medportal/portal-api/internal/model"
	"github.com/medportal/portal-api/internal/repository"
	apperrors "github.com/medportal/portal-api/pkg/errors"
	"github.com/medportal/portal-api/pkg/logger"
)

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
	created      int
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (f *fakeAppointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	f.appointments[a.ID] = a
	f.created++
	return nil
}

func (f *fakeAppointmentRepo) GetOwned(_ context.Context, id, doctorID uuid.UUID) (*model.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok || a.DoctorID != doctorID {
		return nil, repository.ErrNotFound
	}
	copy := *a
	return &copy, nil
}

func (f *fakeAppointmentRepo) ListForPatient(_ context.Context, patientID uuid.UUID) ([]*model.AppointmentListItem, error) {
	var items []*model.AppointmentListItem
	for _, a := range f.appointments {
		if a.PatientID == patientID {
			items = append(items, &model.AppointmentListItem{ID: a.ID, Status: a.Status})
		}
	}
	return items, nil
}

func (f *fakeAppointmentRepo) ListForDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.AppointmentListItem, error) {
	var items []*model.AppointmentListItem
	for _, a := range f.appointments {
		if a.DoctorID == doctorID {
			items = append(items, &model.AppointmentListItem{ID: a.ID, Status: a.Status})
		}
	}
	return items, nil
}

func (f *fakeAppointmentRepo) TransitionStatus(_ context.Context, id, doctorID uuid.UUID, from []model.AppointmentStatus, to model.AppointmentStatus) (int64, error) {
	a, ok := f.appointments[id]
	if !ok || a.DoctorID != doctorID {
		return 0, nil
	}
	for _, s := range from {
		if a.Status == s {
			a.Status = to
			a.UpdatedAt = time.Now()
			return 1, nil
		}
	}
	return 0, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserRepo) add(role model.Role) *model.User {
	u := &model.User{Username: string(role) + "-" + uuid.NewString()[:8], Role: role}
	u.ID = uuid.New()
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	u.ID = uuid.New()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetPatient(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok || u.Role != model.RolePatient {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetDoctor(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok || u.Role != model.RoleDoctor {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) ListDoctors(_ context.Context) ([]*model.DoctorSummary, error) {
	var out []*model.DoctorSummary
	for _, u := range f.users {
		if u.Role == model.RoleDoctor {
			out = append(out, &model.DoctorSummary{ID: u.ID, Username: u.Username})
		}
	}
	return out, nil
}

type fakeEmail struct {
	booked int
	status []string
}

func (f *fakeEmail) SendAppointmentBooked(_ context.Context, _, _ string) error {
	f.booked++
	return nil
}

func (f *fakeEmail) SendAppointmentStatus(_ context.Context, _, status string) error {
	f.status = append(f.status, status)
	return nil
}

func (f *fakeEmail) SendPrescriptionReady(_ context.Context, _ string) error { return nil }

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func newTestService() (*Service, *fakeAppointmentRepo, *fakeUserRepo, *fakeEmail) {
	repo := newFakeAppointmentRepo()
	users := newFakeUserRepo()
	mail := &fakeEmail{}
	svc := NewService(repo, users, mail, testLogger())
	return svc, repo, users, mail
}

func identityFor(u *model.User) *model.Identity {
	return &model.Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func TestBookCollectsAllValidationFailures(t *testing.T) {
	svc, repo, users, _ := newTestService()
	patient := users.add(model.RolePatient)

	_, err := svc.Book(context.Background(), identityFor(patient), &model.BookAppointmentRequest{})
	require.Error(t, err)

	appErr, ok := apperrors.From(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	assert.Len(t, appErr.Fields, 3)
	assert.Equal(t, 0, repo.created, "nothing should be written when validation fails")
}

func TestBookRejectsPastSchedule(t *testing.T) {
	svc, repo, users, _ := newTestService()
	patient := users.add(model.RolePatient)
	doctor := users.add(model.RoleDoctor)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.Local) }

	_, err := svc.Book(context.Background(), identityFor(patient), &model.BookAppointmentRequest{
		DoctorID:    doctor.ID.String(),
		ScheduledAt: "2026-06-01T11:00",
		Symptoms:    "headache",
	})
	require.Error(t, err)

	appErr, ok := apperrors.From(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "appointment date and time must be in the future")
	assert.Equal(t, 0, repo.created)
}

func TestBookRejectsUnparseableSchedule(t *testing.T) {
	svc, _, users, _ := newTestService()
	patient := users.add(model.RolePatient)
	doctor := users.add(model.RoleDoctor)

	_, err := svc.Book(context.Background(), identityFor(patient), &model.BookAppointmentRequest{
		DoctorID:    doctor.ID.String(),
		ScheduledAt: "next tuesday",
		Symptoms:    "headache",
	})
	require.Error(t, err)

	appErr, _ := apperrors.From(err)
	assert.Contains(t, appErr.Fields, "invalid appointment date and time")
}

func TestBookRejectsUnknownDoctor(t *testing.T) {
	svc, _, users, _ := newTestService()
	patient := users.add(model.RolePatient)

	_, err := svc.Book(context.Background(), identityFor(patient), &model.BookAppointmentRequest{
		DoctorID:    uuid.NewString(),
		ScheduledAt: "2099-01-02T10:00",
		Symptoms:    "headache",
	})
	require.Error(t, err)

	appErr, _ := apperrors.From(err)
	assert.Contains(t, appErr.Fields, "invalid doctor selected")
}

func TestBookCreatesPendingAndNotifiesDoctor(t *testing.T) {
	svc, repo, users, mail := newTestService()
	patient := users.add(model.RolePatient)
	doctor := users.add(model.RoleDoctor)
	addr := "doc@example.com"
	doctor.Email = &addr

	appointment, err := svc.Book(context.Background(), identityFor(patient), &model.BookAppointmentRequest{
		DoctorID:    doctor.ID.String(),
		ScheduledAt: "2099-01-02T10:00",
		Symptoms:    "  persistent cough  ",
	})
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusPending, appointment.Status)
	assert.Equal(t, patient.ID, appointment.PatientID)
	assert.Equal(t, doctor.ID, appointment.DoctorID)
	assert.Equal(t, "persistent cough", appointment.Symptoms)
	assert.Equal(t, 1, repo.created)
	assert.Equal(t, 1, mail.booked)
}

func TestTransitionRejectsUnknownAction(t *testing.T) {
	svc, _, users, _ := newTestService()
	doctor := users.add(model.RoleDoctor)

	_, err := svc.Transition(context.Background(), identityFor(doctor), uuid.New(), "approve")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestTransitionWrongDoctorReadsAsMissing(t *testing.T) {
	svc, repo, users, _ := newTestService()
	patient := users.add(model.RolePatient)
	owner := users.add(model.RoleDoctor)
	other := users.add(model.RoleDoctor)

	appointment := &model.Appointment{
		PatientID: patient.ID, DoctorID: owner.ID,
		Status: model.AppointmentStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), appointment))

	_, err := svc.Transition(context.Background(), identityFor(other), appointment.ID, model.AppointmentActionConfirm)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFoundOrUnauthorized),
		"someone else's appointment must be indistinguishable from a missing one")
	assert.Equal(t, model.AppointmentStatusPending, repo.appointments[appointment.ID].Status)
}

func TestTransitionMissingAppointment(t *testing.T) {
	svc, _, users, _ := newTestService()
	doctor := users.add(model.RoleDoctor)

	_, err := svc.Transition(context.Background(), identityFor(doctor), uuid.New(), model.AppointmentActionCancel)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFoundOrUnauthorized))
}

func TestTransitionIneligibleStatus(t *testing.T) {
	svc, repo, users, _ := newTestService()
	patient := users.add(model.RolePatient)
	doctor := users.add(model.RoleDoctor)

	appointment := &model.Appointment{
		PatientID: patient.ID, DoctorID: doctor.ID,
		Status: model.AppointmentStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), appointment))

	// complete is only reachable from confirmed
	_, err := svc.Transition(context.Background(), identityFor(doctor), appointment.ID, model.AppointmentActionComplete)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))
	assert.Equal(t, model.AppointmentStatusPending, repo.appointments[appointment.ID].Status)
}

func TestTransitionFullLifecycle(t *testing.T) {
	svc, repo, users, mail := newTestService()
	patient := users.add(model.RolePatient)
	addr := "patient@example.com"
	patient.Email = &addr
	doctor := users.add(model.RoleDoctor)

	appointment := &model.Appointment{
		PatientID: patient.ID, DoctorID: doctor.ID,
		Status: model.AppointmentStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), appointment))

	confirmed, err := svc.Transition(context.Background(), identityFor(doctor), appointment.ID, model.AppointmentActionConfirm)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, confirmed.Status)

	completed, err := svc.Transition(context.Background(), identityFor(doctor), appointment.ID, model.AppointmentActionComplete)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, completed.Status)

	// completed is terminal
	_, err = svc.Transition(context.Background(), identityFor(doctor), appointment.ID, model.AppointmentActionCancel)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))

	assert.Equal(t, []string{"confirmed", "completed"}, mail.status)
}

func TestListBranchesOnRole(t *testing.T) {
	svc, repo, users, _ := newTestService()
	patient := users.add(model.RolePatient)
	doctor := users.add(model.RoleDoctor)

	require.NoError(t, repo.Create(context.Background(), &model.Appointment{
		PatientID: patient.ID, DoctorID: doctor.ID,
		Status: model.AppointmentStatusPending,
	}))

	forPatient, err := svc.List(context.Background(), identityFor(patient))
	require.NoError(t, err)
	assert.Len(t, forPatient, 1)

	forDoctor, err := svc.List(context.Background(), identityFor(doctor))
	require.NoError(t, err)
	assert.Len(t, forDoctor, 1)

	stranger := users.add(model.RolePatient)
	forStranger, err := svc.List(context.Background(), identityFor(stranger))
	require.NoError(t, err)
	assert.Empty(t, forStranger)
}
