package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medportal/portal-api/internal/model"
	"github.com/medportal/portal-api/internal/repository"
	apperrors "github.com/medportal/portal-api/pkg/errors"
	"github.com/medportal/portal-api/pkg/security"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range f.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return repository.ErrDuplicate
		}
	}
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
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetPatient(context.Context, uuid.UUID) (*model.User, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetDoctor(context.Context, uuid.UUID) (*model.User, error) {
	return nil, repository.ErrNotFound
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

func newTestService() (*Service, *fakeUserRepo) {
	users := newFakeUserRepo()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	return NewService(users, hasher, nil, nil), users
}

func validRegistration() *model.RegisterRequest {
	return &model.RegisterRequest{
		Username:        "alice",
		Password:        "correct horse",
		ConfirmPassword: "correct horse",
		Role:            "patient",
	}
}

func TestRegisterCreatesUser(t *testing.T) {
	svc, users := newTestService()

	user, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, model.RolePatient, user.Role)
	assert.Nil(t, user.Email)
	assert.NotEqual(t, "correct horse", user.PasswordHash, "password must never be stored in the clear")
	assert.Len(t, users.users, 1)
}

func TestRegisterCollectsAllFailures(t *testing.T) {
	svc, users := newTestService()

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Password:        "short",
		ConfirmPassword: "different",
		Role:            "admin",
	})
	require.Error(t, err)

	appErr, ok := apperrors.From(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "username is required")
	assert.Contains(t, appErr.Fields, "passwords do not match")
	assert.Contains(t, appErr.Fields, "invalid role selected")
	assert.GreaterOrEqual(t, len(appErr.Fields), 4)
	assert.Empty(t, users.users)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validRegistration())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestRegisterUsernameUniquenessIgnoresCase(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	req := validRegistration()
	req.Username = "ALICE"
	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestRegisterStoresOptionalEmail(t *testing.T) {
	svc, _ := newTestService()

	req := validRegistration()
	req.Email = "alice@example.com"
	user, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, user.Email)
	assert.Equal(t, "alice@example.com", *user.Email)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "nobody",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthenticated))
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, _, wrongErr := svc.Login(context.Background(), &model.LoginRequest{
		Username: "alice",
		Password: "incorrect horse",
	})
	require.Error(t, wrongErr)
	assert.True(t, apperrors.Is(wrongErr, apperrors.ErrUnauthenticated))

	_, _, unknownErr := svc.Login(context.Background(), &model.LoginRequest{
		Username: "nobody",
		Password: "whatever",
	})
	// wrong password and unknown user must read identically
	assert.Equal(t, wrongErr.Error(), unknownErr.Error())
}

func TestListDoctors(t *testing.T) {
	svc, _ := newTestService()

	doc := validRegistration()
	doc.Username = "dr-bob"
	doc.Role = "doctor"
	_, err := svc.Register(context.Background(), doc)
	require.NoError(t, err)

	doctors, err := svc.ListDoctors(context.Background())
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, "dr-bob", doctors[0].Username)
}
