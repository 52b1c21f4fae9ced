package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/medportal/portal-api/internal/model"
	"github.com/medportal/portal-api/internal/repository"
	"github.com/medportal/portal-api/internal/session"
	"github.com/medportal/portal-api/pkg/auth"
	apperrors "github.com/medportal/portal-api/pkg/errors"
	"github.com/medportal/portal-api/pkg/security"
)

type Service struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	jwtSvc   auth.JWTService
	sessions *session.Store
}

func NewService(userRepo repository.UserRepository, hasher security.PasswordHasher,
	jwtSvc auth.JWTService, sessions *session.Store) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		jwtSvc:   jwtSvc,
		sessions: sessions,
	}
}

// Register creates an account. Every failed check is collected first so the
// caller sees all of them at once; nothing is written unless all pass.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	var vb apperrors.ValidationBuilder

	username := strings.TrimSpace(req.Username)
	if username == "" {
		vb.Add("username is required")
	}
	if req.Password == "" {
		vb.Add("password is required")
	} else if len(req.Password) < security.MinPasswordLen {
		vb.Addf("password must be at least %d characters", security.MinPasswordLen)
	}
	if req.ConfirmPassword == "" {
		vb.Add("confirm password is required")
	} else if req.Password != req.ConfirmPassword {
		vb.Add("passwords do not match")
	}

	role := model.Role(req.Role)
	if req.Role == "" {
		vb.Add("role is required")
	} else if !role.Valid() {
		vb.Add("invalid role selected")
	}

	if err := vb.Err(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		user.Email = &email
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("username already exists")
		}
		return nil, apperrors.Storage(err)
	}

	return user, nil
}

// Login verifies credentials and establishes both a cookie session and a
// bearer token. Unknown username and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*session.Session, *model.TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.Unauthenticated("invalid username or password")
		}
		return nil, nil, apperrors.Storage(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, nil, apperrors.Unauthenticated("invalid username or password")
	}

	identity := model.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}

	sess, err := s.sessions.Create(ctx, identity)
	if err != nil {
		return nil, nil, apperrors.Storage(err)
	}

	token, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, nil, apperrors.Internal(fmt.Errorf("failed to generate token: %w", err))
	}

	return sess, &model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
	}, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

// ListDoctors is the directory shown on the booking form.
func (s *Service) ListDoctors(ctx context.Context) ([]*model.DoctorSummary, error) {
	doctors, err := s.userRepo.ListDoctors(ctx)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return doctors, nil
}
